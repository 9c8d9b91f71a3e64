package gcp

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/yungbote/certchain-backend/internal/platform/logger"
)

// Runs against fake-gcs-server when STORAGE_EMULATOR_HOST and
// TEST_GCS_BUCKET are set.
func TestContentStore_EmulatorRoundTrip(t *testing.T) {
	host := strings.TrimSpace(os.Getenv("STORAGE_EMULATOR_HOST"))
	bucket := strings.TrimSpace(os.Getenv("TEST_GCS_BUCKET"))
	if host == "" || bucket == "" {
		t.Skip("set STORAGE_EMULATOR_HOST and TEST_GCS_BUCKET to run emulator tests")
	}
	ctx := context.Background()
	s, err := NewContentStore(ctx, StoreConfig{Mode: StorageModeGCSEmulator, EmulatorHost: host, Bucket: bucket, Prefix: "certificates"}, logger.NewNop())
	if err != nil {
		t.Fatalf("NewContentStore: %v", err)
	}
	defer s.Close()

	png := []byte("\x89PNG\r\n\x1a\nrest")
	first, err := s.PinBytes(ctx, png, "certificate-Ana-Go.png")
	if err != nil {
		t.Fatalf("PinBytes: %v", err)
	}
	second, err := s.PinBytes(ctx, png, "certificate-Ana-Go.png")
	if err != nil {
		t.Fatalf("PinBytes(again): %v", err)
	}
	if first != second {
		t.Fatalf("expected stable uri, got %q then %q", first, second)
	}

	meta, err := s.PinJSON(ctx, map[string]any{"name": "Certificado - Ana"}, "cert-Ana-Go")
	if err != nil {
		t.Fatalf("PinJSON: %v", err)
	}
	if !strings.HasSuffix(meta, ".json") {
		t.Fatalf("expected json key, got %q", meta)
	}
}
