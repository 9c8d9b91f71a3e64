package gcp

import (
	"errors"
	"testing"
)

func TestNormalize_DefaultsToGCS(t *testing.T) {
	cfg, err := StoreConfig{Bucket: "certs"}.Normalize()
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if cfg.Mode != StorageModeGCS {
		t.Fatalf("expected %q, got %q", StorageModeGCS, cfg.Mode)
	}
}

func TestNormalize_EmulatorFromHost(t *testing.T) {
	cfg, err := StoreConfig{Bucket: "certs", EmulatorHost: "http://fake-gcs:4443/", Prefix: "/certificates/"}.Normalize()
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !cfg.IsEmulator() {
		t.Fatalf("expected emulator mode, got %q", cfg.Mode)
	}
	if cfg.EmulatorHost != "http://fake-gcs:4443" {
		t.Fatalf("expected trimmed host, got %q", cfg.EmulatorHost)
	}
	if cfg.Prefix != "certificates" {
		t.Fatalf("expected trimmed prefix, got %q", cfg.Prefix)
	}
}

func TestNormalize_Errors(t *testing.T) {
	cases := []struct {
		name string
		cfg  StoreConfig
		code StoreConfigErrorCode
	}{
		{"invalid mode", StoreConfig{Mode: "s3", Bucket: "b"}, StoreConfigErrorInvalidMode},
		{"missing bucket", StoreConfig{Mode: StorageModeGCS}, StoreConfigErrorMissingBucket},
		{"missing emulator host", StoreConfig{Mode: StorageModeGCSEmulator, Bucket: "b"}, StoreConfigErrorMissingEmulatorHost},
		{"invalid emulator host", StoreConfig{Mode: StorageModeGCSEmulator, Bucket: "b", EmulatorHost: "fake-gcs"}, StoreConfigErrorInvalidEmulatorHost},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.cfg.Normalize()
			var cfgErr *StoreConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected StoreConfigError, got %T (%v)", err, err)
			}
			if cfgErr.Code != tc.code {
				t.Fatalf("expected code %q, got %q", tc.code, cfgErr.Code)
			}
			if cfgErr.Error() == "" {
				t.Fatalf("expected message")
			}
		})
	}
}

func TestObjectKeyIsContentAddressed(t *testing.T) {
	s := &ContentStore{bucket: "certs", prefix: "certificates"}
	a := s.ObjectKey([]byte("hello"), ".png")
	b := s.ObjectKey([]byte("hello"), ".png")
	c := s.ObjectKey([]byte("world"), ".png")
	if a != b {
		t.Fatalf("expected identical keys, got %q vs %q", a, b)
	}
	if a == c {
		t.Fatalf("expected different keys for different content")
	}
	want := "certificates/2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824.png"
	if a != want {
		t.Fatalf("expected %q, got %q", want, a)
	}
	if got := s.uri(a); got != "gs://certs/"+want {
		t.Fatalf("unexpected uri %q", got)
	}
}

func TestClientOptions(t *testing.T) {
	if opts := ClientOptions(""); opts != nil {
		t.Fatalf("expected nil options")
	}
	if opts := ClientOptions(`{"type":"service_account"}`); len(opts) != 1 {
		t.Fatalf("expected json option")
	}
	if opts := ClientOptions("/etc/creds.json"); len(opts) != 1 {
		t.Fatalf("expected file option")
	}
}
