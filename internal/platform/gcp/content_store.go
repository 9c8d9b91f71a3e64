package gcp

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/yungbote/certchain-backend/internal/domain/faults"
	"github.com/yungbote/certchain-backend/internal/platform/logger"
)

// ContentStore keeps certificate artifacts in a GCS bucket. Objects are
// named by the sha256 of their bytes, so re-pinning identical content
// returns the same URI and never rewrites the object.
type ContentStore struct {
	log    *logger.Logger
	client *storage.Client
	bucket string
	prefix string
}

func NewContentStore(ctx context.Context, cfg StoreConfig, log *logger.Logger) (*ContentStore, error) {
	cfg, err := cfg.Normalize()
	if err != nil {
		return nil, fmt.Errorf("content store config: %w", err)
	}
	client, err := newStorageClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	serviceLog := log.Named("store.gcs")
	serviceLog.Info("content store initialized", "mode", cfg.Mode, "bucket", cfg.Bucket, "prefix", cfg.Prefix)
	return &ContentStore{log: serviceLog, client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

func newStorageClient(ctx context.Context, cfg StoreConfig) (*storage.Client, error) {
	if cfg.IsEmulator() {
		_ = os.Setenv("STORAGE_EMULATOR_HOST", cfg.EmulatorHost)
		return storage.NewClient(ctx,
			option.WithoutAuthentication(),
			option.WithEndpoint(cfg.EmulatorHost+"/storage/v1/"),
		)
	}
	opts := ClientOptions(cfg.Credentials)
	opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
	return storage.NewClient(ctx, opts...)
}

func (s *ContentStore) Close() error { return s.client.Close() }

// ObjectKey returns the content-addressed key for data.
func (s *ContentStore) ObjectKey(data []byte, ext string) string {
	sum := sha256.Sum256(data)
	name := hex.EncodeToString(sum[:]) + ext
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

func (s *ContentStore) uri(key string) string {
	return "gs://" + s.bucket + "/" + key
}

func (s *ContentStore) PinBytes(ctx context.Context, data []byte, nameHint string) (string, error) {
	if len(data) == 0 {
		return "", faults.Validation(faults.OpStorePinFile, "empty payload")
	}
	ext := path.Ext(nameHint)
	if ext == "" {
		ext = ".bin"
	}
	contentType := http.DetectContentType(data)
	return s.put(ctx, faults.OpStorePinFile, s.ObjectKey(data, ext), data, contentType, nameHint)
}

func (s *ContentStore) PinJSON(ctx context.Context, doc any, nameHint string) (string, error) {
	if doc == nil {
		return "", faults.Validation(faults.OpStorePinJSON, "nil document")
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", faults.New(faults.CodeValidation, faults.OpStorePinJSON, "document is not serializable", err)
	}
	return s.put(ctx, faults.OpStorePinJSON, s.ObjectKey(data, ".json"), data, "application/json", nameHint)
}

func (s *ContentStore) put(ctx context.Context, op, key string, data []byte, contentType, nameHint string) (string, error) {
	obj := s.client.Bucket(s.bucket).Object(key).If(storage.Conditions{DoesNotExist: true})
	w := obj.NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{"name": nameHint}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", s.classify(op, key, err)
	}
	if err := w.Close(); err != nil {
		if isPreconditionFailed(err) {
			s.log.Debug("object already stored", "op", op, "key", key)
			return s.uri(key), nil
		}
		return "", s.classify(op, key, err)
	}
	s.log.Debug("stored", "op", op, "key", key, "size", len(data))
	return s.uri(key), nil
}

func (s *ContentStore) classify(op, key string, err error) error {
	s.log.Warn("store write failed", "op", op, "key", key, "error", err)
	return faults.New(faults.CodeStorageUnavailable, op, redactGoogleErr(err), err)
}

func isPreconditionFailed(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed
}

// Callers only see the HTTP status of a googleapi failure.
func redactGoogleErr(err error) string {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return fmt.Sprintf("gcs returned %d", gerr.Code)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "gcs deadline exceeded"
	}
	return "gcs unreachable"
}
