package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yungbote/certchain-backend/internal/modules/certification"
	"github.com/yungbote/certchain-backend/internal/platform/gcp"
	"github.com/yungbote/certchain-backend/internal/platform/logger"
	"github.com/yungbote/certchain-backend/internal/platform/pinata"
)

type pinataClient interface {
	certification.ContentStore
	Authenticate(ctx context.Context) error
}

var (
	newPinataClient = func(cfg pinata.Config, log *logger.Logger) (pinataClient, error) {
		return pinata.New(cfg, log)
	}
	newGCSContentStore = func(ctx context.Context, cfg gcp.StoreConfig, log *logger.Logger) (*gcp.ContentStore, error) {
		return gcp.NewContentStore(ctx, cfg, log)
	}
)

type ContentStoreBootstrapErrorCode string

const (
	ContentStoreBootstrapErrorInvalidProvider     ContentStoreBootstrapErrorCode = "invalid_provider"
	ContentStoreBootstrapErrorMissingCredentials  ContentStoreBootstrapErrorCode = "missing_credentials"
	ContentStoreBootstrapErrorAuthFailed          ContentStoreBootstrapErrorCode = "auth_failed"
	ContentStoreBootstrapErrorInvalidMode         ContentStoreBootstrapErrorCode = "invalid_mode"
	ContentStoreBootstrapErrorMissingBucket       ContentStoreBootstrapErrorCode = "missing_bucket"
	ContentStoreBootstrapErrorMissingEmulatorHost ContentStoreBootstrapErrorCode = "missing_emulator_host"
	ContentStoreBootstrapErrorInvalidEmulatorHost ContentStoreBootstrapErrorCode = "invalid_emulator_host"
	ContentStoreBootstrapErrorConnectFailed       ContentStoreBootstrapErrorCode = "connect_failed"
)

type ContentStoreBootstrapError struct {
	Code     ContentStoreBootstrapErrorCode
	Provider string
	Cause    error
}

func (e *ContentStoreBootstrapError) Error() string {
	if e == nil {
		return "content store bootstrap failed"
	}
	return fmt.Sprintf("content store bootstrap failed (code=%s provider=%q): %v", e.Code, e.Provider, e.Cause)
}

func (e *ContentStoreBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// resolveContentStore builds the configured store. Credential problems are
// fatal here so they never surface as per-request failures.
func resolveContentStore(ctx context.Context, log *logger.Logger, cfg Config) (certification.ContentStore, func() error, error) {
	noop := func() error { return nil }
	switch cfg.ContentStore {
	case ContentStorePinata, "":
		log.Info("Selecting content store", "provider", ContentStorePinata, "base_url", cfg.PinataAPIURL)
		client, err := newPinataClient(pinata.Config{
			BaseURL:   cfg.PinataAPIURL,
			APIKey:    cfg.PinataAPIKey,
			APISecret: cfg.PinataAPISecret,
			JWT:       cfg.PinataJWT,
			Timeout:   cfg.StoreTimeout,
		}, log)
		if err != nil {
			return nil, noop, bootstrapFailed(log, ContentStorePinata, ContentStoreBootstrapErrorMissingCredentials, err)
		}
		actx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		if err := client.Authenticate(actx); err != nil {
			return nil, noop, bootstrapFailed(log, ContentStorePinata, ContentStoreBootstrapErrorAuthFailed, err)
		}
		return client, noop, nil

	case ContentStoreGCS:
		storeCfg := gcp.StoreConfig{
			Mode:         gcp.StorageMode(cfg.ObjectStorageMode),
			EmulatorHost: cfg.StorageEmulatorHost,
			Bucket:       cfg.GCSBucket,
			Prefix:       cfg.GCSPrefix,
			Credentials:  cfg.GCSCredentials,
		}
		log.Info("Selecting content store", "provider", ContentStoreGCS, "mode", storeCfg.Mode, "bucket", storeCfg.Bucket, "emulator_host", storeCfg.EmulatorHost)
		store, err := newGCSContentStore(ctx, storeCfg, log)
		if err != nil {
			return nil, noop, bootstrapFailed(log, ContentStoreGCS, classifyStoreConfigError(err), err)
		}
		return store, store.Close, nil

	default:
		return nil, noop, bootstrapFailed(log, cfg.ContentStore, ContentStoreBootstrapErrorInvalidProvider,
			fmt.Errorf("unsupported CONTENT_STORE %q (allowed: %q, %q)", cfg.ContentStore, ContentStorePinata, ContentStoreGCS))
	}
}

func classifyStoreConfigError(err error) ContentStoreBootstrapErrorCode {
	var cfgErr *gcp.StoreConfigError
	if errors.As(err, &cfgErr) {
		switch cfgErr.Code {
		case gcp.StoreConfigErrorInvalidMode:
			return ContentStoreBootstrapErrorInvalidMode
		case gcp.StoreConfigErrorMissingBucket:
			return ContentStoreBootstrapErrorMissingBucket
		case gcp.StoreConfigErrorMissingEmulatorHost:
			return ContentStoreBootstrapErrorMissingEmulatorHost
		case gcp.StoreConfigErrorInvalidEmulatorHost:
			return ContentStoreBootstrapErrorInvalidEmulatorHost
		}
	}
	return ContentStoreBootstrapErrorConnectFailed
}

func bootstrapFailed(log *logger.Logger, provider string, code ContentStoreBootstrapErrorCode, cause error) error {
	err := &ContentStoreBootstrapError{Code: code, Provider: provider, Cause: cause}
	log.Error("Content store bootstrap failed", "provider", provider, "error_code", code, "error", cause)
	return err
}
