package gcp

import (
	"fmt"
	"net/url"
	"strings"
)

type StorageMode string

const (
	StorageModeGCS         StorageMode = "gcs"
	StorageModeGCSEmulator StorageMode = "gcs_emulator"
)

// StoreConfig selects the bucket backing the GCS content store.
type StoreConfig struct {
	Mode         StorageMode
	EmulatorHost string
	Bucket       string
	Prefix       string
	// Credentials is a path to a service-account file or the inline JSON.
	Credentials string
}

func (cfg StoreConfig) IsEmulator() bool {
	return cfg.Mode == StorageModeGCSEmulator
}

type StoreConfigErrorCode string

const (
	StoreConfigErrorInvalidMode         StoreConfigErrorCode = "invalid_mode"
	StoreConfigErrorMissingBucket       StoreConfigErrorCode = "missing_bucket"
	StoreConfigErrorMissingEmulatorHost StoreConfigErrorCode = "missing_emulator_host"
	StoreConfigErrorInvalidEmulatorHost StoreConfigErrorCode = "invalid_emulator_host"
)

type StoreConfigError struct {
	Code         StoreConfigErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *StoreConfigError) Error() string {
	if e == nil {
		return "invalid content store config"
	}
	switch e.Code {
	case StoreConfigErrorInvalidMode:
		return fmt.Sprintf("invalid OBJECT_STORAGE_MODE=%q (allowed: %q, %q)", e.Mode, StorageModeGCS, StorageModeGCSEmulator)
	case StoreConfigErrorMissingBucket:
		return "CONTENT_STORE=gcs requires CERTIFICATE_GCS_BUCKET_NAME to be set"
	case StoreConfigErrorMissingEmulatorHost:
		return fmt.Sprintf("OBJECT_STORAGE_MODE=%q requires STORAGE_EMULATOR_HOST to be set", StorageModeGCSEmulator)
	case StoreConfigErrorInvalidEmulatorHost:
		return fmt.Sprintf("invalid STORAGE_EMULATOR_HOST=%q; expected absolute URL like http://fake-gcs:4443", e.EmulatorHost)
	default:
		return "invalid content store config"
	}
}

func (e *StoreConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Normalize fills the mode from the emulator host when it was left empty
// and validates the result.
func (cfg StoreConfig) Normalize() (StoreConfig, error) {
	cfg.EmulatorHost = strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/")
	cfg.Bucket = strings.TrimSpace(cfg.Bucket)
	cfg.Prefix = strings.Trim(strings.TrimSpace(cfg.Prefix), "/")
	raw := string(cfg.Mode)
	switch StorageMode(strings.ToLower(strings.TrimSpace(raw))) {
	case "":
		if cfg.EmulatorHost != "" {
			cfg.Mode = StorageModeGCSEmulator
		} else {
			cfg.Mode = StorageModeGCS
		}
	case StorageModeGCS:
		cfg.Mode = StorageModeGCS
	case StorageModeGCSEmulator:
		cfg.Mode = StorageModeGCSEmulator
	default:
		return cfg, &StoreConfigError{Code: StoreConfigErrorInvalidMode, Mode: raw}
	}
	if cfg.Bucket == "" {
		return cfg, &StoreConfigError{Code: StoreConfigErrorMissingBucket, Mode: string(cfg.Mode)}
	}
	if !cfg.IsEmulator() {
		return cfg, nil
	}
	if cfg.EmulatorHost == "" {
		return cfg, &StoreConfigError{Code: StoreConfigErrorMissingEmulatorHost, Mode: string(cfg.Mode)}
	}
	u, err := url.Parse(cfg.EmulatorHost)
	if err != nil || strings.TrimSpace(u.Scheme) == "" || strings.TrimSpace(u.Host) == "" {
		return cfg, &StoreConfigError{
			Code:         StoreConfigErrorInvalidEmulatorHost,
			Mode:         string(cfg.Mode),
			EmulatorHost: cfg.EmulatorHost,
			Cause:        err,
		}
	}
	return cfg, nil
}
