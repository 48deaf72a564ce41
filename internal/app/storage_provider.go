package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/feedback-backend/internal/data/db"
	"github.com/yungbote/feedback-backend/internal/platform/gcp"
	"github.com/yungbote/feedback-backend/internal/platform/logger"
	"github.com/yungbote/feedback-backend/internal/store"
	"github.com/yungbote/feedback-backend/internal/store/bucket"
	"github.com/yungbote/feedback-backend/internal/store/csvfile"
	"github.com/yungbote/feedback-backend/internal/store/sheets"
	"github.com/yungbote/feedback-backend/internal/store/sqlstore"
)

var (
	newStorageClient = gcp.NewStorageClient
	newSheetsStore   = sheets.New
)

type StorageBootstrapErrorCode string

const (
	StorageBootstrapErrorUnknownBackend      StorageBootstrapErrorCode = "unknown_backend"
	StorageBootstrapErrorMissingCredentials  StorageBootstrapErrorCode = "missing_credentials"
	StorageBootstrapErrorInvalidConfig       StorageBootstrapErrorCode = "invalid_config"
	StorageBootstrapErrorInvalidMode         StorageBootstrapErrorCode = "invalid_mode"
	StorageBootstrapErrorMissingEmulatorHost StorageBootstrapErrorCode = "missing_emulator_host"
	StorageBootstrapErrorInvalidEmulatorHost StorageBootstrapErrorCode = "invalid_emulator_host"
	StorageBootstrapErrorConnectFailed       StorageBootstrapErrorCode = "connect_failed"
	StorageBootstrapErrorInitializeFailed    StorageBootstrapErrorCode = "initialize_failed"
)

type StorageBootstrapError struct {
	Code    StorageBootstrapErrorCode
	Backend string
	Cause   error
}

func (e *StorageBootstrapError) Error() string {
	if e == nil {
		return "storage bootstrap failed"
	}
	return fmt.Sprintf("storage bootstrap failed (code=%s backend=%q): %v", e.Code, e.Backend, e.Cause)
}

func (e *StorageBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// storageProvider is the selected backend plus whatever must be released
// with it.
type storageProvider struct {
	Backend store.Backend
	closers []func() error
}

func (p *storageProvider) Close() {
	if p == nil {
		return
	}
	for i := len(p.closers) - 1; i >= 0; i-- {
		_ = p.closers[i]()
	}
	p.closers = nil
}

// resolveStorage builds the configured backend and runs its Initialize.
// Config and credential failures abort startup. An Initialize failure only
// logs: the backend is returned and its reads and writes degrade per call.
func resolveStorage(ctx context.Context, log *logger.Logger, cfg StorageConfig) (*storageProvider, error) {
	log.Info("Selecting storage backend", "backend", cfg.Backend)

	p, err := buildStorage(ctx, log, cfg)
	if err != nil {
		classified := classifyStorageBootstrapError(cfg.Backend, err)
		log.Error("Storage backend bootstrap failed",
			"backend", cfg.Backend,
			"error_code", storageBootstrapErrorCode(classified),
			"error", classified,
		)
		return nil, classified
	}
	if err := p.Backend.Initialize(ctx); err != nil {
		log.Error("Storage backend initialize failed, continuing",
			"backend", cfg.Backend,
			"error_code", StorageBootstrapErrorInitializeFailed,
			"error", err,
		)
		return p, nil
	}
	log.Info("Storage backend ready", "backend", p.Backend.Name())
	return p, nil
}

func buildStorage(ctx context.Context, log *logger.Logger, cfg StorageConfig) (*storageProvider, error) {
	switch cfg.Backend {
	case BackendCSV:
		s, err := csvfile.New(log, cfg.CSVPath)
		if err != nil {
			return nil, &StorageBootstrapError{Code: StorageBootstrapErrorInvalidConfig, Backend: cfg.Backend, Cause: err}
		}
		return &storageProvider{Backend: s}, nil

	case BackendSheets:
		opts, err := gcp.RequiredClientOptions(gcp.CredentialsFromEnv())
		if err != nil {
			return nil, err
		}
		s, err := newSheetsStore(ctx, log, sheets.Config{
			SpreadsheetID:    cfg.SpreadsheetID,
			SpreadsheetTitle: cfg.SpreadsheetTitle,
			Worksheet:        cfg.Worksheet,
		}, opts...)
		if err != nil {
			return nil, err
		}
		return &storageProvider{Backend: s}, nil

	case BackendBucket:
		if cfg.BucketName == "" {
			return nil, &StorageBootstrapError{
				Code:    StorageBootstrapErrorInvalidConfig,
				Backend: cfg.Backend,
				Cause:   errors.New("BUCKET_NAME is required"),
			}
		}
		storageCfg, err := gcp.ResolveObjectStorageConfig(cfg.ObjectStorageMode, cfg.StorageEmulatorHost)
		if err != nil {
			return nil, err
		}
		log.Info("Selecting object storage mode",
			"mode", storageCfg.Mode,
			"mode_source", storageCfg.ModeSource(),
			"emulator_host", storageCfg.EmulatorHost,
		)
		client, err := newStorageClient(ctx, storageCfg, gcp.CredentialsFromEnv())
		if err != nil {
			return nil, err
		}
		s, err := bucket.New(log, client, bucket.Config{Bucket: cfg.BucketName, Object: cfg.BucketObject})
		if err != nil {
			_ = client.Close()
			return nil, &StorageBootstrapError{Code: StorageBootstrapErrorInvalidConfig, Backend: cfg.Backend, Cause: err}
		}
		return &storageProvider{Backend: s, closers: []func() error{client.Close}}, nil

	case BackendSQL:
		svc, err := db.Open(log, db.Config{Driver: cfg.SQLDriver, DSN: cfg.SQLDSN})
		if err != nil {
			return nil, err
		}
		s, err := sqlstore.New(log, svc.DB())
		if err != nil {
			_ = svc.Close()
			return nil, &StorageBootstrapError{Code: StorageBootstrapErrorInvalidConfig, Backend: cfg.Backend, Cause: err}
		}
		return &storageProvider{Backend: s, closers: []func() error{svc.Close}}, nil

	default:
		return nil, &StorageBootstrapError{
			Code:    StorageBootstrapErrorUnknownBackend,
			Backend: cfg.Backend,
			Cause:   fmt.Errorf("unsupported storage backend %q (want csv, sheets, bucket or sql)", cfg.Backend),
		}
	}
}

func classifyStorageBootstrapError(backend string, err error) error {
	var bootstrapErr *StorageBootstrapError
	if errors.As(err, &bootstrapErr) {
		return bootstrapErr
	}
	if errors.Is(err, gcp.ErrMissingCredentials) {
		return &StorageBootstrapError{Code: StorageBootstrapErrorMissingCredentials, Backend: backend, Cause: err}
	}
	var cfgErr *gcp.ObjectStorageConfigError
	if errors.As(err, &cfgErr) {
		code := StorageBootstrapErrorInvalidConfig
		switch cfgErr.Code {
		case gcp.ObjectStorageConfigErrorInvalidMode:
			code = StorageBootstrapErrorInvalidMode
		case gcp.ObjectStorageConfigErrorMissingEmulatorHost:
			code = StorageBootstrapErrorMissingEmulatorHost
		case gcp.ObjectStorageConfigErrorInvalidEmulatorHost:
			code = StorageBootstrapErrorInvalidEmulatorHost
		}
		return &StorageBootstrapError{Code: code, Backend: backend, Cause: err}
	}
	return &StorageBootstrapError{Code: StorageBootstrapErrorConnectFailed, Backend: backend, Cause: err}
}

func storageBootstrapErrorCode(err error) StorageBootstrapErrorCode {
	var bootstrapErr *StorageBootstrapError
	if errors.As(err, &bootstrapErr) && bootstrapErr.Code != "" {
		return bootstrapErr.Code
	}
	return StorageBootstrapErrorConnectFailed
}
