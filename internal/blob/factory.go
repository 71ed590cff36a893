package blob

import (
	"fmt"
	"strings"

	appcfg "github.com/fdg312/health-navigator/internal/config"
)

type Logger interface {
	Printf(format string, v ...any)
}

// NewBlobStore выбирает хранилище по BLOB_MODE (local|s3|auto).
// Возвращает nil-Store для локального режима. В auto неполная
// S3-конфигурация — не ошибка, а откат на local с диагностикой в лог.
func NewBlobStore(cfg appcfg.BlobConfig, logger Logger) (Store, string, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = appcfg.BlobModeLocal
	}

	switch mode {
	case appcfg.BlobModeLocal:
		logf(logger, "INFO blob: mode=local (forced)")
		return nil, appcfg.BlobModeLocal, nil
	case appcfg.BlobModeAuto:
		return newAutoStore(cfg, logger)
	case appcfg.BlobModeS3:
		return newForcedS3Store(cfg, logger)
	default:
		return nil, "", fmt.Errorf("unsupported blob mode: %s", mode)
	}
}

func newAutoStore(cfg appcfg.BlobConfig, logger Logger) (Store, string, error) {
	if !cfg.S3.IsConfigured() {
		level, code, msg := cfg.S3.Diagnostics()
		logf(logger, "%s blob.s3: code=%s %s", level, code, msg)
		logf(logger, "INFO blob.s3: %s", cfg.S3.DiagnosticsSummary())
		logf(logger, "INFO blob: mode=local (auto, S3 not configured)")
		return nil, appcfg.BlobModeLocal, nil
	}

	logf(logger, "INFO blob.s3: code=s3_ready %s", cfg.S3.DiagnosticsSummary())
	store, err := newS3FromConfig(cfg.S3)
	if err != nil {
		logf(logger, "WARN blob.s3: init_failed=%q, fallback=local", err.Error())
		return nil, appcfg.BlobModeLocal, nil
	}

	logf(logger, "INFO blob: mode=s3 (auto, configured)")
	return store, appcfg.BlobModeS3, nil
}

func newForcedS3Store(cfg appcfg.BlobConfig, logger Logger) (Store, string, error) {
	if !cfg.S3.IsConfigured() {
		missing := cfg.S3.MissingRequired()
		logf(logger, "FATAL blob.s3: code=s3_partial_config missing=%v", missing)
		logf(logger, "FATAL blob.s3: %s", cfg.S3.DiagnosticsSummary())
		return nil, "", fmt.Errorf("BLOB_MODE=s3 requested but missing required config: %s", strings.Join(missing, ", "))
	}

	logf(logger, "INFO blob.s3: code=s3_ready %s", cfg.S3.DiagnosticsSummary())
	store, err := newS3FromConfig(cfg.S3)
	if err != nil {
		logf(logger, "FATAL blob.s3: init_failed=%v", err)
		return nil, "", fmt.Errorf("BLOB_MODE=s3 init failed: %w", err)
	}

	logf(logger, "INFO blob: mode=s3 (forced)")
	return store, appcfg.BlobModeS3, nil
}

func newS3FromConfig(s3cfg appcfg.S3Config) (*S3Store, error) {
	return NewS3Store(s3cfg.Endpoint, s3cfg.Region, s3cfg.Bucket, s3cfg.AccessKeyID, s3cfg.SecretAccessKey)
}

func logf(logger Logger, format string, v ...any) {
	if logger == nil {
		return
	}
	logger.Printf(format, v...)
}
