package storage

import (
	"context"
	"fmt"

	"tasktrack/internal/config"
)

// Open creates the backend selected by cfg.
func Open(ctx context.Context, cfg config.StorageConfig, dataPath string) (Backend, error) {
	switch cfg.Backend {
	case config.BackendFile, "":
		return NewFileBackend(dataPath, cfg.QuotaBytes)
	case config.BackendMemory:
		return NewMemoryBackend(cfg.QuotaBytes), nil
	case config.BackendMySQL:
		b, err := OpenMySQL(ctx, cfg.DSN, cfg.QuotaBytes)
		if err != nil {
			return nil, fmt.Errorf("failed to open mysql storage: %w", err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}
