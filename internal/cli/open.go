package cli

import (
	"context"
	"io"

	"tasktrack/internal/config"
	"tasktrack/internal/service"
	"tasktrack/internal/storage"
	"tasktrack/internal/task"
)

// OpenService opens the configured storage backend and loads the task
// manager over it. A backend that cannot be opened is replaced by an
// in-memory one so the session still works; cfg.Storage.Backend is updated
// to say so. The returned function releases the backend.
func OpenService(ctx context.Context, cfg *config.Config) (*service.Manager, func() error) {
	logger := cfg.Log()

	backend, err := storage.Open(ctx, cfg.Storage, cfg.DataPath())
	if err != nil {
		logger.Warn("storage unavailable; changes will not be saved",
			"backend", cfg.Storage.Backend, "error", err)
		backend = storage.NewMemoryBackend(cfg.Storage.QuotaBytes)
		cfg.Storage.Backend = config.BackendMemory
	}

	closeFn := func() error { return nil }
	if c, ok := backend.(io.Closer); ok {
		closeFn = c.Close
	}

	adapter := storage.NewAdapter(backend, storage.WithLogger(logger))
	mgr := service.New(ctx, adapter, service.WithLogger(logger))
	mgr.Subscribe(func(tasks []task.Task) {
		logger.Debug("task list changed", "count", len(tasks))
	})
	return mgr, closeFn
}
