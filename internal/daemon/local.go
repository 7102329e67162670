package daemon

import (
	"fmt"
	"log/slog"

	"aio/internal/adapters/filesystem"
	"aio/internal/adapters/sqlite"
	"aio/internal/adapters/watcher"
)

// NewLocalDispatcher builds an in-process dispatcher over direct vault
// access, for the CLI and MCP server when no daemon is running. With
// watch set the cache follows filesystem changes, which long-lived
// callers want; short-lived callers skip it and rely on the initial
// refresh. The returned cleanup releases the index and watcher.
func NewLocalDispatcher(vaultPath string, watch bool, logger *slog.Logger) (*Dispatcher, func() error, error) {
	if logger == nil {
		logger = slog.Default()
	}

	vault := filesystem.NewVault(vaultPath)
	if err := vault.EnsureInitialized(); err != nil {
		return nil, nil, err
	}

	ids := sqlite.NewIndex(vaultPath)
	if err := ids.Open(); err != nil {
		return nil, nil, fmt.Errorf("open ID index: %w", err)
	}
	if stale, _ := ids.Stale(); stale {
		if err := ids.Rebuild(); err != nil {
			ids.Close()
			return nil, nil, fmt.Errorf("rebuild ID index: %w", err)
		}
	}

	tasks := filesystem.NewTaskRepo(vault, ids)
	notifier := watcher.New(vaultPath, logger)
	cache := NewVaultCache(tasks, notifier, logger)

	if err := cache.Refresh(); err != nil {
		ids.Close()
		return nil, nil, err
	}
	if watch {
		if err := cache.Watch(); err != nil {
			ids.Close()
			return nil, nil, err
		}
	}

	dispatcher := NewDispatcher(&HandlerContext{
		Cache:    cache,
		Tasks:    tasks,
		Projects: filesystem.NewProjectRepo(vault, ids),
		People:   filesystem.NewPersonRepo(vault, ids),
		Packs:    filesystem.NewContextPackRepo(vault),
		Files:    filesystem.NewFileStore(vault, tasks),
		Logger:   logger,
	})

	cleanup := func() error {
		var first error
		if watch {
			first = cache.StopWatch()
		}
		if err := ids.Close(); err != nil && first == nil {
			first = err
		}
		return first
	}
	return dispatcher, cleanup, nil
}
