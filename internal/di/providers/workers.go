package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/recipespark/content-core/internal/config"
	"github.com/recipespark/content-core/internal/logger"
	"github.com/recipespark/content-core/internal/metrics"
	"github.com/recipespark/content-core/internal/snapshot"
	"github.com/recipespark/content-core/internal/sse"
	"github.com/recipespark/content-core/internal/watcher"
)

// EventManagerHandle wraps the SSE manager with shutdown capability.
type EventManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *EventManagerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Manager.Shutdown(ctx)
	h.cancel()
	return err
}

// ProvideEventManager provides the SSE manager and starts its broadcast loop.
func ProvideEventManager(i do.Injector) (*EventManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(logger.Component(log.Logger, "sse"))

	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	return &EventManagerHandle{Manager: manager, cancel: cancel}, nil
}

// SnapshotWatcherHandle wraps the snapshot watcher with shutdown capability.
// Watcher is nil when watching is disabled.
type SnapshotWatcherHandle struct {
	*watcher.Watcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SnapshotWatcherHandle) Shutdown() error {
	if h.Watcher == nil {
		return nil
	}
	h.cancel()
	return h.Stop()
}

// ProvideSnapshotWatcher reloads the snapshot, rebuilds the search index and
// notifies event clients when the import files change.
func ProvideSnapshotWatcher(i do.Injector) (*SnapshotWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	holder := do.MustInvoke[*snapshot.Holder](i)
	index := do.MustInvoke[*SearchIndexHandle](i)
	events := do.MustInvoke[*EventManagerHandle](i)

	if !cfg.Server.WatchSnapshot {
		log.Info("Snapshot watching disabled by configuration")
		return &SnapshotWatcherHandle{}, nil
	}

	paths := snapshot.ImportPaths(cfg.Paths.Root)
	snapLog := logger.Component(log.Logger, "snapshot")

	reload := func(ctx context.Context) error {
		st, err := holder.Reload(paths, snapLog)
		m.ObserveReload(err)
		if err != nil {
			events.Emit(sse.NewReloadFailedEvent(err))
			return err
		}

		recipes := st.Recipes()
		if err := index.Rebuild(recipes.Data); err != nil {
			return err
		}

		_, hasWebsite := st.WebsiteConfig()
		events.Emit(sse.NewSnapshotReloadedEvent(sse.SnapshotReloadedData{
			Recipes:    len(recipes.Data),
			MenuItems:  len(st.MenuFlat().Data),
			HasWebsite: hasWebsite,
		}))
		log.Info("Snapshot reloaded", "recipes", len(recipes.Data))
		return nil
	}

	w, err := watcher.New(paths.All(), reload, watcher.Options{}, logger.Component(log.Logger, "watcher"))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := w.Start(ctx); err != nil && ctx.Err() == nil {
			log.Error("Snapshot watcher stopped", "error", err)
		}
	}()

	log.Info("Snapshot watcher started", "files", len(paths.All()))

	return &SnapshotWatcherHandle{Watcher: w, cancel: cancel}, nil
}
