// Package app wires configuration, logging, persistence, seeding and the
// core store into one runnable unit.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	hackos "github.com/hack-pad/hackpadfs/os"

	"github.com/kittclouds/goprep/internal/config"
	"github.com/kittclouds/goprep/internal/persist"
	"github.com/kittclouds/goprep/internal/seed"
	"github.com/kittclouds/goprep/internal/store"
)

// App owns one store instance and its persistence backend.
type App struct {
	Store *store.Store

	cfg       *config.Config
	logger    *slog.Logger
	persister persist.Persister
	loader    *seed.Loader
}

// New builds the application: it opens the configured persister, loads the
// previous state if one passes the validity check, and seeds otherwise.
// Corrupt persisted data is discarded, never fatal.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	persister, err := openPersister(cfg.Storage, logger)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:       cfg,
		logger:    logger,
		persister: persister,
		loader:    seed.NewLoader(cfg.Seed.URL, cfg.Seed.Timeout, logger),
	}

	st, err := a.loadInitialState(ctx)
	if err != nil {
		persister.Close()
		return nil, err
	}
	a.Store = store.NewWithCapacity(st, cfg.History.Capacity)
	return a, nil
}

func openPersister(cfg config.StorageConfig, logger *slog.Logger) (persist.Persister, error) {
	switch cfg.Backend {
	case "sqlite":
		p, err := persist.NewSQLitePersisterWithDSN(cfg.Path)
		var cerr *store.CorruptError
		if errors.As(err, &cerr) && cfg.Path != ":memory:" {
			// Unreadable database file: move it aside and start fresh, so
			// load falls through to the seed path.
			logger.Warn("persisted database unreadable, moving aside", "path", cfg.Path, "error", err)
			if rerr := os.Rename(cfg.Path, cfg.Path+".corrupt"); rerr != nil {
				return nil, err
			}
			return persist.NewSQLitePersisterWithDSN(cfg.Path)
		}
		return p, err
	case "file":
		abs, err := filepath.Abs(cfg.Path)
		if err != nil {
			return nil, err
		}
		fsys := hackos.NewFS()
		path, err := fsys.FromOSPath(abs)
		if err != nil {
			return nil, err
		}
		return persist.NewFilePersister(fsys, path), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// loadInitialState prefers the persisted state; anything that fails the
// validity check falls through to the seed path.
func (a *App) loadInitialState(ctx context.Context) (store.State, error) {
	ps, err := a.persister.Load()
	if err != nil {
		a.logger.Warn("failed to load persisted state, reseeding", "error", err)
		return a.seedState(ctx), nil
	}
	if ps == nil {
		a.logger.Info("no persisted state, seeding")
		return a.seedState(ctx), nil
	}
	st, err := store.StateFromPersisted(ps)
	if err != nil {
		a.logger.Warn("persisted state rejected, reseeding", "error", err)
		return a.seedState(ctx), nil
	}
	a.logger.Debug("loaded persisted state", "topics", len(ps.TopicOrder))
	return st, nil
}

func (a *App) seedState(ctx context.Context) store.State {
	// Startup issues exactly one fetch on a fresh loader, so this one can
	// never be superseded; the flag matters only for later Reseed calls.
	st, _ := a.loader.Fetch(ctx)
	return st
}

// Save persists the durable subset of the current state.
func (a *App) Save() error {
	if err := a.persister.Save(a.Store.Persisted()); err != nil {
		a.logger.Error("failed to persist state", "error", err)
		return err
	}
	return nil
}

// Reseed replaces the whole graph with a freshly fetched sheet. The
// replacement is a normal recorded mutation, so it can be undone. A
// superseded fetch is dropped without touching the store.
func (a *App) Reseed(ctx context.Context) bool {
	st, ok := a.loader.Fetch(ctx)
	if !ok {
		a.logger.Debug("seed fetch superseded, result dropped")
		return false
	}
	a.Store.ReplaceAll(st)
	return true
}

// Close saves and releases the persistence backend.
func (a *App) Close() error {
	saveErr := a.Save()
	closeErr := a.persister.Close()
	if saveErr != nil {
		return saveErr
	}
	return closeErr
}
