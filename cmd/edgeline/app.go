package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rpggio/edgeline/internal/config"
	"github.com/rpggio/edgeline/internal/domain/event"
	"github.com/rpggio/edgeline/internal/domain/roster"
	"github.com/rpggio/edgeline/internal/firestore"
	"github.com/rpggio/edgeline/internal/sqlite"
)

// app holds the opened storage backends.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	db     *sqlite.DB
	store  *firestore.Store

	events  event.Repository
	players roster.Repository
}

func openApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	if err := ensureDBDir(cfg.DB.Path); err != nil {
		return nil, fmt.Errorf("failed to prepare database path: %w", err)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, db: db}
	switch cfg.Store.Backend {
	case config.BackendFirestore:
		store, err := firestore.NewStore(ctx, cfg.Store.ProjectID, logger)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to open firestore: %w", err)
		}
		a.store = store
		a.events = store.Events()
		a.players = store.Players()
	default:
		a.events = sqlite.NewEventRepository(db)
		a.players = sqlite.NewPlayerRepository(db)
	}

	logger.Debug("storage ready", "backend", cfg.Store.Backend, "db_path", cfg.DB.Path)
	return a, nil
}

func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("failed to close firestore", "error", err)
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close database", "error", err)
	}
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
