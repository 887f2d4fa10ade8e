package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/assistant-dashboard/internal/config"
	"github.com/xavierca1/assistant-dashboard/internal/entity"
	"github.com/xavierca1/assistant-dashboard/internal/infra/backend"
	"github.com/xavierca1/assistant-dashboard/internal/infra/database"
	"github.com/xavierca1/assistant-dashboard/internal/infra/llm"
	"github.com/xavierca1/assistant-dashboard/internal/usecase"
)

// snapshotStore is what the commands need from either snapshot repository.
type snapshotStore interface {
	entity.LeadSnapshotStore
	Migrate(ctx context.Context) error
	SavedAt(ctx context.Context) (time.Time, error)
}

// openSnapshotStore connects to the configured driver and makes sure the
// table exists.
func openSnapshotStore(ctx context.Context, cfg *config.Config) (snapshotStore, *sql.DB, error) {
	var (
		db    *sql.DB
		store snapshotStore
		err   error
	)

	switch cfg.Snapshot.Driver {
	case config.SnapshotPostgres:
		db, err = database.NewDBConnection(cfg.Database.URL)
		if err != nil {
			return nil, nil, err
		}
		store = database.NewPostgresSnapshotRepository(db)
	default:
		db, err = database.NewSQLiteConnection(cfg.Snapshot.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		store = database.NewSQLiteSnapshotRepository(db)
	}

	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return store, db, nil
}

func newBackendClient(cfg *config.Config, logger *zap.Logger) *backend.Client {
	return backend.NewClient(cfg.Backend.URL, cfg.Backend.Token, cfg.Fetch.Timeout, logger)
}

// newDrafter picks the reply generator. The backend client doubles as one
// through its /ai/generate endpoint.
func newDrafter(ctx context.Context, cfg *config.Config, client *backend.Client) (usecase.Drafter, error) {
	switch cfg.Drafter.Provider {
	case config.DrafterGemini:
		drafter, err := llm.NewGeminiDrafter(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			return nil, fmt.Errorf("gemini drafter: %w", err)
		}
		return drafter, nil
	default:
		return client, nil
	}
}
