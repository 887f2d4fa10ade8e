package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xavierca1/assistant-dashboard/internal/entity"
)

// SQLiteSnapshotRepository is the single-instance snapshot store: a local
// file that survives restarts.
type SQLiteSnapshotRepository struct {
	DB   *sql.DB
	Slot string
}

func NewSQLiteSnapshotRepository(db *sql.DB) *SQLiteSnapshotRepository {
	return &SQLiteSnapshotRepository{DB: db, Slot: LeadsSlot}
}

func (r *SQLiteSnapshotRepository) Migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS lead_snapshots (
			slot     TEXT PRIMARY KEY,
			payload  TEXT NOT NULL,
			saved_at TEXT NOT NULL
		)
	`
	if _, err := r.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("migrate lead_snapshots: %w", err)
	}
	return nil
}

func (r *SQLiteSnapshotRepository) Load(ctx context.Context) ([]entity.Lead, bool, error) {
	var payload string
	err := r.DB.QueryRowContext(ctx,
		`SELECT payload FROM lead_snapshots WHERE slot = ?`, r.Slot,
	).Scan(&payload)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load lead snapshot: %w", err)
	}

	leads, err := decodeLeads([]byte(payload))
	if err != nil {
		return nil, false, err
	}
	return leads, true, nil
}

func (r *SQLiteSnapshotRepository) Save(ctx context.Context, leads []entity.Lead) error {
	payload, err := encodeLeads(leads)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO lead_snapshots (slot, payload, saved_at)
		VALUES (?, ?, ?)
		ON CONFLICT (slot)
		DO UPDATE SET
			payload = excluded.payload,
			saved_at = excluded.saved_at
	`
	savedAt := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := r.DB.ExecContext(ctx, query, r.Slot, string(payload), savedAt); err != nil {
		return fmt.Errorf("save lead snapshot: %w", err)
	}
	return nil
}

// SavedAt reports when the slot was last written.
func (r *SQLiteSnapshotRepository) SavedAt(ctx context.Context) (time.Time, error) {
	var raw string
	err := r.DB.QueryRowContext(ctx,
		`SELECT saved_at FROM lead_snapshots WHERE slot = ?`, r.Slot,
	).Scan(&raw)
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339Nano, raw)
}
