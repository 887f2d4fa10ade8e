package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/xavierca1/assistant-dashboard/internal/entity"
)

const pgUndefinedTable = "42P01"

// PostgresSnapshotRepository keeps the lead snapshot in a shared Postgres
// database so every dashboard instance warms from the same list.
type PostgresSnapshotRepository struct {
	DB   *sql.DB
	Slot string
}

func NewPostgresSnapshotRepository(db *sql.DB) *PostgresSnapshotRepository {
	return &PostgresSnapshotRepository{DB: db, Slot: LeadsSlot}
}

func (r *PostgresSnapshotRepository) Migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS lead_snapshots (
			slot     TEXT PRIMARY KEY,
			payload  JSONB NOT NULL,
			saved_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := r.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("migrate lead_snapshots: %w", err)
	}
	return nil
}

func (r *PostgresSnapshotRepository) Load(ctx context.Context) ([]entity.Lead, bool, error) {
	var payload []byte
	err := r.DB.QueryRowContext(ctx,
		`SELECT payload FROM lead_snapshots WHERE slot = $1`, r.Slot,
	).Scan(&payload)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("load lead snapshot: %w", err)
	}

	leads, err := decodeLeads(payload)
	if err != nil {
		return nil, false, err
	}
	return leads, true, nil
}

func (r *PostgresSnapshotRepository) Save(ctx context.Context, leads []entity.Lead) error {
	payload, err := encodeLeads(leads)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO lead_snapshots (slot, payload, saved_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (slot)
		DO UPDATE SET
			payload = EXCLUDED.payload,
			saved_at = NOW()
	`
	if _, err := r.DB.ExecContext(ctx, query, r.Slot, string(payload)); err != nil {
		return fmt.Errorf("save lead snapshot: %w", err)
	}
	return nil
}

func (r *PostgresSnapshotRepository) SavedAt(ctx context.Context) (time.Time, error) {
	var savedAt time.Time
	err := r.DB.QueryRowContext(ctx,
		`SELECT saved_at FROM lead_snapshots WHERE slot = $1`, r.Slot,
	).Scan(&savedAt)
	return savedAt, err
}
