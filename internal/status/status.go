// Package status persists per-table migration progress in the
// destination database, one row per table, for dashboard polling and
// resumable re-runs.
package status

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Table statuses. Lifecycle per table: pending -> running ->
// completed | failed. Rows are never deleted automatically; they stay
// as an audit trail and resume marker.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Record is one migration_status row.
type Record struct {
	TableName       string     `json:"table_name"`
	Status          string     `json:"status"`
	TotalRecords    int64      `json:"total_records"`
	MigratedRecords int64      `json:"migrated_records"`
	ErrorMessage    string     `json:"error_message,omitempty"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// Store reads and writes migration_status records.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a store over the shared destination pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema creates the migration_status table if needed.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS migration_status (
			table_name        text PRIMARY KEY,
			status            text NOT NULL DEFAULT 'pending',
			total_records     bigint NOT NULL DEFAULT 0,
			migrated_records  bigint NOT NULL DEFAULT 0,
			error_message     text,
			started_at        timestamptz,
			completed_at      timestamptz
		)
	`)
	if err != nil {
		return fmt.Errorf("creating migration_status table: %w", err)
	}
	return nil
}

// MarkPending upserts a fresh pending row for a table, clearing any
// previous error and counters.
func (s *Store) MarkPending(ctx context.Context, table string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO migration_status (table_name, status, total_records, migrated_records, error_message, started_at, completed_at)
		VALUES ($1, $2, 0, 0, NULL, NULL, NULL)
		ON CONFLICT (table_name) DO UPDATE SET
			status = $2, total_records = 0, migrated_records = 0,
			error_message = NULL, started_at = NULL, completed_at = NULL
	`, table, StatusPending)
	if err != nil {
		return fmt.Errorf("marking %s pending: %w", table, err)
	}
	return nil
}

// MarkRunning transitions a table to running with its known total.
// Persisted before any data movement, so a crash mid-migration leaves a
// durable running marker a retry pass can detect.
func (s *Store) MarkRunning(ctx context.Context, table string, totalRecords int64) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO migration_status (table_name, status, total_records, migrated_records, started_at)
		VALUES ($1, $2, $3, 0, now())
		ON CONFLICT (table_name) DO UPDATE SET
			status = $2, total_records = $3, migrated_records = 0,
			error_message = NULL, started_at = now(), completed_at = NULL
	`, table, StatusRunning, totalRecords)
	if err != nil {
		return fmt.Errorf("marking %s running: %w", table, err)
	}
	return nil
}

// AddMigrated advances migrated_records after a batch. The counter is
// monotonically non-decreasing while the table is running.
func (s *Store) AddMigrated(ctx context.Context, table string, n int64) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE migration_status
		SET migrated_records = migrated_records + $2
		WHERE table_name = $1
	`, table, n)
	if err != nil {
		return fmt.Errorf("advancing progress for %s: %w", table, err)
	}
	return nil
}

// MarkCompleted finishes a table successfully.
func (s *Store) MarkCompleted(ctx context.Context, table string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE migration_status
		SET status = $2, completed_at = now(), error_message = NULL
		WHERE table_name = $1
	`, table, StatusCompleted)
	if err != nil {
		return fmt.Errorf("marking %s completed: %w", table, err)
	}
	return nil
}

// MarkFailed records a table failure with the raw error message.
func (s *Store) MarkFailed(ctx context.Context, table, errMsg string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE migration_status
		SET status = $2, completed_at = now(), error_message = $3
		WHERE table_name = $1
	`, table, StatusFailed, errMsg)
	if err != nil {
		return fmt.Errorf("marking %s failed: %w", table, err)
	}
	return nil
}

// Get returns the record for one table, or nil when absent.
func (s *Store) Get(ctx context.Context, table string) (*Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT table_name, status, total_records, migrated_records,
		       COALESCE(error_message, ''), started_at, completed_at
		FROM migration_status WHERE table_name = $1
	`, table)
	if err != nil {
		return nil, fmt.Errorf("querying status for %s: %w", table, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	var r Record
	if err := rows.Scan(&r.TableName, &r.Status, &r.TotalRecords, &r.MigratedRecords,
		&r.ErrorMessage, &r.StartedAt, &r.CompletedAt); err != nil {
		return nil, fmt.Errorf("scanning status: %w", err)
	}
	return &r, nil
}

// List returns all records ordered by table name.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT table_name, status, total_records, migrated_records,
		       COALESCE(error_message, ''), started_at, completed_at
		FROM migration_status ORDER BY table_name
	`)
	if err != nil {
		return nil, fmt.Errorf("listing migration status: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.TableName, &r.Status, &r.TotalRecords, &r.MigratedRecords,
			&r.ErrorMessage, &r.StartedAt, &r.CompletedAt); err != nil {
			return nil, fmt.Errorf("scanning status: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
