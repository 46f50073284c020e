// Package checkpoint keeps a local SQLite log of runs (migrations,
// syncs, imports): an audit trail and crash marker that complements the
// destination-side migration_status table.
package checkpoint

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Run kinds.
const (
	KindMigrate = "migrate"
	KindSync    = "sync"
	KindImport  = "import"
)

// State manages run history in SQLite.
type State struct {
	db *sql.DB
}

// Run represents one invocation.
type Run struct {
	ID          string
	Kind        string
	StartedAt   time.Time
	CompletedAt *time.Time
	Status      string
	Detail      string
}

// New opens (creating if needed) the state database under dataDir.
func New(dataDir string) (*State, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "legacy-migrate.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("opening state database: %w", err)
	}

	s := &State{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating state schema: %w", err)
	}
	return s, nil
}

func (s *State) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		started_at TEXT NOT NULL,
		completed_at TEXT,
		status TEXT NOT NULL DEFAULT 'running',
		detail TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *State) Close() error {
	return s.db.Close()
}

// CreateRun records the start of a run.
func (s *State) CreateRun(id, kind, detail string) error {
	_, err := s.db.Exec(`
		INSERT INTO runs (id, kind, started_at, status, detail)
		VALUES (?, ?, datetime('now'), 'running', ?)
	`, id, kind, detail)
	return err
}

// CompleteRun marks a run finished with the given status and detail.
func (s *State) CompleteRun(id, runStatus, detail string) error {
	_, err := s.db.Exec(`
		UPDATE runs SET status = ?, completed_at = datetime('now'), detail = ?
		WHERE id = ?
	`, runStatus, detail, id)
	return err
}

// LastIncompleteRun returns the most recent run still marked running,
// or nil. A non-nil result after a restart means the previous process
// died mid-run.
func (s *State) LastIncompleteRun() (*Run, error) {
	var (
		r         Run
		startedAt string
	)
	err := s.db.QueryRow(`
		SELECT id, kind, started_at, status, COALESCE(detail, '')
		FROM runs WHERE status = 'running'
		ORDER BY started_at DESC LIMIT 1
	`).Scan(&r.ID, &r.Kind, &startedAt, &r.Status, &r.Detail)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.StartedAt, _ = time.Parse("2006-01-02 15:04:05", startedAt)
	return &r, nil
}

// AllRuns returns run history, newest first.
func (s *State) AllRuns() ([]Run, error) {
	rows, err := s.db.Query(`
		SELECT id, kind, started_at, completed_at, status, COALESCE(detail, '')
		FROM runs ORDER BY started_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r           Run
			startedAt   string
			completedAt sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Kind, &startedAt, &completedAt, &r.Status, &r.Detail); err != nil {
			return nil, err
		}
		r.StartedAt, _ = time.Parse("2006-01-02 15:04:05", startedAt)
		if completedAt.Valid {
			t, _ := time.Parse("2006-01-02 15:04:05", completedAt.String)
			r.CompletedAt = &t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
