package target

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pcrm/legacy-migrate/internal/config"
	"github.com/pcrm/legacy-migrate/internal/logging"
)

// Pool manages the destination PostgreSQL connection pool. It is shared
// by the status store, the batch executor and the orchestrator.
type Pool struct {
	pool   *pgxpool.Pool
	config *config.TargetConfig
}

// NewPool creates the destination pool and verifies connectivity with a
// few backoff attempts, so a briefly unavailable database does not fail
// service startup.
func NewPool(ctx context.Context, cfg *config.TargetConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing dsn: %w", err)
	}

	poolCfg.MaxConns = int32(cfg.MaxConnections)
	if cfg.MaxConnections >= 4 {
		poolCfg.MinConns = int32(cfg.MaxConnections / 4)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}

	err = retry.Do(
		func() error { return pool.Ping(ctx) },
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.OnRetry(func(n uint, err error) {
			logging.Warn("destination ping failed (attempt %d): %v", n+1, err)
		}),
	)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging destination database: %w", err)
	}

	return &Pool{pool: pool, config: cfg}, nil
}

// Close closes all connections in the pool.
func (p *Pool) Close() {
	p.pool.Close()
}

// Pool returns the underlying pgxpool.
func (p *Pool) Pool() *pgxpool.Pool {
	return p.pool
}

// Exec runs one statement (or a ";"-joined batch) as a single unit.
func (p *Pool) Exec(ctx context.Context, sql string) error {
	_, err := p.pool.Exec(ctx, sql)
	return err
}

// TableExists checks for a base table by name in the destination schema.
// The existence check is authoritative: creation is skipped, never
// re-attempted, when a shadow table is found.
func (p *Pool) TableExists(ctx context.Context, table string) (bool, error) {
	var exists bool
	err := p.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = $1 AND table_name = $2
		)
	`, p.config.Schema, table).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking table %s: %w", table, err)
	}
	return exists, nil
}

// RowCount returns the destination row count for a table.
func (p *Pool) RowCount(ctx context.Context, table string) (int64, error) {
	var count int64
	q := fmt.Sprintf("SELECT COUNT(*) FROM %s", p.qualify(table))
	if err := p.pool.QueryRow(ctx, q).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting rows in %s: %w", table, err)
	}
	return count, nil
}

func (p *Pool) qualify(table string) string {
	return quoteIdent(p.config.Schema) + "." + quoteIdent(table)
}
