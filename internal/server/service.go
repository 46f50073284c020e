package server

import (
	"context"
	"time"

	"github.com/pcrm/legacy-migrate/internal/checkpoint"
	"github.com/pcrm/legacy-migrate/internal/config"
	"github.com/pcrm/legacy-migrate/internal/notify"
	"github.com/pcrm/legacy-migrate/internal/orchestrator"
	"github.com/pcrm/legacy-migrate/internal/source"
	"github.com/pcrm/legacy-migrate/internal/status"
	"github.com/pcrm/legacy-migrate/internal/target"
)

// Service is the migration engine surface the HTTP handlers call.
type Service interface {
	TestConnection(ctx context.Context, params source.ConnectionParams) (*orchestrator.ConnectionReport, error)
	Migrate(ctx context.Context, params source.ConnectionParams, tables []string, batchSize int) ([]orchestrator.TableResult, error)
	Sync(ctx context.Context, params source.ConnectionParams, table string, since *time.Time) (*orchestrator.SyncResult, error)
	Import(ctx context.Context, sql string, opts orchestrator.ImportOptions) (*orchestrator.ImportResult, error)
	MigrationStatus(ctx context.Context) ([]status.Record, error)
}

// migrationService is the production Service. Source connections are
// opened per request from caller-supplied parameters; the destination
// pool, status store and run history are shared across requests.
type migrationService struct {
	dst      *target.Pool
	statuses *status.Store
	state    *checkpoint.State
	notifier *notify.Notifier
	cfg      *config.Config
}

// NewService wires the production migration engine. state may be nil
// when run history is disabled.
func NewService(dst *target.Pool, statuses *status.Store, state *checkpoint.State,
	notifier *notify.Notifier, cfg *config.Config) Service {
	return &migrationService{
		dst:      dst,
		statuses: statuses,
		state:    state,
		notifier: notifier,
		cfg:      cfg,
	}
}

func (s *migrationService) TestConnection(ctx context.Context, params source.ConnectionParams) (*orchestrator.ConnectionReport, error) {
	return orchestrator.TestConnection(ctx, params, s.cfg.Migration.SourceMaxConnections)
}

func (s *migrationService) Migrate(ctx context.Context, params source.ConnectionParams, tables []string, batchSize int) ([]orchestrator.TableResult, error) {
	client, err := source.Connect(ctx, params, s.cfg.Migration.SourceMaxConnections)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	orch := orchestrator.New(client, s.dst, s.statuses, s.state, s.notifier, nil, &s.cfg.Migration)
	return orch.MigrateAll(ctx, tables, batchSize)
}

func (s *migrationService) Sync(ctx context.Context, params source.ConnectionParams, table string, since *time.Time) (*orchestrator.SyncResult, error) {
	client, err := source.Connect(ctx, params, s.cfg.Migration.SourceMaxConnections)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	orch := orchestrator.New(client, s.dst, s.statuses, s.state, s.notifier, nil, &s.cfg.Migration)
	return orch.Sync(ctx, table, since)
}

func (s *migrationService) Import(ctx context.Context, sql string, opts orchestrator.ImportOptions) (*orchestrator.ImportResult, error) {
	return orchestrator.ImportSQL(ctx, s.dst, s.state, &s.cfg.Migration, sql, opts)
}

func (s *migrationService) MigrationStatus(ctx context.Context) ([]status.Record, error) {
	return s.statuses.List(ctx)
}
