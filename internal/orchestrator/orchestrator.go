// Package orchestrator drives legacy table migration: schema
// introspection, shadow table creation, batched copy with per-table
// status tracking, incremental sync, and raw SQL imports.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pcrm/legacy-migrate/internal/checkpoint"
	"github.com/pcrm/legacy-migrate/internal/config"
	"github.com/pcrm/legacy-migrate/internal/logging"
	"github.com/pcrm/legacy-migrate/internal/notify"
	"github.com/pcrm/legacy-migrate/internal/progress"
	"github.com/pcrm/legacy-migrate/internal/source"
	"github.com/pcrm/legacy-migrate/internal/status"
	"github.com/pcrm/legacy-migrate/internal/target"
)

// SourceDB is the slice of the legacy client the orchestrator reads
// from. *source.Client satisfies it.
type SourceDB interface {
	Tables(ctx context.Context) ([]string, error)
	Columns(ctx context.Context, table string) ([]source.Column, error)
	RowCount(ctx context.Context, table string) (int64, error)
	FetchPage(ctx context.Context, table, orderCol string, limit, offset int) (*source.Page, error)
	FetchChangedSince(ctx context.Context, table, tsCol string, since time.Time) (*source.Page, error)
	MaskedDSN() string
}

// TargetDB is the slice of the destination pool the orchestrator writes
// through. *target.Pool satisfies it.
type TargetDB interface {
	EnsureShadowTable(ctx context.Context, legacyTable, suffix string, cols []source.Column) (string, bool, error)
	UpsertRows(ctx context.Context, shadowTable string, destCols []string, rows [][]any, legacyIDs []string, migratedAt time.Time, sourceTag string) (int64, error)
	RowCount(ctx context.Context, table string) (int64, error)
}

// StatusStore persists the per-table state machine. *status.Store
// satisfies it.
type StatusStore interface {
	EnsureSchema(ctx context.Context) error
	MarkPending(ctx context.Context, table string) error
	MarkRunning(ctx context.Context, table string, totalRecords int64) error
	AddMigrated(ctx context.Context, table string, n int64) error
	MarkCompleted(ctx context.Context, table string) error
	MarkFailed(ctx context.Context, table, errMsg string) error
}

// Orchestrator coordinates one legacy database connection against the
// shared destination. Callers must not run two migrations over the same
// table set concurrently; nothing here locks against that.
type Orchestrator struct {
	src      SourceDB
	dst      TargetDB
	status   StatusStore
	state    *checkpoint.State
	notifier *notify.Notifier
	tracker  *progress.Tracker
	cfg      *config.MigrationConfig
}

// New wires an orchestrator. state, notifier and tracker may be nil
// when the caller does not want run history, Slack, or a progress bar.
func New(src SourceDB, dst TargetDB, statusStore StatusStore,
	state *checkpoint.State, notifier *notify.Notifier, tracker *progress.Tracker,
	cfg *config.MigrationConfig) *Orchestrator {
	if tracker == nil {
		tracker = progress.New(false)
	}
	if notifier == nil {
		notifier = notify.New(nil)
	}
	return &Orchestrator{
		src:      src,
		dst:      dst,
		status:   statusStore,
		state:    state,
		notifier: notifier,
		tracker:  tracker,
		cfg:      cfg,
	}
}

// TableResult is the per-table outcome of a migration run, shaped for
// the dashboard response.
type TableResult struct {
	Table           string           `json:"table"`
	Status          string           `json:"status"`
	TotalRecords    int64            `json:"total_records"`
	Schema          []source.Column  `json:"schema,omitempty"`
	SampleData      []map[string]any `json:"sample_data,omitempty"`
	MigratedRecords int64            `json:"migrated_records"`
	Error           string           `json:"error,omitempty"`
}

// MigrateAll migrates the given tables sequentially, resolving the
// table set from the source when none are supplied. A failing table is
// marked failed and skipped; the remaining tables continue. The run
// itself errors only when connection or introspection fails before any
// table processing starts, or when the context is cancelled mid-run.
func (o *Orchestrator) MigrateAll(ctx context.Context, tables []string, batchSize int) ([]TableResult, error) {
	if batchSize <= 0 {
		batchSize = o.cfg.BatchSize
	}

	runID := uuid.New().String()[:8]
	startTime := time.Now()

	if len(tables) == 0 {
		var err error
		tables, err = o.src.Tables(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing source tables: %w", err)
		}
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("source database has no base tables to migrate")
	}

	logging.Info("starting migration run %s: %d tables from %s", runID, len(tables), o.src.MaskedDSN())

	if err := o.status.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	if o.state != nil {
		if err := o.state.CreateRun(runID, checkpoint.KindMigrate, fmt.Sprintf("%d tables", len(tables))); err != nil {
			logging.Warn("recording run start: %v", err)
		}
	}
	if err := o.notifier.MigrationStarted(runID, o.src.MaskedDSN(), len(tables)); err != nil {
		logging.Warn("slack notification failed: %v", err)
	}

	// Queue every table up front so the dashboard sees the full set.
	var totalRows int64
	for _, table := range tables {
		if err := o.status.MarkPending(ctx, table); err != nil {
			return nil, err
		}
		if count, err := o.src.RowCount(ctx, table); err == nil {
			totalRows += count
		}
	}
	o.tracker.SetTotal(totalRows)

	results := make([]TableResult, 0, len(tables))
	var (
		completed, failed int
		migratedRows      int64
		failedTables      []string
	)
	for _, table := range tables {
		o.tracker.StartTable(table)
		res := o.migrateTable(ctx, table, batchSize)
		results = append(results, res)
		migratedRows += res.MigratedRecords
		if res.Status == status.StatusCompleted {
			completed++
		} else {
			failed++
			failedTables = append(failedTables, table)
		}
		if err := ctx.Err(); err != nil {
			// context gone; remaining tables stay pending
			break
		}
	}
	o.tracker.Finish()

	if err := ctx.Err(); err != nil {
		if o.state != nil {
			o.state.CompleteRun(runID, "failed", err.Error())
		}
		if nerr := o.notifier.MigrationFailed(runID, err, time.Since(startTime)); nerr != nil {
			logging.Warn("slack notification failed: %v", nerr)
		}
		return results, err
	}

	detail := fmt.Sprintf("%d/%d tables completed, %d rows", completed, len(tables), migratedRows)
	runStatus := "success"
	if failed > 0 {
		runStatus = "partial"
	}
	if o.state != nil {
		if err := o.state.CompleteRun(runID, runStatus, detail); err != nil {
			logging.Warn("recording run completion: %v", err)
		}
	}
	if err := o.notifier.MigrationCompleted(runID, time.Since(startTime), completed, failed, migratedRows, failedTables); err != nil {
		logging.Warn("slack notification failed: %v", err)
	}
	logging.Info("migration run %s finished: %s", runID, detail)

	return results, nil
}

// migrateTable runs the per-table state machine. Any error marks the
// table failed with the raw message and stops that table only.
func (o *Orchestrator) migrateTable(ctx context.Context, table string, batchSize int) TableResult {
	res := TableResult{Table: table, Status: status.StatusFailed}

	fail := func(err error) TableResult {
		logging.Error("migrating %s: %v", table, err)
		res.Error = err.Error()
		if serr := o.status.MarkFailed(ctx, table, err.Error()); serr != nil {
			logging.Error("persisting failure for %s: %v", table, serr)
		}
		return res
	}

	cols, err := o.src.Columns(ctx, table)
	if err != nil {
		return fail(err)
	}
	res.Schema = cols

	total, err := o.src.RowCount(ctx, table)
	if err != nil {
		return fail(err)
	}
	res.TotalRecords = total

	// Running is persisted before schema creation so a crash leaves a
	// durable marker.
	if err := o.status.MarkRunning(ctx, table, total); err != nil {
		return fail(err)
	}

	shadow, _, err := o.dst.EnsureShadowTable(ctx, table, o.cfg.TableSuffix, cols)
	if err != nil {
		return fail(err)
	}

	tlog := logging.WithFields(map[string]any{"table": table, "shadow": shadow, "rows": total})
	tlog.Info("starting table migration")

	idCol := source.IDColumn(cols)
	orderCol := cols[0].Name

	var migrated int64
	for offset := 0; ; offset += batchSize {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}

		page, err := o.src.FetchPage(ctx, table, orderCol, batchSize, offset)
		if err != nil {
			return fail(err)
		}
		if len(page.Values) == 0 {
			break
		}

		destCols := make([]string, len(page.Columns))
		for i, c := range page.Columns {
			destCols[i] = target.DestColumnName(c)
		}
		legacyIDs := makeLegacyIDs(table, page, idCol, offset)

		if _, err := o.dst.UpsertRows(ctx, shadow, destCols, page.Values, legacyIDs, time.Now().UTC(), o.cfg.SourceTag); err != nil {
			return fail(err)
		}

		n := int64(len(page.Values))
		migrated += n
		o.tracker.Add(n)
		if err := o.status.AddMigrated(ctx, table, n); err != nil {
			return fail(err)
		}
		if logging.IsDebug() {
			tlog.Debugf("migrated %d/%d rows", migrated, total)
		}

		if offset == 0 {
			res.SampleData = sampleRows(page, destCols, 3)
		}
		if len(page.Values) < batchSize {
			break
		}

		if o.cfg.BatchPause > 0 {
			select {
			case <-ctx.Done():
				return fail(ctx.Err())
			case <-time.After(o.cfg.BatchPause):
			}
		}
	}

	if err := o.status.MarkCompleted(ctx, table); err != nil {
		return fail(err)
	}

	// Sanity check, not authoritative: earlier runs may have left more
	// rows, but fewer than we just upserted means lost writes.
	if dstCount, err := o.dst.RowCount(ctx, shadow); err == nil && dstCount < migrated {
		logging.Warn("%s holds %d rows after migrating %d", shadow, dstCount, migrated)
	}
	tlog.Infof("table migration completed: %d rows", migrated)
	res.Status = status.StatusCompleted
	res.MigratedRecords = migrated
	return res
}

// makeLegacyIDs derives the stable conflict key for each row: the
// row's own id/uuid value when one exists, else a positional fallback.
// The fallback is not stable across re-runs if source ordering changes
// between runs, which can duplicate rows on resume; callers migrating
// keyless tables should treat re-runs with care.
func makeLegacyIDs(table string, page *source.Page, idCol string, offset int) []string {
	idIdx := -1
	for i, c := range page.Columns {
		if c == idCol {
			idIdx = i
			break
		}
	}

	ids := make([]string, len(page.Values))
	for i, row := range page.Values {
		if idIdx >= 0 && row[idIdx] != nil {
			ids[i] = fmt.Sprintf("%v", row[idIdx])
		} else {
			ids[i] = fmt.Sprintf("%s_row_%d", table, offset+i)
		}
	}
	return ids
}

// sampleRows renders the first few rows of a page as column/value maps
// for the dashboard preview.
func sampleRows(page *source.Page, destCols []string, n int) []map[string]any {
	if n > len(page.Values) {
		n = len(page.Values)
	}
	samples := make([]map[string]any, 0, n)
	for _, row := range page.Values[:n] {
		m := make(map[string]any, len(destCols))
		for i, c := range destCols {
			m[c] = normalizeValue(row[i])
		}
		samples = append(samples, m)
	}
	return samples
}

// normalizeValue makes scanned values JSON-friendly.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return v
	}
}
