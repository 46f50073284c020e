package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pcrm/legacy-migrate/internal/checkpoint"
	"github.com/pcrm/legacy-migrate/internal/config"
	"github.com/pcrm/legacy-migrate/internal/executor"
	"github.com/pcrm/legacy-migrate/internal/logging"
	"github.com/pcrm/legacy-migrate/internal/sqltext"
)

// ImportOptions control a raw SQL import session.
type ImportOptions struct {
	Filename        string
	BatchSize       int
	ContinueOnError bool
}

// ImportResult summarizes an import session. Parsed statements are
// transient: nothing here is persisted beyond the run history entry.
type ImportResult struct {
	FileKind           sqltext.StatementKind `json:"file_kind"`
	TotalStatements    int                   `json:"total_statements"`
	RejectedStatements int                   `json:"rejected_statements"`
	ExecutedStatements int                   `json:"executed_statements"`
	SkippedStatements  int                   `json:"skipped_statements"`
	Rejections         []string              `json:"rejections,omitempty"`
	Warnings           []string              `json:"warnings,omitempty"`
}

// ImportSQL splits a raw SQL blob into statements, validates each,
// rewrites table identifiers into the shadow namespace, and executes
// the surviving statements in batches. Invalid statements are rejected
// before execution and reported, never run.
func ImportSQL(ctx context.Context, dst executor.Execer, state *checkpoint.State,
	cfg *config.MigrationConfig, sqlBlob string, opts ImportOptions) (*ImportResult, error) {

	stmts := sqltext.Split(sqlBlob)
	if len(stmts) == 0 {
		return nil, fmt.Errorf("no executable statements found in input")
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = cfg.BatchSize
	}

	res := &ImportResult{
		FileKind:        sqltext.ClassifyFile(opts.Filename),
		TotalStatements: len(stmts),
	}

	valid := make([]string, 0, len(stmts))
	for i, stmt := range stmts {
		if err := sqltext.Validate(stmt); err != nil {
			kind := sqltext.ClassifyStatement(stmt)
			msg := fmt.Sprintf("statement %d (%s) rejected: %v", i, kind, err)
			logging.Warn("import: %s: %.80s", msg, stmt)
			res.Rejections = append(res.Rejections, msg)
			res.RejectedStatements++
			continue
		}
		valid = append(valid, sqltext.ApplySuffix(stmt, cfg.TableSuffix))
	}
	if len(valid) == 0 {
		return res, fmt.Errorf("all %d statements were rejected by validation", len(stmts))
	}

	runID := uuid.New().String()[:8]
	if state != nil {
		detail := fmt.Sprintf("%s: %d statements", opts.Filename, len(valid))
		if err := state.CreateRun(runID, checkpoint.KindImport, detail); err != nil {
			logging.Warn("recording import start: %v", err)
		}
	}

	start := time.Now()
	execRes, err := executor.Run(ctx, dst, valid, executor.Options{
		BatchSize:       batchSize,
		Pause:           cfg.BatchPause,
		ContinueOnError: opts.ContinueOnError,
		Phase:           fmt.Sprintf("import %s", opts.Filename),
	})
	res.ExecutedStatements = execRes.Statements
	res.SkippedStatements = execRes.Skipped
	res.Warnings = execRes.Warnings

	if state != nil {
		if err != nil {
			state.CompleteRun(runID, "failed", err.Error())
		} else {
			state.CompleteRun(runID, "success",
				fmt.Sprintf("%d statements in %s", execRes.Statements, time.Since(start).Round(time.Millisecond)))
		}
	}
	if err != nil {
		return res, err
	}

	logging.Info("import %s: executed %d statements (%d rejected, %d skipped)",
		opts.Filename, res.ExecutedStatements, res.RejectedStatements, res.SkippedStatements)
	return res, nil
}
