// Package executor runs ordered lists of validated SQL statements
// against the destination in fixed-size batches.
package executor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pcrm/legacy-migrate/internal/logging"
)

// Execer executes one SQL string (possibly several ";"-joined
// statements) as a single unit. *target.Pool satisfies it.
type Execer interface {
	Exec(ctx context.Context, sql string) error
}

// Options control one executor run.
type Options struct {
	BatchSize       int           // statements per batch
	Pause           time.Duration // pause between batches, avoids overwhelming the connection
	ContinueOnError bool          // skip recoverable statement errors instead of failing
	Phase           string        // human-readable description for logs
	OnProgress      func(statementsDone, total int)
}

// Result summarizes a completed run.
type Result struct {
	Batches    int
	Statements int
	Skipped    int
	Warnings   []string
}

// BatchError reports the exact failure point for diagnosis. Batches
// already committed stay applied: there is no cross-batch transaction.
type BatchError struct {
	Batch     int
	Statement int
	Stmt      string
	Err       error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch %d, statement %d failed: %v (statement: %s)",
		e.Batch, e.Statement, e.Err, truncate(e.Stmt, 120))
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// recoverableFragments classify expected execution errors: schema
// already applied, objects gone, or grants the import user lacks.
var recoverableFragments = []string{
	"already exists",
	"does not exist",
	"permission denied",
}

// IsRecoverable reports whether err belongs to the expected/recoverable
// class that continue-on-error runs may skip.
func IsRecoverable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, frag := range recoverableFragments {
		if strings.Contains(msg, frag) {
			return true
		}
	}
	return false
}

// Run groups statements into batches of opts.BatchSize, joins each
// batch with ";\n" and submits it as one execution unit. After each
// batch the progress callback advances and a short pause is applied.
// A failing batch is replayed statement by statement to pinpoint the
// offender; recoverable errors are skipped when ContinueOnError is set,
// anything else propagates as a *BatchError.
func Run(ctx context.Context, exec Execer, stmts []string, opts Options) (*Result, error) {
	if opts.BatchSize < 1 {
		opts.BatchSize = 50
	}
	res := &Result{}
	total := len(stmts)

	for start := 0; start < total; start += opts.BatchSize {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		end := start + opts.BatchSize
		if end > total {
			end = total
		}
		batch := stmts[start:end]
		batchIdx := start / opts.BatchSize

		err := exec.Exec(ctx, strings.Join(batch, ";\n"))
		if err != nil {
			if err := runIndividually(ctx, exec, batch, batchIdx, start, opts, res); err != nil {
				return res, err
			}
		} else {
			res.Statements += len(batch)
		}
		res.Batches++

		if opts.OnProgress != nil {
			opts.OnProgress(end, total)
		}

		if opts.Pause > 0 && end < total {
			select {
			case <-ctx.Done():
				return res, ctx.Err()
			case <-time.After(opts.Pause):
			}
		}
	}

	logging.Debug("%s: executed %d statements in %d batches (%d skipped)",
		opts.Phase, res.Statements, res.Batches, res.Skipped)
	return res, nil
}

// runIndividually replays a failed batch one statement at a time. The
// batch was not transactional, so statements that had already applied
// surface as recoverable "already exists" class errors here.
func runIndividually(ctx context.Context, exec Execer, batch []string, batchIdx, offset int, opts Options, res *Result) error {
	for i, stmt := range batch {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := exec.Exec(ctx, stmt)
		if err == nil {
			res.Statements++
			continue
		}
		if opts.ContinueOnError && IsRecoverable(err) {
			warning := fmt.Sprintf("%s: skipped statement %d (%s): %v",
				opts.Phase, offset+i, truncate(stmt, 80), err)
			logging.Warn("%s", warning)
			res.Warnings = append(res.Warnings, warning)
			res.Skipped++
			continue
		}
		return &BatchError{Batch: batchIdx, Statement: offset + i, Stmt: stmt, Err: err}
	}
	return nil
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
