package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// fakeExec records executed units and fails statements matched by
// failOn with the configured error.
type fakeExec struct {
	units  []string
	failOn string
	err    error
}

func (f *fakeExec) Exec(_ context.Context, sql string) error {
	f.units = append(f.units, sql)
	if f.failOn != "" && strings.Contains(sql, f.failOn) {
		return f.err
	}
	return nil
}

func stmts(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("INSERT INTO t VALUES (%d)", i)
	}
	return out
}

func TestRunBatching(t *testing.T) {
	exec := &fakeExec{}
	var progress []int

	res, err := Run(context.Background(), exec, stmts(7), Options{
		BatchSize: 3,
		OnProgress: func(done, total int) {
			progress = append(progress, done)
			if total != 7 {
				t.Errorf("total = %d, want 7", total)
			}
		},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Batches != 3 || res.Statements != 7 {
		t.Errorf("got %d batches / %d statements, want 3 / 7", res.Batches, res.Statements)
	}
	if len(exec.units) != 3 {
		t.Fatalf("executed %d units, want 3", len(exec.units))
	}
	// batches are joined with ";\n"
	if !strings.Contains(exec.units[0], ";\n") {
		t.Errorf("first unit not joined: %q", exec.units[0])
	}
	if got, want := fmt.Sprint(progress), fmt.Sprint([]int{3, 6, 7}); got != want {
		t.Errorf("progress = %v, want %v", got, want)
	}
}

func TestRunUnrecoverableFailurePinpointsStatement(t *testing.T) {
	exec := &fakeExec{failOn: "VALUES (4)", err: errors.New("syntax error at or near")}

	_, err := Run(context.Background(), exec, stmts(7), Options{BatchSize: 3})
	if err == nil {
		t.Fatal("Run() error = nil, want BatchError")
	}
	var be *BatchError
	if !errors.As(err, &be) {
		t.Fatalf("error type = %T, want *BatchError", err)
	}
	if be.Batch != 1 {
		t.Errorf("Batch = %d, want 1", be.Batch)
	}
	if be.Statement != 4 {
		t.Errorf("Statement = %d, want 4", be.Statement)
	}
	if !strings.Contains(be.Stmt, "VALUES (4)") {
		t.Errorf("Stmt = %q, want the failing statement text", be.Stmt)
	}
}

func TestRunContinueOnErrorSkipsRecoverable(t *testing.T) {
	exec := &fakeExec{failOn: "VALUES (1)", err: errors.New(`relation "t" already exists`)}

	res, err := Run(context.Background(), exec, stmts(3), Options{
		BatchSize:       3,
		ContinueOnError: true,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", res.Skipped)
	}
	if res.Statements != 2 {
		t.Errorf("Statements = %d, want 2", res.Statements)
	}
	if len(res.Warnings) != 1 {
		t.Errorf("Warnings = %d, want 1", len(res.Warnings))
	}
}

func TestRunRecoverableWithoutContinueFails(t *testing.T) {
	exec := &fakeExec{failOn: "VALUES (1)", err: errors.New(`relation "t" does not exist`)}

	_, err := Run(context.Background(), exec, stmts(3), Options{BatchSize: 3})
	var be *BatchError
	if !errors.As(err, &be) {
		t.Fatalf("error = %v, want *BatchError", err)
	}
	if be.Statement != 1 {
		t.Errorf("Statement = %d, want 1", be.Statement)
	}
}

func TestIsRecoverable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{errors.New(`relation "x" already exists`), true},
		{errors.New(`table "y" does not exist`), true},
		{errors.New("ERROR: permission denied for table z"), true},
		{errors.New("syntax error at or near"), false},
		{errors.New("connection reset by peer"), false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := IsRecoverable(tt.err); got != tt.want {
			t.Errorf("IsRecoverable(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestRunEmptyInput(t *testing.T) {
	exec := &fakeExec{}
	res, err := Run(context.Background(), exec, nil, Options{BatchSize: 10})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Batches != 0 || res.Statements != 0 {
		t.Errorf("got %d batches / %d statements, want 0 / 0", res.Batches, res.Statements)
	}
}
