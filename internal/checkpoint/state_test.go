package checkpoint

import (
	"testing"
)

func TestRunLifecycle(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	if err := s.CreateRun("run1", KindMigrate, "3 tables"); err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}

	run, err := s.LastIncompleteRun()
	if err != nil {
		t.Fatalf("LastIncompleteRun() error = %v", err)
	}
	if run == nil || run.ID != "run1" {
		t.Fatalf("LastIncompleteRun() = %+v, want run1", run)
	}
	if run.Kind != KindMigrate {
		t.Errorf("Kind = %q, want %q", run.Kind, KindMigrate)
	}

	if err := s.CompleteRun("run1", "success", "3/3 tables"); err != nil {
		t.Fatalf("CompleteRun() error = %v", err)
	}

	run, err = s.LastIncompleteRun()
	if err != nil {
		t.Fatalf("LastIncompleteRun() error = %v", err)
	}
	if run != nil {
		t.Errorf("LastIncompleteRun() = %+v, want nil after completion", run)
	}

	runs, err := s.AllRuns()
	if err != nil {
		t.Fatalf("AllRuns() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("AllRuns() = %d runs, want 1", len(runs))
	}
	if runs[0].Status != "success" || runs[0].CompletedAt == nil {
		t.Errorf("run = %+v, want success with completion time", runs[0])
	}
	if runs[0].Detail != "3/3 tables" {
		t.Errorf("Detail = %q, want %q", runs[0].Detail, "3/3 tables")
	}
}

func TestLastIncompleteRunEmpty(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	run, err := s.LastIncompleteRun()
	if err != nil {
		t.Fatalf("LastIncompleteRun() error = %v", err)
	}
	if run != nil {
		t.Errorf("LastIncompleteRun() = %+v, want nil on fresh state", run)
	}
}
