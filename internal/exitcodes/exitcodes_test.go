package exitcodes

import (
	"errors"
	"os"
	"testing"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, Success},
		{"path error", &os.PathError{Op: "open", Path: "/foo", Err: errors.New("no such file")}, IOError},
		{"yaml parse error", errors.New("yaml: unmarshal error"), ConfigError},
		{"bad suffix", errors.New("invalid configuration: table_suffix must start with an underscore"), ConfigError},
		{"no such file", errors.New("open config.yaml: no such file or directory"), IOError},
		{"connection refused", errors.New("dial tcp: connection refused"), ConnectionError},
		{"all strategies failed", errors.New("all connection strategies failed: non-ssl: timeout"), ConnectionError},
		{"auth failure", errors.New("pq: password authentication failed"), ConnectionError},
		{"rejected statements", errors.New("all 3 statements were rejected by validation"), ValidationError},
		{"destructive statement", errors.New("statement contains a disallowed destructive operation"), ValidationError},
		{"empty import", errors.New("no executable statements found in input"), ValidationError},
		{"upsert failure", errors.New("upserting 500 rows into contacts_pcrm: duplicate key"), MigrationError},
		{"shadow table failure", errors.New("creating shadow table orders_pcrm: syntax error"), MigrationError},
		{"context canceled", errors.New("context canceled"), Cancelled},
		{"run history error", errors.New("opening run history: disk full"), StateError},
		{"unknown error", errors.New("something unexpected happened"), MigrationError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromError(tt.err)
			if got != tt.expected {
				t.Errorf("FromError(%v) = %d (%s), want %d (%s)",
					tt.err, got, Description(got), tt.expected, Description(tt.expected))
			}
		})
	}
}

func TestExitError(t *testing.T) {
	inner := errors.New("inner error")
	exitErr := NewExitError(inner, ConnectionError)

	if exitErr.Code != ConnectionError {
		t.Errorf("expected code %d, got %d", ConnectionError, exitErr.Code)
	}
	if exitErr.Error() != "inner error" {
		t.Errorf("expected error message 'inner error', got '%s'", exitErr.Error())
	}
	if errors.Unwrap(exitErr) != inner {
		t.Error("Unwrap should return inner error")
	}
	if FromError(exitErr) != ConnectionError {
		t.Errorf("FromError should extract code from ExitError")
	}
}

func TestIsRecoverable(t *testing.T) {
	recoverable := []int{ConnectionError, Cancelled, IOError}
	nonRecoverable := []int{Success, ConfigError, MigrationError, ValidationError, StateError}

	for _, code := range recoverable {
		if !IsRecoverable(code) {
			t.Errorf("expected code %d (%s) to be recoverable", code, Description(code))
		}
	}
	for _, code := range nonRecoverable {
		if IsRecoverable(code) {
			t.Errorf("expected code %d (%s) to be non-recoverable", code, Description(code))
		}
	}
}
