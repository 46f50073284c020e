// Package exitcodes defines stable exit codes for CLI operations so
// cron jobs and container orchestrators can tell retryable failures
// from permanent ones.
package exitcodes

import (
	"errors"
	"os"
	"strings"
)

const (
	// Success - operation completed without errors
	Success = 0

	// ConfigError - configuration parsing or validation errors (don't retry)
	ConfigError = 1

	// ConnectionError - legacy or destination database unreachable (retryable)
	ConnectionError = 2

	// MigrationError - table migration, upsert, or SQL import failed (don't retry)
	MigrationError = 3

	// ValidationError - SQL statements rejected by validation (don't retry)
	ValidationError = 4

	// Cancelled - interrupted via SIGINT/SIGTERM (retryable)
	Cancelled = 5

	// StateError - local run history errors (don't retry)
	StateError = 6

	// IOError - file I/O errors (retryable)
	IOError = 7
)

// ExitError wraps an error with an explicit exit code.
type ExitError struct {
	Err  error
	Code int
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(err error, code int) *ExitError {
	return &ExitError{Err: err, Code: code}
}

// FromError classifies an error into an exit code by its type and
// message.
func FromError(err error) int {
	if err == nil {
		return Success
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return IOError
	}

	errStr := strings.ToLower(err.Error())

	if containsAny(errStr, []string{
		"no such file",
		"file not found",
		"is a directory",
		"not a directory",
		"reading sql file",
	}) {
		return IOError
	}

	// Statement validation before config: "rejected by validation"
	// must not match ConfigError's validation keywords.
	if containsAny(errStr, []string{
		"rejected by validation",
		"destructive operation",
		"does not start with a recognized keyword",
		"no executable statements",
	}) {
		return ValidationError
	}

	if containsAny(errStr, []string{
		"yaml:",
		"unmarshal",
		"invalid configuration",
		"table_suffix",
		"sslmode",
		"parsing config",
	}) && !containsAny(errStr, []string{"connection", "connect", "dial"}) {
		return ConfigError
	}

	if containsAny(errStr, []string{
		"connection",
		"connect",
		"dial",
		"refused",
		"timeout",
		"unreachable",
		"no such host",
		"network",
		"pool",
		"ping",
		"authentication",
		"password",
	}) {
		return ConnectionError
	}

	if containsAny(errStr, []string{
		"cancel",
		"interrupt",
		"context canceled",
		"context deadline",
	}) {
		return Cancelled
	}

	if containsAny(errStr, []string{
		"run history",
		"data dir",
		"sqlite",
	}) {
		return StateError
	}

	if containsAny(errStr, []string{
		"migrat",
		"upsert",
		"shadow table",
		"insert",
		"create table",
		"batch",
		"sync",
	}) {
		return MigrationError
	}

	return MigrationError
}

// IsRecoverable reports whether a retry of the same invocation could
// plausibly succeed.
func IsRecoverable(code int) bool {
	switch code {
	case ConnectionError, Cancelled, IOError:
		return true
	default:
		return false
	}
}

// Description returns a human-readable description of the exit code.
func Description(code int) string {
	switch code {
	case Success:
		return "success"
	case ConfigError:
		return "configuration error"
	case ConnectionError:
		return "connection error (recoverable)"
	case MigrationError:
		return "migration error"
	case ValidationError:
		return "validation error"
	case Cancelled:
		return "cancelled (recoverable)"
	case StateError:
		return "run history error"
	case IOError:
		return "I/O error (recoverable)"
	default:
		return "unknown error"
	}
}

func containsAny(s string, substrs []string) bool {
	for _, substr := range substrs {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}
