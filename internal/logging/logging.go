// Package logging provides the process-wide leveled logger. It wraps
// logrus so call sites stay package-level and printf-style.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

var log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return l
}

// ParseLevel converts a verbosity flag value to a logrus level.
func ParseLevel(s string) (logrus.Level, error) {
	switch strings.ToLower(s) {
	case "error":
		return logrus.ErrorLevel, nil
	case "warn", "warning":
		return logrus.WarnLevel, nil
	case "info":
		return logrus.InfoLevel, nil
	case "debug":
		return logrus.DebugLevel, nil
	default:
		return logrus.InfoLevel, fmt.Errorf("unknown verbosity level: %s (valid: debug, info, warn, error)", s)
	}
}

// SetLevel sets the global log level.
func SetLevel(level logrus.Level) {
	log.SetLevel(level)
}

// SetOutput sets the output destination for logging.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

// SetJSONFormat switches the logger to JSON output, for headless runs
// where stdout carries a machine-readable result.
func SetJSONFormat() {
	log.SetFormatter(&logrus.JSONFormatter{})
}

// Debug logs a debug message.
func Debug(format string, args ...any) {
	log.Debugf(format, args...)
}

// Info logs an info message.
func Info(format string, args ...any) {
	log.Infof(format, args...)
}

// Warn logs a warning message.
func Warn(format string, args ...any) {
	log.Warnf(format, args...)
}

// Error logs an error message.
func Error(format string, args ...any) {
	log.Errorf(format, args...)
}

// WithFields returns an entry carrying structured fields, for loops that
// log the same context repeatedly (per-table migration passes).
func WithFields(fields map[string]any) *logrus.Entry {
	return log.WithFields(logrus.Fields(fields))
}

// IsDebug returns true if debug level is enabled.
func IsDebug() bool {
	return log.IsLevelEnabled(logrus.DebugLevel)
}
