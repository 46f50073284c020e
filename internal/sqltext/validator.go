package sqltext

import (
	"fmt"
	"strings"
)

// StatementKind classifies a statement for logging and execution order.
type StatementKind string

const (
	KindSchema  StatementKind = "schema"
	KindData    StatementKind = "data"
	KindUnknown StatementKind = "unknown"
)

// allowedKeywords are the only leading keywords a statement may carry.
var allowedKeywords = []string{
	"CREATE", "INSERT", "UPDATE", "DELETE", "SELECT", "ALTER", "DROP",
}

// Validate checks a single statement. Empty or comment-only statements
// are rejected, as is any statement whose leading keyword is not a
// recognized DDL/DML verb. DROP DATABASE and DROP SCHEMA are always
// rejected regardless of position, as a rail against destructive dumps.
func Validate(stmt string) error {
	trimmed := strings.TrimSpace(stripLeadingComments(stmt))
	if trimmed == "" {
		return fmt.Errorf("statement is empty")
	}

	upper := strings.ToUpper(trimmed)
	if containsDestructive(upper) {
		return fmt.Errorf("statement contains a disallowed destructive operation")
	}

	leading := strings.Fields(upper)[0]
	for _, kw := range allowedKeywords {
		if leading == kw {
			return nil
		}
	}
	return fmt.Errorf("statement does not start with a recognized keyword (%s)",
		strings.Join(allowedKeywords, ", "))
}

// containsDestructive matches DROP DATABASE / DROP SCHEMA with any
// amount of intervening whitespace, anywhere in the statement.
func containsDestructive(upper string) bool {
	fields := strings.Fields(upper)
	for i := 0; i+1 < len(fields); i++ {
		if fields[i] == "DROP" && (fields[i+1] == "DATABASE" || fields[i+1] == "SCHEMA") {
			return true
		}
	}
	return false
}

// stripLeadingComments drops -- and /* */ comments preceding the first
// token so comment headers in dump files do not mask the keyword.
func stripLeadingComments(s string) string {
	for {
		s = strings.TrimSpace(s)
		switch {
		case strings.HasPrefix(s, "--"):
			nl := strings.IndexByte(s, '\n')
			if nl < 0 {
				return ""
			}
			s = s[nl+1:]
		case strings.HasPrefix(s, "/*"):
			end := strings.Index(s, "*/")
			if end < 0 {
				return ""
			}
			s = s[end+2:]
		default:
			return s
		}
	}
}

// ClassifyStatement derives a kind from the statement's leading keyword.
func ClassifyStatement(stmt string) StatementKind {
	upper := strings.ToUpper(strings.TrimSpace(stripLeadingComments(stmt)))
	switch {
	case strings.HasPrefix(upper, "CREATE"),
		strings.HasPrefix(upper, "ALTER"),
		strings.HasPrefix(upper, "DROP"):
		return KindSchema
	case strings.HasPrefix(upper, "INSERT"),
		strings.HasPrefix(upper, "UPDATE"),
		strings.HasPrefix(upper, "DELETE"):
		return KindData
	default:
		return KindUnknown
	}
}

// ClassifyFile guesses a dump file's content from its name; used only
// for logging when a whole file is imported at once.
func ClassifyFile(filename string) StatementKind {
	lower := strings.ToLower(filename)
	switch {
	case strings.Contains(lower, "schema"), strings.Contains(lower, "ddl"):
		return KindSchema
	case strings.Contains(lower, "data"), strings.Contains(lower, "insert"),
		strings.Contains(lower, "dump"):
		return KindData
	default:
		return KindUnknown
	}
}
