// Package target manages the destination PostgreSQL database: shadow
// table DDL, idempotent row upserts, and raw statement execution.
package target

import (
	"strings"
	"unicode"
)

// Synthetic columns every shadow table carries in addition to the
// mapped source columns.
const (
	SyntheticPKColumn     = "pcrm_id"
	LegacyIDColumn        = "legacy_id"
	MigratedAtColumn      = "migrated_at"
	MigrationSourceColumn = "migration_source"
)

// quoteIdent safely quotes a PostgreSQL identifier, escaping embedded quotes.
func quoteIdent(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// SanitizeIdentifier converts a legacy identifier to a destination-friendly
// form: lowercase, non-alphanumerics replaced with underscores, prefixed
// when it starts with a digit.
func SanitizeIdentifier(ident string) string {
	if ident == "" {
		return "col_"
	}

	s := strings.ToLower(ident)

	var sb strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		} else {
			sb.WriteRune('_')
		}
	}
	s = sb.String()

	if len(s) > 0 && unicode.IsDigit(rune(s[0])) {
		s = "col_" + s
	}
	if s == "" {
		return "col_"
	}
	return s
}

// ShadowTableName derives the destination table name for a legacy
// table: sanitized and carrying the namespace suffix exactly once.
func ShadowTableName(table, suffix string) string {
	name := SanitizeIdentifier(table)
	if strings.HasSuffix(name, strings.ToLower(suffix)) {
		return name
	}
	return name + strings.ToLower(suffix)
}

// DestColumnName maps a source column name into the shadow table,
// stepping aside when it collides with a synthetic column.
func DestColumnName(col string) string {
	name := SanitizeIdentifier(col)
	switch name {
	case SyntheticPKColumn, LegacyIDColumn, MigratedAtColumn, MigrationSourceColumn:
		return name + "_src"
	}
	return name
}
