package sqltext

import (
	"regexp"
	"strings"
)

// The transformer is purely textual. It covers the identifier positions
// produced by standard dump tools (CREATE TABLE, INSERT INTO and
// REFERENCES clauses) and tolerates optional double-quoting and an
// optional schema qualifier. It is not a SQL parser and does not try to
// handle every legal syntax variant.
var identifierSites = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(CREATE\s+TABLE\s+(?:IF\s+NOT\s+EXISTS\s+)?)((?:"?[A-Za-z_][A-Za-z0-9_]*"?\.)?)("?)([A-Za-z_][A-Za-z0-9_]*)("?)`),
	regexp.MustCompile(`(?i)(INSERT\s+INTO\s+)((?:"?[A-Za-z_][A-Za-z0-9_]*"?\.)?)("?)([A-Za-z_][A-Za-z0-9_]*)("?)`),
	regexp.MustCompile(`(?i)(REFERENCES\s+)((?:"?[A-Za-z_][A-Za-z0-9_]*"?\.)?)("?)([A-Za-z_][A-Za-z0-9_]*)("?)`),
}

// ApplySuffix rewrites every table identifier appearing after
// CREATE TABLE, INSERT INTO or REFERENCES so that it carries suffix,
// preserving any quoting around the identifier. Identifiers that
// already end with the suffix are left alone, so applying the transform
// twice is a no-op.
func ApplySuffix(sql, suffix string) string {
	if suffix == "" {
		return sql
	}
	for _, re := range identifierSites {
		sql = re.ReplaceAllStringFunc(sql, func(m string) string {
			groups := re.FindStringSubmatch(m)
			keyword, schema, openQ, name, closeQ := groups[1], groups[2], groups[3], groups[4], groups[5]
			// Case-folded so a differently-cased configured suffix
			// still recognizes an already-suffixed identifier.
			if strings.HasSuffix(strings.ToLower(name), strings.ToLower(suffix)) {
				return m
			}
			return keyword + schema + openQ + name + suffix + closeQ
		})
	}
	return sql
}
