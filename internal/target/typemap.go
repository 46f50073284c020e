package target

import "strings"

// typeMappings is the single source of truth for coercing introspected
// legacy column types to destination types. Declared types not listed
// here land as text. Defaults are never translated; nullability is
// preserved by the DDL builder.
var typeMappings = map[string]string{
	"integer":  "integer",
	"int":      "integer",
	"int4":     "integer",
	"bigint":   "integer",
	"int8":     "integer",
	"smallint": "integer",
	"int2":     "integer",

	"character":         "text",
	"character varying": "text",
	"varchar":           "text",
	"char":              "text",
	"text":              "text",

	"timestamp":                   "timestamptz",
	"timestamp without time zone": "timestamptz",
	"timestamp with time zone":    "timestamptz",
	"timestamptz":                 "timestamptz",

	"date": "date",

	"boolean": "boolean",
	"bool":    "boolean",

	"numeric": "numeric",
	"decimal": "numeric",

	"uuid": "uuid",
}

// MapColumnType maps a declared source type to its destination type.
func MapColumnType(srcType string) string {
	key := strings.ToLower(strings.TrimSpace(srcType))
	// strip length/precision qualifiers: "character varying(255)"
	if i := strings.IndexByte(key, '('); i >= 0 {
		key = strings.TrimSpace(key[:i])
	}
	if mapped, ok := typeMappings[key]; ok {
		return mapped
	}
	return "text"
}
