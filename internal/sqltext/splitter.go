// Package sqltext handles the textual side of legacy imports: splitting
// raw dump files into statements, validating them, and rewriting table
// identifiers into the shadow namespace.
package sqltext

import "strings"

// scanState tracks the lexical context during a split pass. The states
// are mutually exclusive: a semicolon terminates a statement only in
// statePlain.
type scanState int

const (
	statePlain scanState = iota
	stateSingleQuote
	stateDoubleQuote
	stateDollarQuote
	stateLineComment
	stateBlockComment
)

// Split breaks raw SQL text into individual statements. Terminating
// semicolons are removed. Semicolons inside quoted strings, comments and
// dollar-quoted blocks ($tag$ ... $tag$) do not terminate; the first
// reappearance of the exact opening tag closes a dollar block, which is
// the pg_dump convention (nested tags are not supported). Trailing text
// after the last semicolon is emitted as a final statement if non-blank.
func Split(sql string) []string {
	var (
		stmts     []string
		cur       strings.Builder
		state     = statePlain
		dollarTag string
	)

	flush := func() {
		s := strings.TrimSpace(cur.String())
		cur.Reset()
		if s != "" {
			stmts = append(stmts, s)
		}
	}

	for i := 0; i < len(sql); i++ {
		b := sql[i]

		switch state {
		case stateLineComment:
			cur.WriteByte(b)
			if b == '\n' {
				state = statePlain
			}
			continue
		case stateBlockComment:
			cur.WriteByte(b)
			if b == '*' && i+1 < len(sql) && sql[i+1] == '/' {
				cur.WriteByte('/')
				i++
				state = statePlain
			}
			continue
		case stateDollarQuote:
			if b == '$' && hasDollarTag(sql[i:], dollarTag) {
				cur.WriteString(sql[i : i+len(dollarTag)+2])
				i += len(dollarTag) + 1
				dollarTag = ""
				state = statePlain
				continue
			}
			cur.WriteByte(b)
			continue
		case stateSingleQuote:
			// Backslash is not an escape here: pg_dump emits
			// standard_conforming_strings literals, where quotes are
			// doubled ('') and a trailing backslash is just a byte.
			cur.WriteByte(b)
			if b == '\'' {
				state = statePlain
			}
			continue
		case stateDoubleQuote:
			cur.WriteByte(b)
			if b == '"' {
				state = statePlain
			}
			continue
		}

		// statePlain
		switch {
		case b == '-' && i+1 < len(sql) && sql[i+1] == '-':
			state = stateLineComment
			cur.WriteByte(b)
		case b == '/' && i+1 < len(sql) && sql[i+1] == '*':
			state = stateBlockComment
			cur.WriteString("/*")
			i++
		case b == '$':
			if tag, ok := readDollarTag(sql[i:]); ok {
				dollarTag = tag
				state = stateDollarQuote
				cur.WriteString(sql[i : i+len(tag)+2])
				i += len(tag) + 1
			} else {
				cur.WriteByte(b)
			}
		case b == '\'':
			state = stateSingleQuote
			cur.WriteByte(b)
		case b == '"':
			state = stateDoubleQuote
			cur.WriteByte(b)
		case b == ';':
			flush()
		default:
			cur.WriteByte(b)
		}
	}

	flush()
	return stmts
}

// readDollarTag reads an opening $tag$ at the start of data, returning
// the tag body ("" for $$).
func readDollarTag(data string) (string, bool) {
	if len(data) < 2 || data[0] != '$' {
		return "", false
	}
	for end := 1; end < len(data); end++ {
		c := data[end]
		if c == '$' {
			return data[1:end], true
		}
		if !isDollarTagChar(c) {
			return "", false
		}
	}
	return "", false
}

// hasDollarTag reports whether data starts with the closing $tag$.
func hasDollarTag(data, tag string) bool {
	closer := "$" + tag + "$"
	return strings.HasPrefix(data, closer)
}

func isDollarTagChar(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}
