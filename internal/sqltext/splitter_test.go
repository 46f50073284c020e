package sqltext

import (
	"strings"
	"testing"
)

func TestSplitBasic(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want []string
	}{
		{
			name: "two statements",
			sql:  "CREATE TABLE a (id int);\nINSERT INTO a VALUES (1);",
			want: []string{"CREATE TABLE a (id int)", "INSERT INTO a VALUES (1)"},
		},
		{
			name: "trailing statement without semicolon",
			sql:  "SELECT 1; SELECT 2",
			want: []string{"SELECT 1", "SELECT 2"},
		},
		{
			name: "empty input",
			sql:  "",
			want: nil,
		},
		{
			name: "only whitespace and semicolons",
			sql:  " ;\n ; ",
			want: nil,
		},
		{
			name: "semicolon inside single-quoted literal",
			sql:  "INSERT INTO t (s) VALUES ('a;b');",
			want: []string{"INSERT INTO t (s) VALUES ('a;b')"},
		},
		{
			name: "semicolon inside double-quoted identifier",
			sql:  `SELECT "weird;name" FROM t;`,
			want: []string{`SELECT "weird;name" FROM t`},
		},
		{
			name: "doubled quote inside literal",
			sql:  `INSERT INTO t VALUES ('it''s; fine');SELECT 1;`,
			want: []string{`INSERT INTO t VALUES ('it''s; fine')`, "SELECT 1"},
		},
		{
			name: "literal ending in backslash",
			sql:  `INSERT INTO t (s) VALUES ('a\');SELECT 1;`,
			want: []string{`INSERT INTO t (s) VALUES ('a\')`, "SELECT 1"},
		},
		{
			name: "semicolon inside line comment",
			sql:  "SELECT 1 -- trailing; comment\n+ 2;",
			want: []string{"SELECT 1 -- trailing; comment\n+ 2"},
		},
		{
			name: "semicolon inside block comment",
			sql:  "SELECT /* a;b */ 1;",
			want: []string{"SELECT /* a;b */ 1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.sql)
			if len(got) != len(tt.want) {
				t.Fatalf("Split() = %d statements %q, want %d", len(got), got, len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Split()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSplitDollarQuoted(t *testing.T) {
	body := "CREATE FUNCTION f() RETURNS void AS $$ BEGIN x:=1; END; $$ LANGUAGE plpgsql;"
	got := Split(body)
	if len(got) != 1 {
		t.Fatalf("Split() = %d statements, want 1: %q", len(got), got)
	}
	if !strings.Contains(got[0], "BEGIN x:=1; END;") {
		t.Errorf("function body mangled: %q", got[0])
	}
}

func TestSplitTaggedDollarQuote(t *testing.T) {
	sql := "CREATE FUNCTION g() RETURNS text AS $body$ SELECT 'a;b'; $body$ LANGUAGE sql; SELECT 1;"
	got := Split(sql)
	if len(got) != 2 {
		t.Fatalf("Split() = %d statements, want 2: %q", len(got), got)
	}
	if !strings.HasPrefix(got[1], "SELECT 1") {
		t.Errorf("second statement = %q, want SELECT 1", got[1])
	}
}

func TestSplitDollarTagClosesOnExactTagOnly(t *testing.T) {
	// $outer$ must not be closed by $inner$.
	sql := "SELECT $outer$ text with $inner$ inside; $outer$;"
	got := Split(sql)
	if len(got) != 1 {
		t.Fatalf("Split() = %d statements, want 1: %q", len(got), got)
	}
}

func TestSplitPreservesStatementCount(t *testing.T) {
	// For text with no dollar quoting, splitting on unquoted semicolons
	// reproduces the statement count.
	sql := "SELECT 1; SELECT 'x;y'; UPDATE t SET a = 2; DELETE FROM t"
	if got := Split(sql); len(got) != 4 {
		t.Errorf("Split() = %d statements, want 4: %q", len(got), got)
	}
}
