package sqltext

import "testing"

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		stmt    string
		wantErr bool
	}{
		{"create table", "CREATE TABLE t (id int)", false},
		{"insert", "INSERT INTO t VALUES (1)", false},
		{"update", "update t set a = 1", false},
		{"delete", "DELETE FROM t WHERE id = 1", false},
		{"select", "SELECT * FROM t", false},
		{"alter", "ALTER TABLE t ADD COLUMN b int", false},
		{"drop table allowed", "DROP TABLE t", false},
		{"leading comment", "-- header\nCREATE TABLE t (id int)", false},
		{"keyword before newline", "CREATE\nTABLE t (id int)", false},
		{"keyword before tab", "INSERT\tINTO t VALUES (1)", false},
		{"empty", "", true},
		{"whitespace only", "   \n\t", true},
		{"comment only", "-- just a comment", true},
		{"block comment only", "/* nothing here */", true},
		{"unrecognized keyword", "GRANT ALL ON t TO public", true},
		{"copy not supported", "COPY t FROM stdin", true},
		{"drop database", "DROP DATABASE pcrm", true},
		{"drop schema", "DROP SCHEMA public CASCADE", true},
		{"drop schema embedded", "SELECT 1; DROP   SCHEMA public", true},
		{"drop database lowercase", "drop database pcrm", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.stmt)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%q) error = %v, wantErr %v", tt.stmt, err, tt.wantErr)
			}
		})
	}
}

func TestClassifyStatement(t *testing.T) {
	tests := []struct {
		stmt string
		want StatementKind
	}{
		{"CREATE TABLE t (id int)", KindSchema},
		{"ALTER TABLE t ADD c int", KindSchema},
		{"DROP TABLE t", KindSchema},
		{"INSERT INTO t VALUES (1)", KindData},
		{"UPDATE t SET a = 1", KindData},
		{"delete from t", KindData},
		{"SELECT 1", KindUnknown},
		{"", KindUnknown},
	}
	for _, tt := range tests {
		if got := ClassifyStatement(tt.stmt); got != tt.want {
			t.Errorf("ClassifyStatement(%q) = %q, want %q", tt.stmt, got, tt.want)
		}
	}
}

func TestClassifyFile(t *testing.T) {
	tests := []struct {
		filename string
		want     StatementKind
	}{
		{"legacy_schema.sql", KindSchema},
		{"tables_ddl.sql", KindSchema},
		{"candidates_data.sql", KindData},
		{"full_dump.sql", KindData},
		{"misc.sql", KindUnknown},
	}
	for _, tt := range tests {
		if got := ClassifyFile(tt.filename); got != tt.want {
			t.Errorf("ClassifyFile(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}
