package sqltext

import "testing"

func TestApplySuffix(t *testing.T) {
	tests := []struct {
		name   string
		sql    string
		suffix string
		want   string
	}{
		{
			name:   "create table",
			sql:    "CREATE TABLE orders (id int)",
			suffix: "_PCRM",
			want:   "CREATE TABLE orders_PCRM (id int)",
		},
		{
			name:   "create table if not exists",
			sql:    "CREATE TABLE IF NOT EXISTS orders (id int)",
			suffix: "_pcrm",
			want:   "CREATE TABLE IF NOT EXISTS orders_pcrm (id int)",
		},
		{
			name:   "insert into",
			sql:    "INSERT INTO candidates VALUES (1)",
			suffix: "_pcrm",
			want:   "INSERT INTO candidates_pcrm VALUES (1)",
		},
		{
			name:   "references clause",
			sql:    "CREATE TABLE bookings (cid int REFERENCES candidates(id))",
			suffix: "_pcrm",
			want:   "CREATE TABLE bookings_pcrm (cid int REFERENCES candidates_pcrm(id))",
		},
		{
			name:   "quoted identifier preserved",
			sql:    `CREATE TABLE "orders" (id int)`,
			suffix: "_pcrm",
			want:   `CREATE TABLE "orders_pcrm" (id int)`,
		},
		{
			name:   "schema qualified",
			sql:    "INSERT INTO public.orders VALUES (1)",
			suffix: "_pcrm",
			want:   "INSERT INTO public.orders_pcrm VALUES (1)",
		},
		{
			name:   "case insensitive keywords",
			sql:    "insert into orders values (1)",
			suffix: "_pcrm",
			want:   "insert into orders_pcrm values (1)",
		},
		{
			name:   "already suffixed untouched",
			sql:    "CREATE TABLE orders_pcrm (id int)",
			suffix: "_pcrm",
			want:   "CREATE TABLE orders_pcrm (id int)",
		},
		{
			name:   "already suffixed untouched uppercase suffix",
			sql:    "CREATE TABLE orders_pcrm (id int)",
			suffix: "_PCRM",
			want:   "CREATE TABLE orders_pcrm (id int)",
		},
		{
			name:   "already suffixed untouched mixed case name",
			sql:    "INSERT INTO orders_PCRM VALUES (1)",
			suffix: "_pcrm",
			want:   "INSERT INTO orders_PCRM VALUES (1)",
		},
		{
			name:   "empty suffix is identity",
			sql:    "CREATE TABLE orders (id int)",
			suffix: "",
			want:   "CREATE TABLE orders (id int)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ApplySuffix(tt.sql, tt.suffix); got != tt.want {
				t.Errorf("ApplySuffix() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestApplySuffixIdempotent(t *testing.T) {
	inputs := []string{
		"CREATE TABLE orders (id int REFERENCES customers(id)); INSERT INTO orders VALUES (1);",
		`CREATE TABLE "rates" (id int)`,
		"INSERT INTO public.timesheets VALUES (1)",
	}
	for _, sql := range inputs {
		once := ApplySuffix(sql, "_pcrm")
		twice := ApplySuffix(once, "_pcrm")
		if once != twice {
			t.Errorf("not idempotent:\nonce:  %q\ntwice: %q", once, twice)
		}
	}
}
