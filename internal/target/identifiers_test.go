package target

import "testing"

func TestSanitizeIdentifier(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", "col_"},
		{"simple lowercase", "candidates", "candidates"},
		{"uppercase folded", "Bookings", "bookings"},
		{"space replaced", "company rates", "company_rates"},
		{"hyphen replaced", "time-sheets", "time_sheets"},
		{"leading digit prefixed", "1st_contact", "col_1st_contact"},
		{"mixed punctuation", "rate@card#v2", "rate_card_v2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeIdentifier(tt.input); got != tt.want {
				t.Errorf("SanitizeIdentifier(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestShadowTableName(t *testing.T) {
	tests := []struct {
		name   string
		table  string
		suffix string
		want   string
	}{
		{"plain", "orders", "_pcrm", "orders_pcrm"},
		{"already suffixed", "orders_pcrm", "_pcrm", "orders_pcrm"},
		{"uppercase source", "Orders", "_pcrm", "orders_pcrm"},
		{"uppercase suffix config", "orders", "_PCRM", "orders_pcrm"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShadowTableName(tt.table, tt.suffix); got != tt.want {
				t.Errorf("ShadowTableName(%q, %q) = %q, want %q", tt.table, tt.suffix, got, tt.want)
			}
		})
	}
}

func TestShadowTableNameIdempotent(t *testing.T) {
	once := ShadowTableName("candidates", "_pcrm")
	twice := ShadowTableName(once, "_pcrm")
	if once != twice {
		t.Errorf("not idempotent: %q then %q", once, twice)
	}
}

func TestDestColumnName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"first_name", "first_name"},
		{"Email Address", "email_address"},
		// collisions with synthetic columns step aside
		{"legacy_id", "legacy_id_src"},
		{"pcrm_id", "pcrm_id_src"},
		{"migrated_at", "migrated_at_src"},
		{"migration_source", "migration_source_src"},
	}
	for _, tt := range tests {
		if got := DestColumnName(tt.input); got != tt.want {
			t.Errorf("DestColumnName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
