package target

import (
	"context"
	"fmt"
	"strings"

	"github.com/pcrm/legacy-migrate/internal/logging"
	"github.com/pcrm/legacy-migrate/internal/source"
)

// BuildShadowTableDDL renders the CREATE TABLE statement for a shadow
// table: a synthetic serial primary key, the unique legacy_id conflict
// column, the mapped source columns (nullability preserved, defaults
// dropped), and the two migration-tag columns.
func BuildShadowTableDDL(schema, shadowTable string, cols []source.Column) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s.%s (\n", quoteIdent(schema), quoteIdent(shadowTable))
	fmt.Fprintf(&b, "\t%s bigserial PRIMARY KEY,\n", quoteIdent(SyntheticPKColumn))
	fmt.Fprintf(&b, "\t%s text NOT NULL UNIQUE,\n", quoteIdent(LegacyIDColumn))

	for _, col := range cols {
		nullability := ""
		if !col.IsNullable {
			nullability = " NOT NULL"
		}
		fmt.Fprintf(&b, "\t%s %s%s,\n", quoteIdent(DestColumnName(col.Name)), MapColumnType(col.DataType), nullability)
	}

	fmt.Fprintf(&b, "\t%s timestamptz NOT NULL DEFAULT now(),\n", quoteIdent(MigratedAtColumn))
	fmt.Fprintf(&b, "\t%s text NOT NULL\n)", quoteIdent(MigrationSourceColumn))
	return b.String()
}

// EnsureShadowTable creates the shadow table for a legacy table unless
// it already exists. Returns the shadow table name and whether it was
// created by this call.
func (p *Pool) EnsureShadowTable(ctx context.Context, legacyTable, suffix string, cols []source.Column) (string, bool, error) {
	shadow := ShadowTableName(legacyTable, suffix)

	exists, err := p.TableExists(ctx, shadow)
	if err != nil {
		return "", false, err
	}
	if exists {
		logging.Debug("shadow table %s already exists, skipping creation", shadow)
		return shadow, false, nil
	}

	ddl := BuildShadowTableDDL(p.config.Schema, shadow, cols)
	if err := p.Exec(ctx, ddl); err != nil {
		return "", false, fmt.Errorf("creating shadow table %s: %w", shadow, err)
	}
	logging.Info("created shadow table %s (%d mapped columns)", shadow, len(cols))
	return shadow, true, nil
}
