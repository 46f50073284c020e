package target

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// pgx wire protocol caps bind parameters at 65535 per statement; stay
// comfortably below so batch size never has to account for column count.
const maxBindParams = 60000

// UpsertRows writes one batch of tagged rows into a shadow table,
// keyed on legacy_id so re-running migration or sync never duplicates
// rows. rows[i] is positionally aligned with destCols; legacyIDs[i] is
// the conflict key for rows[i]. Returns the number of rows written.
func (p *Pool) UpsertRows(ctx context.Context, shadowTable string, destCols []string, rows [][]any, legacyIDs []string, migratedAt time.Time, sourceTag string) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if len(rows) != len(legacyIDs) {
		return 0, fmt.Errorf("row/legacy_id count mismatch: %d vs %d", len(rows), len(legacyIDs))
	}

	paramsPerRow := len(destCols) + 3 // legacy_id + cols + migrated_at + migration_source
	chunkRows := maxBindParams / paramsPerRow
	if chunkRows < 1 {
		chunkRows = 1
	}

	var written int64
	for start := 0; start < len(rows); start += chunkRows {
		end := start + chunkRows
		if end > len(rows) {
			end = len(rows)
		}
		n, err := p.upsertChunk(ctx, shadowTable, destCols, rows[start:end], legacyIDs[start:end], migratedAt, sourceTag)
		if err != nil {
			return written, err
		}
		written += n
	}
	return written, nil
}

func (p *Pool) upsertChunk(ctx context.Context, shadowTable string, destCols []string, rows [][]any, legacyIDs []string, migratedAt time.Time, sourceTag string) (int64, error) {
	quoted := make([]string, 0, len(destCols)+3)
	quoted = append(quoted, quoteIdent(LegacyIDColumn))
	for _, c := range destCols {
		quoted = append(quoted, quoteIdent(c))
	}
	quoted = append(quoted, quoteIdent(MigratedAtColumn), quoteIdent(MigrationSourceColumn))

	var (
		placeholders []string
		args         []any
	)
	argN := 1
	for i, row := range rows {
		if len(row) != len(destCols) {
			return 0, fmt.Errorf("row %d has %d values, want %d", i, len(row), len(destCols))
		}
		ph := make([]string, 0, len(row)+3)
		ph = append(ph, fmt.Sprintf("$%d", argN))
		args = append(args, legacyIDs[i])
		argN++
		for _, v := range row {
			ph = append(ph, fmt.Sprintf("$%d", argN))
			args = append(args, v)
			argN++
		}
		ph = append(ph, fmt.Sprintf("$%d", argN), fmt.Sprintf("$%d", argN+1))
		args = append(args, migratedAt, sourceTag)
		argN += 2
		placeholders = append(placeholders, "("+strings.Join(ph, ", ")+")")
	}

	updates := make([]string, 0, len(destCols)+2)
	for _, c := range destCols {
		q := quoteIdent(c)
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", q, q))
	}
	updates = append(updates,
		fmt.Sprintf("%s = EXCLUDED.%s", quoteIdent(MigratedAtColumn), quoteIdent(MigratedAtColumn)),
		fmt.Sprintf("%s = EXCLUDED.%s", quoteIdent(MigrationSourceColumn), quoteIdent(MigrationSourceColumn)),
	)

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES %s ON CONFLICT (%s) DO UPDATE SET %s",
		p.qualify(shadowTable),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
		quoteIdent(LegacyIDColumn),
		strings.Join(updates, ", "),
	)

	tag, err := p.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("upserting %d rows into %s: %w", len(rows), shadowTable, err)
	}
	return tag.RowsAffected(), nil
}
