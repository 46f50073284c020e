package source

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Column is one column of a legacy table, in ordinal order.
type Column struct {
	Name       string `json:"name"`
	DataType   string `json:"data_type"`
	IsNullable bool   `json:"is_nullable"`
	Default    string `json:"default,omitempty"`
	OrdinalPos int    `json:"ordinal_position"`
}

// Page is one LIMIT/OFFSET window of source rows. Values holds one
// slice per row, positionally aligned with Columns.
type Page struct {
	Columns []string
	Values  [][]any
}

// quoteIdent safely quotes a PostgreSQL identifier, escaping embedded quotes.
func quoteIdent(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// Version returns the server version string.
func (c *Client) Version(ctx context.Context) (string, error) {
	var v string
	if err := c.db.QueryRowContext(ctx, "SELECT version()").Scan(&v); err != nil {
		return "", fmt.Errorf("querying version: %w", err)
	}
	return v, nil
}

// Tables lists base-table names in the public schema, used when the
// caller supplies no explicit table list.
func (c *Client) Tables(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_type = 'BASE TABLE'
		  AND table_schema = 'public'
		ORDER BY table_name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning table name: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// Columns returns column metadata for a table in ordinal order.
func (c *Client) Columns(ctx context.Context, table string) ([]Column, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT
			column_name,
			data_type,
			CASE WHEN is_nullable = 'YES' THEN true ELSE false END,
			COALESCE(column_default, ''),
			ordinal_position
		FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1
		ORDER BY ordinal_position
	`, table)
	if err != nil {
		return nil, fmt.Errorf("querying columns for %s: %w", table, err)
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var col Column
		if err := rows.Scan(&col.Name, &col.DataType, &col.IsNullable, &col.Default, &col.OrdinalPos); err != nil {
			return nil, fmt.Errorf("scanning column: %w", err)
		}
		cols = append(cols, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %s has no columns or does not exist", table)
	}
	return cols, nil
}

// RowCount returns the total row count of a table.
func (c *Client) RowCount(ctx context.Context, table string) (int64, error) {
	var count int64
	q := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdent(table))
	if err := c.db.QueryRowContext(ctx, q).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting rows in %s: %w", table, err)
	}
	return count, nil
}

// FetchPage reads one window of rows ordered by orderCol ascending.
// The order column is a best-effort deterministic pagination key: when
// it is not unique, offset windows can skip or duplicate rows under
// concurrent writes to the source.
func (c *Client) FetchPage(ctx context.Context, table, orderCol string, limit, offset int) (*Page, error) {
	q := fmt.Sprintf("SELECT * FROM %s ORDER BY %s ASC LIMIT $1 OFFSET $2",
		quoteIdent(table), quoteIdent(orderCol))
	rows, err := c.db.QueryContext(ctx, q, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("paging %s at offset %d: %w", table, offset, err)
	}
	defer rows.Close()

	return collectRows(rows)
}

// FetchChangedSince reads rows whose tsCol exceeds since, for
// incremental sync.
func (c *Client) FetchChangedSince(ctx context.Context, table, tsCol string, since time.Time) (*Page, error) {
	q := fmt.Sprintf("SELECT * FROM %s WHERE %s > $1 ORDER BY %s ASC",
		quoteIdent(table), quoteIdent(tsCol), quoteIdent(tsCol))
	rows, err := c.db.QueryContext(ctx, q, since)
	if err != nil {
		return nil, fmt.Errorf("selecting changed rows from %s: %w", table, err)
	}
	defer rows.Close()

	return collectRows(rows)
}

func collectRows(rows *sql.Rows) (*Page, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading column names: %w", err)
	}

	page := &Page{Columns: cols}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		// lib/pq hands text columns back as []byte; normalize so row
		// values marshal and compare as strings downstream.
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		page.Values = append(page.Values, vals)
	}
	return page, rows.Err()
}

// TimestampColumn picks the change-tracking column for incremental
// sync: updated_at when present, else created_at, else "".
func TimestampColumn(cols []Column) string {
	var created string
	for _, c := range cols {
		switch c.Name {
		case "updated_at":
			return c.Name
		case "created_at":
			created = c.Name
		}
	}
	return created
}

// IDColumn picks the column used to derive legacy_id: a column named
// "id" or "uuid" when present, else "".
func IDColumn(cols []Column) string {
	var uuidCol string
	for _, c := range cols {
		switch c.Name {
		case "id":
			return c.Name
		case "uuid":
			uuidCol = c.Name
		}
	}
	return uuidCol
}
