package mysql

import (
	"context"
	"fmt"
	"strings"

	"github.com/fluxforge/fluxforge/dialect"
	"github.com/fluxforge/fluxforge/fferr"
	"github.com/fluxforge/fluxforge/value"
)

// BulkInsert writes a Chunk as a single multi-row INSERT, preserving
// client-supplied primary-key values (spec §4.4, §9 — no AUTO_INCREMENT
// regeneration for migrated rows).
func (d *Driver) BulkInsert(ctx context.Context, table string, chunk dialect.Chunk) error {
	if len(chunk.Rows) == 0 {
		return nil
	}

	colNames := make([]string, len(chunk.Columns))
	for i, c := range chunk.Columns {
		colNames[i] = d.IdentifierQuote(c.Name)
	}

	placeholderRow := "(" + strings.Repeat("?,", len(chunk.Columns)-1) + "?)"
	rowsSQL := make([]string, len(chunk.Rows))
	args := make([]any, 0, len(chunk.Rows)*len(chunk.Columns))
	for i, row := range chunk.Rows {
		rowsSQL[i] = placeholderRow
		for _, v := range row {
			args = append(args, scalarFor(v))
		}
	}

	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		d.IdentifierQuote(table), strings.Join(colNames, ", "), strings.Join(rowsSQL, ", "))

	if _, err := d.db.ExecContext(ctx, q, args...); err != nil {
		return fferr.Wrap(fferr.ErrDDL, "mysql: bulk_insert(%s): %v", table, err)
	}
	return nil
}

// FetchByKey is used only by verification (spec §4.7 step 6).
func (d *Driver) FetchByKey(ctx context.Context, table string, keyCols []string, keyValues []value.Value) ([]value.Value, bool, error) {
	cols, err := d.introspectColumns(ctx, table)
	if err != nil {
		return nil, false, err
	}

	selectCols := make([]string, len(cols))
	for i, c := range cols {
		selectCols[i] = d.IdentifierQuote(c.Name)
	}
	where := make([]string, len(keyCols))
	args := make([]any, len(keyCols))
	for i, k := range keyCols {
		where[i] = d.IdentifierQuote(k) + " = ?"
		args[i] = scalarFor(keyValues[i])
	}

	q := fmt.Sprintf("SELECT %s FROM %s WHERE %s", strings.Join(selectCols, ", "), d.IdentifierQuote(table), strings.Join(where, " AND "))
	rows, err := d.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, false, fferr.Wrap(fferr.ErrIntrospection, "mysql: fetch_by_key(%s): %v", table, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, false, rows.Err()
	}
	vals, err := scanRow(rows, cols)
	if err != nil {
		return nil, false, err
	}
	return vals, true, nil
}
