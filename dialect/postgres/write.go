package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/fluxforge/fluxforge/dialect"
	"github.com/fluxforge/fluxforge/fferr"
	"github.com/fluxforge/fluxforge/value"
)

// BulkInsert writes a Chunk as a single multi-row INSERT, preserving
// client-supplied primary-key values (spec §4.4, §9 — serial/identity
// columns are realigned afterward via ResetSequence, not regenerated here).
func (d *Driver) BulkInsert(ctx context.Context, table string, chunk dialect.Chunk) error {
	if len(chunk.Rows) == 0 {
		return nil
	}

	colNames := make([]string, len(chunk.Columns))
	for i, c := range chunk.Columns {
		colNames[i] = d.IdentifierQuote(c.Name)
	}

	rowsSQL := make([]string, len(chunk.Rows))
	args := make([]any, 0, len(chunk.Rows)*len(chunk.Columns))
	argIdx := 1
	for i, row := range chunk.Rows {
		placeholders := make([]string, len(row))
		for j, v := range row {
			placeholders[j] = fmt.Sprintf("$%d", argIdx)
			args = append(args, bindValue(v))
			argIdx++
		}
		rowsSQL[i] = "(" + strings.Join(placeholders, ",") + ")"
	}

	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		d.IdentifierQuote(table), strings.Join(colNames, ", "), strings.Join(rowsSQL, ", "))

	if _, err := d.db.ExecContext(ctx, q, args...); err != nil {
		return fferr.Wrap(fferr.ErrDDL, "postgres: bulk_insert(%s): %v", table, err)
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
		where[i] = fmt.Sprintf("%s = $%d", d.IdentifierQuote(k), i+1)
		args[i] = bindValue(keyValues[i])
	}

	q := fmt.Sprintf("SELECT %s FROM %s WHERE %s", strings.Join(selectCols, ", "), d.IdentifierQuote(table), strings.Join(where, " AND "))
	rows, err := d.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, false, fferr.Wrap(fferr.ErrIntrospection, "postgres: fetch_by_key(%s): %v", table, err)
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

// bindValue converts a value.Value into a database/sql bind argument,
// using pq.Array over the elements' text for ARRAY columns and raw []byte
// for BYTEA and BIT values.
func bindValue(v value.Value) any {
	switch v.Kind {
	case value.KindNull:
		return nil
	case value.KindBool:
		return v.Bool
	case value.KindInt64:
		return v.Int64
	case value.KindUInt64:
		return int64(v.UInt64)
	case value.KindFloat64:
		return v.Float64
	case value.KindDecimal:
		return v.DecimalText
	case value.KindString, value.KindEnumLabel:
		return v.String()
	case value.KindBytes:
		return []byte(v.Bytes)
	case value.KindJSON:
		return v.JSONText
	case value.KindUUID:
		return v.UUID.String()
	case value.KindInet:
		return v.Inet
	case value.KindDate:
		return value.FormatDate(v.Date)
	case value.KindTime:
		return value.FormatTimeOfDay(v.Time)
	case value.KindDateTime:
		return value.FormatDateTime(v.DateTime)
	case value.KindBit:
		return []byte(v.BitBytes)
	case value.KindArray:
		elems := make([]string, len(v.Array))
		for i, e := range v.Array {
			elems[i] = e.String()
		}
		return pq.Array(elems)
	default:
		return v.String()
	}
}
