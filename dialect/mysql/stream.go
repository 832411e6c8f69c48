package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/fluxforge/fluxforge/dialect"
	"github.com/fluxforge/fluxforge/fferr"
	"github.com/fluxforge/fluxforge/schema"
	"github.com/fluxforge/fluxforge/value"
)

// StreamChunks yields row batches ordered by the resolved stable key
// ascending, bounded by chunkSize (spec §4.7 step 3). Composite keys are
// compared as tuples; KeyCursor.Offset signals the LIMIT/OFFSET fallback
// used when the table has no stable key.
func (d *Driver) StreamChunks(ctx context.Context, table schema.Table, chunkSize int, cursor dialect.KeyCursor) (<-chan dialect.Chunk, <-chan error) {
	out := make(chan dialect.Chunk, 1)
	errs := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errs)

		cols := table.Columns
		colRefs := make([]dialect.ColumnRef, len(cols))
		selectCols := make([]string, len(cols))
		for i, c := range cols {
			colRefs[i] = dialect.ColumnRef{Name: c.Name, Type: c.Type}
			selectCols[i] = d.IdentifierQuote(c.Name)
		}

		offset := cursor.LastOffset
		lastSeen := cursor.LastSeenKey

		for {
			query, args := d.buildStreamQuery(table.Name, selectCols, cursor, lastSeen, offset, chunkSize)
			rows, err := d.db.QueryContext(ctx, query, args...)
			if err != nil {
				errs <- fferr.Wrap(fferr.ErrIntrospection, "mysql: stream_chunks(%s): %v", table.Name, err)
				return
			}

			chunk := dialect.Chunk{Columns: colRefs}
			n := 0
			for rows.Next() {
				rowVals, err := scanRow(rows, cols)
				if err != nil {
					rows.Close()
					errs <- err
					return
				}
				chunk.Rows = append(chunk.Rows, rowVals)
				n++
			}
			closeErr := rows.Close()
			if err := rows.Err(); err != nil {
				errs <- fferr.Wrap(fferr.ErrIntrospection, "mysql: stream_chunks(%s) iterate: %v", table.Name, err)
				return
			}
			if closeErr != nil {
				errs <- fferr.Wrap(fferr.ErrIntrospection, "mysql: stream_chunks(%s) close: %v", table.Name, closeErr)
				return
			}

			if n == 0 {
				return
			}

			select {
			case out <- chunk:
			case <-ctx.Done():
				errs <- fferr.Wrap(fferr.ErrCancelled, "stream_chunks(%s) cancelled: %v", table.Name, ctx.Err())
				return
			}

			if cursor.Offset {
				offset += int64(n)
			} else {
				lastSeen = chunk.Rows[len(chunk.Rows)-1][:len(cursor.KeyColumns)]
			}
			if n < chunkSize {
				return
			}
		}
	}()

	return out, errs
}

func (d *Driver) buildStreamQuery(table string, selectCols []string, cursor dialect.KeyCursor, lastSeen []value.Value, offset int64, chunkSize int) (string, []any) {
	base := fmt.Sprintf("SELECT %s FROM %s", strings.Join(selectCols, ", "), d.IdentifierQuote(table))

	if cursor.Offset {
		return fmt.Sprintf("%s LIMIT %d OFFSET %d", base, chunkSize, offset), nil
	}

	orderCols := make([]string, len(cursor.KeyColumns))
	for i, k := range cursor.KeyColumns {
		orderCols[i] = d.IdentifierQuote(k)
	}
	order := "ORDER BY " + strings.Join(orderCols, ", ")

	if len(lastSeen) == 0 {
		return fmt.Sprintf("%s %s LIMIT %d", base, order, chunkSize), nil
	}

	tuple := "(" + strings.Join(orderCols, ", ") + ")"
	placeholders := make([]string, len(lastSeen))
	args := make([]any, len(lastSeen))
	for i, v := range lastSeen {
		placeholders[i] = "?"
		args[i] = scalarFor(v)
	}
	where := fmt.Sprintf("WHERE %s > (%s)", tuple, strings.Join(placeholders, ", "))
	return fmt.Sprintf("%s %s %s LIMIT %d", base, where, order, chunkSize), args
}

func scalarFor(v value.Value) any {
	switch v.Kind {
	case value.KindInt64:
		return v.Int64
	case value.KindUInt64:
		return v.UInt64
	case value.KindString, value.KindEnumLabel:
		return v.String()
	case value.KindDate:
		return value.FormatDate(v.Date)
	case value.KindTime:
		return value.FormatTimeOfDay(v.Time)
	case value.KindDateTime:
		return value.FormatDateTime(v.DateTime)
	case value.KindBit:
		return v.BitBytes
	default:
		return v.String()
	}
}

// scanRow reads one result row into []value.Value according to each
// column's declared ColumnType, so that the coercion rules of §4.1 have
// the context (width, unsigned-ness, declared precision) they need.
func scanRow(rows *sql.Rows, cols []schema.Column) ([]value.Value, error) {
	raw := make([]sql.RawBytes, len(cols))
	scanArgs := make([]any, len(cols))
	for i := range raw {
		scanArgs[i] = &raw[i]
	}
	if err := rows.Scan(scanArgs...); err != nil {
		return nil, fferr.Wrap(fferr.ErrIntrospection, "mysql: scan row: %v", err)
	}

	out := make([]value.Value, len(cols))
	for i, c := range cols {
		if raw[i] == nil {
			out[i] = value.Null()
			continue
		}
		v, err := decodeCell(string(raw[i]), c.Type)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// decodeCell converts one text-protocol cell into a value.Value. Policy
// rules (tinyint1_to_bool, zero_date_to_null, bit rendering) are applied
// later by the replication pipeline via the typemap/value packages; this
// stage only recovers the dialect-neutral representation faithfully.
func decodeCell(raw string, ct schema.ColumnType) (value.Value, error) {
	switch ct.Base {
	case schema.BaseTinyInt, schema.BaseSmallInt, schema.BaseMediumInt, schema.BaseInt, schema.BaseBigInt:
		if ct.Unsigned {
			u, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				return value.Value{}, fferr.Wrap(fferr.ErrIncompatibleValue, "mysql: parse unsigned int %q: %v", raw, err)
			}
			return value.UInt64(u), nil
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return value.Value{}, fferr.Wrap(fferr.ErrIncompatibleValue, "mysql: parse int %q: %v", raw, err)
		}
		return value.Int64(n), nil
	case schema.BaseFloat, schema.BaseDouble:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return value.Value{}, fferr.Wrap(fferr.ErrIncompatibleValue, "mysql: parse float %q: %v", raw, err)
		}
		return value.Float64(f), nil
	case schema.BaseDecimal:
		return value.Decimal(raw, intOr(ct.Params.Scale, 0))
	case schema.BaseChar, schema.BaseVarchar, schema.BaseText:
		if !utf8.ValidString(raw) {
			return value.Value{}, fferr.Wrap(fferr.ErrIncompatibleValue, "mysql: text cell is not valid UTF-8")
		}
		return value.String(raw), nil
	case schema.BaseBinary, schema.BaseVarbinary, schema.BaseBlob:
		return value.Bytes([]byte(raw)), nil
	case schema.BaseJSON:
		return value.JSON(raw), nil
	case schema.BaseEnum:
		return value.EnumLabel(raw), nil
	case schema.BaseSet:
		return value.MySQLSet(raw), nil
	case schema.BaseBit:
		return value.Bit(intOr(ct.Params.Length, 1), []byte(raw)), nil
	case schema.BaseBoolean:
		return value.Bool(raw == "1"), nil
	case schema.BaseDate:
		return decodeDate(raw)
	case schema.BaseTime:
		return decodeTimeOfDay(raw)
	case schema.BaseDateTime, schema.BaseTimestamp, schema.BaseTimestampTZ:
		return decodeDateTime(raw, intOr(ct.Params.Precision, 0))
	default:
		return value.String(raw), nil
	}
}
