package mysql

import (
	"context"
	"database/sql"
	"sort"
	"strconv"
	"strings"

	"github.com/fluxforge/fluxforge/dialect"
	"github.com/fluxforge/fluxforge/fferr"
	"github.com/fluxforge/fluxforge/schema"
)

// FetchSchema introspects information_schema.COLUMNS/STATISTICS/
// KEY_COLUMN_USAGE, returning tables in lexicographic order with columns in
// ordinal position order and indices lexicographic by name (spec §4.4).
func (d *Driver) FetchSchema(ctx context.Context, filter dialect.SchemaFilter) (*schema.Schema, error) {
	names, err := d.tableNames(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := &schema.Schema{Dialect: schema.DialectMySQL}
	for _, name := range names {
		t, err := d.introspectTable(ctx, name)
		if err != nil {
			return nil, err
		}
		out.Tables = append(out.Tables, *t)
	}
	return out, nil
}

func (d *Driver) tableNames(ctx context.Context, filter dialect.SchemaFilter) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT TABLE_NAME FROM information_schema.TABLES
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME`)
	if err != nil {
		return nil, fferr.Wrap(fferr.ErrIntrospection, "mysql: list tables: %v", err)
	}
	defer rows.Close()

	skip := toSet(filter.SkipTables)
	only := toSet(filter.Tables)

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fferr.Wrap(fferr.ErrIntrospection, "mysql: scan table name: %v", err)
		}
		if skip[name] {
			continue
		}
		if len(only) > 0 && !only[name] {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, rows.Err()
}

func toSet(names []string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

func (d *Driver) introspectTable(ctx context.Context, name string) (*schema.Table, error) {
	t := &schema.Table{Name: name}

	cols, err := d.introspectColumns(ctx, name)
	if err != nil {
		return nil, err
	}
	t.Columns = cols

	pk, uniques, indices, err := d.introspectIndices(ctx, name)
	if err != nil {
		return nil, err
	}
	t.PrimaryKey = pk
	t.Keys = append(t.Keys, uniques...)
	t.Indices = indices

	fks, err := d.introspectForeignKeys(ctx, name)
	if err != nil {
		return nil, err
	}
	t.Keys = append(t.Keys, fks...)

	return t, nil
}

// introspectColumns parses COLUMN_TYPE (not DATA_TYPE) to recover UNSIGNED,
// the TINYINT display width, and ENUM/SET label lists, per spec §4.4.
// Display widths of the other integer types are not kept.
func (d *Driver) introspectColumns(ctx context.Context, table string) ([]schema.Column, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT COLUMN_NAME, DATA_TYPE, COLUMN_TYPE, IS_NULLABLE, COLUMN_DEFAULT,
		       EXTRA, COLUMN_COMMENT,
		       COALESCE(CHARACTER_MAXIMUM_LENGTH, 0),
		       COALESCE(NUMERIC_PRECISION, 0),
		       COALESCE(NUMERIC_SCALE, 0),
		       COALESCE(DATETIME_PRECISION, 0)
		FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION`, table)
	if err != nil {
		return nil, fferr.Wrap(fferr.ErrIntrospection, "mysql: introspect columns(%s): %v", table, err)
	}
	defer rows.Close()

	var cols []schema.Column
	for rows.Next() {
		var name, dataType, columnType, nullable, extra, comment string
		var def sql.NullString
		var charLen, numPrecision, numScale, datetimePrecision int
		if err := rows.Scan(&name, &dataType, &columnType, &nullable, &def, &extra, &comment,
			&charLen, &numPrecision, &numScale, &datetimePrecision); err != nil {
			return nil, fferr.Wrap(fferr.ErrIntrospection, "mysql: scan column(%s): %v", table, err)
		}

		ct, err := parseColumnType(dataType, columnType, charLen, numPrecision, numScale, datetimePrecision)
		if err != nil {
			return nil, fferr.Wrap(fferr.ErrIntrospection, "mysql: column %s.%s: %v", table, name, err)
		}
		ct.Nullable = nullable == "YES"

		col := schema.Column{Name: name, Type: ct, Comment: comment}
		if def.Valid {
			lit := def.String
			col.Default = &schema.Default{Literal: &lit}
		}
		if strings.Contains(extra, "on update") {
			onUpdate := extra
			col.OnUpdate = &onUpdate
		}
		cols = append(cols, col)
	}
	return cols, rows.Err()
}

// parseColumnType decodes a MySQL COLUMN_TYPE string ("int(11) unsigned",
// "varchar(255)", "decimal(10,2)", "enum('a','b')", "bit(8)", ...) into a
// structured schema.ColumnType.
func parseColumnType(dataType, columnType string, charLen, numPrecision, numScale, datetimePrecision int) (schema.ColumnType, error) {
	unsigned := strings.Contains(columnType, "unsigned")
	lower := strings.ToLower(dataType)

	switch lower {
	case "tinyint":
		ct := schema.ColumnType{Base: schema.BaseTinyInt, Unsigned: unsigned}
		if w := parseParenInt(columnType, "tinyint"); w > 0 {
			ct.Params.Length = &w
		}
		return ct, nil
	case "smallint":
		return schema.ColumnType{Base: schema.BaseSmallInt, Unsigned: unsigned}, nil
	case "mediumint":
		return schema.ColumnType{Base: schema.BaseMediumInt, Unsigned: unsigned}, nil
	case "int":
		return schema.ColumnType{Base: schema.BaseInt, Unsigned: unsigned}, nil
	case "bigint":
		return schema.ColumnType{Base: schema.BaseBigInt, Unsigned: unsigned}, nil
	case "float":
		return schema.ColumnType{Base: schema.BaseFloat}, nil
	case "double":
		return schema.ColumnType{Base: schema.BaseDouble}, nil
	case "decimal":
		return schema.ColumnType{Base: schema.BaseDecimal, Params: schema.TypeParams{Precision: intp(numPrecision), Scale: intp(numScale)}}, nil
	case "char":
		return schema.ColumnType{Base: schema.BaseChar, Params: schema.TypeParams{Length: intp(charLen)}}, nil
	case "varchar":
		return schema.ColumnType{Base: schema.BaseVarchar, Params: schema.TypeParams{Length: intp(charLen)}}, nil
	case "text", "tinytext", "mediumtext", "longtext":
		return schema.ColumnType{Base: schema.BaseText}, nil
	case "binary":
		return schema.ColumnType{Base: schema.BaseBinary, Params: schema.TypeParams{Length: intp(charLen)}}, nil
	case "varbinary":
		return schema.ColumnType{Base: schema.BaseVarbinary, Params: schema.TypeParams{Length: intp(charLen)}}, nil
	case "blob", "tinyblob", "mediumblob", "longblob":
		return schema.ColumnType{Base: schema.BaseBlob}, nil
	case "date":
		return schema.ColumnType{Base: schema.BaseDate}, nil
	case "time":
		return schema.ColumnType{Base: schema.BaseTime, Params: schema.TypeParams{Precision: intp(datetimePrecision)}}, nil
	case "datetime":
		return schema.ColumnType{Base: schema.BaseDateTime, Params: schema.TypeParams{Precision: intp(datetimePrecision)}}, nil
	case "timestamp":
		return schema.ColumnType{Base: schema.BaseTimestamp, Params: schema.TypeParams{Precision: intp(datetimePrecision)}}, nil
	case "json":
		return schema.ColumnType{Base: schema.BaseJSON}, nil
	case "enum":
		return schema.ColumnType{Base: schema.BaseEnum, Params: schema.TypeParams{EnumValues: parseQuotedList(columnType, "enum")}}, nil
	case "set":
		return schema.ColumnType{Base: schema.BaseSet, Params: schema.TypeParams{EnumValues: parseQuotedList(columnType, "set")}}, nil
	case "bit":
		width := parseParenInt(columnType, "bit")
		if width <= 0 {
			width = 1
		}
		return schema.ColumnType{Base: schema.BaseBit, Params: schema.TypeParams{Length: intp(width)}}, nil
	default:
		return schema.ColumnType{}, fferr.Wrap(fferr.ErrMappingMissing, "unrecognized mysql data type %q", dataType)
	}
}

// parseParenInt extracts the integer inside prefix(NNN) from a COLUMN_TYPE
// string, e.g. parseParenInt("bit(8)", "bit") == 8.
func parseParenInt(columnType, prefix string) int {
	ct := strings.ToLower(strings.TrimSpace(columnType))
	if !strings.HasPrefix(ct, prefix+"(") {
		return 0
	}
	rest := ct[len(prefix)+1:]
	end := strings.IndexByte(rest, ')')
	if end < 0 {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(rest[:end]))
	if err != nil {
		return 0
	}
	return n
}

// parseQuotedList extracts the quoted label list from
// "enum('a','b','c')"/"set('x','y')" COLUMN_TYPE text.
func parseQuotedList(columnType, prefix string) []string {
	ct := strings.TrimSpace(columnType)
	lower := strings.ToLower(ct)
	p := prefix + "("
	if !strings.HasPrefix(lower, p) {
		return nil
	}
	inner := ct[len(p) : len(ct)-1] // strip "enum(" / ")"
	var labels []string
	var cur strings.Builder
	inQuote := false
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		switch {
		case c == '\'' && !inQuote:
			inQuote = true
		case c == '\'' && inQuote:
			if i+1 < len(inner) && inner[i+1] == '\'' {
				cur.WriteByte('\'')
				i++
				continue
			}
			inQuote = false
			labels = append(labels, cur.String())
			cur.Reset()
		case inQuote:
			cur.WriteByte(c)
		}
	}
	return labels
}

func intp(i int) *int { return &i }
