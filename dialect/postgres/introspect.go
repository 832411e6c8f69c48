package postgres

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/fluxforge/fluxforge/dialect"
	"github.com/fluxforge/fluxforge/fferr"
	"github.com/fluxforge/fluxforge/schema"
)

// FetchSchema introspects pg_catalog (pg_class, pg_attribute, pg_index,
// pg_constraint, pg_type), returning tables in lexicographic order with
// columns in ordinal position order and indices lexicographic by name
// (spec §4.4).
func (d *Driver) FetchSchema(ctx context.Context, filter dialect.SchemaFilter) (*schema.Schema, error) {
	names, err := d.tableNames(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := &schema.Schema{Dialect: schema.DialectPostgres}
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
		SELECT c.relname
		FROM pg_catalog.pg_class c
		JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
		WHERE c.relkind = 'r' AND n.nspname = 'public'
		ORDER BY c.relname`)
	if err != nil {
		return nil, fferr.Wrap(fferr.ErrIntrospection, "postgres: list tables: %v", err)
	}
	defer rows.Close()

	skip := toSet(filter.SkipTables)
	only := toSet(filter.Tables)

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fferr.Wrap(fferr.ErrIntrospection, "postgres: scan table name: %v", err)
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
	t := &schema.Table{Name: name, SchemaName: "public"}

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

// introspectColumns reads pg_attribute joined with pg_type/pg_attrdef,
// recovering array element types via typelem (spec §4.4) and normalizing
// DEFAULT expressions with canonicalizeDefault.
func (d *Driver) introspectColumns(ctx context.Context, table string) ([]schema.Column, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT a.attname, a.attnum, t.typname, a.atttypmod, a.attnotnull,
		       COALESCE(et.typname, ''),
		       pg_catalog.pg_get_expr(ad.adbin, ad.adrelid),
		       COALESCE(pg_catalog.col_description(a.attrelid, a.attnum), '')
		FROM pg_catalog.pg_attribute a
		JOIN pg_catalog.pg_type t ON t.oid = a.atttypid
		LEFT JOIN pg_catalog.pg_type et ON et.oid = t.typelem
		LEFT JOIN pg_catalog.pg_attrdef ad ON ad.adrelid = a.attrelid AND ad.adnum = a.attnum
		WHERE a.attrelid = $1::regclass AND a.attnum > 0 AND NOT a.attisdropped
		ORDER BY a.attnum`, table)
	if err != nil {
		return nil, fferr.Wrap(fferr.ErrIntrospection, "postgres: introspect columns(%s): %v", table, err)
	}
	defer rows.Close()

	var cols []schema.Column
	for rows.Next() {
		var name, typname, elemTypname, comment string
		var attnum int
		var typmod int
		var notNull bool
		var defExpr sql.NullString
		if err := rows.Scan(&name, &attnum, &typname, &typmod, &notNull, &elemTypname, &defExpr, &comment); err != nil {
			return nil, fferr.Wrap(fferr.ErrIntrospection, "postgres: scan column(%s): %v", table, err)
		}

		ct, err := parsePgType(typname, typmod, elemTypname)
		if err != nil {
			if enumValues, enumErr := d.enumLabels(ctx, typname); enumErr == nil && enumValues != nil {
				ct = schema.ColumnType{Base: schema.BaseEnum, Params: schema.TypeParams{EnumValues: enumValues}}
			} else {
				return nil, fferr.Wrap(fferr.ErrIntrospection, "postgres: column %s.%s: %v", table, name, err)
			}
		}
		ct.Nullable = !notNull

		col := schema.Column{Name: name, Type: ct, Comment: comment}
		if defExpr.Valid {
			expr := canonicalizeDefault(defExpr.String)
			col.Default = &schema.Default{Expression: expr}
		}
		cols = append(cols, col)
	}
	return cols, rows.Err()
}

// enumLabels recovers the ordered label list of a user-defined enum type
// from pg_enum, used when a column's pg_type isn't a built-in base type.
func (d *Driver) enumLabels(ctx context.Context, typname string) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT e.enumlabel
		FROM pg_catalog.pg_enum e
		JOIN pg_catalog.pg_type t ON t.oid = e.enumtypid
		WHERE t.typname = $1
		ORDER BY e.enumsortorder`, typname)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var labels []string
	for rows.Next() {
		var l string
		if err := rows.Scan(&l); err != nil {
			return nil, err
		}
		labels = append(labels, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		return nil, fferr.Wrap(fferr.ErrMappingMissing, "unrecognized postgres type %q", typname)
	}
	return labels, nil
}

// parsePgType decodes a pg_type name plus atttypmod into a structured
// schema.ColumnType. Array types are named "_<elem>" in pg_type; typelem
// (joined in as elemTypname) recovers the element base type (spec §4.4).
func parsePgType(typname string, typmod int, elemTypname string) (schema.ColumnType, error) {
	if strings.HasPrefix(typname, "_") && elemTypname != "" {
		elem, err := parsePgType(elemTypname, typmod, "")
		if err != nil {
			return schema.ColumnType{}, err
		}
		elemBase := elem.Base
		return schema.ColumnType{Base: schema.BaseArray, Params: schema.TypeParams{ArrayElem: &elemBase}}, nil
	}

	switch typname {
	case "int2":
		return schema.ColumnType{Base: schema.BaseSmallInt}, nil
	case "int4":
		return schema.ColumnType{Base: schema.BaseInt}, nil
	case "int8":
		return schema.ColumnType{Base: schema.BaseBigInt}, nil
	case "numeric":
		precision, scale := numericTypmod(typmod)
		return schema.ColumnType{Base: schema.BaseDecimal, Params: schema.TypeParams{Precision: intp(precision), Scale: intp(scale)}}, nil
	case "float4":
		return schema.ColumnType{Base: schema.BaseFloat}, nil
	case "float8":
		return schema.ColumnType{Base: schema.BaseDouble}, nil
	case "bpchar":
		return schema.ColumnType{Base: schema.BaseChar, Params: schema.TypeParams{Length: intp(charTypmod(typmod))}}, nil
	case "varchar":
		return schema.ColumnType{Base: schema.BaseVarchar, Params: schema.TypeParams{Length: intp(charTypmod(typmod))}}, nil
	case "text":
		return schema.ColumnType{Base: schema.BaseText}, nil
	case "bytea":
		return schema.ColumnType{Base: schema.BaseBytea}, nil
	case "date":
		return schema.ColumnType{Base: schema.BaseDate}, nil
	case "time", "timetz":
		return schema.ColumnType{Base: schema.BaseTime}, nil
	case "timestamp":
		return schema.ColumnType{Base: schema.BaseTimestamp, Params: schema.TypeParams{Precision: intp(timePrecisionTypmod(typmod))}}, nil
	case "timestamptz":
		return schema.ColumnType{Base: schema.BaseTimestampTZ, Params: schema.TypeParams{Precision: intp(timePrecisionTypmod(typmod))}}, nil
	case "json":
		return schema.ColumnType{Base: schema.BaseJSON}, nil
	case "jsonb":
		return schema.ColumnType{Base: schema.BaseJSONB}, nil
	case "uuid":
		return schema.ColumnType{Base: schema.BaseUUID}, nil
	case "inet":
		return schema.ColumnType{Base: schema.BaseInet}, nil
	case "bit":
		return schema.ColumnType{Base: schema.BaseBit, Params: schema.TypeParams{Length: intp(bitTypmod(typmod))}}, nil
	case "bool":
		return schema.ColumnType{Base: schema.BaseBoolean}, nil
	default:
		return schema.ColumnType{}, fferr.Wrap(fferr.ErrMappingMissing, "unrecognized postgres type %q", typname)
	}
}

// numericTypmod decodes NUMERIC(p,s)'s atttypmod: typmod-4 packs precision
// in the high 16 bits and scale in the low 16 bits.
func numericTypmod(typmod int) (int, int) {
	if typmod < 4 {
		return 0, 0
	}
	raw := typmod - 4
	precision := (raw >> 16) & 0xffff
	scale := raw & 0xffff
	return precision, scale
}

func charTypmod(typmod int) int {
	if typmod < 4 {
		return 0
	}
	return typmod - 4
}

func timePrecisionTypmod(typmod int) int {
	if typmod < 0 {
		return 6
	}
	return typmod
}

func bitTypmod(typmod int) int {
	if typmod <= 0 {
		return 1
	}
	return typmod
}

func intp(i int) *int { return &i }
