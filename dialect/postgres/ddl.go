package postgres

import (
	"fmt"
	"strings"

	"github.com/fluxforge/fluxforge/dialect"
	"github.com/fluxforge/fluxforge/fferr"
	"github.com/fluxforge/fluxforge/schema"
	"github.com/fluxforge/fluxforge/util"
)

// RenderDDL produces CREATE TYPE (for native enums) plus CREATE TABLE plus
// separate CREATE INDEX statements, in the order spec §4.4 requires: enum
// types, table (with inline primary key), unique keys, secondary indices,
// GIN/GiST.
func (d *Driver) RenderDDL(table schema.Table) ([]dialect.Stmt, error) {
	var stmts []dialect.Stmt

	for _, c := range table.Columns {
		if c.Type.Base == schema.BaseEnum {
			stmts = append(stmts, dialect.Stmt{
				SQL:           fmt.Sprintf("CREATE TYPE %s AS ENUM (%s)", enumTypeName(table.Name, c.Name), quoteLabelList(c.Type.Params.EnumValues)),
				Transactional: true,
			})
		}
	}

	var cols []string
	for _, c := range table.Columns {
		colSQL, err := d.renderColumn(table.Name, c)
		if err != nil {
			return nil, err
		}
		cols = append(cols, colSQL)
	}
	if table.PrimaryKey != nil {
		cols = append(cols, "PRIMARY KEY ("+d.quoteList(table.PrimaryKey.Columns)+")")
	}
	for _, k := range table.Keys {
		if k.Kind == schema.KeyUnique {
			cols = append(cols, fmt.Sprintf("CONSTRAINT %s UNIQUE (%s)", d.IdentifierQuote(k.Name), d.quoteList(k.Columns)))
		}
	}

	create := fmt.Sprintf("CREATE TABLE %s (\n  %s\n)", d.IdentifierQuote(table.Name), strings.Join(cols, ",\n  "))
	stmts = append(stmts, dialect.Stmt{SQL: create, Transactional: true})

	for _, idx := range table.Indices {
		if idx.Kind != schema.IndexGin && idx.Kind != schema.IndexGist {
			stmts = append(stmts, dialect.Stmt{SQL: d.renderCreateIndex(table.Name, idx), Transactional: true})
		}
	}
	for _, idx := range table.Indices {
		if idx.Kind == schema.IndexGin || idx.Kind == schema.IndexGist {
			stmts = append(stmts, dialect.Stmt{SQL: d.renderCreateIndex(table.Name, idx), Transactional: false})
		}
	}

	return stmts, nil
}

func (d *Driver) renderColumn(table string, c schema.Column) (string, error) {
	typeSQL, err := d.renderType(table, c)
	if err != nil {
		return "", err
	}
	parts := []string{d.IdentifierQuote(c.Name), typeSQL}
	if !c.Type.Nullable {
		parts = append(parts, "NOT NULL")
	}
	if c.Default != nil {
		parts = append(parts, "DEFAULT "+defaultSQL(*c.Default))
	}
	return strings.Join(parts, " "), nil
}

func defaultSQL(d schema.Default) string {
	if d.Literal != nil {
		return quoteLiteralString(*d.Literal)
	}
	return d.Expression
}

// enumTypeName mirrors PostgreSQL's own NAMEDATALEN (63 byte) truncation
// so a long table/column pair never produces a CREATE TYPE the server
// would reject outright.
func enumTypeName(table, column string) string {
	return util.BuildPostgresConstraintName(table, column, "t")
}

func quoteLabelList(labels []string) string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = quoteLiteralString(l)
	}
	return strings.Join(out, ", ")
}

func (d *Driver) renderType(table string, c schema.Column) (string, error) {
	ct := c.Type
	switch ct.Base {
	case schema.BaseSmallInt:
		return "smallint", nil
	case schema.BaseInt:
		return "integer", nil
	case schema.BaseBigInt:
		return "bigint", nil
	case schema.BaseFloat:
		return "real", nil
	case schema.BaseDouble:
		return "double precision", nil
	case schema.BaseDecimal:
		return fmt.Sprintf("numeric(%d,%d)", intOr(ct.Params.Precision, 10), intOr(ct.Params.Scale, 0)), nil
	case schema.BaseChar:
		return fmt.Sprintf("char(%d)", intOr(ct.Params.Length, 1)), nil
	case schema.BaseVarchar:
		return fmt.Sprintf("varchar(%d)", intOr(ct.Params.Length, 255)), nil
	case schema.BaseText:
		return "text", nil
	case schema.BaseBytea, schema.BaseBinary, schema.BaseVarbinary, schema.BaseBlob:
		return "bytea", nil
	case schema.BaseDate:
		return "date", nil
	case schema.BaseTime:
		return "time", nil
	case schema.BaseDateTime, schema.BaseTimestamp:
		return fmt.Sprintf("timestamp(%d)", intOr(ct.Params.Precision, 6)), nil
	case schema.BaseTimestampTZ:
		return fmt.Sprintf("timestamptz(%d)", intOr(ct.Params.Precision, 6)), nil
	case schema.BaseJSON:
		return "json", nil
	case schema.BaseJSONB:
		return "jsonb", nil
	case schema.BaseUUID:
		return "uuid", nil
	case schema.BaseInet:
		return "inet", nil
	case schema.BaseEnum:
		return enumTypeName(table, c.Name), nil
	case schema.BaseArray:
		elemSQL, err := d.renderType(table, schema.Column{Name: c.Name, Type: schema.ColumnType{Base: *ct.Params.ArrayElem}})
		if err != nil {
			return "", err
		}
		return elemSQL + "[]", nil
	case schema.BaseBit:
		return fmt.Sprintf("bit(%d)", intOr(ct.Params.Length, 1)), nil
	case schema.BaseBoolean:
		return "boolean", nil
	default:
		return "", fferr.Wrap(fferr.ErrDDL, "postgres: no DDL rendering for base type %s", ct.Base)
	}
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func (d *Driver) quoteList(cols []string) string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = d.IdentifierQuote(c)
	}
	return strings.Join(out, ", ")
}

func (d *Driver) renderCreateIndex(table string, idx schema.Index) string {
	using := ""
	switch idx.Kind {
	case schema.IndexGin:
		using = "USING gin "
	case schema.IndexGist:
		using = "USING gist "
	case schema.IndexHash:
		using = "USING hash "
	}
	unique := ""
	if idx.Unique {
		unique = "UNIQUE "
	}
	var cols []string
	for _, c := range idx.Columns {
		col := d.IdentifierQuote(c.Name)
		if c.Order == schema.Desc {
			col += " DESC"
		}
		cols = append(cols, col)
	}
	return fmt.Sprintf("CREATE %sINDEX %s ON %s %s(%s)", unique, d.IdentifierQuote(idx.Name), d.IdentifierQuote(table), using, strings.Join(cols, ", "))
}

// RenderAlter translates diff.AlterStmt steps into ALTER TABLE / CREATE
// INDEX / DROP INDEX statements, in whatever order diff already categorized
// them (add columns, alter columns, drop indices, add indices, drop
// columns — spec §4.6). Each is marked Transactional since PostgreSQL DDL
// participates in transactions (unlike MySQL's).
func (d *Driver) RenderAlter(stmts []dialect.AlterStmt) ([]dialect.Stmt, error) {
	var out []dialect.Stmt
	for _, s := range stmts {
		switch s.Kind {
		case dialect.AddColumn:
			colSQL, err := d.renderColumn(s.Table, *s.Column)
			if err != nil {
				return nil, err
			}
			out = append(out, dialect.Stmt{SQL: fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", d.IdentifierQuote(s.Table), colSQL), Transactional: true})
		case dialect.AlterColumnType:
			typeSQL, err := d.renderType(s.Table, *s.Column)
			if err != nil {
				return nil, err
			}
			out = append(out, dialect.Stmt{SQL: fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s", d.IdentifierQuote(s.Table), d.IdentifierQuote(s.Column.Name), typeSQL), Transactional: true})
		case dialect.AlterColumnNullability:
			verb := "SET NOT NULL"
			if s.Column.Type.Nullable {
				verb = "DROP NOT NULL"
			}
			out = append(out, dialect.Stmt{SQL: fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s %s", d.IdentifierQuote(s.Table), d.IdentifierQuote(s.Column.Name), verb), Transactional: true})
		case dialect.AlterColumnDefault:
			if s.Column.Default == nil {
				out = append(out, dialect.Stmt{SQL: fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP DEFAULT", d.IdentifierQuote(s.Table), d.IdentifierQuote(s.Column.Name)), Transactional: true})
			} else {
				out = append(out, dialect.Stmt{SQL: fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET DEFAULT %s", d.IdentifierQuote(s.Table), d.IdentifierQuote(s.Column.Name), defaultSQL(*s.Column.Default)), Transactional: true})
			}
		case dialect.DropColumn:
			out = append(out, dialect.Stmt{SQL: fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", d.IdentifierQuote(s.Table), d.IdentifierQuote(s.Column.Name)), Transactional: true})
		case dialect.DropTable:
			out = append(out, dialect.Stmt{SQL: fmt.Sprintf("DROP TABLE %s", d.IdentifierQuote(s.Table)), Transactional: true})
		case dialect.AddIndex:
			out = append(out, dialect.Stmt{SQL: d.renderCreateIndex(s.Table, *s.Index), Transactional: s.Index.Kind != schema.IndexGin && s.Index.Kind != schema.IndexGist})
		case dialect.DropIndex:
			out = append(out, dialect.Stmt{SQL: fmt.Sprintf("DROP INDEX %s", d.IdentifierQuote(s.Index.Name)), Transactional: true})
		}
	}
	return out, nil
}
