package mysql

import (
	"fmt"
	"strings"

	"github.com/fluxforge/fluxforge/dialect"
	"github.com/fluxforge/fluxforge/fferr"
	"github.com/fluxforge/fluxforge/schema"
)

// RenderDDL produces CREATE TABLE plus separate CREATE INDEX statements, in
// the order spec §4.4 requires: table (with inline primary key), unique
// keys, secondary indices, fulltext.
func (d *Driver) RenderDDL(table schema.Table) ([]dialect.Stmt, error) {
	var cols []string
	for _, c := range table.Columns {
		colSQL, err := d.renderColumn(c)
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
			cols = append(cols, fmt.Sprintf("UNIQUE KEY %s (%s)", d.IdentifierQuote(k.Name), d.quoteList(k.Columns)))
		}
	}

	create := fmt.Sprintf("CREATE TABLE %s (\n  %s\n) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4",
		d.IdentifierQuote(table.Name), strings.Join(cols, ",\n  "))

	stmts := []dialect.Stmt{{SQL: create, Transactional: false}}

	for _, idx := range table.Indices {
		if idx.Kind != schema.IndexFullText {
			stmts = append(stmts, dialect.Stmt{SQL: d.renderCreateIndex(table.Name, idx), Transactional: false})
		}
	}
	for _, idx := range table.Indices {
		if idx.Kind == schema.IndexFullText {
			stmts = append(stmts, dialect.Stmt{SQL: d.renderCreateIndex(table.Name, idx), Transactional: false})
		}
	}

	return stmts, nil
}

func (d *Driver) renderColumn(c schema.Column) (string, error) {
	typeSQL, err := d.renderType(c.Type)
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
	if c.Comment != "" {
		parts = append(parts, fmt.Sprintf("COMMENT %s", quoteLiteralString(c.Comment)))
	}
	return strings.Join(parts, " "), nil
}

func defaultSQL(d schema.Default) string {
	if d.Literal != nil {
		return quoteLiteralString(*d.Literal)
	}
	return d.Expression
}

func quoteLiteralString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func (d *Driver) renderType(ct schema.ColumnType) (string, error) {
	unsigned := ""
	if ct.Unsigned {
		unsigned = " UNSIGNED"
	}
	switch ct.Base {
	case schema.BaseTinyInt:
		return "TINYINT" + unsigned, nil
	case schema.BaseSmallInt:
		return "SMALLINT" + unsigned, nil
	case schema.BaseMediumInt:
		return "MEDIUMINT" + unsigned, nil
	case schema.BaseInt:
		return "INT" + unsigned, nil
	case schema.BaseBigInt:
		return "BIGINT" + unsigned, nil
	case schema.BaseFloat:
		return "FLOAT", nil
	case schema.BaseDouble:
		return "DOUBLE", nil
	case schema.BaseDecimal:
		return fmt.Sprintf("DECIMAL(%d,%d)", intOr(ct.Params.Precision, 10), intOr(ct.Params.Scale, 0)), nil
	case schema.BaseChar:
		return fmt.Sprintf("CHAR(%d)", intOr(ct.Params.Length, 1)), nil
	case schema.BaseVarchar:
		return fmt.Sprintf("VARCHAR(%d)", intOr(ct.Params.Length, 255)), nil
	case schema.BaseText:
		return "TEXT", nil
	case schema.BaseBinary:
		return fmt.Sprintf("BINARY(%d)", intOr(ct.Params.Length, 1)), nil
	case schema.BaseVarbinary:
		return fmt.Sprintf("VARBINARY(%d)", intOr(ct.Params.Length, 255)), nil
	case schema.BaseBlob, schema.BaseBytea:
		return "BLOB", nil
	case schema.BaseDate:
		return "DATE", nil
	case schema.BaseTime:
		return "TIME", nil
	case schema.BaseDateTime, schema.BaseTimestamp, schema.BaseTimestampTZ:
		return "DATETIME", nil
	case schema.BaseJSON, schema.BaseJSONB:
		return "JSON", nil
	case schema.BaseEnum:
		return fmt.Sprintf("ENUM(%s)", quoteLabelList(ct.Params.EnumValues)), nil
	case schema.BaseSet:
		return fmt.Sprintf("SET(%s)", quoteLabelList(ct.Params.EnumValues)), nil
	case schema.BaseArray:
		return "JSON", nil
	case schema.BaseBit:
		return fmt.Sprintf("BIT(%d)", intOr(ct.Params.Length, 1)), nil
	case schema.BaseBoolean:
		return "TINYINT(1)", nil
	case schema.BaseUUID:
		return "CHAR(36)", nil
	case schema.BaseInet:
		return "VARCHAR(45)", nil
	default:
		return "", fferr.Wrap(fferr.ErrDDL, "mysql: no DDL rendering for base type %s", ct.Base)
	}
}

func quoteLabelList(labels []string) string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = quoteLiteralString(l)
	}
	return strings.Join(out, ",")
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
	kind := ""
	if idx.Kind == schema.IndexFullText {
		kind = "FULLTEXT "
	}
	unique := ""
	if idx.Unique {
		unique = "UNIQUE "
	}
	var cols []string
	for _, c := range idx.Columns {
		col := d.IdentifierQuote(c.Name)
		if c.PrefixLen != nil {
			col = fmt.Sprintf("%s(%d)", col, *c.PrefixLen)
		}
		if c.Order == schema.Desc {
			col += " DESC"
		}
		cols = append(cols, col)
	}
	return fmt.Sprintf("CREATE %s%sINDEX %s ON %s (%s)", unique, kind, d.IdentifierQuote(idx.Name), d.IdentifierQuote(table), strings.Join(cols, ", "))
}

// RenderAlter translates diff.AlterStmt steps into ALTER TABLE / CREATE
// INDEX / DROP INDEX statements, in whatever order diff already categorized
// them (add columns, alter columns, drop indices, add indices, drop
// columns — spec §4.6).
func (d *Driver) RenderAlter(stmts []dialect.AlterStmt) ([]dialect.Stmt, error) {
	var out []dialect.Stmt
	for _, s := range stmts {
		switch s.Kind {
		case dialect.AddColumn:
			colSQL, err := d.renderColumn(*s.Column)
			if err != nil {
				return nil, err
			}
			out = append(out, dialect.Stmt{SQL: fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", d.IdentifierQuote(s.Table), colSQL)})
		case dialect.AlterColumnType, dialect.AlterColumnNullability, dialect.AlterColumnDefault:
			colSQL, err := d.renderColumn(*s.Column)
			if err != nil {
				return nil, err
			}
			out = append(out, dialect.Stmt{SQL: fmt.Sprintf("ALTER TABLE %s MODIFY COLUMN %s", d.IdentifierQuote(s.Table), colSQL)})
		case dialect.DropColumn:
			out = append(out, dialect.Stmt{SQL: fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", d.IdentifierQuote(s.Table), d.IdentifierQuote(s.Column.Name))})
		case dialect.DropTable:
			out = append(out, dialect.Stmt{SQL: fmt.Sprintf("DROP TABLE %s", d.IdentifierQuote(s.Table))})
		case dialect.AddIndex:
			out = append(out, dialect.Stmt{SQL: d.renderCreateIndex(s.Table, *s.Index)})
		case dialect.DropIndex:
			out = append(out, dialect.Stmt{SQL: fmt.Sprintf("DROP INDEX %s ON %s", d.IdentifierQuote(s.Index.Name), d.IdentifierQuote(s.Table))})
		}
	}
	return out, nil
}
