package mysql

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/fluxforge/fluxforge/fferr"
	"github.com/fluxforge/fluxforge/schema"
)

// introspectIndices reads information_schema.STATISTICS, splitting out the
// PRIMARY key and UNIQUE keys from ordinary secondary indices (spec §4.4
// deterministic order: indices lexicographic by name).
func (d *Driver) introspectIndices(ctx context.Context, table string) (*schema.Key, []schema.Key, []schema.Index, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT INDEX_NAME, COLUMN_NAME, NON_UNIQUE, SEQ_IN_INDEX, INDEX_TYPE, COLLATION, SUB_PART
		FROM information_schema.STATISTICS
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?
		ORDER BY INDEX_NAME, SEQ_IN_INDEX`, table)
	if err != nil {
		return nil, nil, nil, fferr.Wrap(fferr.ErrIntrospection, "mysql: introspect indices(%s): %v", table, err)
	}
	defer rows.Close()

	type built struct {
		unique bool
		cols   []schema.IndexColumn
		kind   schema.IndexKind
	}
	order := []string{}
	byName := map[string]*built{}

	for rows.Next() {
		var idxName, indexType string
		var colName, collation sql.NullString
		var subPart sql.NullInt64
		var nonUnique, seq int
		if err := rows.Scan(&idxName, &colName, &nonUnique, &seq, &indexType, &collation, &subPart); err != nil {
			return nil, nil, nil, fferr.Wrap(fferr.ErrIntrospection, "mysql: scan index(%s): %v", table, err)
		}
		b, ok := byName[idxName]
		if !ok {
			b = &built{unique: nonUnique == 0, kind: indexKindOf(indexType)}
			byName[idxName] = b
			order = append(order, idxName)
		}
		if !colName.Valid {
			continue
		}
		dir := schema.Asc
		if collation.Valid && strings.EqualFold(collation.String, "D") {
			dir = schema.Desc
		}
		var prefix *int
		if subPart.Valid {
			n := int(subPart.Int64)
			prefix = &n
		}
		b.cols = append(b.cols, schema.IndexColumn{Name: colName.String, PrefixLen: prefix, Order: dir})
	}
	if err := rows.Err(); err != nil {
		return nil, nil, nil, err
	}

	var pk *schema.Key
	var uniques []schema.Key
	var indices []schema.Index

	if b, ok := byName["PRIMARY"]; ok {
		colNames := make([]string, len(b.cols))
		for i, c := range b.cols {
			colNames[i] = c.Name
		}
		pk = &schema.Key{Kind: schema.KeyPrimary, Columns: colNames}
	}

	var secondaryNames []string
	for _, name := range order {
		if name != "PRIMARY" {
			secondaryNames = append(secondaryNames, name)
		}
	}
	sort.Strings(secondaryNames)

	for _, name := range secondaryNames {
		b := byName[name]
		colNames := make([]string, len(b.cols))
		for i, c := range b.cols {
			colNames[i] = c.Name
		}
		if b.unique {
			uniques = append(uniques, schema.Key{Kind: schema.KeyUnique, Name: name, Columns: colNames})
			continue
		}
		indices = append(indices, schema.Index{Name: name, Kind: b.kind, Unique: false, Columns: b.cols})
	}

	return pk, uniques, indices, nil
}

func indexKindOf(mysqlIndexType string) schema.IndexKind {
	switch strings.ToUpper(mysqlIndexType) {
	case "FULLTEXT":
		return schema.IndexFullText
	case "HASH":
		return schema.IndexHash
	default:
		return schema.IndexBTree
	}
}

// introspectForeignKeys reads KEY_COLUMN_USAGE joined with
// REFERENTIAL_CONSTRAINTS — FK metadata is carried only for dependency
// ordering (spec §9); no FK DDL is ever emitted from it.
func (d *Driver) introspectForeignKeys(ctx context.Context, table string) ([]schema.Key, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT kcu.CONSTRAINT_NAME, kcu.COLUMN_NAME, kcu.REFERENCED_TABLE_NAME,
		       kcu.REFERENCED_COLUMN_NAME, rc.UPDATE_RULE, rc.DELETE_RULE
		FROM information_schema.KEY_COLUMN_USAGE kcu
		JOIN information_schema.REFERENTIAL_CONSTRAINTS rc
		  ON kcu.CONSTRAINT_NAME = rc.CONSTRAINT_NAME AND kcu.TABLE_SCHEMA = rc.CONSTRAINT_SCHEMA
		WHERE kcu.TABLE_SCHEMA = DATABASE() AND kcu.TABLE_NAME = ?
		  AND kcu.REFERENCED_TABLE_NAME IS NOT NULL
		ORDER BY kcu.CONSTRAINT_NAME, kcu.ORDINAL_POSITION`, table)
	if err != nil {
		return nil, fferr.Wrap(fferr.ErrIntrospection, "mysql: introspect foreign keys(%s): %v", table, err)
	}
	defer rows.Close()

	order := []string{}
	byName := map[string]*schema.Key{}
	for rows.Next() {
		var name, col, refTable, refCol, updateRule, deleteRule string
		if err := rows.Scan(&name, &col, &refTable, &refCol, &updateRule, &deleteRule); err != nil {
			return nil, fferr.Wrap(fferr.ErrIntrospection, "mysql: scan foreign key(%s): %v", table, err)
		}
		k, ok := byName[name]
		if !ok {
			k = &schema.Key{Kind: schema.KeyForeign, Name: name, RefTable: refTable, OnUpdate: updateRule, OnDelete: deleteRule}
			byName[name] = k
			order = append(order, name)
		}
		k.Columns = append(k.Columns, col)
		k.RefColumns = append(k.RefColumns, refCol)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var out []schema.Key
	for _, name := range order {
		out = append(out, *byName[name])
	}
	return out, nil
}
