package postgres

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/fluxforge/fluxforge/fferr"
	"github.com/fluxforge/fluxforge/schema"
)

// introspectIndices reads pg_index/pg_class/pg_am, splitting out the
// primary key and UNIQUE constraints from ordinary secondary indices (spec
// §4.4 deterministic order: indices lexicographic by name). pg_index has no
// direct column-name array, so indkey/indoption are cast to text and
// resolved against each table's attribute names.
func (d *Driver) introspectIndices(ctx context.Context, table string) (*schema.Key, []schema.Key, []schema.Index, error) {
	attrNames, err := d.attributeNamesByNum(ctx, table)
	if err != nil {
		return nil, nil, nil, err
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT irel.relname, ix.indisunique, ix.indisprimary, am.amname,
		       ix.indkey::text, ix.indoption::text
		FROM pg_catalog.pg_index ix
		JOIN pg_catalog.pg_class irel ON irel.oid = ix.indexrelid
		JOIN pg_catalog.pg_class trel ON trel.oid = ix.indrelid
		JOIN pg_catalog.pg_namespace n ON n.oid = trel.relnamespace
		JOIN pg_catalog.pg_am am ON am.oid = irel.relam
		WHERE trel.relname = $1 AND n.nspname = 'public'
		ORDER BY irel.relname`, table)
	if err != nil {
		return nil, nil, nil, fferr.Wrap(fferr.ErrIntrospection, "postgres: introspect indices(%s): %v", table, err)
	}
	defer rows.Close()

	type built struct {
		unique    bool
		primary   bool
		kind      schema.IndexKind
		cols      []schema.IndexColumn
	}
	var order []string
	byName := map[string]*built{}

	for rows.Next() {
		var name, amname, indkey, indoption string
		var unique, primary bool
		if err := rows.Scan(&name, &unique, &primary, &amname, &indkey, &indoption); err != nil {
			return nil, nil, nil, fferr.Wrap(fferr.ErrIntrospection, "postgres: scan index(%s): %v", table, err)
		}

		attnums := strings.Fields(indkey)
		options := strings.Fields(indoption)
		cols := make([]schema.IndexColumn, 0, len(attnums))
		for i, a := range attnums {
			n, err := strconv.Atoi(a)
			if err != nil {
				continue
			}
			dir := schema.Asc
			if i < len(options) {
				opt, _ := strconv.Atoi(options[i])
				if opt&0x01 != 0 {
					dir = schema.Desc
				}
			}
			cols = append(cols, schema.IndexColumn{Name: attrNames[n], Order: dir})
		}

		byName[name] = &built{unique: unique, primary: primary, kind: indexKindOf(amname), cols: cols}
		order = append(order, name)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, nil, err
	}

	var pk *schema.Key
	var uniques []schema.Key
	var indices []schema.Index

	var secondaryNames []string
	for _, name := range order {
		b := byName[name]
		if b.primary {
			colNames := make([]string, len(b.cols))
			for i, c := range b.cols {
				colNames[i] = c.Name
			}
			pk = &schema.Key{Kind: schema.KeyPrimary, Columns: colNames}
			continue
		}
		secondaryNames = append(secondaryNames, name)
	}
	sort.Strings(secondaryNames)

	for _, name := range secondaryNames {
		b := byName[name]
		if b.unique {
			colNames := make([]string, len(b.cols))
			for i, c := range b.cols {
				colNames[i] = c.Name
			}
			uniques = append(uniques, schema.Key{Kind: schema.KeyUnique, Name: name, Columns: colNames})
			continue
		}
		indices = append(indices, schema.Index{Name: name, Kind: b.kind, Unique: false, Columns: b.cols})
	}

	return pk, uniques, indices, nil
}

func (d *Driver) attributeNamesByNum(ctx context.Context, table string) (map[int]string, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT attnum, attname FROM pg_catalog.pg_attribute
		WHERE attrelid = $1::regclass AND attnum > 0 AND NOT attisdropped`, table)
	if err != nil {
		return nil, fferr.Wrap(fferr.ErrIntrospection, "postgres: attribute names(%s): %v", table, err)
	}
	defer rows.Close()

	out := map[int]string{}
	for rows.Next() {
		var num int
		var name string
		if err := rows.Scan(&num, &name); err != nil {
			return nil, fferr.Wrap(fferr.ErrIntrospection, "postgres: scan attribute(%s): %v", table, err)
		}
		out[num] = name
	}
	return out, rows.Err()
}

func indexKindOf(amname string) schema.IndexKind {
	switch strings.ToLower(amname) {
	case "gin":
		return schema.IndexGin
	case "gist":
		return schema.IndexGist
	case "hash":
		return schema.IndexHash
	default:
		return schema.IndexBTree
	}
}

// introspectForeignKeys reads pg_constraint (contype='f'); FK metadata is
// carried only for dependency ordering (spec §9) — no FK DDL is ever
// emitted from it.
func (d *Driver) introspectForeignKeys(ctx context.Context, table string) ([]schema.Key, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT co.conname, co.confrelid::regclass::text,
		       co.conkey, co.confkey, co.confupdtype, co.confdeltype
		FROM pg_catalog.pg_constraint co
		JOIN pg_catalog.pg_class trel ON trel.oid = co.conrelid
		JOIN pg_catalog.pg_namespace n ON n.oid = trel.relnamespace
		WHERE trel.relname = $1 AND n.nspname = 'public' AND co.contype = 'f'
		ORDER BY co.conname`, table)
	if err != nil {
		return nil, fferr.Wrap(fferr.ErrIntrospection, "postgres: introspect foreign keys(%s): %v", table, err)
	}
	defer rows.Close()

	localAttrs, err := d.attributeNamesByNum(ctx, table)
	if err != nil {
		return nil, err
	}

	var out []schema.Key
	for rows.Next() {
		var name, refTable string
		var conkey, confkey pq.Int64Array
		var updRule, delRule string
		if err := rows.Scan(&name, &refTable, &conkey, &confkey, &updRule, &delRule); err != nil {
			return nil, fferr.Wrap(fferr.ErrIntrospection, "postgres: scan foreign key(%s): %v", table, err)
		}

		refAttrs, err := d.attributeNamesByNum(ctx, refTable)
		if err != nil {
			return nil, err
		}

		k := schema.Key{
			Kind:     schema.KeyForeign,
			Name:     name,
			RefTable: refTable,
			OnUpdate: fkRuleText(updRule),
			OnDelete: fkRuleText(delRule),
		}
		for _, n := range conkey {
			k.Columns = append(k.Columns, localAttrs[int(n)])
		}
		for _, n := range confkey {
			k.RefColumns = append(k.RefColumns, refAttrs[int(n)])
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func fkRuleText(code string) string {
	switch code {
	case "a":
		return "NO ACTION"
	case "r":
		return "RESTRICT"
	case "c":
		return "CASCADE"
	case "n":
		return "SET NULL"
	case "d":
		return "SET DEFAULT"
	default:
		return ""
	}
}
