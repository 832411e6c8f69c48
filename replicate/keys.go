package replicate

import (
	"github.com/fluxforge/fluxforge/dialect"
	"github.com/fluxforge/fluxforge/logging"
	"github.com/fluxforge/fluxforge/schema"
)

// ResolveStableKey picks the cursoring key for a table per spec §4.7 step
// 2: primary key if present, else the first unique not-null index, else
// LIMIT/OFFSET paging with a logged warning about the degradation.
func ResolveStableKey(table schema.Table, log *logging.Logger) dialect.KeyCursor {
	if table.PrimaryKey != nil && len(table.PrimaryKey.Columns) > 0 {
		return dialect.KeyCursor{KeyColumns: table.PrimaryKey.Columns}
	}

	for _, k := range table.Keys {
		if k.Kind != schema.KeyUnique {
			continue
		}
		if allNotNull(table, k.Columns) {
			return dialect.KeyCursor{KeyColumns: k.Columns}
		}
	}

	for _, idx := range table.Indices {
		if !idx.Unique {
			continue
		}
		cols := columnNames(idx.Columns)
		if allNotNull(table, cols) {
			return dialect.KeyCursor{KeyColumns: cols}
		}
	}

	log.StableKeyFallback(table.Name)
	return dialect.KeyCursor{Offset: true}
}

func columnNames(cols []schema.IndexColumn) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name
	}
	return out
}

func allNotNull(table schema.Table, colNames []string) bool {
	for _, name := range colNames {
		col := table.Column(name)
		if col == nil || col.Type.Nullable {
			return false
		}
	}
	return len(colNames) > 0
}
