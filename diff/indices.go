package diff

import (
	"github.com/fluxforge/fluxforge/dialect"
	"github.com/fluxforge/fluxforge/schema"
)

// diffIndices compares the indexable constructs of desired against
// current — secondary indices plus unique keys, both renderable through
// RenderAlter's AddIndex/DropIndex since a CREATE UNIQUE INDEX is
// equivalent to a named unique constraint in both dialects — and returns
// the drop and add steps separately so the caller can place drops before
// adds (spec §4.6 puts drop indices ahead of add indices, add columns
// ahead of both).
//
// Primary keys are not diffed: neither driver supports altering a
// table's primary key, and the spec doesn't ask for it.
func diffIndices(desired, current schema.Table) (drops, adds []dialect.AlterStmt) {
	desiredSet := indexSet(desired)
	currentSet := indexSet(current)

	currentByName := map[string]schema.Index{}
	for _, idx := range currentSet {
		currentByName[idx.Name] = idx
	}
	desiredByName := map[string]schema.Index{}
	for _, idx := range desiredSet {
		desiredByName[idx.Name] = idx
	}

	for _, idx := range desiredSet {
		cur, ok := currentByName[idx.Name]
		if !ok {
			addIdx := idx
			adds = append(adds, dialect.AlterStmt{Table: desired.Name, Kind: dialect.AddIndex, Index: &addIdx})
			continue
		}
		if !indexColumnsEqual(idx, cur) {
			dropIdx := cur
			addIdx := idx
			drops = append(drops, dialect.AlterStmt{Table: desired.Name, Kind: dialect.DropIndex, Index: &dropIdx})
			adds = append(adds, dialect.AlterStmt{Table: desired.Name, Kind: dialect.AddIndex, Index: &addIdx})
		}
	}

	for _, idx := range currentSet {
		if _, ok := desiredByName[idx.Name]; !ok {
			dropIdx := idx
			drops = append(drops, dialect.AlterStmt{Table: desired.Name, Kind: dialect.DropIndex, Index: &dropIdx})
		}
	}

	return drops, adds
}

// indexSet folds a table's unique keys in alongside its secondary
// indices so both diff through the same added/removed/changed-columns
// logic.
func indexSet(t schema.Table) []schema.Index {
	out := make([]schema.Index, 0, len(t.Indices)+len(t.Keys))
	for _, k := range t.Keys {
		if k.Kind != schema.KeyUnique {
			continue
		}
		cols := make([]schema.IndexColumn, len(k.Columns))
		for i, c := range k.Columns {
			cols[i] = schema.IndexColumn{Name: c}
		}
		out = append(out, schema.Index{Name: k.Name, Kind: schema.IndexBTree, Unique: true, Columns: cols})
	}
	out = append(out, t.Indices...)
	return out
}

func indexColumnsEqual(a, b schema.Index) bool {
	if a.Unique != b.Unique || a.Kind != b.Kind || len(a.Columns) != len(b.Columns) {
		return false
	}
	for i := range a.Columns {
		ac, bc := a.Columns[i], b.Columns[i]
		if ac.Name != bc.Name || ac.Order != bc.Order {
			return false
		}
		if !intPtrEqual(ac.PrefixLen, bc.PrefixLen) {
			return false
		}
	}
	return true
}
