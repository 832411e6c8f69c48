package diff

import (
	"github.com/fluxforge/fluxforge/dialect"
	"github.com/fluxforge/fluxforge/schema"
)

// diffTable produces one table's alter steps in spec §4.6 order: add
// columns, alter columns, drop indices, add indices, drop columns. Drop
// columns from DropUnknown are appended later by applyDropUnknown, which
// is why they aren't emitted here even when DropUnknown governs the
// caller — diffTable only ever compares columns/indices that exist on
// both sides.
func diffTable(desired, current schema.Table) TablePlan {
	tp := TablePlan{Table: desired.Name}

	currentCols := map[string]schema.Column{}
	for _, c := range current.Columns {
		currentCols[c.Name] = c
	}

	var alterCols []dialect.AlterStmt
	for _, c := range desired.Columns {
		cur, ok := currentCols[c.Name]
		if !ok {
			col := c
			tp.Alters = append(tp.Alters, dialect.AlterStmt{Table: desired.Name, Kind: dialect.AddColumn, Column: &col})
			continue
		}
		if !typesEqual(c.Type, cur.Type) {
			col := c
			alterCols = append(alterCols, dialect.AlterStmt{Table: desired.Name, Kind: dialect.AlterColumnType, Column: &col})
		}
		if c.Type.Nullable != cur.Type.Nullable {
			col := c
			alterCols = append(alterCols, dialect.AlterStmt{Table: desired.Name, Kind: dialect.AlterColumnNullability, Column: &col})
		}
		if !defaultsEqual(c.Default, cur.Default) {
			col := c
			alterCols = append(alterCols, dialect.AlterStmt{Table: desired.Name, Kind: dialect.AlterColumnDefault, Column: &col})
		}
	}
	tp.Alters = append(tp.Alters, alterCols...)

	idxDrop, idxAdd := diffIndices(desired, current)
	tp.Alters = append(tp.Alters, idxDrop...)
	tp.Alters = append(tp.Alters, idxAdd...)

	return tp
}

func typesEqual(a, b schema.ColumnType) bool {
	if a.Base != b.Base || a.Unsigned != b.Unsigned {
		return false
	}
	if !intPtrEqual(a.Params.Length, b.Params.Length) ||
		!intPtrEqual(a.Params.Precision, b.Params.Precision) ||
		!intPtrEqual(a.Params.Scale, b.Params.Scale) {
		return false
	}
	if (a.Params.ArrayElem == nil) != (b.Params.ArrayElem == nil) {
		return false
	}
	if a.Params.ArrayElem != nil && *a.Params.ArrayElem != *b.Params.ArrayElem {
		return false
	}
	if len(a.Params.EnumValues) != len(b.Params.EnumValues) {
		return false
	}
	for i := range a.Params.EnumValues {
		if a.Params.EnumValues[i] != b.Params.EnumValues[i] {
			return false
		}
	}
	return true
}

func intPtrEqual(a, b *int) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}

func defaultsEqual(a, b *schema.Default) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	if a == nil {
		return true
	}
	if (a.Literal == nil) != (b.Literal == nil) {
		return false
	}
	if a.Literal != nil {
		return *a.Literal == *b.Literal
	}
	return a.Expression == b.Expression
}
