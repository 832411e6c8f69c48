package typemap

import (
	"fmt"

	"github.com/fluxforge/fluxforge/schema"
)

// TransformSchema rewrites every column's ColumnType from source to target
// dialect using engine, the whole-schema step between the dependency
// sorter and diff/apply in spec §2's data flow ("type-mapping engine
// rewrites column types for the target dialect"). The input schema is not
// mutated; a new *schema.Schema with Dialect set to target is returned.
func TransformSchema(engine *Engine, source, target schema.Dialect, s *schema.Schema) (*schema.Schema, error) {
	out := &schema.Schema{Dialect: target, Tables: make([]schema.Table, len(s.Tables))}
	for i, t := range s.Tables {
		tt, err := TransformTable(engine, source, target, t)
		if err != nil {
			return nil, fmt.Errorf("typemap: table %q: %w", t.Name, err)
		}
		out.Tables[i] = tt
	}
	return out, nil
}

// TransformTable rewrites one table's column types; primary key, other
// keys and indices carry column *names* only and need no rewriting.
func TransformTable(engine *Engine, source, target schema.Dialect, t schema.Table) (schema.Table, error) {
	out := t
	out.Columns = make([]schema.Column, len(t.Columns))
	for i, c := range t.Columns {
		mapping, err := engine.Map(source, target, c.Type)
		if err != nil {
			return schema.Table{}, fmt.Errorf("column %q: %w", c.Name, err)
		}
		c.Type = mapping.Type
		out.Columns[i] = c
	}
	return out, nil
}
