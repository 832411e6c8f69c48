package schema

import "fmt"

// Validate checks the invariants of spec §3 that must always hold for a
// Schema. It does not check the post-sort FK-ordering invariant; callers
// that rely on dependency order should additionally check with
// Sort's returned order or call ValidateSorted.
func (s *Schema) Validate() error {
	for _, t := range s.Tables {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("schema: table %q: %w", t.Name, err)
		}
	}
	return nil
}

// Validate checks a single table's invariants: unique column names, unique
// index names, primary key columns exist and are NOT NULL, decimal
// scale<=precision, unsigned only on integers.
func (t *Table) Validate() error {
	seenCols := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if seenCols[c.Name] {
			return fmt.Errorf("duplicate column name %q", c.Name)
		}
		seenCols[c.Name] = true
		if err := c.Type.validate(); err != nil {
			return fmt.Errorf("column %q: %w", c.Name, err)
		}
	}

	seenIdx := make(map[string]bool, len(t.Indices))
	for _, idx := range t.Indices {
		if seenIdx[idx.Name] {
			return fmt.Errorf("duplicate index name %q", idx.Name)
		}
		seenIdx[idx.Name] = true
	}

	if t.PrimaryKey != nil {
		for _, colName := range t.PrimaryKey.Columns {
			col := t.Column(colName)
			if col == nil {
				return fmt.Errorf("primary key references unknown column %q", colName)
			}
			if col.Type.Nullable {
				return fmt.Errorf("primary key column %q must be NOT NULL", colName)
			}
		}
	}

	return nil
}

// ValidateSorted checks the post-sort invariant of spec §3: for every FK
// edge T -> T', T' precedes T in tables.
func ValidateSorted(tables []Table) error {
	position := make(map[string]int, len(tables))
	for i, t := range tables {
		position[t.Name] = i
	}
	for _, t := range tables {
		for _, fk := range t.ForeignKeys() {
			refPos, ok := position[fk.RefTable]
			if !ok {
				continue // referenced table outside this schema snapshot
			}
			if refPos >= position[t.Name] {
				return fmt.Errorf("schema: fk edge %s -> %s violates dependency order", t.Name, fk.RefTable)
			}
		}
	}
	return nil
}
