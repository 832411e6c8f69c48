package schema

import (
	"fmt"
	"sort"
)

// CycleError is returned by Sort when the FK graph contains a cycle and
// breakCycles was not requested. Vertices holds the cycle's table names.
type CycleError struct {
	Vertices []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("schema: dependency cycle detected among tables: %v", e.Vertices)
}

// Sort computes the dependency sorter of spec §4.5: a topological order
// over FK edges T -> T' (T depends on T'), tie-broken lexicographically by
// table name. If the graph has a cycle and breakCycles is false, it returns
// a *CycleError naming the cycle's vertex set. If breakCycles is true, it
// deterministically drops the FK edge touching the lexicographically
// largest table in the cycle and retries until a DAG remains.
func Sort(tables []Table, breakCycles bool) ([]Table, error) {
	working := make([]Table, len(tables))
	copy(working, tables)

	for {
		sortByName(working)
		deps := buildDependencies(working)

		sorted, ok, cycle := topologicalSort(working, deps, func(t Table) string { return t.Name })
		if ok {
			return sorted, nil
		}

		if !breakCycles {
			sort.Strings(cycle)
			return nil, &CycleError{Vertices: dedupe(cycle)}
		}

		working = dropLargestCycleEdge(working, cycle)
	}
}

func sortByName(tables []Table) {
	sort.Slice(tables, func(i, j int) bool { return tables[i].Name < tables[j].Name })
}

// buildDependencies maps each table name to the lexicographically-sorted
// names of tables it has an FK into (its dependencies).
func buildDependencies(tables []Table) map[string][]string {
	deps := make(map[string][]string, len(tables))
	for _, t := range tables {
		var refs []string
		for _, fk := range t.ForeignKeys() {
			refs = append(refs, fk.RefTable)
		}
		sort.Strings(refs)
		deps[t.Name] = refs
	}
	return deps
}

// dropLargestCycleEdge removes the FK whose owning table is the
// lexicographically-largest table name present in the cycle, per spec
// §4.5's deterministic --break-cycles rule.
func dropLargestCycleEdge(tables []Table, cycle []string) []Table {
	largest := dedupe(cycle)
	sort.Strings(largest)
	if len(largest) == 0 {
		return tables
	}
	target := largest[len(largest)-1]

	out := make([]Table, len(tables))
	for i, t := range tables {
		if t.Name != target {
			out[i] = t
			continue
		}
		cp := t
		var kept []Key
		dropped := false
		for _, k := range t.Keys {
			if !dropped && k.Kind == KeyForeign && inCycle(k.RefTable, cycle) {
				dropped = true
				continue
			}
			kept = append(kept, k)
		}
		cp.Keys = kept
		out[i] = cp
	}
	return out
}

func inCycle(name string, cycle []string) bool {
	for _, c := range cycle {
		if c == name {
			return true
		}
	}
	return false
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
