package schema

import "testing"

func fk(table, refTable string) Table {
	return Table{
		Name: table,
		Keys: []Key{{Kind: KeyForeign, Columns: []string{refTable + "_id"}, RefTable: refTable}},
	}
}

func TestSortOrdersDependenciesBeforeDependents(t *testing.T) {
	// items -> orders -> customers (arrows = FK), from spec §8 scenario 5.
	tables := []Table{
		fk("items", "orders"),
		{Name: "customers"},
		fk("orders", "customers"),
	}
	sorted, err := Sort(tables, false)
	if err != nil {
		t.Fatal(err)
	}
	if err := ValidateSorted(sorted); err != nil {
		t.Fatal(err)
	}
	names := []string{sorted[0].Name, sorted[1].Name, sorted[2].Name}
	want := []string{"customers", "orders", "items"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("got order %v, want %v", names, want)
		}
	}
}

func TestSortTieBreaksLexicographically(t *testing.T) {
	tables := []Table{{Name: "zebra"}, {Name: "apple"}, {Name: "mango"}}
	sorted, err := Sort(tables, false)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"apple", "mango", "zebra"}
	for i, w := range want {
		if sorted[i].Name != w {
			t.Fatalf("got %v, want %v", sorted, want)
		}
	}
}

func TestSortReportsCycle(t *testing.T) {
	tables := []Table{fk("a", "b"), fk("b", "a")}
	_, err := Sort(tables, false)
	if err == nil {
		t.Fatal("expected cycle error")
	}
	cycleErr, ok := err.(*CycleError)
	if !ok {
		t.Fatalf("expected *CycleError, got %T", err)
	}
	if len(cycleErr.Vertices) != 2 {
		t.Fatalf("expected both vertices reported, got %v", cycleErr.Vertices)
	}
}

func TestSortBreakCyclesDropsLexicographicallyLargestTable(t *testing.T) {
	tables := []Table{fk("a", "b"), fk("b", "a")}
	sorted, err := Sort(tables, true)
	if err != nil {
		t.Fatalf("expected break-cycles to succeed, got %v", err)
	}
	if err := ValidateSorted(sorted); err != nil {
		t.Fatalf("expected DAG after breaking cycle: %v", err)
	}
	// "b" is lexicographically largest, so its edge into "a" is dropped.
	var bTable Table
	for _, tb := range sorted {
		if tb.Name == "b" {
			bTable = tb
		}
	}
	if len(bTable.ForeignKeys()) != 0 {
		t.Fatalf("expected b's FK edge dropped, got %+v", bTable.Keys)
	}
}
