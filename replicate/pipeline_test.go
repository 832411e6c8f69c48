package replicate

import (
	"context"
	"errors"
	"testing"

	"github.com/fluxforge/fluxforge/fferr"
	"github.com/fluxforge/fluxforge/logging"
	"github.com/fluxforge/fluxforge/schema"
	"github.com/fluxforge/fluxforge/value"
)

func intCol(name string, nullable bool) schema.Column {
	return schema.Column{Name: name, Type: schema.ColumnType{Base: schema.BaseInt, Nullable: nullable}}
}

func ordersTable() schema.Table {
	return schema.Table{
		Name:       "orders",
		Columns:    []schema.Column{intCol("id", false), intCol("amount", false)},
		PrimaryKey: &schema.Key{Kind: schema.KeyPrimary, Columns: []string{"id"}},
	}
}

func TestMigrateTableCopiesAllRows(t *testing.T) {
	src := newFakeDriver(schema.DialectMySQL)
	tgt := newFakeDriver(schema.DialectPostgres)
	table := ordersTable()
	src.rows["orders"] = [][]value.Value{
		{value.Int64(1), value.Int64(100)},
		{value.Int64(2), value.Int64(200)},
		{value.Int64(3), value.Int64(300)},
	}

	p := New(src, tgt, value.Rules{}, nil, nil, Options{ChunkSize: 2})
	res, err := p.MigrateTable(context.Background(), table, table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.RowsDone != 3 {
		t.Fatalf("expected 3 rows done, got %d", res.RowsDone)
	}
	if len(tgt.rows["orders"]) != 3 {
		t.Fatalf("expected 3 rows in target, got %d", len(tgt.rows["orders"]))
	}
	if len(tgt.sequenceResets) == 0 {
		t.Fatalf("expected sequence reset to be invoked for the primary key")
	}
}

func TestMigrateTableRefusesNonEmptyTargetWithoutForce(t *testing.T) {
	src := newFakeDriver(schema.DialectMySQL)
	tgt := newFakeDriver(schema.DialectPostgres)
	table := ordersTable()
	src.rows["orders"] = [][]value.Value{{value.Int64(1), value.Int64(100)}}
	tgt.rows["orders"] = [][]value.Value{{value.Int64(99), value.Int64(1)}}

	p := New(src, tgt, value.Rules{}, nil, nil, Options{})
	_, err := p.MigrateTable(context.Background(), table, table)
	if !errors.Is(err, fferr.ErrDataLossProtection) {
		t.Fatalf("expected ErrDataLossProtection, got %v", err)
	}
}

func TestMigrateTableVerifyAfterWriteDetectsMismatch(t *testing.T) {
	src := newFakeDriver(schema.DialectMySQL)
	tgt := newFakeDriver(schema.DialectPostgres)
	table := ordersTable()
	src.rows["orders"] = [][]value.Value{{value.Int64(1), value.Int64(100)}}

	p := New(src, tgt, value.Rules{}, nil, nil, Options{VerifyAfterWrite: true})
	res, err := p.MigrateTable(context.Background(), table, table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.VerifyMismatches != 0 {
		t.Fatalf("expected no mismatches for an exact copy, got %d", res.VerifyMismatches)
	}

	// Corrupt the target row in place; re-verifying against the same
	// written keys should now report a mismatch.
	tgt.rows["orders"][0][1] = value.Int64(999)
	mismatches, err := p.verify(context.Background(), table, table, []string{"id"}, [][]value.Value{{value.Int64(1)}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mismatches != 1 {
		t.Fatalf("expected 1 mismatch after corrupting the target row, got %d", mismatches)
	}
}

func TestMigrateTableHaltOnErrorStopsAtFirstRowFailure(t *testing.T) {
	src := newFakeDriver(schema.DialectMySQL)
	tgt := newFakeDriver(schema.DialectPostgres)
	table := schema.Table{
		Name:       "timey",
		Columns:    []schema.Column{intCol("id", false), {Name: "d", Type: schema.ColumnType{Base: schema.BaseDate, Nullable: false}}},
		PrimaryKey: &schema.Key{Kind: schema.KeyPrimary, Columns: []string{"id"}},
	}
	src.rows["timey"] = [][]value.Value{
		{value.Int64(1), {Kind: value.KindDate}}, // zero-date sentinel
	}

	p := New(src, tgt, value.Rules{ZeroDateToNull: false}, nil, nil, Options{HaltOnError: true})
	_, err := p.MigrateTable(context.Background(), table, table)
	if !errors.Is(err, fferr.ErrIncompatibleValue) {
		t.Fatalf("expected ErrIncompatibleValue, got %v", err)
	}
}

func TestMigrateTableSkipsRowFailureWithoutHalt(t *testing.T) {
	src := newFakeDriver(schema.DialectMySQL)
	tgt := newFakeDriver(schema.DialectPostgres)
	table := schema.Table{
		Name:       "timey",
		Columns:    []schema.Column{intCol("id", false), {Name: "d", Type: schema.ColumnType{Base: schema.BaseDate, Nullable: false}}},
		PrimaryKey: &schema.Key{Kind: schema.KeyPrimary, Columns: []string{"id"}},
	}
	src.rows["timey"] = [][]value.Value{
		{value.Int64(1), {Kind: value.KindDate}},
		{value.Int64(2), {Kind: value.KindDate, Date: value.DateValue{Year: 2024, Month: 1, Day: 1}}},
	}

	p := New(src, tgt, value.Rules{ZeroDateToNull: false}, nil, nil, Options{HaltOnError: false})
	res, err := p.MigrateTable(context.Background(), table, table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.RowFailures != 1 {
		t.Fatalf("expected 1 row failure, got %d", res.RowFailures)
	}
	if res.RowsDone != 1 {
		t.Fatalf("expected 1 row written, got %d", res.RowsDone)
	}
}

func TestResolveStableKeyFallsBackToOffset(t *testing.T) {
	table := schema.Table{Name: "noKey", Columns: []schema.Column{intCol("x", true)}}
	cursor := ResolveStableKey(table, logging.Nop())
	if !cursor.Offset {
		t.Fatalf("expected offset fallback for a table with no primary/unique key")
	}
}
