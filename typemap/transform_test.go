package typemap

import (
	"testing"

	"github.com/fluxforge/fluxforge/schema"
)

func TestTransformTableRewritesColumnTypes(t *testing.T) {
	e := NewEngine(DefaultMySQLToPostgres())
	table := schema.Table{
		Name: "orders",
		Columns: []schema.Column{
			{Name: "id", Type: schema.ColumnType{Base: schema.BaseInt, Unsigned: true}},
			{Name: "total", Type: schema.ColumnType{Base: schema.BaseDouble}},
		},
		PrimaryKey: &schema.Key{Kind: schema.KeyPrimary, Columns: []string{"id"}},
	}

	out, err := TransformTable(e, schema.DialectMySQL, schema.DialectPostgres, table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Columns[0].Type.Base != schema.BaseBigInt {
		t.Fatalf("expected unsigned int to widen to bigint, got %s", out.Columns[0].Type.Base)
	}
	if out.Columns[1].Type.Base != schema.BaseDouble {
		t.Fatalf("expected double to pass through as double precision base, got %s", out.Columns[1].Type.Base)
	}
	if out.PrimaryKey == nil || out.PrimaryKey.Columns[0] != "id" {
		t.Fatalf("primary key should be preserved unchanged")
	}
}

func TestTransformSchemaSetsTargetDialect(t *testing.T) {
	e := NewEngine(DefaultMySQLToPostgres())
	s := &schema.Schema{
		Dialect: schema.DialectMySQL,
		Tables: []schema.Table{
			{Name: "t", Columns: []schema.Column{{Name: "c", Type: schema.ColumnType{Base: schema.BaseVarchar, Params: schema.TypeParams{Length: intp(10)}}}}},
		},
	}

	out, err := TransformSchema(e, schema.DialectMySQL, schema.DialectPostgres, s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Dialect != schema.DialectPostgres {
		t.Fatalf("expected target dialect postgres, got %s", out.Dialect)
	}
	if len(out.Tables) != 1 || out.Tables[0].Columns[0].Name != "c" {
		t.Fatalf("expected table/column to carry through")
	}
}

func TestTransformTableFailsOnMappingMissing(t *testing.T) {
	e := NewEngine(Policy{})
	_, err := TransformTable(e, schema.DialectMySQL, schema.DialectPostgres, schema.Table{
		Name:    "t",
		Columns: []schema.Column{{Name: "c", Type: schema.ColumnType{Base: schema.BaseType("nonexistent")}}},
	})
	if err == nil {
		t.Fatalf("expected mapping error for a base type with no mapping")
	}
}
