package typemap

import (
	"errors"
	"strings"
	"testing"

	"github.com/fluxforge/fluxforge/fferr"
	"github.com/fluxforge/fluxforge/schema"
)

func TestMapUnsignedIntWidensToBigint(t *testing.T) {
	e := NewEngine(DefaultMySQLToPostgres())
	m, err := e.Map(schema.DialectMySQL, schema.DialectPostgres, schema.ColumnType{Base: schema.BaseInt, Unsigned: true})
	if err != nil {
		t.Fatalf("unsigned int mapping should be allowed by default (lossless widening): %v", err)
	}
	if m.Type.Base != schema.BaseBigInt {
		t.Fatalf("expected bigint, got %s", m.Type.Base)
	}
	if m.Lossy {
		t.Fatalf("widening an unsigned int into bigint should not be marked lossy")
	}
}

func TestMapUnsignedBigintIsLossyAndRejectedByDefault(t *testing.T) {
	e := NewEngine(DefaultMySQLToPostgres())
	_, err := e.Map(schema.DialectMySQL, schema.DialectPostgres, schema.ColumnType{Base: schema.BaseBigInt, Unsigned: true})
	if !errors.Is(err, fferr.ErrMappingLossy) {
		t.Fatalf("expected ErrMappingLossy, got %v", err)
	}
}

func TestMapUnsignedBigintAllowedWithAllowLossy(t *testing.T) {
	policy := DefaultMySQLToPostgres()
	policy.AllowLossy = true
	e := NewEngine(policy)
	m, err := e.Map(schema.DialectMySQL, schema.DialectPostgres, schema.ColumnType{Base: schema.BaseBigInt, Unsigned: true})
	if err != nil {
		t.Fatalf("unexpected error with AllowLossy: %v", err)
	}
	if m.Type.Base != schema.BaseDecimal || m.Type.Params.Precision == nil || *m.Type.Params.Precision != 20 {
		t.Fatalf("expected numeric(20,0), got %+v", m.Type)
	}
}

func TestMapEnumDefaultsToNativeEnum(t *testing.T) {
	e := NewEngine(DefaultMySQLToPostgres())
	m, err := e.Map(schema.DialectMySQL, schema.DialectPostgres, schema.ColumnType{
		Base: schema.BaseEnum, Params: schema.TypeParams{EnumValues: []string{"a", "b"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if m.Type.Base != schema.BaseEnum || len(m.Type.Params.EnumValues) != 2 {
		t.Fatalf("expected native enum preserved, got %+v", m.Type)
	}
	if m.Lossy {
		t.Fatal("native enum mapping should not be lossy")
	}
}

func TestMapEnumAsTextRuleOverridesDefault(t *testing.T) {
	policy := DefaultMySQLToPostgres()
	policy.AllowLossy = true
	policy.Postgres.RulesOnWrite.EnumAs = EnumAsText
	e := NewEngine(policy)
	m, err := e.Map(schema.DialectMySQL, schema.DialectPostgres, schema.ColumnType{
		Base: schema.BaseEnum, Params: schema.TypeParams{EnumValues: []string{"a", "b"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if m.Type.Base != schema.BaseText {
		t.Fatalf("expected text, got %s", m.Type.Base)
	}
	if !m.Lossy {
		t.Fatal("enum_as=text should be reported lossy")
	}
}

func TestMapSetDefaultsToTextArray(t *testing.T) {
	e := NewEngine(DefaultMySQLToPostgres())
	m, err := e.Map(schema.DialectMySQL, schema.DialectPostgres, schema.ColumnType{Base: schema.BaseSet})
	if err != nil {
		t.Fatal(err)
	}
	if m.Type.Base != schema.BaseArray {
		t.Fatalf("expected array, got %s", m.Type.Base)
	}
}

func TestMapBitOneToBoolean(t *testing.T) {
	e := NewEngine(DefaultMySQLToPostgres())
	one := 1
	m, err := e.Map(schema.DialectMySQL, schema.DialectPostgres, schema.ColumnType{Base: schema.BaseBit, Params: schema.TypeParams{Length: &one}})
	if err != nil {
		t.Fatal(err)
	}
	if m.Type.Base != schema.BaseBoolean {
		t.Fatalf("expected boolean, got %s", m.Type.Base)
	}
}

func TestMapWideBitIsLossyBytea(t *testing.T) {
	policy := DefaultMySQLToPostgres()
	policy.AllowLossy = true
	e := NewEngine(policy)
	eight := 8
	m, err := e.Map(schema.DialectMySQL, schema.DialectPostgres, schema.ColumnType{Base: schema.BaseBit, Params: schema.TypeParams{Length: &eight}})
	if err != nil {
		t.Fatal(err)
	}
	if m.Type.Base != schema.BaseBytea || !m.Lossy {
		t.Fatalf("expected lossy bytea, got %+v lossy=%v", m.Type, m.Lossy)
	}
}

func TestMapTypesOnWriteTokenOverrideWins(t *testing.T) {
	policy := DefaultMySQLToPostgres()
	policy.Postgres.TypesOnWrite = map[string]string{"tinyint": "integer"}
	e := NewEngine(policy)
	m, err := e.Map(schema.DialectMySQL, schema.DialectPostgres, schema.ColumnType{Base: schema.BaseTinyInt})
	if err != nil {
		t.Fatal(err)
	}
	if m.Type.Base != schema.BaseType("integer") {
		t.Fatalf("expected override token 'integer' to win, got %s", m.Type.Base)
	}
	if m.Lossy {
		t.Fatal("an explicit types.on_write override is never itself flagged lossy")
	}
}

func TestMapUnknownBaseTypeIsMappingMissing(t *testing.T) {
	e := NewEngine(DefaultMySQLToPostgres())
	_, err := e.Map(schema.DialectMySQL, schema.DialectPostgres, schema.ColumnType{Base: schema.BaseType("nonexistent")})
	if !errors.Is(err, fferr.ErrMappingMissing) {
		t.Fatalf("expected ErrMappingMissing, got %v", err)
	}
}

func TestMapIsMemoized(t *testing.T) {
	e := NewEngine(DefaultMySQLToPostgres())
	ct := schema.ColumnType{Base: schema.BaseInt}
	m1, err := e.Map(schema.DialectMySQL, schema.DialectPostgres, ct)
	if err != nil {
		t.Fatal(err)
	}
	m2, err := e.Map(schema.DialectMySQL, schema.DialectPostgres, ct)
	if err != nil {
		t.Fatal(err)
	}
	if m1.Type.Base != m2.Type.Base {
		t.Fatalf("expected identical cached mapping, got %+v vs %+v", m1, m2)
	}
}

func TestMapDoesNotCollideOnNullabilityForSharedShape(t *testing.T) {
	e := NewEngine(DefaultMySQLToPostgres())
	notNull, err := e.Map(schema.DialectMySQL, schema.DialectPostgres, schema.ColumnType{Base: schema.BaseInt, Nullable: false})
	if err != nil {
		t.Fatal(err)
	}
	nullable, err := e.Map(schema.DialectMySQL, schema.DialectPostgres, schema.ColumnType{Base: schema.BaseInt, Nullable: true})
	if err != nil {
		t.Fatal(err)
	}
	if notNull.Type.Nullable {
		t.Fatal("column a INT NOT NULL should stay NOT NULL after mapping")
	}
	if !nullable.Type.Nullable {
		t.Fatal("column b INT NULL should stay nullable after mapping, not inherit the first column's NOT NULL")
	}
}

func TestMapDoesNotCollideOnEnumValuesForSharedShape(t *testing.T) {
	e := NewEngine(DefaultMySQLToPostgres())
	first, err := e.Map(schema.DialectMySQL, schema.DialectPostgres, schema.ColumnType{
		Base: schema.BaseEnum, Params: schema.TypeParams{EnumValues: []string{"a", "b"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.Map(schema.DialectMySQL, schema.DialectPostgres, schema.ColumnType{
		Base: schema.BaseEnum, Params: schema.TypeParams{EnumValues: []string{"x", "y", "z"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(first.Type.Params.EnumValues, ",") != "a,b" {
		t.Fatalf("first enum column's label set corrupted: %+v", first.Type.Params.EnumValues)
	}
	if strings.Join(second.Type.Params.EnumValues, ",") != "x,y,z" {
		t.Fatalf("second enum column should keep its own label set, got %+v", second.Type.Params.EnumValues)
	}
}

func TestValueRulesCombinesSourceReadAndTargetWriteFlags(t *testing.T) {
	policy := DefaultMySQLToPostgres()
	vr := policy.ValueRules(schema.DialectMySQL, schema.DialectPostgres)
	if !vr.ZeroDateToNull {
		t.Fatal("expected zero_date_to_null from mysql on_read rules")
	}
	if !vr.BitOneToBoolean {
		t.Fatal("expected bit(1)->boolean from postgres on_write rules")
	}
}
