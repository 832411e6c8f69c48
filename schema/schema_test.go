package schema

import "testing"

func intp(i int) *int { return &i }

func sampleTable(name string) Table {
	return Table{
		Name: name,
		Columns: []Column{
			{Name: "id", Type: ColumnType{Base: BaseBigInt, Unsigned: true, Nullable: false}},
			{Name: "label", Type: ColumnType{Base: BaseVarchar, Params: TypeParams{Length: intp(191)}, Nullable: true}},
		},
		PrimaryKey: &Key{Kind: KeyPrimary, Columns: []string{"id"}},
	}
}

func TestValidateRejectsDuplicateColumns(t *testing.T) {
	tbl := sampleTable("t")
	tbl.Columns = append(tbl.Columns, Column{Name: "id", Type: ColumnType{Base: BaseInt}})
	if err := tbl.Validate(); err == nil {
		t.Fatal("expected error for duplicate column name")
	}
}

func TestValidateRejectsUnsignedNonInteger(t *testing.T) {
	tbl := sampleTable("t")
	tbl.Columns[1].Type.Unsigned = true
	if err := tbl.Validate(); err == nil {
		t.Fatal("expected error: unsigned only valid on integer types")
	}
}

func TestValidateRejectsScaleExceedingPrecision(t *testing.T) {
	tbl := sampleTable("t")
	tbl.Columns = append(tbl.Columns, Column{
		Name: "amount",
		Type: ColumnType{Base: BaseDecimal, Params: TypeParams{Precision: intp(5), Scale: intp(10)}},
	})
	if err := tbl.Validate(); err == nil {
		t.Fatal("expected error: scale > precision")
	}
}

func TestValidateRejectsNullablePrimaryKeyColumn(t *testing.T) {
	tbl := sampleTable("t")
	tbl.Columns[0].Type.Nullable = true
	if err := tbl.Validate(); err == nil {
		t.Fatal("expected error: primary key column must be NOT NULL")
	}
}

func TestValidateRejectsUnknownPrimaryKeyColumn(t *testing.T) {
	tbl := sampleTable("t")
	tbl.PrimaryKey = &Key{Kind: KeyPrimary, Columns: []string{"missing"}}
	if err := tbl.Validate(); err == nil {
		t.Fatal("expected error: primary key references unknown column")
	}
}

func TestValidateAcceptsWellFormedTable(t *testing.T) {
	tbl := sampleTable("t")
	if err := tbl.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	s := &Schema{Dialect: DialectMySQL, Tables: []Table{sampleTable("orders"), sampleTable("customers")}}
	data, err := s.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Tables) != 2 || got.Dialect != DialectMySQL {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.Tables[0].Columns[1].Type.Params.Length == nil || *got.Tables[0].Columns[1].Type.Params.Length != 191 {
		t.Fatalf("expected length 191 to survive round trip, got %+v", got.Tables[0].Columns[1].Type.Params)
	}
}
