package mysql

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/fluxforge/fluxforge/dialect"
	"github.com/fluxforge/fluxforge/schema"
)

func newMockDriver(t *testing.T) (*Driver, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &Driver{db: db, config: dialect.Config{}.WithDefaults()}, mock
}

func TestIntrospectColumnsParsesUnsignedAndEnum(t *testing.T) {
	d, mock := newMockDriver(t)

	cols := sqlmock.NewRows([]string{
		"COLUMN_NAME", "DATA_TYPE", "COLUMN_TYPE", "IS_NULLABLE", "COLUMN_DEFAULT",
		"EXTRA", "COLUMN_COMMENT", "CHARACTER_MAXIMUM_LENGTH", "NUMERIC_PRECISION", "NUMERIC_SCALE", "DATETIME_PRECISION",
	}).
		AddRow("id", "int", "int(11) unsigned", "NO", nil, "auto_increment", "", 0, 0, 0, 0).
		AddRow("status", "enum", "enum('a','b','c')", "NO", "a", "", "", 0, 0, 0, 0)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COLUMN_NAME, DATA_TYPE, COLUMN_TYPE, IS_NULLABLE, COLUMN_DEFAULT")).
		WithArgs("widgets").
		WillReturnRows(cols)

	got, err := d.introspectColumns(context.Background(), "widgets")
	if err != nil {
		t.Fatalf("introspectColumns: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d columns, want 2", len(got))
	}
	if got[0].Type.Base != schema.BaseInt || !got[0].Type.Unsigned {
		t.Fatalf("id column: got %+v, want unsigned int", got[0].Type)
	}
	if got[1].Type.Base != schema.BaseEnum {
		t.Fatalf("status column: got base %v, want enum", got[1].Type.Base)
	}
	want := []string{"a", "b", "c"}
	for i, v := range want {
		if got[1].Type.Params.EnumValues[i] != v {
			t.Fatalf("enum label %d: got %q, want %q", i, got[1].Type.Params.EnumValues[i], v)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestIntrospectIndicesSplitsPrimaryUniqueSecondary(t *testing.T) {
	d, mock := newMockDriver(t)

	rows := sqlmock.NewRows([]string{"INDEX_NAME", "COLUMN_NAME", "NON_UNIQUE", "SEQ_IN_INDEX", "INDEX_TYPE", "COLLATION", "SUB_PART"}).
		AddRow("PRIMARY", "id", 0, 1, "BTREE", "A", nil).
		AddRow("uniq_email", "email", 0, 1, "BTREE", "A", nil).
		AddRow("idx_name", "name", 1, 1, "BTREE", "A", nil)

	mock.ExpectQuery(regexp.QuoteMeta("FROM information_schema.STATISTICS")).
		WithArgs("widgets").
		WillReturnRows(rows)

	pk, uniques, indices, err := d.introspectIndices(context.Background(), "widgets")
	if err != nil {
		t.Fatalf("introspectIndices: %v", err)
	}
	if pk == nil || pk.Columns[0] != "id" {
		t.Fatalf("primary key: got %+v", pk)
	}
	if len(uniques) != 1 || uniques[0].Name != "uniq_email" {
		t.Fatalf("unique keys: got %+v", uniques)
	}
	if len(indices) != 1 || indices[0].Name != "idx_name" {
		t.Fatalf("secondary indices: got %+v", indices)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTableIsEmpty(t *testing.T) {
	d, mock := newMockDriver(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM `widgets` LIMIT 1")).
		WillReturnError(sql.ErrNoRows)

	empty, err := d.TableIsEmpty(context.Background(), "widgets")
	if err != nil {
		t.Fatalf("TableIsEmpty: %v", err)
	}
	if !empty {
		t.Fatalf("got empty=false, want true")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRenderDDLOrdersPrimaryKeyThenUniqueThenIndices(t *testing.T) {
	d := &Driver{}
	table := schema.Table{
		Name: "widgets",
		Columns: []schema.Column{
			{Name: "id", Type: schema.ColumnType{Base: schema.BaseBigInt, Unsigned: true}},
			{Name: "email", Type: schema.ColumnType{Base: schema.BaseVarchar, Params: schema.TypeParams{Length: intp(255)}}},
		},
		PrimaryKey: &schema.Key{Kind: schema.KeyPrimary, Columns: []string{"id"}},
		Keys:       []schema.Key{{Kind: schema.KeyUnique, Name: "uniq_email", Columns: []string{"email"}}},
		Indices:    []schema.Index{{Name: "idx_email_name", Columns: []schema.IndexColumn{{Name: "email"}}}},
	}

	stmts, err := d.RenderDDL(table)
	if err != nil {
		t.Fatalf("RenderDDL: %v", err)
	}
	if len(stmts) != 2 {
		t.Fatalf("got %d statements, want 2 (create table, create index)", len(stmts))
	}
	if !regexp.MustCompile("PRIMARY KEY \\(`id`\\)").MatchString(stmts[0].SQL) {
		t.Fatalf("missing primary key clause: %s", stmts[0].SQL)
	}
	if !regexp.MustCompile("UNIQUE KEY `uniq_email`").MatchString(stmts[0].SQL) {
		t.Fatalf("missing unique key clause: %s", stmts[0].SQL)
	}
	if !regexp.MustCompile("CREATE.*INDEX `idx_email_name`").MatchString(stmts[1].SQL) {
		t.Fatalf("missing secondary index statement: %s", stmts[1].SQL)
	}
}
