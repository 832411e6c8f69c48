package replicate

import (
	"context"
	"fmt"

	"github.com/fluxforge/fluxforge/dialect"
	"github.com/fluxforge/fluxforge/schema"
	"github.com/fluxforge/fluxforge/value"
)

// fakeDriver is an in-memory dialect.Driver used to exercise the pipeline
// without a real database, the way dialect/mysql's driver_test.go uses
// go-sqlmock at the SQL layer one level down.
type fakeDriver struct {
	dialect schema.Dialect
	rows    map[string][][]value.Value // table -> rows, in key order
	empty   map[string]bool
	chunk   int

	sequenceResets []string
}

func newFakeDriver(d schema.Dialect) *fakeDriver {
	return &fakeDriver{dialect: d, rows: map[string][][]value.Value{}, empty: map[string]bool{}}
}

var _ dialect.Driver = (*fakeDriver)(nil)

func (f *fakeDriver) FetchSchema(ctx context.Context, filter dialect.SchemaFilter) (*schema.Schema, error) {
	return nil, fmt.Errorf("not implemented")
}
func (f *fakeDriver) RenderDDL(table schema.Table) ([]dialect.Stmt, error) {
	return nil, fmt.Errorf("not implemented")
}
func (f *fakeDriver) RenderAlter(stmts []dialect.AlterStmt) ([]dialect.Stmt, error) {
	return nil, fmt.Errorf("not implemented")
}
func (f *fakeDriver) Apply(ctx context.Context, stmts []dialect.Stmt, dryRun bool) error {
	return fmt.Errorf("not implemented")
}

func (f *fakeDriver) CountRows(ctx context.Context, table string) (uint64, error) {
	return uint64(len(f.rows[table])), nil
}

func (f *fakeDriver) StreamChunks(ctx context.Context, table schema.Table, chunkSize int, cursor dialect.KeyCursor) (<-chan dialect.Chunk, <-chan error) {
	out := make(chan dialect.Chunk, 1)
	errs := make(chan error, 1)
	rows := f.rows[table.Name]

	colRefs := make([]dialect.ColumnRef, len(table.Columns))
	for i, c := range table.Columns {
		colRefs[i] = dialect.ColumnRef{Name: c.Name, Type: c.Type}
	}

	go func() {
		defer close(out)
		defer close(errs)
		for start := 0; start < len(rows); start += chunkSize {
			end := start + chunkSize
			if end > len(rows) {
				end = len(rows)
			}
			chunk := dialect.Chunk{Columns: colRefs, Rows: rows[start:end]}
			select {
			case out <- chunk:
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}
		}
	}()
	return out, errs
}

func (f *fakeDriver) BulkInsert(ctx context.Context, table string, chunk dialect.Chunk) error {
	f.rows[table] = append(f.rows[table], chunk.Rows...)
	return nil
}

func (f *fakeDriver) FetchByKey(ctx context.Context, table string, keyCols []string, keyValues []value.Value) ([]value.Value, bool, error) {
	for _, row := range f.rows[table] {
		if len(row) == 0 {
			continue
		}
		if value.Equivalent(row[0], keyValues[0]) {
			return row, true, nil
		}
	}
	return nil, false, nil
}

func (f *fakeDriver) TableIsEmpty(ctx context.Context, table string) (bool, error) {
	return len(f.rows[table]) == 0, nil
}

func (f *fakeDriver) ResetSequence(ctx context.Context, table string, column string) error {
	f.sequenceResets = append(f.sequenceResets, table+"."+column)
	return nil
}

func (f *fakeDriver) IdentifierQuote(ident string) string { return `"` + ident + `"` }
func (f *fakeDriver) Literal(v value.Value) (string, error) { return v.String(), nil }
func (f *fakeDriver) Dialect() schema.Dialect               { return f.dialect }
func (f *fakeDriver) Close() error                          { return nil }
