// Package dialect defines the capability-set abstraction (spec §4.4) that
// lets the engine treat MySQL and PostgreSQL uniformly: introspection, DDL
// rendering, chunked row streaming, and bulk writes, all behind one
// interface selected at runtime by connection URL scheme.
package dialect

import (
	"context"
	"time"

	"github.com/fluxforge/fluxforge/schema"
	"github.com/fluxforge/fluxforge/value"
)

// ColumnRef identifies one column within a Chunk's row tuples.
type ColumnRef struct {
	Name string
	Type schema.ColumnType
}

// Chunk is a bounded row batch, the unit §5 and §9 require the pipeline to
// move in: memory use is never more than chunk_size rows per table at once.
type Chunk struct {
	Columns []ColumnRef
	Rows    [][]value.Value
}

// Stmt is one DDL statement, already dialect-quoted and ready to execute.
type Stmt struct {
	SQL string
	// Transactional reports whether this statement may run inside the
	// same transaction as its siblings (false for statements like
	// PostgreSQL's CREATE INDEX CONCURRENTLY).
	Transactional bool
}

// SchemaFilter narrows fetch_schema to a subset of visible tables; a nil
// or empty Tables/SkipTables selects everything.
type SchemaFilter struct {
	Tables     []string
	SkipTables []string
}

// KeyCursor tracks the stable-key cursoring position used by stream_chunks
// (spec §4.7 step 3). LastSeenKey is nil for the first page. When Offset
// mode is true, the driver has fallen back to LIMIT/OFFSET because no
// stable key exists, and LastOffset carries the next starting row.
type KeyCursor struct {
	KeyColumns  []string
	LastSeenKey []value.Value
	Offset      bool
	LastOffset  int64
}

// Driver is the capability set every dialect implements (spec §4.4).
// Every method that touches the network takes a context and must check it
// at suspension points per §5.
type Driver interface {
	// FetchSchema introspects visible tables/columns/indices/keys in
	// deterministic order: tables lexicographic, columns by ordinal
	// position, indices lexicographic by name.
	FetchSchema(ctx context.Context, filter SchemaFilter) (*schema.Schema, error)

	// RenderDDL produces CREATE TABLE plus separate CREATE INDEX / ALTER
	// TABLE ADD CONSTRAINT statements, in the order: table, primary key
	// (inline), unique keys, secondary indices, fulltext/gin.
	RenderDDL(table schema.Table) ([]Stmt, error)

	// RenderAlter produces the ALTER TABLE statements for one diff step;
	// used by the diff package rather than FetchSchema+RenderDDL wholesale.
	RenderAlter(stmts []AlterStmt) ([]Stmt, error)

	// Apply executes stmts. Postgres runs them in one transaction per
	// table (transactional DDL); MySQL applies per-statement. In dryRun,
	// nothing is executed and the statements are not handed back.
	Apply(ctx context.Context, stmts []Stmt, dryRun bool) error

	CountRows(ctx context.Context, table string) (uint64, error)

	// StreamChunks yields row batches bounded by chunkSize, ordered by
	// the resolved stable key ascending. The returned channel is closed
	// when exhausted or ctx is cancelled; errors are delivered via the
	// returned error channel and terminate the stream.
	StreamChunks(ctx context.Context, table schema.Table, chunkSize int, cursor KeyCursor) (<-chan Chunk, <-chan error)

	// BulkInsert writes a Chunk as one multi-row statement or
	// prepared-batch, preserving client-supplied primary-key values.
	BulkInsert(ctx context.Context, table string, chunk Chunk) error

	// FetchByKey is used only by verification (spec §4.7 step 6).
	FetchByKey(ctx context.Context, table string, keyCols []string, keyValues []value.Value) ([]value.Value, bool, error)

	TableIsEmpty(ctx context.Context, table string) (bool, error)

	// ResetSequence brings an auto-increment/serial generator back in
	// sync with the highest migrated key, required after BulkInsert
	// preserves explicit primary keys (spec §9).
	ResetSequence(ctx context.Context, table string, column string) error

	IdentifierQuote(ident string) string
	Literal(v value.Value) (string, error)

	Dialect() schema.Dialect
	Close() error
}

// AlterStmt is one categorized column/index change the diff package hands
// to RenderAlter, kept dialect-neutral so diff never builds SQL itself.
type AlterStmt struct {
	Table  string
	Kind   AlterKind
	Column *schema.Column
	Index  *schema.Index
	// OldName is set for changed-type/changed-nullability/changed-default
	// alters where the column already exists under this name.
	OldName string
}

type AlterKind int

const (
	AddColumn AlterKind = iota
	AlterColumnType
	AlterColumnNullability
	AlterColumnDefault
	DropIndex
	AddIndex
	DropColumn
	DropTable
)

// Config is the connection configuration shared by both dialects.
type Config struct {
	URL              string
	PoolSize         int           // default 4
	StatementTimeout time.Duration // default 300s
	ChunkTimeout     time.Duration // default 60s
	MaxRetries       int           // default 3
}

// WithDefaults fills in zero-valued fields with spec §4.4/§5 defaults
// (pool size 4, 300s statement timeout, 60s chunk-fetch timeout, 3 retries).
func (c Config) WithDefaults() Config {
	if c.PoolSize == 0 {
		c.PoolSize = 4
	}
	if c.StatementTimeout == 0 {
		c.StatementTimeout = 300 * time.Second
	}
	if c.ChunkTimeout == 0 {
		c.ChunkTimeout = 60 * time.Second
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	return c
}
