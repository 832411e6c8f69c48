// Package replicate implements the replication pipeline of spec §4.7/§5:
// per-table stable-key cursoring, bounded chunked streaming, per-cell
// value coercion, bulk writes, optional verification, and failure policy.
// Pipelining within a table comes for free from the depth-1 buffered
// channel dialect.Driver.StreamChunks already returns (spec §5, §9): the
// source reader blocks on a full channel, BulkInsert blocks on an empty
// one, and at most one chunk's rows are materialized at a time.
package replicate

import (
	"context"
	"time"

	"github.com/fluxforge/fluxforge/dialect"
	"github.com/fluxforge/fluxforge/fferr"
	"github.com/fluxforge/fluxforge/logging"
	"github.com/fluxforge/fluxforge/metrics"
	"github.com/fluxforge/fluxforge/schema"
	"github.com/fluxforge/fluxforge/value"
)

// Options controls spec §4.6/§4.7's tunables.
type Options struct {
	ChunkSize        int // default 1000
	Force            bool
	HaltOnError      bool
	VerifyAfterWrite bool
}

// WithDefaults fills the chunk-size default (spec §4.4 stream_chunks).
func (o Options) WithDefaults() Options {
	if o.ChunkSize <= 0 {
		o.ChunkSize = 1000
	}
	return o
}

// ProgressFunc receives a table's running (rows_done, rows_total_estimate)
// after every chunk (spec §4.7 step 7). Progress reporting itself is an
// external collaborator (spec §1); this hook is the pipeline's only
// emission point for it, alongside the metrics gauges.
type ProgressFunc func(table string, done, total uint64)

// Pipeline streams every table from Source to Target in the caller-supplied
// dependency order, reusing one typemap-derived value.Rules set per
// direction for every table's cell coercion.
type Pipeline struct {
	Source   dialect.Driver
	Target   dialect.Driver
	Rules    value.Rules
	Log      *logging.Logger
	Metrics  *metrics.Metrics
	Opts     Options
	Progress ProgressFunc
}

// New builds a Pipeline with defaulted options. A nil log becomes a no-op
// logger; a nil metrics set disables metric emission.
func New(source, target dialect.Driver, rules value.Rules, log *logging.Logger, m *metrics.Metrics, opts Options) *Pipeline {
	if log == nil {
		log = logging.Nop()
	}
	return &Pipeline{Source: source, Target: target, Rules: rules, Log: log, Metrics: m, Opts: opts.WithDefaults()}
}

// TableResult summarizes one table's migration outcome (spec §4.7 step 7,
// progress reporting).
type TableResult struct {
	Table             string
	RowsDone          uint64
	RowsTotalEstimate uint64
	RowFailures       uint64
	VerifyMismatches  uint64
}

// RunTables migrates every table in tables, in the order given — callers
// must have already dependency-sorted it (spec §4.5) — stopping at the
// first fatal error. sourceTable and desiredTable must be parallel slices:
// desiredTable[i] is sourceTable[i]'s already type-mapped target
// definition (same column order, target dialect's ColumnType).
func (p *Pipeline) RunTables(ctx context.Context, sourceTables, desiredTables []schema.Table) ([]TableResult, error) {
	results := make([]TableResult, 0, len(sourceTables))
	for i := range sourceTables {
		res, err := p.MigrateTable(ctx, sourceTables[i], desiredTables[i])
		results = append(results, res)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// MigrateTable runs spec §4.7's per-table algorithm: empty-target check,
// stable-key resolution, chunked streaming with coercion, bulk insert,
// sequence reset, and optional post-write verification.
func (p *Pipeline) MigrateTable(ctx context.Context, sourceTable, desiredTable schema.Table) (TableResult, error) {
	res := TableResult{Table: desiredTable.Name}

	empty, err := p.Target.TableIsEmpty(ctx, desiredTable.Name)
	if err != nil {
		return res, err
	}
	if !empty && !p.Opts.Force {
		return res, fferr.Wrap(fferr.ErrDataLossProtection,
			"replicate: target table %q is not empty; pass --force to proceed", desiredTable.Name)
	}

	total, err := p.Source.CountRows(ctx, sourceTable.Name)
	if err != nil {
		return res, err
	}
	res.RowsTotalEstimate = total
	p.Log.TableStart(desiredTable.Name, total)

	if p.Metrics != nil {
		p.Metrics.IncTablesInProgress()
		defer p.Metrics.DecTablesInProgress()
	}

	start := time.Now()
	cursor := ResolveStableKey(sourceTable, p.Log)

	targetTypes := make([]schema.ColumnType, len(desiredTable.Columns))
	for i, c := range desiredTable.Columns {
		targetTypes[i] = c.Type
	}

	var writtenKeys [][]value.Value
	keyIdx := keyColumnIndexes(sourceTable, cursor.KeyColumns)

	chunks, errs := p.Source.StreamChunks(ctx, sourceTable, p.Opts.ChunkSize, cursor)

	for chunk := range chunks {
		chunkStart := time.Now()

		target := dialect.Chunk{Columns: targetColumnRefs(desiredTable, targetTypes)}
		for _, row := range chunk.Rows {
			coerced, err := CoerceRow(sourceTable.Columns, targetTypes, p.Rules, row)
			if err != nil {
				res.RowFailures++
				if p.Metrics != nil {
					p.Metrics.IncRowFailures(desiredTable.Name)
				}
				p.Log.RowFailure(desiredTable.Name, err)
				if p.Opts.HaltOnError {
					return res, err
				}
				continue
			}
			target.Rows = append(target.Rows, coerced)
			if p.Opts.VerifyAfterWrite && len(keyIdx) > 0 {
				writtenKeys = append(writtenKeys, keyValues(row, keyIdx))
			}
			res.RowsDone++
		}

		if len(target.Rows) > 0 {
			if err := p.Target.BulkInsert(ctx, desiredTable.Name, target); err != nil {
				p.Log.Chunk(desiredTable.Name, len(target.Rows), time.Since(chunkStart), err)
				return res, err
			}
		}
		p.Log.Chunk(desiredTable.Name, len(target.Rows), time.Since(chunkStart), nil)
		if p.Metrics != nil {
			p.Metrics.AddRowsMigrated(desiredTable.Name, len(target.Rows))
			p.Metrics.ObserveChunkDuration(time.Since(chunkStart).Seconds())
		}
		if p.Progress != nil {
			p.Progress(desiredTable.Name, res.RowsDone, total)
		}
	}

	if err := <-errs; err != nil {
		return res, err
	}

	if len(cursor.KeyColumns) > 0 {
		for _, col := range cursor.KeyColumns {
			if err := p.Target.ResetSequence(ctx, desiredTable.Name, col); err != nil {
				return res, err
			}
		}
	}

	if p.Opts.VerifyAfterWrite {
		mismatches, err := p.verify(ctx, sourceTable, desiredTable, cursor.KeyColumns, writtenKeys)
		res.VerifyMismatches = mismatches
		if err != nil {
			return res, err
		}
	}

	p.Log.TableDone(desiredTable.Name, res.RowsDone, time.Since(start))
	return res, nil
}

func keyColumnIndexes(table schema.Table, keyCols []string) []int {
	if len(keyCols) == 0 {
		return nil
	}
	out := make([]int, 0, len(keyCols))
	for _, name := range keyCols {
		for i, c := range table.Columns {
			if c.Name == name {
				out = append(out, i)
				break
			}
		}
	}
	if len(out) != len(keyCols) {
		return nil
	}
	return out
}

func keyValues(row []value.Value, idx []int) []value.Value {
	out := make([]value.Value, len(idx))
	for i, j := range idx {
		out[i] = row[j]
	}
	return out
}

func targetColumnRefs(table schema.Table, types []schema.ColumnType) []dialect.ColumnRef {
	out := make([]dialect.ColumnRef, len(table.Columns))
	for i, c := range table.Columns {
		out[i] = dialect.ColumnRef{Name: c.Name, Type: types[i]}
	}
	return out
}
