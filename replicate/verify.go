package replicate

import (
	"context"

	"github.com/fluxforge/fluxforge/fferr"
	"github.com/fluxforge/fluxforge/schema"
	"github.com/fluxforge/fluxforge/value"
)

// verify implements spec §4.7 step 6: for every key written during this
// table's migration, fetch the row from both source and target and
// byte/structurally compare every cell under the cross-dialect
// equivalence of spec §8. A mismatch respects halt_on_error like any other
// row-level failure.
func (p *Pipeline) verify(ctx context.Context, sourceTable, desiredTable schema.Table, keyCols []string, keys [][]value.Value) (uint64, error) {
	var mismatches uint64

	for _, key := range keys {
		select {
		case <-ctx.Done():
			return mismatches, fferr.Wrap(fferr.ErrCancelled, "verify(%s): %v", desiredTable.Name, ctx.Err())
		default:
		}

		srcRow, ok, err := p.Source.FetchByKey(ctx, sourceTable.Name, keyCols, key)
		if err != nil {
			return mismatches, err
		}
		if !ok {
			continue
		}

		tgtRow, ok, err := p.Target.FetchByKey(ctx, desiredTable.Name, keyCols, key)
		if err != nil {
			return mismatches, err
		}
		if !ok {
			mismatches++
			if p.Metrics != nil {
				p.Metrics.IncVerifyMismatches(desiredTable.Name)
			}
			p.Log.VerifyMismatch(desiredTable.Name, stringifyKey(key))
			if p.Opts.HaltOnError {
				return mismatches, fferr.Wrap(fferr.ErrVerifyMismatch, "verify(%s): key %v missing on target", desiredTable.Name, stringifyKey(key))
			}
			continue
		}

		coercedSrc, err := CoerceRow(sourceTable.Columns, columnTypes(desiredTable), p.Rules, srcRow)
		if err != nil {
			return mismatches, err
		}

		if !rowsEquivalent(coercedSrc, tgtRow) {
			mismatches++
			if p.Metrics != nil {
				p.Metrics.IncVerifyMismatches(desiredTable.Name)
			}
			p.Log.VerifyMismatch(desiredTable.Name, stringifyKey(key))
			if p.Opts.HaltOnError {
				return mismatches, fferr.Wrap(fferr.ErrVerifyMismatch, "verify(%s): row mismatch at key %v", desiredTable.Name, stringifyKey(key))
			}
		}
	}

	return mismatches, nil
}

func columnTypes(table schema.Table) []schema.ColumnType {
	out := make([]schema.ColumnType, len(table.Columns))
	for i, c := range table.Columns {
		out[i] = c.Type
	}
	return out
}

func rowsEquivalent(a, b []value.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !value.Equivalent(a[i], b[i]) {
			return false
		}
	}
	return true
}

func stringifyKey(key []value.Value) []string {
	out := make([]string, len(key))
	for i, v := range key {
		out[i] = v.String()
	}
	return out
}
