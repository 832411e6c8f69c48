package postgres

import (
	"context"
	"fmt"

	"github.com/fluxforge/fluxforge/dialect"
	"github.com/fluxforge/fluxforge/fferr"
	"github.com/fluxforge/fluxforge/value"
)

// Apply executes stmts inside one transaction per call (PostgreSQL DDL is
// transactional, spec §4.4) — callers issue one Apply per table so a
// mid-table failure rolls the whole table's DDL back. Statements marked
// non-Transactional (e.g. a concurrently-built GIN index) run individually
// outside any transaction, since PostgreSQL forbids those inside a
// transaction block. In dryRun, nothing is executed.
func (d *Driver) Apply(ctx context.Context, stmts []dialect.Stmt, dryRun bool) error {
	if dryRun {
		return nil
	}

	var txStmts, bareStmts []dialect.Stmt
	for _, s := range stmts {
		if s.Transactional {
			txStmts = append(txStmts, s)
		} else {
			bareStmts = append(bareStmts, s)
		}
	}

	if len(txStmts) > 0 {
		tx, err := d.db.BeginTx(ctx, nil)
		if err != nil {
			return fferr.Wrap(fferr.ErrDDL, "postgres: begin: %v", err)
		}
		for _, s := range txStmts {
			if _, err := tx.ExecContext(ctx, s.SQL); err != nil {
				tx.Rollback()
				return fferr.Wrap(fferr.ErrDDL, "postgres: apply %q: %v", s.SQL, err)
			}
		}
		if err := tx.Commit(); err != nil {
			return fferr.Wrap(fferr.ErrDDL, "postgres: commit: %v", err)
		}
	}

	for _, s := range bareStmts {
		if _, err := d.db.ExecContext(ctx, s.SQL); err != nil {
			return fferr.Wrap(fferr.ErrDDL, "postgres: apply %q: %v", s.SQL, err)
		}
	}
	return nil
}

// Literal renders a Value as a PostgreSQL SQL literal, used by RenderDDL for
// default expressions and ad hoc statement building.
func (d *Driver) Literal(v value.Value) (string, error) {
	if v.IsNull() {
		return "NULL", nil
	}
	switch v.Kind {
	case value.KindBool:
		if v.Bool {
			return "true", nil
		}
		return "false", nil
	case value.KindInt64:
		return fmt.Sprintf("%d", v.Int64), nil
	case value.KindUInt64:
		return fmt.Sprintf("%d", v.UInt64), nil
	case value.KindFloat64:
		return fmt.Sprintf("%g", v.Float64), nil
	case value.KindDecimal:
		return v.DecimalText, nil
	case value.KindString, value.KindEnumLabel:
		return quoteLiteralString(v.String()), nil
	case value.KindBytes:
		return fmt.Sprintf("E'\\\\x%x'", v.Bytes), nil
	case value.KindJSON:
		return quoteLiteralString(v.JSONText), nil
	case value.KindUUID:
		return quoteLiteralString(v.UUID.String()), nil
	case value.KindInet:
		return quoteLiteralString(v.Inet), nil
	default:
		return quoteLiteralString(v.String()), nil
	}
}
