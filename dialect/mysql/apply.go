package mysql

import (
	"context"
	"fmt"
	"strings"

	"github.com/fluxforge/fluxforge/dialect"
	"github.com/fluxforge/fluxforge/fferr"
	"github.com/fluxforge/fluxforge/value"
)

// Apply executes stmts one at a time (MySQL DDL is not transactional —
// each CREATE/ALTER implicitly commits), per spec §4.4. In dryRun, nothing
// is executed.
func (d *Driver) Apply(ctx context.Context, stmts []dialect.Stmt, dryRun bool) error {
	if dryRun {
		return nil
	}
	for _, s := range stmts {
		if _, err := d.db.ExecContext(ctx, s.SQL); err != nil {
			return fferr.Wrap(fferr.ErrDDL, "mysql: apply %q: %v", s.SQL, err)
		}
	}
	return nil
}

// Literal renders a Value as a MySQL SQL literal, used by RenderDDL for
// default expressions and ad hoc statement building.
func (d *Driver) Literal(v value.Value) (string, error) {
	if v.IsNull() {
		return "NULL", nil
	}
	switch v.Kind {
	case value.KindBool:
		if v.Bool {
			return "1", nil
		}
		return "0", nil
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
		return "0x" + fmt.Sprintf("%x", v.Bytes), nil
	case value.KindJSON:
		return quoteLiteralString(v.JSONText), nil
	case value.KindSetLabels:
		return quoteLiteralString(strings.Join(v.SetLabels, ",")), nil
	default:
		return quoteLiteralString(v.String()), nil
	}
}
