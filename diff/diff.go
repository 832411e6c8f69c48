// Package diff implements schema diff & apply (spec §4.6): comparing a
// desired schema against a target's introspected current schema and
// producing the dialect-neutral CREATE/ALTER steps the dialect package's
// RenderDDL/RenderAlter turn into SQL.
package diff

import (
	"sort"

	"github.com/fluxforge/fluxforge/dialect"
	"github.com/fluxforge/fluxforge/fferr"
	"github.com/fluxforge/fluxforge/schema"
	"github.com/fluxforge/fluxforge/util"
)

// Options controls how aggressively Compute treats divergence between
// desired and current schemas.
type Options struct {
	// DropUnknown, when true, converts extraneous target tables/columns
	// (present in current, absent from desired) into drop statements.
	// Default false: they are only reported.
	DropUnknown bool
	// Force bypasses the data-loss check that otherwise rejects a plan
	// containing drops.
	Force bool
	// DryRun is not read by Compute and is not recorded in the Plan;
	// Compute never touches a database either way.
	DryRun bool
}

// TablePlan is the set of alter steps needed to bring one existing target
// table in line with its desired definition, already ordered per spec
// §4.6: add columns, alter columns, drop indices, add indices, drop
// columns.
type TablePlan struct {
	Table  string
	Alters []dialect.AlterStmt
}

// Plan is the full result of comparing a desired schema against a target's
// current schema.
type Plan struct {
	// CreateTables are desired tables absent from the target; the caller
	// renders each with the target driver's RenderDDL.
	CreateTables []schema.Table

	// AlterTables are per-existing-table alter steps, one TablePlan per
	// table that needs any change at all (tables already identical to
	// their desired definition are omitted).
	AlterTables []TablePlan

	// UnknownTables are target tables with no desired counterpart.
	// Populated whether or not DropUnknown is set; DropTables is only
	// populated when DropUnknown is set.
	UnknownTables []string
	// UnknownColumns maps table name to extraneous column names on that
	// table (desired table exists, but the target column doesn't).
	UnknownColumns map[string][]string

	// DropTables/DropColumns list what DropUnknown destroys. DropColumns
	// are also folded into AlterTables as DropColumn steps; DropTables
	// are listed here only and get no AlterStmt.
	DropTables  []string
	DropColumns map[string][]string
}

// Compute diffs desired against current and returns the plan. Desired is
// expected to already be in dependency order (spec §4.5); Compute
// preserves that order for CreateTables and AlterTables.
//
// When the plan would drop a table or column (DropUnknown is set) and
// Force is not, Compute returns fferr.ErrDataLossProtection instead of a
// plan — the caller must pass --force to proceed, matching the "target
// rejected, fix it or force it" shape of the other data-loss checks.
func Compute(desired, current *schema.Schema, opts Options) (*Plan, error) {
	plan := &Plan{
		UnknownColumns: map[string][]string{},
		DropColumns:    map[string][]string{},
	}

	desiredNames := map[string]bool{}
	for _, t := range desired.Tables {
		desiredNames[t.Name] = true
	}

	for _, t := range desired.Tables {
		cur := current.Table(t.Name)
		if cur == nil {
			plan.CreateTables = append(plan.CreateTables, t)
			continue
		}
		tp := diffTable(t, *cur)
		if len(tp.Alters) > 0 {
			plan.AlterTables = append(plan.AlterTables, tp)
		}
	}

	for _, t := range current.Tables {
		if desiredNames[t.Name] {
			continue
		}
		plan.UnknownTables = append(plan.UnknownTables, t.Name)
	}
	sort.Strings(plan.UnknownTables)

	for _, t := range desired.Tables {
		cur := current.Table(t.Name)
		if cur == nil {
			continue
		}
		desiredCols := map[string]bool{}
		for _, c := range t.Columns {
			desiredCols[c.Name] = true
		}
		var extra []string
		for _, c := range cur.Columns {
			if !desiredCols[c.Name] {
				extra = append(extra, c.Name)
			}
		}
		if len(extra) > 0 {
			sort.Strings(extra)
			plan.UnknownColumns[t.Name] = extra
		}
	}

	if opts.DropUnknown {
		applyDropUnknown(plan)
	}

	if !opts.Force && (len(plan.DropTables) > 0 || len(plan.DropColumns) > 0) {
		return nil, fferr.Wrap(fferr.ErrDataLossProtection, "diff: plan drops %d table(s) and columns on %d table(s); pass --force to proceed",
			len(plan.DropTables), len(plan.DropColumns))
	}

	return plan, nil
}

// applyDropUnknown folds UnknownTables/UnknownColumns into DropTables/
// DropColumns and appends the corresponding AlterStmt steps (drop columns
// go last within each table's existing alter list, per spec §4.6; dropped
// tables are only listed in DropTables, with no AlterStmt).
func applyDropUnknown(plan *Plan) {
	plan.DropTables = append(plan.DropTables, plan.UnknownTables...)

	for table, cols := range util.CanonicalMapIter(plan.UnknownColumns) {
		plan.DropColumns[table] = cols

		var tp *TablePlan
		for i := range plan.AlterTables {
			if plan.AlterTables[i].Table == table {
				tp = &plan.AlterTables[i]
				break
			}
		}
		if tp == nil {
			plan.AlterTables = append(plan.AlterTables, TablePlan{Table: table})
			tp = &plan.AlterTables[len(plan.AlterTables)-1]
		}
		for _, col := range cols {
			tp.Alters = append(tp.Alters, dialect.AlterStmt{
				Table:  table,
				Kind:   dialect.DropColumn,
				Column: &schema.Column{Name: col},
			})
		}
	}
}
