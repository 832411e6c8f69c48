package main

import (
	"context"
	"fmt"
	"os"

	"github.com/k0kubun/pp/v3"

	"github.com/fluxforge/fluxforge/dialect"
	"github.com/fluxforge/fluxforge/diff"
	"github.com/fluxforge/fluxforge/replicate"
	"github.com/fluxforge/fluxforge/schema"
	"github.com/fluxforge/fluxforge/typemap"
)

// migrateCommand implements `fluxforge migrate` (spec §6): apply the
// desired schema to --target, then (unless --schema-only) replicate data.
type migrateCommand struct {
	Target      string `long:"target" description:"Target connection URL" value-name:"URL" required:"true"`
	Source      string `long:"source" description:"Source connection URL to introspect" value-name:"URL"`
	Schema      string `long:"schema" description:"Canonical schema JSON to use instead of --source" value-name:"PATH"`
	Config      string `long:"config" description:"Type-mapping configuration file" value-name:"PATH"`
	DryRun      bool   `long:"dry-run" description:"Print DDL statements without executing them"`
	SchemaOnly  bool   `long:"schema-only" description:"Apply schema only, skip data"`
	Verbose     bool   `long:"verbose" description:"Verbose logging"`
	Force       bool   `long:"force" description:"Ignore data-loss checks"`
	AllowLossy  bool   `long:"allow-lossy" description:"Permit a mapping that would truncate source values"`
	BreakCycles bool   `long:"break-cycles" description:"Deterministically drop FK edges to break dependency cycles"`
}

func (c *migrateCommand) Execute(args []string) error {
	return runMigrate(c)
}

func runMigrate(c *migrateCommand) error {
	if c.Source == "" && c.Schema == "" {
		return &usageError{msg: "migrate requires --source or --schema"}
	}
	ctx := context.Background()
	log := newLogger(c.Verbose)
	defer log.Sync()

	policy, err := loadPolicy(c.Config, c.AllowLossy)
	if err != nil {
		return err
	}

	desired, sourceDriver, err := loadDesiredSchema(ctx, c)
	if err != nil {
		return err
	}
	if sourceDriver != nil {
		defer sourceDriver.Close()
	}

	tgt, err := openDriver(ctx, c.Target)
	if err != nil {
		return err
	}
	defer tgt.Close()

	sorted, err := schema.Sort(desired.Tables, c.BreakCycles)
	if err != nil {
		return err
	}
	desired.Tables = sorted

	engine := typemap.NewEngine(policy)
	targetDialect := dialectOf(c.Target)
	mapped, err := typemap.TransformSchema(engine, desired.Dialect, targetDialect, desired)
	if err != nil {
		return err
	}

	if c.Verbose {
		pp.Println(mapped)
	}

	current, err := tgt.FetchSchema(ctx, dialect.SchemaFilter{})
	if err != nil {
		return err
	}

	plan, err := diff.Compute(mapped, current, diff.Options{Force: c.Force, DryRun: c.DryRun})
	if err != nil {
		return err
	}

	if err := applyPlan(ctx, tgt, mapped, plan, c.DryRun); err != nil {
		return err
	}

	if c.SchemaOnly {
		log.Info("migrate_schema_only_complete")
		return nil
	}
	if c.DryRun {
		return nil
	}
	if sourceDriver == nil {
		return &usageError{msg: "migrate: data replication requires --source, not --schema"}
	}

	rules := policy.ValueRules(desired.Dialect, targetDialect)
	pipeline := newPipeline(sourceDriver, tgt, rules, log, replicate.Options{Force: c.Force})
	results, err := pipeline.RunTables(ctx, desired.Tables, mapped.Tables)
	reportResults(results)
	return err
}

// loadDesiredSchema resolves the desired schema either by introspecting
// --source live or by loading --schema from disk (spec §6: "migrate
// --schema PATH as an exact substitute for live introspection"). The
// returned driver is non-nil only when --source was used, since it is
// also needed afterward to stream data.
func loadDesiredSchema(ctx context.Context, c *migrateCommand) (*schema.Schema, dialect.Driver, error) {
	if c.Schema != "" && c.Source == "" {
		data, err := os.ReadFile(c.Schema)
		if err != nil {
			return nil, nil, fmt.Errorf("migrate: read %q: %w", c.Schema, err)
		}
		s, err := schema.Unmarshal(data)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	}

	src, err := openDriver(ctx, c.Source)
	if err != nil {
		return nil, nil, err
	}
	s, err := src.FetchSchema(ctx, dialect.SchemaFilter{})
	if err != nil {
		src.Close()
		return nil, nil, err
	}
	return s, src, nil
}

// applyPlan renders and applies every statement in plan against tgt, in
// the order spec §4.6 requires: new tables first, then per-table alters.
// Each table's statements go to their own Apply call.
func applyPlan(ctx context.Context, tgt dialect.Driver, desired *schema.Schema, plan *diff.Plan, dryRun bool) error {
	var batches [][]dialect.Stmt

	for _, t := range plan.CreateTables {
		ddl, err := tgt.RenderDDL(t)
		if err != nil {
			return err
		}
		batches = append(batches, ddl)
	}

	for _, tp := range plan.AlterTables {
		alters, err := tgt.RenderAlter(tp.Alters)
		if err != nil {
			return err
		}
		batches = append(batches, alters)
	}

	for _, stmts := range batches {
		if len(stmts) == 0 {
			continue
		}
		if dryRun {
			for _, s := range stmts {
				fmt.Fprintln(os.Stdout, s.SQL+";")
			}
			continue
		}
		if err := tgt.Apply(ctx, stmts, false); err != nil {
			return err
		}
	}
	return nil
}
