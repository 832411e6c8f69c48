package main

import (
	"context"

	"github.com/k0kubun/pp/v3"

	"github.com/fluxforge/fluxforge/dialect"
	"github.com/fluxforge/fluxforge/diff"
	"github.com/fluxforge/fluxforge/fferr"
	"github.com/fluxforge/fluxforge/replicate"
	"github.com/fluxforge/fluxforge/schema"
	"github.com/fluxforge/fluxforge/typemap"
)

// replicateCommand implements `fluxforge replicate` (spec §6): schema +
// data + optional verification, end to end between a live source and
// target.
type replicateCommand struct {
	Source      string `long:"source" description:"Source connection URL" value-name:"URL" required:"true"`
	Target      string `long:"target" description:"Target connection URL" value-name:"URL" required:"true"`
	Config      string `long:"config" description:"Type-mapping configuration file" value-name:"PATH"`
	Verify      bool   `long:"verify" description:"Verify every migrated row against the source after writing"`
	Verbose     bool   `long:"verbose" description:"Verbose logging"`
	HaltOnError bool   `long:"halt-on-error" description:"Abort the migration on the first row-level failure"`
	Force       bool   `long:"force" description:"Ignore data-loss checks"`
	AllowLossy  bool   `long:"allow-lossy" description:"Permit a mapping that would truncate source values"`
	BreakCycles bool   `long:"break-cycles" description:"Deterministically drop FK edges to break dependency cycles"`
}

func (c *replicateCommand) Execute(args []string) error {
	return runReplicate(c)
}

func runReplicate(c *replicateCommand) error {
	ctx := context.Background()
	log := newLogger(c.Verbose)
	defer log.Sync()

	policy, err := loadPolicy(c.Config, c.AllowLossy)
	if err != nil {
		return err
	}

	src, err := openDriver(ctx, c.Source)
	if err != nil {
		return err
	}
	defer src.Close()

	tgt, err := openDriver(ctx, c.Target)
	if err != nil {
		return err
	}
	defer tgt.Close()

	desired, err := src.FetchSchema(ctx, dialect.SchemaFilter{})
	if err != nil {
		return err
	}

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

	plan, err := diff.Compute(mapped, current, diff.Options{Force: c.Force})
	if err != nil {
		return err
	}
	if err := applyPlan(ctx, tgt, mapped, plan, false); err != nil {
		return err
	}

	rules := policy.ValueRules(desired.Dialect, targetDialect)
	pipeline := newPipeline(src, tgt, rules, log, replicate.Options{
		Force:            c.Force,
		HaltOnError:      c.HaltOnError,
		VerifyAfterWrite: c.Verify,
	})
	results, err := pipeline.RunTables(ctx, desired.Tables, mapped.Tables)
	reportResults(results)
	if err != nil {
		return err
	}
	return verifyMismatchErr(results)
}

// verifyMismatchErr surfaces spec §6's exit code 6 when --verify found
// mismatches but --halt-on-error was never set, so the pipeline itself
// returned nil (mismatches are counted, not fatal, per spec §4.7 step 6/7).
func verifyMismatchErr(results []replicate.TableResult) error {
	var total uint64
	for _, r := range results {
		total += r.VerifyMismatches
	}
	if total == 0 {
		return nil
	}
	return fferr.Wrap(fferr.ErrVerifyMismatch, "replicate: %d row(s) failed verification", total)
}
