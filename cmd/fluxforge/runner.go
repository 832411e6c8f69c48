package main

import (
	"fmt"
	"os"

	"github.com/fluxforge/fluxforge/dialect"
	"github.com/fluxforge/fluxforge/logging"
	"github.com/fluxforge/fluxforge/metrics"
	"github.com/fluxforge/fluxforge/replicate"
	"github.com/fluxforge/fluxforge/value"
)

// sharedMetrics is process-wide: promauto registration panics on a second
// call, so the CLI registers the metric set once regardless of how many
// pipelines it builds in one run.
var sharedMetrics = metrics.New()

func newPipeline(source, target dialect.Driver, rules value.Rules, log *logging.Logger, opts replicate.Options) *replicate.Pipeline {
	p := replicate.New(source, target, rules, log, sharedMetrics, opts)
	p.Progress = func(table string, done, total uint64) {
		fmt.Fprintf(os.Stdout, "%s: %d/%d rows\n", table, done, total)
	}
	return p
}

func reportResults(results []replicate.TableResult) {
	for _, r := range results {
		fmt.Fprintf(os.Stdout, "%s: %d row(s) written, %d failure(s), %d verify mismatch(es)\n",
			r.Table, r.RowsDone, r.RowFailures, r.VerifyMismatches)
	}
}
