// Package metrics exposes the Prometheus counters/gauges the replication
// pipeline updates per table and per chunk, built the way
// axfor-aproxy/pkg/observability/metrics.go wraps promauto constructors in
// a typed struct instead of scattering bare prometheus.* globals.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every gauge/counter/histogram the engine touches. Call
// New once per process; a second call panics on duplicate registration,
// same as the teacher's NewMetrics.
type Metrics struct {
	RowsMigratedTotal     *prometheus.CounterVec
	RowFailuresTotal      *prometheus.CounterVec
	ChunkDuration         prometheus.Histogram
	TablesInProgress      prometheus.Gauge
	VerifyMismatchesTotal *prometheus.CounterVec
	DDLStatementsTotal    *prometheus.CounterVec
}

// New registers and returns the metric set.
func New() *Metrics {
	return &Metrics{
		RowsMigratedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fluxforge_rows_migrated_total",
			Help: "Total rows written to the target by table",
		}, []string{"table"}),
		RowFailuresTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fluxforge_row_failures_total",
			Help: "Total per-row coercion/write failures by table",
		}, []string{"table"}),
		ChunkDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "fluxforge_chunk_duration_seconds",
			Help:    "Wall time to stream, coerce, and bulk-insert one chunk",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		TablesInProgress: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "fluxforge_tables_in_progress",
			Help: "Number of tables currently being migrated or replicated",
		}),
		VerifyMismatchesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fluxforge_verify_mismatches_total",
			Help: "Total source/target row mismatches found during verify_after_write",
		}, []string{"table"}),
		DDLStatementsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fluxforge_ddl_statements_total",
			Help: "Total DDL statements applied by kind",
		}, []string{"kind"}),
	}
}

func (m *Metrics) AddRowsMigrated(table string, n int) {
	m.RowsMigratedTotal.WithLabelValues(table).Add(float64(n))
}

func (m *Metrics) IncRowFailures(table string) {
	m.RowFailuresTotal.WithLabelValues(table).Inc()
}

func (m *Metrics) ObserveChunkDuration(seconds float64) {
	m.ChunkDuration.Observe(seconds)
}

func (m *Metrics) IncTablesInProgress() {
	m.TablesInProgress.Inc()
}

func (m *Metrics) DecTablesInProgress() {
	m.TablesInProgress.Dec()
}

func (m *Metrics) IncVerifyMismatches(table string) {
	m.VerifyMismatchesTotal.WithLabelValues(table).Inc()
}

func (m *Metrics) IncDDLStatements(kind string) {
	m.DDLStatementsTotal.WithLabelValues(kind).Inc()
}
