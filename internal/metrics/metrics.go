// Package metrics records per-process analysis metrics with Prometheus
// collectors on a private registry.
package metrics

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/bikeshare-cli/internal/analysis"
	"github.com/KaramelBytes/bikeshare-cli/internal/dataset"
	"github.com/prometheus/client_golang/prometheus"
)

// Load outcomes.
const (
	OutcomeLoaded      = "loaded"
	OutcomeEmpty       = "empty"
	OutcomeUnavailable = "unavailable"
	OutcomeUnparsable  = "unparsable"
)

// OutcomeFor classifies a load error.
func OutcomeFor(err error) string {
	if errors.Is(err, dataset.ErrTimestampUnparsable) {
		return OutcomeUnparsable
	}
	return OutcomeUnavailable
}

// Recorder owns the collectors for one process.
type Recorder struct {
	registry *prometheus.Registry

	runs           prometheus.Counter
	loads          *prometheus.CounterVec
	rowsLoaded     prometheus.Gauge
	reportDuration *prometheus.HistogramVec
	reportErrors   *prometheus.CounterVec
}

// New creates a recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bikeshare",
			Name:      "runs_total",
			Help:      "Analysis runs started.",
		}),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bikeshare",
			Name:      "loads_total",
			Help:      "Dataset loads by outcome.",
		}, []string{"city", "outcome"}),
		rowsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "bikeshare",
			Name:      "rows_loaded",
			Help:      "Rows in the most recently loaded filtered table.",
		}),
		reportDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bikeshare",
			Name:      "report_duration_seconds",
			Help:      "Wall-clock time spent computing each report.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"report"}),
		reportErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bikeshare",
			Name:      "report_errors_total",
			Help:      "Reports that failed with a computation error.",
		}, []string{"report"}),
	}
	r.registry.MustRegister(r.runs, r.loads, r.rowsLoaded, r.reportDuration, r.reportErrors)
	return r
}

// Gatherer exposes the registry.
func (r *Recorder) Gatherer() prometheus.Gatherer { return r.registry }

// RunStarted counts one pass through filter collection and loading.
func (r *Recorder) RunStarted() { r.runs.Inc() }

// ObserveLoad records a load outcome and, for successful loads, the row count.
func (r *Recorder) ObserveLoad(city, outcome string, rows int) {
	r.loads.WithLabelValues(city, outcome).Inc()
	if outcome == OutcomeLoaded || outcome == OutcomeEmpty {
		r.rowsLoaded.Set(float64(rows))
	}
}

// ObserveReports records durations and failures. Skipped reports are ignored.
func (r *Recorder) ObserveReports(results []analysis.Result) {
	for _, res := range results {
		if errors.Is(res.Err, analysis.ErrNoData) {
			continue
		}
		r.reportDuration.WithLabelValues(res.Name).Observe(res.Elapsed.Seconds())
		if res.Err != nil {
			r.reportErrors.WithLabelValues(res.Name).Inc()
		}
	}
}

// WriteFile writes the metrics in Prometheus text format, suitable for the
// node_exporter textfile collector.
func (r *Recorder) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
