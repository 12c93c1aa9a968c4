// Package metrics exposes Prometheus collectors for the ETL pipeline.
package metrics

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result labels used for sink writes.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Recorder owns the pipeline collectors for one registry. A nil *Recorder is
// valid and records nothing.
type Recorder struct {
	registry         *prometheus.Registry
	pagesFetched     *prometheus.CounterVec
	recordsExtracted *prometheus.CounterVec
	rowsTransformed  prometheus.Gauge
	sinkWrites       *prometheus.CounterVec
	runDuration      prometheus.Histogram
}

// New registers the collectors on a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		pagesFetched: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "etl_pages_fetched_total",
				Help: "Total number of listing pages requested, labeled by site and status.",
			},
			[]string{"site", "status"},
		),
		recordsExtracted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "etl_records_extracted_total",
				Help: "Total number of raw product records extracted, labeled by site.",
			},
			[]string{"site"},
		),
		rowsTransformed: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "etl_rows_transformed",
				Help: "Number of normalized rows produced by the last transform.",
			},
		),
		sinkWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "etl_sink_writes_total",
				Help: "Total number of sink writes, labeled by sink and result.",
			},
			[]string{"sink", "result"},
		),
		runDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "etl_run_duration_seconds",
				Help:    "Histogram of end-to-end pipeline run durations.",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
			},
		),
	}
}

// Registry returns the registry backing the recorder.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// ObservePage counts one page fetch attempt.
func (r *Recorder) ObservePage(pageURL string, status string) {
	if r == nil {
		return
	}
	r.pagesFetched.WithLabelValues(SanitizeSite(pageURL), status).Inc()
}

// ObserveRecords adds n extracted raw records.
func (r *Recorder) ObserveRecords(pageURL string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.recordsExtracted.WithLabelValues(SanitizeSite(pageURL)).Add(float64(n))
}

// SetRowsTransformed records the size of the normalized table.
func (r *Recorder) SetRowsTransformed(n int) {
	if r == nil {
		return
	}
	r.rowsTransformed.Set(float64(n))
}

// ObserveSink counts one sink outcome.
func (r *Recorder) ObserveSink(sink string, ok bool) {
	if r == nil {
		return
	}
	result := ResultSuccess
	if !ok {
		result = ResultFailure
	}
	r.sinkWrites.WithLabelValues(sink, result).Inc()
}

// ObserveRun records the duration of a pipeline run.
func (r *Recorder) ObserveRun(d time.Duration) {
	if r == nil {
		return
	}
	r.runDuration.Observe(d.Seconds())
}

// WriteTextfile dumps the registry in the node-exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
