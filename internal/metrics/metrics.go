// Package metrics records batch outcomes on a dedicated Prometheus registry.
// Batch runs are short-lived, so the registry is written to a textfile for
// node_exporter's textfile collector instead of being scraped.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wonny/strikezone/internal/contracts"
)

const namespace = "strikezone"

// Recorder holds the batch metrics
type Recorder struct {
	registry *prometheus.Registry

	years        *prometheus.CounterVec
	rows         *prometheus.CounterVec
	yearDuration prometheus.Histogram
	lastRun      prometheus.Gauge
	cacheHits    prometheus.Counter
}

// New creates a Recorder with its own registry
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		years: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "years_total",
			Help:      "Seasons processed, by result status.",
		}, []string{"status"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_total",
			Help:      "Dataset rows by pipeline stage (read, cleaned, dropped, binned).",
		}, []string{"stage"}),
		yearDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "year_duration_seconds",
			Help:      "Wall time to process one season.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last completed batch.",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grid_cache_hits_total",
			Help:      "Bin grids served from the cache.",
		}),
	}

	r.registry.MustRegister(r.years, r.rows, r.yearDuration, r.lastRun, r.cacheHits)
	return r
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveYear records one season's result
func (r *Recorder) ObserveYear(res contracts.YearResult) {
	r.years.WithLabelValues(string(res.Status)).Inc()
	r.rows.WithLabelValues("read").Add(float64(res.RawRows))
	r.rows.WithLabelValues("cleaned").Add(float64(res.Cleaned))
	r.rows.WithLabelValues("dropped").Add(float64(res.Dropped))
	r.rows.WithLabelValues("binned").Add(float64(res.Binned))
	r.yearDuration.Observe(res.Duration.Seconds())
	if res.CacheHit {
		r.cacheHits.Inc()
	}
}

// ObserveBatch records every year of a report and stamps the run time
func (r *Recorder) ObserveBatch(report *contracts.BatchReport) {
	for _, y := range report.Years {
		r.ObserveYear(y)
	}
	r.lastRun.Set(float64(report.StartedAt.Add(report.Duration).Unix()))
}

// WriteTextfile writes the registry in text exposition format.
// The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
