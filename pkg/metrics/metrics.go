// Package metrics records fetch outcomes as Prometheus metrics.
//
// The exporter is a one-shot command, so metrics are collected into a
// private registry and written once to a node_exporter textfile:
//   - srs_fetch_runs_total{result} (Counter): fetch runs by outcome (success, error)
//   - srs_work_items_queried (Gauge): ids returned by the last query
//   - srs_work_items_returned (Gauge): records returned after truncation
//   - srs_fetch_duration_seconds (Histogram): end-to-end fetch duration
//   - srs_last_success_timestamp_seconds (Gauge): unix time of the last successful fetch
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/yahsan2/srs-exporter/pkg/workitem"
)

const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Recorder implements workitem.Observer
type Recorder struct {
	registry *prometheus.Registry
	now      func() time.Time

	runs        *prometheus.CounterVec
	queried     prometheus.Gauge
	returned    prometheus.Gauge
	duration    prometheus.Histogram
	lastSuccess prometheus.Gauge
}

var _ workitem.Observer = (*Recorder)(nil)

// NewRecorder creates a recorder backed by its own registry
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		now:      time.Now,
		runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "srs_fetch_runs_total",
				Help: "Total number of work item fetch runs",
			},
			[]string{"result"}, // "success", "error"
		),
		queried: factory.NewGauge(prometheus.GaugeOpts{
			Name: "srs_work_items_queried",
			Help: "Number of work item ids returned by the last query",
		}),
		returned: factory.NewGauge(prometheus.GaugeOpts{
			Name: "srs_work_items_returned",
			Help: "Number of work items returned after applying the limit",
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "srs_fetch_duration_seconds",
			Help:    "Duration of work item fetch runs",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		lastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Name: "srs_last_success_timestamp_seconds",
			Help: "Unix timestamp of the last successful fetch",
		}),
	}
}

// ObserveFetch records one fetch run
func (r *Recorder) ObserveFetch(queried, returned int, elapsed time.Duration, err error) {
	r.duration.Observe(elapsed.Seconds())
	if err != nil {
		r.runs.WithLabelValues(ResultError).Inc()
		return
	}

	r.runs.WithLabelValues(ResultSuccess).Inc()
	r.queried.Set(float64(queried))
	r.returned.Set(float64(returned))
	r.lastSuccess.Set(float64(r.now().Unix()))
}

// Registry returns the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes all metrics to path in the text exposition format
func (r *Recorder) WriteTextfile(path string) error {
	if path == "" {
		return errors.New("metrics textfile path is empty")
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
