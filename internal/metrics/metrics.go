package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jpalmerr/sidebar"
)

const namespace = "sidebar"

// Metric label names.
const (
	LabelMode = "mode"
	LabelJob  = "job"
)

// Recorder collects push and refresh metrics.
type Recorder struct {
	registry     *prometheus.Registry
	pushes       *prometheus.CounterVec
	pushErrors   prometheus.Counter
	pushDuration prometheus.Histogram
	lines        prometheus.Gauge
	jobRuns      *prometheus.CounterVec
	jobErrors    *prometheus.CounterVec
}

// NewRecorder creates a Recorder backed by a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		pushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pushes_total",
			Help:      "Board pushes by mode.",
		}, []string{LabelMode}),
		pushErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "push_errors_total",
			Help:      "Board pushes rejected by validation.",
		}),
		pushDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "push_duration_seconds",
			Help:      "Time spent applying a push to a surface.",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
		}),
		lines: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_push_lines",
			Help:      "Line count of the most recent push.",
		}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_runs_total",
			Help:      "Refresh job runs.",
		}, []string{LabelJob}),
		jobErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_errors_total",
			Help:      "Refresh job runs that returned an error.",
		}, []string{LabelJob}),
	}
	r.registry.MustRegister(r.pushes, r.pushErrors, r.pushDuration, r.lines, r.jobRuns, r.jobErrors)
	return r
}

// ObservePush records one push. It has the signature of a push callback, so
// it can be passed to [sidebar.WithPushCallback] directly.
func (r *Recorder) ObservePush(result sidebar.PushResult) {
	if r == nil {
		return
	}
	r.pushes.WithLabelValues(result.Mode.String()).Inc()
	if result.Err != nil {
		r.pushErrors.Inc()
		return
	}
	r.pushDuration.Observe(result.Duration.Seconds())
	r.lines.Set(float64(result.Lines))
}

// ObserveJob records one refresh job run.
func (r *Recorder) ObserveJob(job string, err error) {
	if r == nil {
		return
	}
	r.jobRuns.WithLabelValues(job).Inc()
	if err != nil {
		r.jobErrors.WithLabelValues(job).Inc()
	}
}

// Handler serves the registry in the Prometheus exposition format. A nil
// Recorder yields a nil handler.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return nil
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and custom collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}
