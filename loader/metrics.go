package loader

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/erraggy/ramltools/ramlerrors"
)

// Metrics contains Prometheus metrics for document loading.
// A nil *Metrics records nothing.
type Metrics struct {
	loads         *prometheus.CounterVec
	errors        *prometheus.CounterVec
	files         *prometheus.CounterVec
	includes      prometheus.Counter
	refs          *prometheus.CounterVec
	remoteFetches prometheus.Counter
	loadDuration  prometheus.Histogram
}

// NewMetrics creates the loader collectors and registers them with reg.
// A nil reg leaves the collectors unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		loads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ramltools_loader_loads_total",
				Help: "Total number of root documents loaded",
			},
			[]string{"result"},
		),
		errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ramltools_loader_errors_total",
				Help: "Total number of failed loads by error kind",
			},
			[]string{"kind"},
		),
		files: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ramltools_loader_files_opened_total",
				Help: "Total number of files and URLs opened by content role",
			},
			[]string{"role"},
		),
		includes: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ramltools_loader_includes_expanded_total",
				Help: "Total number of !include directives expanded",
			},
		),
		refs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ramltools_loader_refs_resolved_total",
				Help: "Total number of $ref values resolved by target kind",
			},
			[]string{"target"},
		),
		remoteFetches: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ramltools_loader_remote_fetches_total",
				Help: "Total number of HTTP fetches performed",
			},
		),
		loadDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ramltools_loader_load_duration_seconds",
				Help:    "Duration of complete load calls",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

// recordLoad records the outcome of one load call. Counters cover the
// work done whether or not the load succeeded.
func (m *Metrics) recordLoad(stats Stats, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.loadDuration.Observe(elapsed.Seconds())
	m.includes.Add(float64(stats.IncludesExpanded))
	m.remoteFetches.Add(float64(stats.RemoteFetches))
	if err != nil {
		m.loads.WithLabelValues("error").Inc()
		m.errors.WithLabelValues(ramlerrors.KindOf(err).String()).Inc()
		return
	}
	m.loads.WithLabelValues("success").Inc()
}

func (m *Metrics) recordFile(role ContentRole) {
	if m == nil {
		return
	}
	m.files.WithLabelValues(role.String()).Inc()
}

func (m *Metrics) recordRef(target TargetKind) {
	if m == nil {
		return
	}
	m.refs.WithLabelValues(target.String()).Inc()
}
