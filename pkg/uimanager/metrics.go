package uimanager

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the Prometheus collectors of one manager. A nil *metrics
// records nothing.
type metrics struct {
	commands         *prometheus.CounterVec
	structuralErrors prometheus.Counter
	queryFailures    prometheus.Counter
	liveViews        prometheus.Gauge
	preCached        prometheus.Gauge
	destroyed        prometheus.Counter
}

func newMetrics(reg prometheus.Registerer, instanceID string) *metrics {
	factory := promauto.With(reg)
	labels := prometheus.Labels{"instance": instanceID}

	return &metrics{
		commands: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "viewbridge",
			Subsystem:   "uimanager",
			Name:        "commands_total",
			Help:        "Commands applied to the native view tree by operation",
			ConstLabels: labels,
		}, []string{"op"}),

		structuralErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   "viewbridge",
			Subsystem:   "uimanager",
			Name:        "structural_errors_total",
			Help:        "Structural inconsistencies reported to the error handler",
			ConstLabels: labels,
		}),

		queryFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   "viewbridge",
			Subsystem:   "uimanager",
			Name:        "query_failures_total",
			Help:        "Queries rejected through their result channel",
			ConstLabels: labels,
		}),

		liveViews: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   "viewbridge",
			Subsystem:   "uimanager",
			Name:        "live_views",
			Help:        "Views currently registered",
			ConstLabels: labels,
		}),

		preCached: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   "viewbridge",
			Subsystem:   "uimanager",
			Name:        "precached_views",
			Help:        "Views built ahead of attachment and not yet created",
			ConstLabels: labels,
		}),

		destroyed: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   "viewbridge",
			Subsystem:   "uimanager",
			Name:        "views_destroyed_total",
			Help:        "Views removed by recursive deletion",
			ConstLabels: labels,
		}),
	}
}

func (m *metrics) command(op string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(op).Inc()
}

func (m *metrics) structuralError() {
	if m == nil {
		return
	}
	m.structuralErrors.Inc()
}

func (m *metrics) queryFailure() {
	if m == nil {
		return
	}
	m.queryFailures.Inc()
}

func (m *metrics) viewDestroyed() {
	if m == nil {
		return
	}
	m.destroyed.Inc()
}

func (m *metrics) sizes(live, preCached int) {
	if m == nil {
		return
	}
	m.liveViews.Set(float64(live))
	m.preCached.Set(float64(preCached))
}
