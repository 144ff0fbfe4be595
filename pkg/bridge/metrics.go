package bridge

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the router's collectors. A nil *metrics records nothing.
type metrics struct {
	batches   prometheus.Counter
	queueWait prometheus.Histogram
	duration  prometheus.Histogram
	rejects   *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)

	return &metrics{
		batches: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "viewbridge",
			Subsystem: "bridge",
			Name:      "batches_total",
			Help:      "Batches applied on the UI thread",
		}),

		queueWait: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "viewbridge",
			Subsystem: "bridge",
			Name:      "batch_queue_seconds",
			Help:      "Time a batch waited for the UI thread",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .5},
		}),

		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "viewbridge",
			Subsystem: "bridge",
			Name:      "batch_duration_seconds",
			Help:      "Time spent applying a batch on the UI thread",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .5},
		}),

		rejects: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "viewbridge",
			Subsystem: "bridge",
			Name:      "rejected_commands_total",
			Help:      "Commands the router could not apply, by operation",
		}, []string{"op"}),
	}
}

func (m *metrics) batch(wait, took time.Duration) {
	if m == nil {
		return
	}
	m.batches.Inc()
	m.queueWait.Observe(wait.Seconds())
	m.duration.Observe(took.Seconds())
}

func (m *metrics) rejected(op string) {
	if m == nil {
		return
	}
	m.rejects.WithLabelValues(op).Inc()
}
