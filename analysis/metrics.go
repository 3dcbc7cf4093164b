package analysis

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "shottree"

// Drop reasons recorded on shottree_records_dropped_total.
const (
	DropUnclassified = "unclassified"
	DropUnmatched    = "unmatched"
)

// Metrics counts pipeline work. A nil *Metrics disables recording.
type Metrics struct {
	// Ingested counts shots tallied into a tree.
	Ingested prometheus.Counter

	// Dropped counts shots that reached no leaf-pair.
	// Labels: reason (unclassified, unmatched)
	Dropped *prometheus.CounterVec

	// Duration measures one Run or RunPartitioned call end to end.
	Duration prometheus.Histogram
}

// NewMetrics creates the pipeline metrics and registers them with reg. A nil
// reg leaves them unregistered, which tests use to avoid collisions.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Ingested: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "records_ingested_total",
			Help:      "Shot records tallied into a decision tree.",
		}),
		Dropped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "records_dropped_total",
			Help:      "Shot records that matched no leaf-pair, by reason.",
		}, []string{"reason"}),
		Duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "ingest_duration_seconds",
			Help:      "Wall time of a full ingest run.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
	}
}

func (m *Metrics) ingested() {
	if m != nil {
		m.Ingested.Inc()
	}
}

func (m *Metrics) dropped(reason string) {
	if m != nil {
		m.Dropped.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) observe(seconds float64) {
	if m != nil {
		m.Duration.Observe(seconds)
	}
}
