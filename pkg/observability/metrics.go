package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the state builder.
// A nil *Metrics is valid and records nothing, so callers never need
// to guard their observation calls.
type Metrics struct {
	buildsTotal      *prometheus.CounterVec
	buildDuration    prometheus.Histogram
	candidatesRanked prometheus.Histogram
	feedbackTotal    *prometheus.CounterVec
	unknownFeedback  prometheus.Counter
}

// NewMetrics registers the state builder instruments with the given
// registerer
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		buildsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cortex",
			Subsystem: "statebuilder",
			Name:      "builds_total",
			Help:      "Context pack builds by outcome",
		}, []string{"status"}),
		buildDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cortex",
			Subsystem: "statebuilder",
			Name:      "build_duration_seconds",
			Help:      "Context pack build latency",
			Buckets:   prometheus.DefBuckets,
		}),
		candidatesRanked: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cortex",
			Subsystem: "statebuilder",
			Name:      "candidates_ranked",
			Help:      "Candidate set size handed to the ranker",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),
		feedbackTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cortex",
			Subsystem: "statebuilder",
			Name:      "feedback_adjustments_total",
			Help:      "Confidence adjustments applied by direction",
		}, []string{"direction"}),
		unknownFeedback: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "cortex",
			Subsystem: "statebuilder",
			Name:      "feedback_unknown_neurons_total",
			Help:      "Feedback referencing neuron ids absent from the graph",
		}),
	}
}

// ObserveBuild records one context pack build
func (m *Metrics) ObserveBuild(duration time.Duration, candidates int, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.buildsTotal.WithLabelValues(status).Inc()
	if err == nil {
		m.buildDuration.Observe(duration.Seconds())
		m.candidatesRanked.Observe(float64(candidates))
	}
}

// ObserveFeedback records one feedback application
func (m *Metrics) ObserveFeedback(reinforced, weakened, unknown int) {
	if m == nil {
		return
	}
	m.feedbackTotal.WithLabelValues("reinforce").Add(float64(reinforced))
	m.feedbackTotal.WithLabelValues("weaken").Add(float64(weakened))
	m.unknownFeedback.Add(float64(unknown))
}
