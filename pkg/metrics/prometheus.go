package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	PlansCreated        prometheus.Counter
	PlanTransitions     *prometheus.CounterVec
	RemindersDispatched prometheus.Counter
	BoardBuildTime      prometheus.Histogram
	ErrorsCount         *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics on the given registerer
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PlansCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plans_created_total",
			Help:      "The total number of plans created",
		}),
		PlanTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plan_transitions_total",
			Help:      "The total number of plan status transitions",
		}, []string{"to"}),
		RemindersDispatched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_dispatched_total",
			Help:      "The total number of reminders dispatched",
		}),
		BoardBuildTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "board_build_seconds",
			Help:      "Time taken to build board views",
			Buckets:   prometheus.DefBuckets,
		}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
