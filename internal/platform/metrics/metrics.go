package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Assignment outcome label values.
const (
	OutcomeAssigned   = "assigned"
	OutcomeInfeasible = "infeasible"
	OutcomeManual     = "manual"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	UsersCreated    prometheus.Counter
	Assignments     *prometheus.CounterVec
	SearchDuration  prometheus.Histogram
	RequestDuration *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		UsersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "giftex_users_created_total",
			Help: "Total number of users created in the system",
		}),
		Assignments: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "giftex_assignments_total",
			Help: "Assignment attempts by outcome",
		}, []string{"outcome"}),
		SearchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "giftex_assignment_search_seconds",
			Help:    "Wall time spent in the derangement search",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "giftex_http_request_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

// IncrementUsersCreated increments the users created counter by 1.
func (m *Metrics) IncrementUsersCreated() {
	if m == nil {
		return
	}
	m.UsersCreated.Inc()
}

// ObserveAssignment records one assignment attempt and its search duration.
func (m *Metrics) ObserveAssignment(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Assignments.WithLabelValues(outcome).Inc()
	m.SearchDuration.Observe(elapsed.Seconds())
}
