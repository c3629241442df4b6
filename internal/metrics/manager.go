// Package metrics defines the Prometheus collectors the app reports.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric name.
const Namespace = "mapty"

type Manager struct {
	// counters
	CounterWorkoutsCreated    *prometheus.CounterVec
	CounterInvalidSubmissions prometheus.Counter
	CounterCorruptState       prometheus.Counter
	CounterResets             prometheus.Counter
	CounterRequests           *prometheus.CounterVec

	// gauges
	GaugePersistedWorkouts prometheus.Gauge

	// histograms
	HistRequestDuration prometheus.Histogram
}

func NewTestManager() *Manager {
	return NewManager(Namespace, prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager(Namespace, reg), reg
}

// NewManager creates the collectors and registers them with reg.
func NewManager(namespace string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	return &Manager{
		CounterWorkoutsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workouts_created_total",
			Help:      "The total number of recorded workouts",
		}, []string{"type"}),
		CounterInvalidSubmissions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invalid_submissions_total",
			Help:      "The total number of rejected form submissions",
		}),
		CounterCorruptState: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "corrupt_state_total",
			Help:      "Number of times a stored workout list could not be decoded",
		}),
		CounterResets: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resets_total",
			Help:      "Number of times all workouts were cleared",
		}),
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "The total number of incoming requests",
		}, []string{"method", "status"}),
		GaugePersistedWorkouts: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "persisted_workouts",
			Help:      "Number of workouts in the persisted list",
		}),
		HistRequestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}
