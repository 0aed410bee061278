// Package metrics provides Prometheus metrics for the peony service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ShopAssemblyDuration tracks how long building the shop view model takes
	ShopAssemblyDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "peony",
			Subsystem: "shop",
			Name:      "assembly_duration_seconds",
			Help:      "Duration of shop data assembly in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"locale", "status"},
	)

	// RoutineTemplatesProjected counts routine templates emitted by the projector
	RoutineTemplatesProjected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "peony",
			Subsystem: "shop",
			Name:      "routine_templates_projected_total",
			Help:      "Total number of routine templates projected into view models",
		},
		[]string{"locale"},
	)

	// GeocodeLookupsTotal tracks address lookups by outcome
	GeocodeLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "peony",
			Subsystem: "geocode",
			Name:      "lookups_total",
			Help:      "Total number of address lookups by outcome",
		},
		[]string{"outcome"},
	)

	// GeocodeCacheHits counts lookups answered from the cache
	GeocodeCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "peony",
			Subsystem: "geocode",
			Name:      "cache_hits_total",
			Help:      "Total number of address lookups served from cache",
		},
	)

	// BookingTransitionsTotal tracks request-date actions by outcome
	BookingTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "peony",
			Subsystem: "booking",
			Name:      "transitions_total",
			Help:      "Total number of booking schedule transitions by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	// SweeperRunsTotal tracks sweeper runs by status
	SweeperRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "peony",
			Subsystem: "booking",
			Name:      "sweeper_runs_total",
			Help:      "Total number of consumed-session sweeper runs by status",
		},
		[]string{"status"},
	)

	// SessionsConsumedTotal counts sessions the sweeper marked as consumed
	SessionsConsumedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "peony",
			Subsystem: "booking",
			Name:      "sessions_consumed_total",
			Help:      "Total number of service sessions marked as consumed",
		},
	)

	// KafkaPublishTotal tracks Kafka publish operations
	KafkaPublishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "peony",
			Subsystem: "kafka",
			Name:      "publish_total",
			Help:      "Total number of Kafka publish operations",
		},
		[]string{"topic", "status"},
	)

	// KafkaPublishDuration tracks Kafka publish duration
	KafkaPublishDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "peony",
			Subsystem: "kafka",
			Name:      "publish_duration_seconds",
			Help:      "Duration of Kafka publish operations in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"topic"},
	)

	// HTTPRequestsTotal tracks outbound HTTP requests
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "peony",
			Subsystem: "http_client",
			Name:      "requests_total",
			Help:      "Total number of outbound HTTP requests",
		},
		[]string{"method", "status_code"},
	)

	// HTTPRequestDuration tracks outbound HTTP request duration
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "peony",
			Subsystem: "http_client",
			Name:      "request_duration_seconds",
			Help:      "Duration of outbound HTTP requests in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method"},
	)
)

func RecordShopAssembly(locale, status string, durationSeconds float64) {
	ShopAssemblyDuration.WithLabelValues(locale, status).Observe(durationSeconds)
}

func RecordRoutineTemplates(locale string, count int) {
	RoutineTemplatesProjected.WithLabelValues(locale).Add(float64(count))
}

func RecordGeocodeLookup(outcome string) {
	GeocodeLookupsTotal.WithLabelValues(outcome).Inc()
}

func RecordGeocodeCacheHit() {
	GeocodeCacheHits.Inc()
}

func RecordBookingTransition(action, outcome string) {
	BookingTransitionsTotal.WithLabelValues(action, outcome).Inc()
}

// RecordSweeperRun records a sweeper run and how many sessions it consumed
func RecordSweeperRun(status string, consumed int) {
	SweeperRunsTotal.WithLabelValues(status).Inc()
	SessionsConsumedTotal.Add(float64(consumed))
}

func RecordKafkaPublish(topic, status string, durationSeconds float64) {
	KafkaPublishTotal.WithLabelValues(topic, status).Inc()
	KafkaPublishDuration.WithLabelValues(topic).Observe(durationSeconds)
}

func RecordHTTPRequest(method, statusCode string, durationSeconds float64) {
	HTTPRequestsTotal.WithLabelValues(method, statusCode).Inc()
	HTTPRequestDuration.WithLabelValues(method).Observe(durationSeconds)
}
