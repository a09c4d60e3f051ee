package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the hub.
type Metrics struct {
	// Cache metrics.
	CacheLookups *prometheus.CounterVec // labels: component, result={hit,miss}

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec   // labels: provider, outcome={success,error,empty}
	GeocodeAPIDuration *prometheus.HistogramVec // labels: provider
	FallbackDepth      prometheus.Histogram     // providers consulted per resolution

	// Extraction metrics.
	ExtractionRequests *prometheus.CounterVec // labels: outcome={success,sentinel,error}

	// Feed metrics.
	FeedFetches *prometheus.CounterVec // labels: feed={social,official}, outcome={success,degraded}

	// Fan-out metrics.
	ConnectionsActive prometheus.Gauge
	EventsPublished   *prometheus.CounterVec // labels: scope={global,disaster}
	EventsDelivered   prometheus.Counter
	EventsDropped     prometheus.Counter
}

// NewMetrics creates and registers all hub metrics with the default registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.CacheLookups,
		m.GeocodeRequests,
		m.GeocodeAPIDuration,
		m.FallbackDepth,
		m.ExtractionRequests,
		m.FeedFetches,
		m.ConnectionsActive,
		m.EventsPublished,
		m.EventsDelivered,
		m.EventsDropped,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "response_hub",
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by component and result.",
		}, []string{"component", "result"}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "response_hub",
			Name:      "geocode_requests_total",
			Help:      "Geocoding provider calls by provider and outcome.",
		}, []string{"provider", "outcome"}),
		GeocodeAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "response_hub",
			Name:      "geocode_api_duration_seconds",
			Help:      "Geocoding provider request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"provider"}),
		FallbackDepth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "response_hub",
			Name:      "geocode_fallback_depth",
			Help:      "Number of providers consulted before a resolution settled.",
			Buckets:   []float64{1, 2, 3, 4, 5},
		}),
		ExtractionRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "response_hub",
			Name:      "extraction_requests_total",
			Help:      "Location extraction calls by outcome.",
		}, []string{"outcome"}),
		FeedFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "response_hub",
			Name:      "feed_fetches_total",
			Help:      "Feed aggregator fetches by feed kind and outcome.",
		}, []string{"feed", "outcome"}),
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "response_hub",
			Name:      "ws_connections_active",
			Help:      "Currently connected websocket clients.",
		}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "response_hub",
			Name:      "events_published_total",
			Help:      "Lifecycle events published by scope.",
		}, []string{"scope"}),
		EventsDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "response_hub",
			Name:      "events_delivered_total",
			Help:      "Event deliveries attempted to subscriber send buffers.",
		}),
		EventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "response_hub",
			Name:      "events_dropped_total",
			Help:      "Event deliveries dropped because a subscriber buffer was full.",
		}),
	}
}
