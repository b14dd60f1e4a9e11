// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ingestion metrics
	EventsProcessed        *prometheus.CounterVec
	MalformedEventsDropped prometheus.Counter
	MalformedMessages      prometheus.Counter
	UnparsableSymbols      prometheus.Counter
	BookUpdates            prometheus.Counter

	// Subscription metrics
	WatchRequests           prometheus.Counter
	WatchFailures           prometheus.Counter
	StaleResponsesDiscarded prometheus.Counter

	// Transport metrics
	StreamReconnects prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "tickflash"
	}

	return &Metrics{
		EventsProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "events_processed_total",
			Help:      "Total number of tick events processed by message type",
		}, []string{"type"}),
		MalformedEventsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "malformed_events_dropped_total",
			Help:      "Total number of events dropped for non-positive price or quantity",
		}),
		MalformedMessages: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "malformed_messages_total",
			Help:      "Total number of undecodable feed messages dropped",
		}),
		UnparsableSymbols: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "unparsable_symbols_total",
			Help:      "Total number of option identifiers kept as opaque keys",
		}),
		BookUpdates: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "book_updates_total",
			Help:      "Total number of bid/ask snapshot updates",
		}),
		WatchRequests: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "subscription",
			Name:      "watch_requests_total",
			Help:      "Total number of outbound watch requests issued",
		}),
		WatchFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "subscription",
			Name:      "watch_failures_total",
			Help:      "Total number of watch requests that errored or timed out",
		}),
		StaleResponsesDiscarded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "subscription",
			Name:      "stale_responses_discarded_total",
			Help:      "Total number of watch responses discarded as superseded",
		}),
		StreamReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "stream_reconnects_total",
			Help:      "Total number of successful feed reconnects",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordEventProcessed increments the processed counter for a message type.
func RecordEventProcessed(msgType string) {
	DefaultMetrics.EventsProcessed.WithLabelValues(msgType).Inc()
}

// RecordMalformedEvent counts an event dropped before the store.
func RecordMalformedEvent() {
	DefaultMetrics.MalformedEventsDropped.Inc()
}

// RecordMalformedMessage counts an undecodable feed message.
func RecordMalformedMessage() {
	DefaultMetrics.MalformedMessages.Inc()
}

// RecordUnparsableSymbol counts an option identifier treated as opaque.
func RecordUnparsableSymbol() {
	DefaultMetrics.UnparsableSymbols.Inc()
}

// RecordBookUpdate counts a bid/ask snapshot update.
func RecordBookUpdate() {
	DefaultMetrics.BookUpdates.Inc()
}

// RecordWatchRequest counts an outbound watch request.
func RecordWatchRequest() {
	DefaultMetrics.WatchRequests.Inc()
}

// RecordWatchFailure counts a failed watch request.
func RecordWatchFailure() {
	DefaultMetrics.WatchFailures.Inc()
}

// RecordStaleResponse counts a superseded watch response.
func RecordStaleResponse() {
	DefaultMetrics.StaleResponsesDiscarded.Inc()
}

// RecordStreamReconnect counts a successful feed reconnect.
func RecordStreamReconnect() {
	DefaultMetrics.StreamReconnects.Inc()
}
