package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the signaling server.
type Metrics struct {
	registry              *prometheus.Registry
	requestsTotal         prometheus.Counter
	errorsTotal           prometheus.Counter
	roomsCreatedTotal     prometheus.Counter
	messagesRelayedTotal  prometheus.Counter
	segmentsIngestedTotal prometheus.Counter
	deliveryFailuresTotal prometheus.Counter
	droppedMessagesTotal  prometheus.Counter
	activeRooms           prometheus.Gauge
	activeSessions        prometheus.Gauge
}

// New creates and registers Prometheus metrics on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signaling_requests_total",
			Help: "Total number of HTTP requests received",
		}),
		errorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signaling_errors_total",
			Help: "Total number of HTTP responses with error status (4xx or 5xx)",
		}),
		roomsCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signaling_rooms_created_total",
			Help: "Total number of rooms created by hosts",
		}),
		messagesRelayedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signaling_messages_relayed_total",
			Help: "Total number of signal messages delivered to a recipient",
		}),
		segmentsIngestedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signaling_segments_ingested_total",
			Help: "Total number of media segments accepted for a room",
		}),
		deliveryFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signaling_delivery_failures_total",
			Help: "Total number of messages that could not be queued to a recipient",
		}),
		droppedMessagesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signaling_dropped_messages_total",
			Help: "Total number of inbound control messages dropped as malformed",
		}),
		activeRooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "signaling_active_rooms",
			Help: "Number of rooms currently registered",
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "signaling_active_sessions",
			Help: "Number of open control-channel connections",
		}),
	}

	registry.MustRegister(
		m.requestsTotal,
		m.errorsTotal,
		m.roomsCreatedTotal,
		m.messagesRelayedTotal,
		m.segmentsIngestedTotal,
		m.deliveryFailuresTotal,
		m.droppedMessagesTotal,
		m.activeRooms,
		m.activeSessions,
	)

	return m
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// IncRoomsCreated increments the rooms created counter.
func (m *Metrics) IncRoomsCreated() {
	m.roomsCreatedTotal.Inc()
}

// AddMessagesRelayed adds n successful signal deliveries.
func (m *Metrics) AddMessagesRelayed(n int) {
	m.messagesRelayedTotal.Add(float64(n))
}

// IncSegmentsIngested increments the accepted segments counter.
func (m *Metrics) IncSegmentsIngested() {
	m.segmentsIngestedTotal.Inc()
}

// IncDeliveryFailures increments the failed deliveries counter.
func (m *Metrics) IncDeliveryFailures() {
	m.deliveryFailuresTotal.Inc()
}

// IncDroppedMessages increments the dropped inbound messages counter.
func (m *Metrics) IncDroppedMessages() {
	m.droppedMessagesTotal.Inc()
}

// SetActiveRooms sets the active rooms gauge.
func (m *Metrics) SetActiveRooms(n int) {
	m.activeRooms.Set(float64(n))
}

// SetActiveSessions sets the open connections gauge.
func (m *Metrics) SetActiveSessions(n int) {
	m.activeSessions.Set(float64(n))
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values.
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
