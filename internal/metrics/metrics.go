package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the dashboard service.
// A nil *MetricsRegistry is valid and records nothing.
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Backend Metrics
	BackendRequestsTotal   *prometheus.CounterVec
	BackendRequestDuration *prometheus.HistogramVec

	// Sync Metrics
	ChangeEventsApplied *prometheus.CounterVec
	ChangeEventsDropped *prometheus.CounterVec
	StaleResponses      *prometheus.CounterVec

	// Live Channel Metrics
	LiveChannelState  prometheus.Gauge
	LiveReconnects    prometheus.Counter
	WorkspacesActive  prometheus.Gauge
	ImportWatchesOpen prometheus.Gauge
}

// NewMetricsRegistry registers every metric on reg. Pass
// prometheus.DefaultRegisterer in the binary and a fresh registry in tests.
func NewMetricsRegistry(reg prometheus.Registerer) *MetricsRegistry {
	factory := promauto.With(reg)
	return &MetricsRegistry{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dashboard_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "dashboard_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		BackendRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_backend_requests_total",
				Help: "Backend REST calls by endpoint, method, and outcome code",
			},
			[]string{"endpoint", "method", "outcome"},
		),
		BackendRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dashboard_backend_request_duration_seconds",
				Help:    "Backend REST call latency in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),

		ChangeEventsApplied: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_change_events_applied_total",
				Help: "Change events merged into a collection, by entity, action, and origin",
			},
			[]string{"entity", "action", "origin"},
		),
		ChangeEventsDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_change_events_dropped_total",
				Help: "Change events discarded before reaching a collection, by reason",
			},
			[]string{"reason"},
		),
		StaleResponses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_stale_responses_total",
				Help: "Fetch responses discarded because a newer request was issued",
			},
			[]string{"collection"},
		),

		LiveChannelState: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "dashboard_live_channel_state",
				Help: "Live update channel state: 0 disconnected, 1 connecting, 2 connected",
			},
		),
		LiveReconnects: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "dashboard_live_reconnects_total",
				Help: "Number of live update channel reconnect attempts",
			},
		),
		WorkspacesActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "dashboard_workspaces_active",
				Help: "Current number of browser sessions with a live workspace",
			},
		),
		ImportWatchesOpen: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "dashboard_import_watches_open",
				Help: "Import operations currently being polled for completion",
			},
		),
	}
}

func (m *MetricsRegistry) ObserveBackend(endpoint, method, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.BackendRequestsTotal.WithLabelValues(endpoint, method, outcome).Inc()
	m.BackendRequestDuration.WithLabelValues(endpoint, method).Observe(d.Seconds())
}

func (m *MetricsRegistry) EventApplied(entity, action, origin string) {
	if m == nil {
		return
	}
	m.ChangeEventsApplied.WithLabelValues(entity, action, origin).Inc()
}

func (m *MetricsRegistry) EventDropped(reason string) {
	if m == nil {
		return
	}
	m.ChangeEventsDropped.WithLabelValues(reason).Inc()
}

func (m *MetricsRegistry) StaleResponse(collection string) {
	if m == nil {
		return
	}
	m.StaleResponses.WithLabelValues(collection).Inc()
}

func (m *MetricsRegistry) SetChannelState(state int) {
	if m == nil {
		return
	}
	m.LiveChannelState.Set(float64(state))
}

func (m *MetricsRegistry) Reconnect() {
	if m == nil {
		return
	}
	m.LiveReconnects.Inc()
}

func (m *MetricsRegistry) WorkspaceOpened() {
	if m == nil {
		return
	}
	m.WorkspacesActive.Inc()
}

func (m *MetricsRegistry) WorkspaceClosed() {
	if m == nil {
		return
	}
	m.WorkspacesActive.Dec()
}

func (m *MetricsRegistry) ImportWatchStarted() {
	if m == nil {
		return
	}
	m.ImportWatchesOpen.Inc()
}

func (m *MetricsRegistry) ImportWatchFinished() {
	if m == nil {
		return
	}
	m.ImportWatchesOpen.Dec()
}
