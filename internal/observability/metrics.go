package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "smartassist"

// Metrics is nil-safe: every method is a no-op on a nil receiver so
// components can be built without instrumentation in tests.
type Metrics struct {
	gatherer prometheus.Gatherer

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	snapshots        *prometheus.CounterVec
	autosaveFailures prometheus.Counter
	sessions         *prometheus.CounterVec
	helpRequests     *prometheus.CounterVec
	progressMoves    *prometheus.CounterVec

	deliveries    *prometheus.CounterVec
	drops         *prometheus.CounterVec
	subscriptions prometheus.Gauge

	rebuilds       *prometheus.CounterVec
	rebuildLatency prometheus.Histogram
	workspaces     prometheus.Gauge
}

// NewMetrics registers collectors on reg. Pass prometheus.NewRegistry() in
// tests; nil selects the process-wide default registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	var registerer prometheus.Registerer = prometheus.DefaultRegisterer
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if reg != nil {
		registerer, gatherer = reg, reg
	}
	f := promauto.With(registerer)

	return &Metrics{
		gatherer: gatherer,

		apiRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "HTTP requests by route and status class.",
		}, []string{"method", "route", "status"}),
		apiLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "route"}),
		apiInflight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "http", Name: "inflight_requests",
			Help: "Requests currently being served, streams included.",
		}),

		snapshots: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "snapshots", Name: "captured_total",
			Help: "Code snapshots appended, by kind (autosave, submission, manual).",
		}, []string{"kind"}),
		autosaveFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "snapshots", Name: "autosave_failures_total",
			Help: "Auto-save writes that failed and were swallowed.",
		}),
		sessions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "sessions", Name: "transitions_total",
			Help: "Session lifecycle transitions (opened, closed, superseded, heartbeat_lost, close_failed).",
		}, []string{"transition"}),
		helpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "help_requests", Name: "transitions_total",
			Help: "Help request writes by resulting status.",
		}, []string{"status"}),
		progressMoves: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "progress", Name: "moves_total",
			Help: "Progress operations by direction and whether the step changed.",
		}, []string{"direction", "changed"}),

		deliveries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "dispatcher", Name: "deliveries_total",
			Help: "Change signals delivered to subscribers, by table.",
		}, []string{"table"}),
		drops: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "dispatcher", Name: "drops_total",
			Help: "Change signals dropped because a subscriber buffer was full.",
		}, []string{"table"}),
		subscriptions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "dispatcher", Name: "subscriptions",
			Help: "Open change subscriptions.",
		}),

		rebuilds: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "dashboard", Name: "rebuilds_total",
			Help: "Teacher dashboard rebuilds by outcome.",
		}, []string{"outcome"}),
		rebuildLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "dashboard", Name: "rebuild_duration_seconds",
			Help:    "Wall time of a full dashboard rebuild.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		workspaces: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "workspace", Name: "open",
			Help: "Student workspaces currently open on this node.",
		}),
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveAPI(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.WithLabelValues(method, route, statusClass(status)).Inc()
	m.apiLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) InflightInc() {
	if m != nil {
		m.apiInflight.Inc()
	}
}

func (m *Metrics) InflightDec() {
	if m != nil {
		m.apiInflight.Dec()
	}
}

func (m *Metrics) SnapshotCaptured(kind string) {
	if m != nil {
		m.snapshots.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) AutoSaveFailed() {
	if m != nil {
		m.autosaveFailures.Inc()
	}
}

func (m *Metrics) SessionTransition(transition string) {
	if m != nil {
		m.sessions.WithLabelValues(transition).Inc()
	}
}

func (m *Metrics) HelpRequestTransition(status string) {
	if m != nil {
		m.helpRequests.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) ProgressMoved(direction string, changed bool) {
	if m == nil {
		return
	}
	c := "false"
	if changed {
		c = "true"
	}
	m.progressMoves.WithLabelValues(direction, c).Inc()
}

func (m *Metrics) Delivered(table string) {
	if m != nil {
		m.deliveries.WithLabelValues(table).Inc()
	}
}

func (m *Metrics) Dropped(table string) {
	if m != nil {
		m.drops.WithLabelValues(table).Inc()
	}
}

func (m *Metrics) SubscriptionOpened() {
	if m != nil {
		m.subscriptions.Inc()
	}
}

func (m *Metrics) SubscriptionClosed() {
	if m != nil {
		m.subscriptions.Dec()
	}
}

func (m *Metrics) ObserveRebuild(d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.rebuilds.WithLabelValues(outcome).Inc()
	m.rebuildLatency.Observe(d.Seconds())
}

func (m *Metrics) WorkspaceOpened() {
	if m != nil {
		m.workspaces.Inc()
	}
}

func (m *Metrics) WorkspaceClosed() {
	if m != nil {
		m.workspaces.Dec()
	}
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
