package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "forcegraph"

// Metrics implements every hook interface on top of Prometheus collectors.
type Metrics struct {
	builds         *prometheus.CounterVec
	droppedEdges   prometheus.Counter
	simulations    prometheus.Counter
	simTicks       prometheus.Histogram
	instabilities  prometheus.Counter
	budgetStops    prometheus.Counter
	simDuration    prometheus.Histogram
	renders        *prometheus.CounterVec
	renderDuration prometheus.Histogram

	sessionsOpen  prometheus.Gauge
	sessionsTotal prometheus.Counter
	sessionLife   prometheus.Histogram
	sessionTicks  prometheus.Counter
	sessionEvents *prometheus.CounterVec

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered, which is useful in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "builds_total",
			Help:      "Graph model builds by result.",
		}, []string{"result"}),
		droppedEdges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_edges_total",
			Help:      "Dangling edges dropped while building graph models.",
		}),
		simulations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulations_total",
			Help:      "Headless simulations run to completion.",
		}),
		simTicks: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "simulation_ticks",
			Help:      "Ticks needed for a headless simulation to stop.",
			Buckets:   prometheus.LinearBuckets(50, 50, 20),
		}),
		instabilities: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "numeric_instabilities_total",
			Help:      "Non-finite forces or positions reset during simulation.",
		}),
		budgetStops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tick_budget_stops_total",
			Help:      "Heat cycles ended by the tick budget rather than cooling.",
		}),
		simDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "simulation_duration_seconds",
			Help:      "Wall time of headless simulations.",
			Buckets:   prometheus.DefBuckets,
		}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Artifact renders by result.",
		}, []string{"result"}),
		renderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Wall time of artifact rendering.",
			Buckets:   prometheus.DefBuckets,
		}),
		sessionsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_open",
			Help:      "Live simulation sessions.",
		}),
		sessionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Simulation sessions opened.",
		}),
		sessionLife: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_lifetime_seconds",
			Help:      "Lifetime of closed simulation sessions.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		sessionTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_ticks_total",
			Help:      "Ticks advanced across all sessions.",
		}),
		sessionEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_events_total",
			Help:      "Input events applied to sessions by type.",
		}, []string{"type"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	if reg != nil {
		reg.MustRegister(m.Collectors()...)
	}
	return m
}

// Collectors returns every collector owned by m.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.builds, m.droppedEdges, m.simulations, m.simTicks, m.instabilities,
		m.budgetStops, m.simDuration, m.renders, m.renderDuration,
		m.sessionsOpen, m.sessionsTotal, m.sessionLife, m.sessionTicks,
		m.sessionEvents, m.requests, m.requestDuration,
	}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) OnBuild(_ context.Context, _, _, dropped int, err error) {
	m.builds.WithLabelValues(result(err)).Inc()
	m.droppedEdges.Add(float64(dropped))
}

func (m *Metrics) OnSimulationStart(context.Context, int, int) {}

func (m *Metrics) OnSimulationComplete(_ context.Context, r SimulationResult, d time.Duration) {
	m.simulations.Inc()
	m.simTicks.Observe(float64(r.Ticks))
	m.instabilities.Add(float64(r.Instabilities))
	m.budgetStops.Add(float64(r.BudgetStops))
	m.simDuration.Observe(d.Seconds())
}

func (m *Metrics) OnRenderStart(context.Context, []string) {}

func (m *Metrics) OnRenderComplete(_ context.Context, _ []string, d time.Duration, err error) {
	m.renders.WithLabelValues(result(err)).Inc()
	m.renderDuration.Observe(d.Seconds())
}

func (m *Metrics) OnSessionOpen(context.Context, string, int) {
	m.sessionsOpen.Inc()
	m.sessionsTotal.Inc()
}

func (m *Metrics) OnSessionClose(_ context.Context, _ string, lifetime time.Duration) {
	m.sessionsOpen.Dec()
	m.sessionLife.Observe(lifetime.Seconds())
}

func (m *Metrics) OnTicks(_ context.Context, _ string, n int, _ bool) {
	m.sessionTicks.Add(float64(n))
}

func (m *Metrics) OnEvent(_ context.Context, _, eventType string) {
	m.sessionEvents.WithLabelValues(eventType).Inc()
}

func (m *Metrics) OnRequest(_ context.Context, method, route string, status int, d time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ LayoutHooks  = (*Metrics)(nil)
	_ SessionHooks = (*Metrics)(nil)
	_ HTTPHooks    = (*Metrics)(nil)
)
