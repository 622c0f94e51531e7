// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Hosts register hooks at
// startup to receive events about layout runs, live sessions, and HTTP
// requests.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// The layout core (force, viewport, interaction) never calls hooks. The
// hosts that drive it (pipeline, session store, server) do.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    m := observability.NewMetrics(prometheus.DefaultRegisterer)
//	    observability.SetLayoutHooks(m)
//	    observability.SetSessionHooks(m)
//	    // ... run application
//	}
//
// Hosts call hooks to emit events:
//
//	observability.Layout().OnSimulationStart(ctx, nodeCount, edgeCount)
//	// ... tick until stopped ...
//	observability.Layout().OnSimulationComplete(ctx, result, duration)
package observability

import (
	"context"
	"sync"
	"time"
)

// SimulationResult summarizes one headless simulation run.
type SimulationResult struct {
	Ticks         int
	Reheats       int
	Instabilities int
	BudgetStops   int
	Phase         string
}

// =============================================================================
// Layout Hooks
// =============================================================================

// LayoutHooks receives events from headless layout runs.
type LayoutHooks interface {
	// Build events. dropped is the number of dangling edges removed.
	OnBuild(ctx context.Context, nodeCount, edgeCount, dropped int, err error)

	// Simulation events
	OnSimulationStart(ctx context.Context, nodeCount, edgeCount int)
	OnSimulationComplete(ctx context.Context, result SimulationResult, duration time.Duration)

	// Render events
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// =============================================================================
// Session Hooks
// =============================================================================

// SessionHooks receives events from live simulation sessions.
type SessionHooks interface {
	// OnSessionOpen records a new session.
	OnSessionOpen(ctx context.Context, id string, nodeCount int)

	// OnSessionClose records a session being halted and removed.
	OnSessionClose(ctx context.Context, id string, lifetime time.Duration)

	// OnTicks records n ticks advanced on a session.
	OnTicks(ctx context.Context, id string, n int, active bool)

	// OnEvent records an input event applied to a session.
	OnEvent(ctx context.Context, id, eventType string)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP server.
type HTTPHooks interface {
	// OnRequest records a served request.
	OnRequest(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopLayoutHooks is a no-op implementation of LayoutHooks.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnBuild(context.Context, int, int, int, error)                         {}
func (NoopLayoutHooks) OnSimulationStart(context.Context, int, int)                           {}
func (NoopLayoutHooks) OnSimulationComplete(context.Context, SimulationResult, time.Duration) {}
func (NoopLayoutHooks) OnRenderStart(context.Context, []string)                               {}
func (NoopLayoutHooks) OnRenderComplete(context.Context, []string, time.Duration, error)      {}

// NoopSessionHooks is a no-op implementation of SessionHooks.
type NoopSessionHooks struct{}

func (NoopSessionHooks) OnSessionOpen(context.Context, string, int)            {}
func (NoopSessionHooks) OnSessionClose(context.Context, string, time.Duration) {}
func (NoopSessionHooks) OnTicks(context.Context, string, int, bool)            {}
func (NoopSessionHooks) OnEvent(context.Context, string, string)               {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	layoutHooks  LayoutHooks  = NoopLayoutHooks{}
	sessionHooks SessionHooks = NoopSessionHooks{}
	httpHooks    HTTPHooks    = NoopHTTPHooks{}
	hooksMu      sync.RWMutex
)

// SetLayoutHooks registers custom layout hooks.
// This should be called once at application startup.
func SetLayoutHooks(h LayoutHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		layoutHooks = h
	}
}

// SetSessionHooks registers custom session hooks.
func SetSessionHooks(h SessionHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		sessionHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Layout returns the registered layout hooks.
func Layout() LayoutHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return layoutHooks
}

// Session returns the registered session hooks.
func Session() SessionHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return sessionHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	layoutHooks = NoopLayoutHooks{}
	sessionHooks = NoopSessionHooks{}
	httpHooks = NoopHTTPHooks{}
}
