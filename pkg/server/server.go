// Package server exposes live simulations over HTTP.
//
// Every simulation is a [session.Session] held in memory by a
// [session.Store]. Clients create a session from a graph, then either drive
// it request by request (tick, events, resize) or open a WebSocket stream on
// which the server runs the frame loop and pushes views.
//
// # Routes
//
//	POST   /api/simulations               create a session
//	GET    /api/simulations               list session ids
//	GET    /api/simulations/{id}          current view
//	POST   /api/simulations/{id}/tick     advance up to ?n= ticks
//	POST   /api/simulations/{id}/events   apply one input event
//	POST   /api/simulations/{id}/resize   change the container size
//	DELETE /api/simulations/{id}          halt and remove
//	GET    /api/simulations/{id}/stream   WebSocket frame stream
//	POST   /api/layout                    headless layout run
//	POST   /api/fit                       fit a content box
//	GET    /healthz                       liveness
//	GET    /metrics                       Prometheus metrics
//
// Errors are returned as {"error": {"code": ..., "message": ...}} with the
// status derived from the error code.
package server

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/forcegraph/pkg/force"
	"github.com/matzehuels/forcegraph/pkg/interaction"
	"github.com/matzehuels/forcegraph/pkg/pipeline"
	"github.com/matzehuels/forcegraph/pkg/session"
)

// Default server settings.
const (
	DefaultAddr               = ":8080"
	DefaultRequestTimeout     = 30 * time.Second
	DefaultMaxTicksPerRequest = 1000
	DefaultFrameInterval      = time.Second / 30
	DefaultMaxBodyBytes       = 8 << 20
)

// Config holds server configuration.
type Config struct {
	Addr           string
	AllowedOrigins []string // CORS origins; "*" allows all
	RequestTimeout time.Duration

	// MaxTicksPerRequest caps the n of a tick request.
	MaxTicksPerRequest int

	// FrameInterval is the tick period of WebSocket streams.
	FrameInterval time.Duration

	// MaxBodyBytes limits request bodies.
	MaxBodyBytes int64

	// Params and Interaction are the defaults for new sessions. Request
	// fields override them.
	Params      force.Params
	Interaction interaction.Options

	// Gatherer serves /metrics; prometheus.DefaultGatherer when nil.
	Gatherer prometheus.Gatherer
}

func (c Config) withDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.MaxTicksPerRequest <= 0 {
		c.MaxTicksPerRequest = DefaultMaxTicksPerRequest
	}
	if c.FrameInterval <= 0 {
		c.FrameInterval = DefaultFrameInterval
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.Gatherer == nil {
		c.Gatherer = prometheus.DefaultGatherer
	}
	return c
}

// Server serves the simulation API.
type Server struct {
	cfg        Config
	store      *session.Store
	runner     *pipeline.Runner
	logger     *log.Logger
	router     chi.Router
	httpServer *http.Server
}

// New creates a server backed by store.
func New(cfg Config, store *session.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		cfg:    cfg.withDefaults(),
		store:  store,
		runner: pipeline.NewRunner(logger),
		logger: logger,
	}
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": s.store.Len()})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.cfg.Gatherer, promhttp.HandlerOpts{}))

	timeout := middleware.Timeout(s.cfg.RequestTimeout)

	r.Route("/api/simulations", func(r chi.Router) {
		// Streams outlive the request timeout.
		r.Get("/{id}/stream", s.handleStream)

		r.Group(func(r chi.Router) {
			r.Use(timeout)
			r.Post("/", s.handleCreate)
			r.Get("/", s.handleList)
			r.Get("/{id}", s.handleGet)
			r.Delete("/{id}", s.handleDelete)
			r.Post("/{id}/tick", s.handleTick)
			r.Post("/{id}/events", s.handleEvent)
			r.Post("/{id}/resize", s.handleResize)
		})
	})
	r.With(timeout).Post("/api/layout", s.handleLayout)
	r.With(timeout).Post("/api/fit", s.handleFit)

	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.cfg.Addr)
		errc <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down server")
	return s.httpServer.Shutdown(shutdownCtx)
}
