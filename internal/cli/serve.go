package cli

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/forcegraph/pkg/observability"
	"github.com/matzehuels/forcegraph/pkg/server"
	"github.com/matzehuels/forcegraph/pkg/session"
)

// cleanupInterval is how often expired sessions are swept.
const cleanupInterval = time.Minute

// serveCommand creates the serve command for the live simulation API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		origins []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve live simulations over HTTP and WebSocket",
		Long: `Serve live simulations over HTTP and WebSocket.

Clients create a simulation from a graph, then drive it with tick, event
and resize requests, or open /api/simulations/{id}/stream to receive one
view per frame while sending pointer events. Headless layouts and fits are
available at /api/layout and /api/fit. Prometheus metrics are served at
/metrics.

Sessions live in memory and expire after server.session_ttl of inactivity.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				c.Config.Server.Addr = addr
			}
			if cmd.Flags().Changed("allowed-origins") {
				c.Config.Server.AllowedOrigins = origins
			}
			return c.runServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr)")
	cmd.Flags().StringSliceVar(&origins, "allowed-origins", nil, "CORS origins (default: server.allowed_origins)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context) error {
	cfg := c.Config

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	observability.SetLayoutHooks(metrics)
	observability.SetSessionHooks(metrics)
	observability.SetHTTPHooks(metrics)
	defer observability.Reset()

	store := session.NewStore(session.Options{
		TTL:         cfg.Server.SessionTTL.Std(),
		MaxSessions: cfg.Server.MaxSessions,
	})
	defer store.Close(context.Background())
	go store.Run(ctx, cleanupInterval)

	srv := server.New(server.Config{
		Addr:               cfg.Server.Addr,
		AllowedOrigins:     cfg.Server.AllowedOrigins,
		RequestTimeout:     cfg.Server.RequestTimeout.Std(),
		MaxTicksPerRequest: cfg.Server.MaxTicksPerRequest,
		FrameInterval:      cfg.FrameInterval(),
		Params:             cfg.Params(),
		Interaction:        cfg.InteractionOptions(),
		Gatherer:           prometheus.DefaultGatherer,
	}, store, c.Logger)

	printInfo("Serving live simulations")
	printKeyValue("addr", cfg.Server.Addr)
	printKeyValue("sessions", formatSessionLimits(cfg.Server.MaxSessions, cfg.Server.SessionTTL.Std()))
	printKeyValue("frame rate", formatFrameRate(cfg.Output.FrameRate))
	printDetail("press Ctrl+C to stop")

	return srv.ListenAndServe(ctx)
}

func formatSessionLimits(limit int, ttl time.Duration) string {
	return StyleNumber.Render(strconv.Itoa(limit)) + " max, idle ttl " + ttl.String()
}

func formatFrameRate(fps int) string {
	return StyleNumber.Render(strconv.Itoa(fps)) + " fps"
}
