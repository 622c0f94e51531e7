package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/forcegraph/pkg/force"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/observability"
	"github.com/matzehuels/forcegraph/pkg/render/diagram"
	"github.com/matzehuels/forcegraph/pkg/viewport"
)

// ctxCheckInterval is how many ticks run between context checks.
const ctxCheckInterval = 16

// Layout is the output of the layout stage.
type Layout struct {
	// Sim is the settled simulator of a force run, nil for diagrams.
	Sim *force.Simulator

	// Diagram is the Graphviz drawing of a diagram run.
	Diagram []byte

	// Box is the extent of the laid out content.
	Box viewport.ContentBox

	// Settled reports whether the simulator stopped on its own.
	Settled bool
}

// ComputeLayout runs the layout stage for g.
func (r *Runner) ComputeLayout(ctx context.Context, g graph.Graph, opts Options) (*Layout, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}
	if opts.IsDiagram() {
		return r.layoutDiagram(ctx, g, opts)
	}
	return r.simulate(ctx, g, opts)
}

func (r *Runner) simulate(ctx context.Context, g graph.Graph, opts Options) (*Layout, error) {
	hooks := observability.Layout()

	var buildOpts []force.BuildOption
	if len(opts.Seeds) > 0 {
		buildOpts = append(buildOpts, force.WithPositions(opts.Seeds))
	}
	state, err := force.FromGraph(g, opts.Params, buildOpts...)
	if err != nil {
		hooks.OnBuild(ctx, g.NodeCount(), g.EdgeCount(), 0, err)
		return nil, fmt.Errorf("build: %w", err)
	}
	hooks.OnBuild(ctx, len(state.Nodes), len(state.Edges), len(state.Dropped), nil)

	sim := force.NewSimulator(state)
	hooks.OnSimulationStart(ctx, len(state.Nodes), len(state.Edges))
	start := time.Now()

	ticks := 0
	for sim.Active() {
		if opts.MaxTicks > 0 && ticks >= opts.MaxTicks {
			break
		}
		if ticks%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				sim.Halt()
				return nil, fmt.Errorf("simulate: %w", err)
			}
		}
		sim.Tick()
		ticks++
	}

	stats := sim.Stats()
	hooks.OnSimulationComplete(ctx, observability.SimulationResult{
		Ticks:         stats.Ticks,
		Reheats:       stats.Reheats,
		Instabilities: stats.Instabilities,
		BudgetStops:   stats.BudgetStops,
		Phase:         string(sim.Phase()),
	}, time.Since(start))

	if stats.BudgetStops > 0 {
		r.Logger.Debug("simulation stopped by tick budget", "max_ticks", state.Params.MaxTicks)
	}

	return &Layout{
		Sim:     sim,
		Box:     viewport.BoxOf(state.Nodes),
		Settled: !sim.Active(),
	}, nil
}

func (r *Runner) layoutDiagram(ctx context.Context, g graph.Graph, opts Options) (*Layout, error) {
	doc, err := diagram.Render(ctx, g, diagram.Options{
		Direction: opts.Direction,
		Detailed:  opts.Detailed,
	})
	if err != nil {
		return nil, fmt.Errorf("diagram: %w", err)
	}
	box, err := viewport.BoxFromSVG(doc)
	if err != nil {
		return nil, fmt.Errorf("diagram: %w", err)
	}
	return &Layout{Diagram: doc, Box: box, Settled: true}, nil
}
