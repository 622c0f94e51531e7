package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/observability"
	"github.com/matzehuels/forcegraph/pkg/viewport"
)

// Runner encapsulates pipeline execution.
//
// The Runner is stateless except for the logger - it doesn't store pipeline
// results. Multiple goroutines can safely use the same Runner with different
// options.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner. If logger is nil, log.Default() is used.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// Run executes the complete layout → fit → render pipeline for g.
func (r *Runner) Run(ctx context.Context, g graph.Graph, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Graph:     g,
		Artifacts: make(map[string][]byte),
	}
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()

	// Stage 1: Layout
	layoutStart := time.Now()
	l, err := r.ComputeLayout(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Settled = l.Settled
	result.Box = l.Box
	if l.Sim != nil {
		state := l.Sim.State()
		result.Snapshot = l.Sim.Snapshot()
		result.Dropped = state.Dropped
		result.Stats.Dropped = len(state.Dropped)
		result.Stats.Simulation = l.Sim.Stats()
	}

	r.Logger.Info("computed layout",
		"viz", opts.VizType,
		"nodes", result.Stats.NodeCount,
		"ticks", result.Stats.Simulation.Ticks,
		"settled", l.Settled,
		"duration", result.Stats.LayoutTime)

	result.Warnings = diagnose(g, l)
	for _, w := range result.Warnings {
		if errors.GetCode(w) == errors.ErrCodeInvalidInput {
			r.Logger.Warn("unusual node id", "err", w)
			continue
		}
		r.Logger.Debug("recovered", "code", errors.GetCode(w), "err", w)
	}

	// Stage 2: Fit
	result.Transform = Fit(l, opts)

	// Stage 3: Render
	hooks := observability.Layout()
	hooks.OnRenderStart(ctx, opts.Formats)
	renderStart := time.Now()
	artifacts, err := Render(ctx, l, result.Transform, opts)
	result.Stats.RenderTime = time.Since(renderStart)
	hooks.OnRenderComplete(ctx, opts.Formats, result.Stats.RenderTime, err)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"scale", result.Transform.Scale,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Fit returns the transform that presents layout l in the opts container.
func Fit(l *Layout, opts Options) viewport.Transform {
	opts.SetLayoutDefaults()
	return viewport.Fit(opts.Width, opts.Height, l.Box, opts.Padding)
}

// diagnose lists the conditions a layout recovered from. Node ids that are
// blank, overlong or contain control characters are accepted by the model
// and reported here.
func diagnose(g graph.Graph, l *Layout) []error {
	var warns []error
	for _, n := range g.Nodes {
		if err := errors.ValidateNodeID(n.ID); err != nil {
			warns = append(warns, err)
		}
	}
	if l.Sim != nil {
		for _, e := range l.Sim.State().Dropped {
			warns = append(warns, errors.New(errors.ErrCodeDanglingEdge,
				"edge %q -> %q names an unknown node", e.Source, e.Target))
		}
		if n := l.Sim.Stats().Instabilities; n > 0 {
			warns = append(warns, errors.New(errors.ErrCodeNumericInstability,
				"reset %d non-finite forces or positions", n))
		}
	}
	if l.Box.Degenerate() {
		warns = append(warns, errors.New(errors.ErrCodeDegenerateContent,
			"content box is %gx%g, using identity transform", l.Box.Width, l.Box.Height))
	}
	return warns
}
