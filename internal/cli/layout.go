package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/pipeline"
)

// layoutCommand creates the layout command for settling a graph headlessly.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output      string
		formatsStr  string
		inputFormat string
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout [graph.json|graph.yaml|-]",
		Short: "Settle a graph and render it to SVG, PNG, PDF or JSON",
		Long: `Settle a graph and render it to SVG, PNG, PDF or JSON.

The layout command reads a graph of nodes and edges, runs the force
simulation until it stops (or until --max-ticks), fits the settled layout
into the frame and writes the requested formats. Use "-" to read the graph
from stdin.

The diagram type (-t diagram) lays the graph out with Graphviz instead.
PNG and PDF output require rsvg-convert.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			c.applyOutputConfig(cmd, &opts)
			return c.runLayout(cmd.Context(), args[0], graph.Format(inputFormat), opts, output)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", `output file (single format) or base path (multiple); "-" for stdout`)
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, png, pdf (comma-separated)")
	cmd.Flags().StringVar(&inputFormat, "input-format", "", "format of stdin input: json (default), yaml")

	// Layout flags
	cmd.Flags().StringVarP(&opts.VizType, "type", "t", "", "visualization type: force (default), diagram")
	cmd.Flags().Float64Var(&opts.Width, "width", 0, "frame width (default: simulation.width)")
	cmd.Flags().Float64Var(&opts.Height, "height", 0, "frame height (default: simulation.height)")
	cmd.Flags().Float64Var(&opts.Padding, "padding", 0, "padding around the fitted content (default: viewport.padding)")
	cmd.Flags().IntVar(&opts.MaxTicks, "max-ticks", 0, "stop after this many ticks even if the layout has not settled")
	cmd.Flags().StringVar(&opts.Direction, "direction", "", "diagram rank direction: TB (default), LR")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "show node ids and categories (diagram)")

	// Render flags
	cmd.Flags().BoolVar(&opts.Labels, "labels", true, "draw node labels")
	cmd.Flags().StringVar(&opts.Background, "background", "", "background color (default: output.background)")
	cmd.Flags().StringVar(&opts.Title, "title", "", "document title")
	cmd.Flags().Float64Var(&opts.Scale, "scale", pipeline.DefaultPNGScale, "PNG resolution multiplier")

	return cmd
}

// applyOutputConfig fills options the user did not set on the command line
// from the loaded configuration.
func (c *CLI) applyOutputConfig(cmd *cobra.Command, opts *pipeline.Options) {
	cfg := c.Config
	opts.Params = cfg.Params()
	if !cmd.Flags().Changed("padding") {
		opts.Padding = cfg.Viewport.Padding
	}
	if !cmd.Flags().Changed("labels") {
		opts.Labels = cfg.Output.Labels
	}
	if opts.Background == "" {
		opts.Background = cfg.Output.Background
	}
}

// runLayout loads the graph, runs the pipeline, and writes the artifacts.
func (c *CLI) runLayout(ctx context.Context, input string, inputFormat graph.Format, opts pipeline.Options, output string) error {
	g, err := pipeline.Load(input, os.Stdin, inputFormat)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}
	c.Logger.Debug("loaded graph", "input", input, "nodes", g.NodeCount(), "edges", g.EdgeCount())

	opts.Logger = c.Logger
	runner := pipeline.NewRunner(c.Logger)

	label := opts.VizType
	if label == "" {
		label = pipeline.DefaultVizType
	}
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Computing %s layout...", label))
	spinner.Start()

	result, err := runner.Run(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths, err := writeArtifacts(result.Artifacts, opts.Formats, input, output)
	if err != nil {
		return err
	}

	// Artifacts on stdout must not be mixed with status output.
	if len(paths) == 1 && paths[0] == "-" {
		return nil
	}

	printSuccess("Layout complete")
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats, opts.VizType == pipeline.VizDiagram)
	if n := result.Stats.Dropped; n > 0 {
		printWarning("%d edge(s) referenced unknown nodes and were dropped", n)
	}
	if input != pipeline.Stdin {
		printNewline()
		printNextStep("Explore", appName+" view "+input)
	}
	return nil
}
