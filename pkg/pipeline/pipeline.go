// Package pipeline runs headless layouts for forcegraph.
//
// This package implements the complete load → layout → fit → render pipeline
// used by the CLI and the HTTP server. By centralizing this logic, both entry
// points produce identical artifacts for identical input.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Load: Read a graph from a JSON or YAML file (or stdin)
//  2. Layout: Build the force model and tick it until it stops, or hand the
//     graph to Graphviz for the diagram visualization
//  3. Fit: Compute the view transform that presents the settled content in
//     the container
//  4. Render: Generate output in various formats (SVG, PNG, PDF, JSON)
//
// # Usage
//
//	runner := pipeline.NewRunner(logger)
//	opts := pipeline.Options{
//	    Formats: []string{"svg", "json"},
//	    Width:   1024,
//	    Height:  768,
//	}
//	result, err := runner.Run(ctx, g, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/force"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/render"
	"github.com/matzehuels/forcegraph/pkg/viewport"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultPadding is the space kept between the fitted content and the
	// container edges.
	DefaultPadding = 40.0

	// DefaultPNGScale is the resolution multiplier for PNG output.
	DefaultPNGScale = 2.0
)

// Visualization types.
const (
	// VizForce lays the graph out with the force simulation.
	VizForce = "force"
	// VizDiagram lays the graph out with Graphviz.
	VizDiagram = "diagram"
)

// DefaultVizType is the default visualization type.
const DefaultVizType = VizForce

// Format constants for output formats.
const (
	FormatSVG  = render.FormatSVG
	FormatPNG  = render.FormatPNG
	FormatPDF  = render.FormatPDF
	FormatJSON = render.FormatJSON
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// ValidVizTypes is the set of supported visualization types.
var ValidVizTypes = map[string]bool{
	VizForce:   true,
	VizDiagram: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	VizType string  `json:"viz_type,omitempty"`
	Width   float64 `json:"width,omitempty"`
	Height  float64 `json:"height,omitempty"`
	Padding float64 `json:"padding,omitempty"`

	// Params tunes the force simulation. Width and Height above override the
	// container fields.
	Params force.Params `json:"params"`

	// Seeds supplies starting positions by node id.
	Seeds map[string]force.Point `json:"seeds,omitempty"`

	// MaxTicks caps the total ticks of the run; 0 ticks until the simulator
	// stops on its own.
	MaxTicks int `json:"max_ticks,omitempty"`

	// Diagram options
	Direction string `json:"direction,omitempty"`
	Detailed  bool   `json:"detailed,omitempty"`

	// Render options
	Formats    []string `json:"formats,omitempty"`
	Labels     bool     `json:"labels,omitempty"`
	Background string   `json:"background,omitempty"`
	Title      string   `json:"title,omitempty"`
	Scale      float64  `json:"scale,omitempty"` // PNG resolution multiplier

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the input graph.
	Graph graph.Graph

	// Snapshot is the settled layout. It is empty for diagram runs.
	Snapshot force.Snapshot

	// Box is the content box the transform was fitted to.
	Box viewport.ContentBox

	// Transform presents Box in the container.
	Transform viewport.Transform

	// Dropped lists input edges that named unknown nodes.
	Dropped []graph.Edge

	// Warnings names the conditions the run recovered from, one coded
	// error each (DANGLING_EDGE, NUMERIC_INSTABILITY, DEGENERATE_CONTENT,
	// or INVALID_INPUT for an unusual node id).
	Warnings []error

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	Dropped    int
	Simulation force.Stats
	// Settled is false when MaxTicks ended the run before the simulator
	// stopped on its own.
	Settled    bool
	LayoutTime time.Duration
	RenderTime time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateVizType checks that a visualization type is valid.
func ValidateVizType(vizType string) error {
	if !ValidVizTypes[vizType] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid viz_type: %q (must be one of: force, diagram)", vizType)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks fields and applies defaults for the full
// pipeline. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.VizType == "" {
		o.VizType = DefaultVizType
	}
	if o.Width == 0 {
		o.Width = o.Params.Width
	}
	if o.Width == 0 {
		o.Width = force.DefaultWidth
	}
	if o.Height == 0 {
		o.Height = o.Params.Height
	}
	if o.Height == 0 {
		o.Height = force.DefaultHeight
	}
	if o.Padding == 0 {
		o.Padding = DefaultPadding
	}
	o.Params.Width, o.Params.Height = o.Width, o.Height
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := ValidateVizType(o.VizType); err != nil {
		return err
	}
	if err := errors.ValidateDimensions(o.Width, o.Height); err != nil {
		return err
	}
	if o.Padding < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "padding must not be negative, got %v", o.Padding)
	}
	if o.MaxTicks < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max_ticks must not be negative, got %d", o.MaxTicks)
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if !(o.Scale > 0) {
		o.Scale = DefaultPNGScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// IsDiagram returns true if this is a Graphviz diagram run.
func (o *Options) IsDiagram() bool {
	return o.VizType == VizDiagram
}

// NeedsSVG reports whether any requested format is derived from the SVG
// drawing.
func (o *Options) NeedsSVG() bool {
	for _, f := range o.Formats {
		if f != FormatJSON {
			return true
		}
	}
	return false
}
