package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/force"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/render"
	"github.com/matzehuels/forcegraph/pkg/render/svg"
	"github.com/matzehuels/forcegraph/pkg/viewport"
)

// Document is the JSON artifact of a pipeline run.
type Document struct {
	VizType   string              `json:"viz_type"`
	Width     float64             `json:"width"`
	Height    float64             `json:"height"`
	Box       viewport.ContentBox `json:"box"`
	Transform viewport.Transform  `json:"transform"`

	// Force runs only.
	Tick    int            `json:"tick,omitempty"`
	Phase   force.Phase    `json:"phase,omitempty"`
	Nodes   []DocumentNode `json:"nodes,omitempty"`
	Edges   []graph.Edge   `json:"edges,omitempty"`
	Dropped []graph.Edge   `json:"dropped,omitempty"`
	Stats   *force.Stats   `json:"stats,omitempty"`
}

// DocumentNode is a positioned node in a Document.
type DocumentNode struct {
	ID       string         `json:"id"`
	Label    string         `json:"label,omitempty"`
	Category graph.Category `json:"category"`
	X        float64        `json:"x"`
	Y        float64        `json:"y"`
	Radius   float64        `json:"radius"`
	Pinned   bool           `json:"pinned,omitempty"`
}

// NewDocument describes layout l presented under t.
func NewDocument(l *Layout, t viewport.Transform, opts Options) Document {
	doc := Document{
		VizType:   opts.VizType,
		Width:     opts.Width,
		Height:    opts.Height,
		Box:       l.Box,
		Transform: t,
	}
	if l.Sim == nil {
		return doc
	}

	state := l.Sim.State()
	stats := l.Sim.Stats()
	doc.Tick = stats.Ticks
	doc.Phase = l.Sim.Phase()
	doc.Stats = &stats
	doc.Dropped = state.Dropped
	doc.Nodes = make([]DocumentNode, len(state.Nodes))
	for i, n := range state.Nodes {
		doc.Nodes[i] = DocumentNode{
			ID:       n.ID,
			Label:    n.Label,
			Category: n.Category,
			X:        n.Pos.X,
			Y:        n.Pos.Y,
			Radius:   n.Radius,
			Pinned:   n.Pinned(),
		}
	}
	doc.Edges = make([]graph.Edge, len(state.Edges))
	for i, e := range state.Edges {
		doc.Edges[i] = graph.Edge{Source: e.Source.ID, Target: e.Target.ID}
	}
	return doc
}

// MarshalDocument converts a Document to indented JSON bytes.
func MarshalDocument(doc Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode layout document")
	}
	return append(data, '\n'), nil
}

// Render generates output artifacts in the requested formats for layout l
// presented under t.
func Render(ctx context.Context, l *Layout, t viewport.Transform, opts Options) (map[string][]byte, error) {
	opts.SetLayoutDefaults()
	opts.SetRenderDefaults()

	var drawing []byte
	if opts.NeedsSVG() {
		var err error
		if drawing, err = DrawSVG(l, t, opts); err != nil {
			return nil, fmt.Errorf("render svg: %w", err)
		}
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = drawing
		case FormatPNG:
			data, err = render.ToPNG(ctx, drawing, opts.Scale)
		case FormatPDF:
			data, err = render.ToPDF(ctx, drawing)
		case FormatJSON:
			data, err = MarshalDocument(NewDocument(l, t, opts))
		default:
			return nil, ValidateFormat(format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// DrawSVG draws layout l in an opts.Width x opts.Height document under t.
func DrawSVG(l *Layout, t viewport.Transform, opts Options) ([]byte, error) {
	s := svg.New(svgOptions(opts)...)
	f := render.Frame{Width: opts.Width, Height: opts.Height, Transform: t}

	if l.Sim == nil {
		if err := s.Embed(f, l.Diagram); err != nil {
			return nil, err
		}
		return s.Bytes(), nil
	}

	b := render.NewBridge(s)
	b.SetSize(opts.Width, opts.Height)
	if err := b.Draw(render.SceneOf(l.Sim), t); err != nil {
		return nil, err
	}
	return s.Bytes(), nil
}

func svgOptions(opts Options) []svg.Option {
	var out []svg.Option
	if opts.Labels {
		out = append(out, svg.WithLabels())
	}
	if opts.Background != "" {
		out = append(out, svg.WithBackground(opts.Background))
	}
	if opts.Title != "" {
		out = append(out, svg.WithTitle(opts.Title))
	}
	return out
}
