// Package svg draws scenes as standalone SVG documents.
//
// The view transform is emitted once, as the transform attribute of the
// group holding all edges and nodes, so the document can be re-zoomed by
// editing a single attribute.
package svg

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/forcegraph/pkg/render"
)

// Option configures a Surface.
type Option func(*Surface)

// WithLabels draws node labels next to each node.
func WithLabels() Option { return func(s *Surface) { s.labels = true } }

// WithBackground fills the document with a solid color.
func WithBackground(color string) Option { return func(s *Surface) { s.background = color } }

// WithTitle sets the document title.
func WithTitle(title string) Option { return func(s *Surface) { s.title = title } }

// Surface accumulates one SVG document per drawing pass.
type Surface struct {
	labels     bool
	background string
	title      string

	buf  bytes.Buffer
	out  []byte
	open bool
}

// New returns an SVG surface.
func New(opts ...Option) *Surface {
	s := &Surface{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bytes returns the document produced by the last completed pass.
func (s *Surface) Bytes() []byte { return s.out }

func (s *Surface) Begin(f render.Frame) {
	s.buf.Reset()
	s.open = false
	fmt.Fprintf(&s.buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`+"\n",
		f.Width, f.Height, f.Width, f.Height)
	if s.title != "" {
		fmt.Fprintf(&s.buf, "  <title>%s</title>\n", escape(s.title))
	}
	if s.background != "" {
		fmt.Fprintf(&s.buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", escape(s.background))
	}
	t := f.Transform
	fmt.Fprintf(&s.buf, `  <g class="view" transform="translate(%.2f %.2f) scale(%.4f)" data-tick="%d" data-phase="%s">`+"\n",
		t.TranslateX, t.TranslateY, t.Scale, f.Tick, f.Phase)
	s.open = true
}

func (s *Surface) Edge(e render.EdgeView) {
	fmt.Fprintf(&s.buf, `    <line class="edge" data-source="%s" data-target="%s" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="1"/>`+"\n",
		escape(e.Source), escape(e.Target), e.From.X, e.From.Y, e.To.X, e.To.Y, render.EdgeColor)
}

func (s *Surface) Node(n render.NodeView) {
	stroke := "#ffffff"
	if n.Pinned {
		stroke = render.PinnedColor
	}
	fmt.Fprintf(&s.buf, `    <circle class="node %s" id="node-%s" cx="%.2f" cy="%.2f" r="%.2f" fill="%s" stroke="%s" stroke-width="1.5"/>`+"\n",
		n.Category, escape(n.ID), n.Pos.X, n.Pos.Y, n.Radius, render.Color(n.Category), stroke)
	if s.labels {
		fmt.Fprintf(&s.buf, `    <text class="label" x="%.2f" y="%.2f" font-size="10" fill="%s">%s</text>`+"\n",
			n.Pos.X+n.Radius+2, n.Pos.Y+3, render.TextColor, escape(n.Label))
	}
}

func (s *Surface) Placeholder(message string) {
	// The placeholder is drawn in screen space, outside the view group.
	if s.open {
		s.buf.WriteString("  </g>\n")
		s.open = false
	}
	fmt.Fprintf(&s.buf, `  <text class="placeholder" x="50%%" y="50%%" text-anchor="middle" font-size="14" fill="%s">%s</text>`+"\n",
		render.TextColor, escape(message))
}

func (s *Surface) End() error {
	if s.open {
		s.buf.WriteString("  </g>\n")
		s.open = false
	}
	s.buf.WriteString("</svg>\n")
	s.out = bytes.Clone(s.buf.Bytes())
	return nil
}

// Embed draws an externally rendered SVG document as the content of one
// pass, placed under the frame's transform. Any XML prolog or doctype
// before the document's root element is dropped.
func (s *Surface) Embed(f render.Frame, doc []byte) error {
	if i := bytes.Index(doc, []byte("<svg")); i >= 0 {
		doc = doc[i:]
	}
	s.Begin(f)
	s.buf.Write(bytes.TrimSpace(doc))
	s.buf.WriteByte('\n')
	return s.End()
}

func escape(v string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(v))
	return buf.String()
}
