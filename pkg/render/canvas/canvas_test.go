package canvas

import (
	"strings"
	"testing"

	"github.com/matzehuels/forcegraph/pkg/force"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/render"
	"github.com/matzehuels/forcegraph/pkg/viewport"
)

func draw(t *testing.T, s *Surface, nodes []render.NodeView, edges []render.EdgeView, view viewport.Transform) string {
	t.Helper()
	s.Begin(render.Frame{Width: 100, Height: 50, Transform: view})
	for _, e := range edges {
		s.Edge(e)
	}
	for _, n := range nodes {
		s.Node(n)
	}
	if err := s.End(); err != nil {
		t.Fatalf("End: %v", err)
	}
	return s.String()
}

func TestSurfaceGrid(t *testing.T) {
	s := New(10, 5, false)
	out := draw(t, s,
		[]render.NodeView{
			{ID: "a", Pos: force.Point{X: 5, Y: 5}},
			{ID: "b", Pos: force.Point{X: 95, Y: 5}, Pinned: true},
		},
		[]render.EdgeView{{From: force.Point{X: 5, Y: 5}, To: force.Point{X: 95, Y: 5}}},
		viewport.Identity,
	)

	lines := strings.Split(out, "\n")
	if len(lines) != 5 {
		t.Fatalf("rows = %d, want 5", len(lines))
	}
	first := []rune(stripANSI(lines[0]))
	if first[0] != NodeGlyph {
		t.Errorf("cell (0,0) = %q, want node", first[0])
	}
	if first[9] != PinnedGlyph {
		t.Errorf("cell (9,0) = %q, want pinned node", first[9])
	}
	for i := 1; i < 9; i++ {
		if first[i] != EdgeGlyph {
			t.Errorf("cell (%d,0) = %q, want edge", i, first[i])
		}
	}
}

func TestSurfaceTransform(t *testing.T) {
	s := New(10, 5, false)
	// World (5, 5) scaled by 2 and shifted by (40, 20) lands at (50, 30),
	// which is cell (5, 3).
	view := viewport.Transform{Scale: 2, TranslateX: 40, TranslateY: 20}
	out := draw(t, s, []render.NodeView{{ID: "a", Pos: force.Point{X: 5, Y: 5}}}, nil, view)

	lines := strings.Split(out, "\n")
	if got := []rune(stripANSI(lines[3]))[5]; got != NodeGlyph {
		t.Errorf("cell (5,3) = %q, want node", got)
	}
	if p := s.CellToWorld(5, 3); p.X != 7.5 || p.Y != 7.5 {
		t.Errorf("CellToWorld(5, 3) = %+v, want {7.5 7.5}", p)
	}
}

func TestSurfaceClipsOffscreen(t *testing.T) {
	s := New(10, 5, true)
	out := draw(t, s,
		[]render.NodeView{{ID: "far", Label: "far", Pos: force.Point{X: -500, Y: 900}}},
		[]render.EdgeView{{From: force.Point{X: -1e9, Y: -300}, To: force.Point{X: 1e9, Y: -300}}},
		viewport.Identity,
	)
	if strings.TrimSpace(stripANSI(out)) != "" {
		t.Errorf("offscreen content drawn:\n%s", out)
	}
}

func TestSurfaceClipsLongEdges(t *testing.T) {
	tests := []struct {
		name     string
		from, to force.Point
		row      int
	}{
		{"both ends far outside", force.Point{X: -1e9, Y: 25}, force.Point{X: 1e9, Y: 25}, 2},
		{"one end far outside", force.Point{X: 5, Y: 45}, force.Point{X: 1e7, Y: 45}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(10, 5, false)
			out := draw(t, s, nil, []render.EdgeView{{From: tt.from, To: tt.to}}, viewport.Identity)
			lines := strings.Split(stripANSI(out), "\n")
			row := []rune(lines[tt.row])
			for col, r := range row {
				if r != EdgeGlyph {
					t.Errorf("cell (%d,%d) = %q, want edge", col, tt.row, r)
				}
			}
		})
	}

	// Zoomed in on the midpoint (5, 25) so both endpoints leave the grid.
	s := New(10, 5, false)
	view := viewport.Transform{Scale: 1000, TranslateX: -4950, TranslateY: -24975}
	out := draw(t, s, nil, []render.EdgeView{{From: force.Point{X: 0, Y: 0}, To: force.Point{X: 10, Y: 50}}}, view)
	if !strings.ContainsRune(out, EdgeGlyph) {
		t.Errorf("edge crossing the zoomed grid not drawn:\n%s", out)
	}
}

func TestSurfaceLabels(t *testing.T) {
	s := New(20, 3, true)
	out := draw(t, s, []render.NodeView{{ID: "a", Label: "main", Category: graph.CategoryFile, Pos: force.Point{X: 2, Y: 20}}}, nil, viewport.Identity)
	if !strings.Contains(stripANSI(out), "● main") {
		t.Errorf("label missing:\n%s", out)
	}
}

func TestSurfacePlaceholder(t *testing.T) {
	s := New(60, 5, false)
	scene := render.NewScene(graph.Graph{Nodes: []graph.Node{{ID: "a"}, {ID: "a"}}}, force.Params{})
	b := render.NewBridge(s)
	b.SetSize(300, 50)
	if err := b.Draw(scene, viewport.Identity); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if !strings.Contains(s.String(), "invalid graph") {
		t.Errorf("placeholder missing:\n%s", s.String())
	}
}

// stripANSI removes SGR escape sequences.
func stripANSI(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc && r == 'm':
			inEsc = false
		case !inEsc:
			b.WriteRune(r)
		}
	}
	return b.String()
}
