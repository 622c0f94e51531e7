// Package canvas draws scenes onto a terminal character grid.
//
// Every world point is mapped through the view transform and then into a
// cell of a cols x rows grid covering the frame. Nodes are drawn as colored
// glyphs, edges as dotted lines.
package canvas

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/forcegraph/pkg/force"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/render"
	"github.com/matzehuels/forcegraph/pkg/viewport"
)

// Glyphs.
const (
	NodeGlyph   = '●'
	PinnedGlyph = '◉'
	EdgeGlyph   = '·'
)

type cell struct {
	r     rune
	style *lipgloss.Style
}

// Surface is a terminal surface. Resize it to the terminal dimensions
// before drawing.
type Surface struct {
	cols, rows int
	labels     bool

	grid    [][]cell
	frame   render.Frame
	cellW   float64
	cellH   float64
	message string
	out     string

	edgeStyle   lipgloss.Style
	pinnedStyle lipgloss.Style
	labelStyle  lipgloss.Style
	nodeStyles  map[graph.Category]lipgloss.Style
}

// New returns a surface of cols x rows cells.
func New(cols, rows int, labels bool) *Surface {
	s := &Surface{
		labels:      labels,
		edgeStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color(render.EdgeColor)),
		pinnedStyle: lipgloss.NewStyle().Foreground(lipgloss.Color(render.PinnedColor)).Bold(true),
		labelStyle:  lipgloss.NewStyle().Faint(true),
		nodeStyles:  make(map[graph.Category]lipgloss.Style, len(graph.Categories)),
	}
	for _, c := range graph.Categories {
		s.nodeStyles[c] = lipgloss.NewStyle().Foreground(lipgloss.Color(render.Color(c)))
	}
	s.Resize(cols, rows)
	return s
}

// Resize changes the grid dimensions. Non-positive sizes become 1.
func (s *Surface) Resize(cols, rows int) {
	s.cols, s.rows = max(cols, 1), max(rows, 1)
}

// Size returns the grid dimensions.
func (s *Surface) Size() (cols, rows int) { return s.cols, s.rows }

// String returns the grid produced by the last completed pass.
func (s *Surface) String() string { return s.out }

// CellToWorld maps a grid cell to the world point at its center under the
// transform of the last pass. Hosts use it to turn mouse cells into
// pointer events.
func (s *Surface) CellToWorld(col, row int) force.Point {
	return viewport.ToWorld(s.frame.Transform, s.CellToScreen(col, row))
}

// CellToScreen maps a grid cell to the container point at its center.
func (s *Surface) CellToScreen(col, row int) force.Point {
	return force.Point{X: (float64(col) + 0.5) * s.cellW, Y: (float64(row) + 0.5) * s.cellH}
}

func (s *Surface) Begin(f render.Frame) {
	s.frame = f
	s.message = ""
	s.cellW = f.Width / float64(s.cols)
	s.cellH = f.Height / float64(s.rows)
	if !(s.cellW > 0) {
		s.cellW = 1
	}
	if !(s.cellH > 0) {
		s.cellH = 1
	}
	s.grid = make([][]cell, s.rows)
	for i := range s.grid {
		s.grid[i] = make([]cell, s.cols)
	}
}

func (s *Surface) toCell(p force.Point) (col, row int) {
	g := s.toGrid(p)
	return int(math.Floor(g.X)), int(math.Floor(g.Y))
}

// toGrid maps a world point to fractional grid coordinates.
func (s *Surface) toGrid(p force.Point) force.Point {
	sp := viewport.ToScreen(s.frame.Transform, p)
	return force.Point{X: sp.X / s.cellW, Y: sp.Y / s.cellH}
}

// clipSegment cuts the segment a-b to the rectangle [0,w]x[0,h]
// (Liang-Barsky). It reports false when nothing of the segment is inside.
func clipSegment(a, b force.Point, w, h float64) (force.Point, force.Point, bool) {
	for _, v := range []float64{a.X, a.Y, b.X, b.Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return a, b, false
		}
	}
	dx, dy := b.X-a.X, b.Y-a.Y
	t0, t1 := 0.0, 1.0
	for _, c := range [4][2]float64{{-dx, a.X}, {dx, w - a.X}, {-dy, a.Y}, {dy, h - a.Y}} {
		p, q := c[0], c[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return a, b, false
			}
			t0 = math.Max(t0, r)
		} else {
			if r < t0 {
				return a, b, false
			}
			t1 = math.Min(t1, r)
		}
	}
	return force.Point{X: a.X + t0*dx, Y: a.Y + t0*dy},
		force.Point{X: a.X + t1*dx, Y: a.Y + t1*dy}, true
}

func (s *Surface) set(col, row int, r rune, style *lipgloss.Style) {
	if row < 0 || row >= s.rows || col < 0 || col >= s.cols {
		return
	}
	s.grid[row][col] = cell{r: r, style: style}
}

func (s *Surface) Edge(e render.EdgeView) {
	from, to, ok := clipSegment(s.toGrid(e.From), s.toGrid(e.To), float64(s.cols), float64(s.rows))
	if !ok {
		return
	}
	x0, y0 := int(math.Floor(from.X)), int(math.Floor(from.Y))
	x1, y1 := int(math.Floor(to.X)), int(math.Floor(to.Y))

	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	errAcc := dx + dy
	for {
		if inRange(y0, s.rows) && inRange(x0, s.cols) && s.grid[y0][x0].r == 0 {
			s.set(x0, y0, EdgeGlyph, &s.edgeStyle)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * errAcc
		if e2 >= dy {
			errAcc += dy
			x0 += sx
		}
		if e2 <= dx {
			errAcc += dx
			y0 += sy
		}
	}
}

func (s *Surface) Node(n render.NodeView) {
	col, r := s.toCell(n.Pos)
	if n.Pinned {
		s.set(col, r, PinnedGlyph, &s.pinnedStyle)
	} else {
		style := s.nodeStyles[n.Category.Normalize()]
		s.set(col, r, NodeGlyph, &style)
	}
	if !s.labels {
		return
	}
	for i, ch := range []rune(n.Label) {
		c := col + 2 + i
		if !inRange(c, s.cols) || !inRange(r, s.rows) {
			break
		}
		// Labels never overwrite nodes.
		if g := s.grid[r][c].r; g == NodeGlyph || g == PinnedGlyph {
			break
		}
		s.set(c, r, ch, &s.labelStyle)
	}
}

func (s *Surface) Placeholder(message string) {
	s.message = message
}

func (s *Surface) End() error {
	var b strings.Builder
	if s.message != "" {
		s.out = lipgloss.Place(s.cols, s.rows, lipgloss.Center, lipgloss.Center, s.message)
		return nil
	}
	for i, line := range s.grid {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, c := range line {
			switch {
			case c.r == 0:
				b.WriteByte(' ')
			case c.style != nil:
				b.WriteString(c.style.Render(string(c.r)))
			default:
				b.WriteRune(c.r)
			}
		}
	}
	s.out = b.String()
	return nil
}

func inRange(v, n int) bool { return v >= 0 && v < n }

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
