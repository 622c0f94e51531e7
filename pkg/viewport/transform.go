package viewport

import (
	"math"

	"github.com/matzehuels/forcegraph/pkg/force"
)

// Default scale bounds.
const (
	DefaultMinScale = 0.1
	DefaultMaxScale = 4.0
)

// Transform maps world coordinates onto the screen.
type Transform struct {
	Scale      float64 `json:"scale"`
	TranslateX float64 `json:"translate_x"`
	TranslateY float64 `json:"translate_y"`
}

// Identity is the transform that leaves points unchanged.
var Identity = Transform{Scale: 1}

// Bounds limits Transform.Scale.
type Bounds struct {
	Min float64 `json:"min_scale" toml:"min_scale"`
	Max float64 `json:"max_scale" toml:"max_scale"`
}

// DefaultBounds returns the default scale bounds.
func DefaultBounds() Bounds {
	return Bounds{Min: DefaultMinScale, Max: DefaultMaxScale}
}

// WithDefaults returns b with invalid bounds replaced by the defaults. A
// bound pair with Min > Max is swapped.
func (b Bounds) WithDefaults() Bounds {
	if !(b.Min > 0) || math.IsInf(b.Min, 0) {
		b.Min = DefaultMinScale
	}
	if !(b.Max > 0) || math.IsInf(b.Max, 0) {
		b.Max = DefaultMaxScale
	}
	if b.Min > b.Max {
		b.Min, b.Max = b.Max, b.Min
	}
	return b
}

// Clamp returns s limited to the bounds. Non-finite scales map to Min.
func (b Bounds) Clamp(s float64) float64 {
	if math.IsNaN(s) || s < b.Min {
		return b.Min
	}
	if s > b.Max {
		return b.Max
	}
	return s
}

// ToScreen maps a world point to screen coordinates.
func ToScreen(t Transform, p force.Point) force.Point {
	return force.Point{X: p.X*t.Scale + t.TranslateX, Y: p.Y*t.Scale + t.TranslateY}
}

// ToWorld maps a screen point to world coordinates.
func ToWorld(t Transform, p force.Point) force.Point {
	s := t.Scale
	if s == 0 {
		s = 1
	}
	return force.Point{X: (p.X - t.TranslateX) / s, Y: (p.Y - t.TranslateY) / s}
}

// Pan shifts t by a screen-space delta.
func Pan(t Transform, dx, dy float64) Transform {
	if math.IsNaN(dx) || math.IsInf(dx, 0) || math.IsNaN(dy) || math.IsInf(dy, 0) {
		return t
	}
	t.TranslateX += dx
	t.TranslateY += dy
	return t
}

// ZoomAt multiplies t's scale by factor, clamped into b, keeping the world
// point under the screen point (px, py) fixed.
func ZoomAt(t Transform, factor, px, py float64, b Bounds) Transform {
	if !(factor > 0) || math.IsInf(factor, 0) || t.Scale <= 0 {
		return t
	}
	next := b.Clamp(t.Scale * factor)
	ratio := next / t.Scale
	return Transform{
		Scale:      next,
		TranslateX: px - (px-t.TranslateX)*ratio,
		TranslateY: py - (py-t.TranslateY)*ratio,
	}
}
