package viewport

import (
	"math"
)

// ContentBox is the bounding box of the content being fitted, in world
// units.
type ContentBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Degenerate reports whether the box cannot be fitted: zero, negative or
// non-finite size, or a non-finite origin.
func (b ContentBox) Degenerate() bool {
	for _, v := range []float64{b.X, b.Y, b.Width, b.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return b.Width <= 0 || b.Height <= 0
}

// Fit returns the transform that centers box inside a cw x ch container
// with the given padding on every side. The scale never exceeds 1 and has
// no lower bound, so any content fits. When the padding leaves no room the
// box is fitted to the bare container. A degenerate box or non-finite
// container yields Identity.
func Fit(cw, ch float64, box ContentBox, padding float64) Transform {
	if cw-2*padding <= 0 || ch-2*padding <= 0 {
		padding = 0
	}
	return fitBounded(cw, ch, box, padding, Bounds{Max: 1})
}

// fitBounded is Fit with the scale additionally clamped into b. A
// non-positive available area clamps the scale to b.Min.
func fitBounded(cw, ch float64, box ContentBox, padding float64, b Bounds) Transform {
	if box.Degenerate() || !finite(cw, ch, padding) {
		return Identity
	}

	availW, availH := cw-2*padding, ch-2*padding
	var scale float64
	if availW <= 0 || availH <= 0 {
		scale = b.Min
	} else {
		scale = math.Min(availW/box.Width, availH/box.Height)
	}
	scale = math.Min(scale, 1)
	if scale < b.Min {
		scale = b.Min
	}
	if scale > b.Max {
		scale = b.Max
	}
	if scale <= 0 {
		return Identity
	}

	return Transform{
		Scale:      scale,
		TranslateX: (cw-box.Width*scale)/2 - box.X*scale,
		TranslateY: (ch-box.Height*scale)/2 - box.Y*scale,
	}
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Fitter remembers the last container and content measurements and
// recomputes the fit transform from them on demand.
type Fitter struct {
	width, height float64
	box           ContentBox
	padding       float64
	bounds        Bounds
}

// NewFitter returns a Fitter with the given padding and scale bounds.
func NewFitter(padding float64, bounds Bounds) *Fitter {
	if !(padding >= 0) || math.IsInf(padding, 0) {
		padding = 0
	}
	return &Fitter{padding: padding, bounds: bounds.WithDefaults()}
}

// SetContainer records new container dimensions (on mount or resize).
func (f *Fitter) SetContainer(width, height float64) {
	f.width, f.height = width, height
}

// SetContent records the content bounding box.
func (f *Fitter) SetContent(box ContentBox) {
	f.box = box
}

// Container returns the last recorded container dimensions.
func (f *Fitter) Container() (width, height float64) { return f.width, f.height }

// Content returns the last recorded content box.
func (f *Fitter) Content() ContentBox { return f.box }

// Bounds returns the scale bounds.
func (f *Fitter) Bounds() Bounds { return f.bounds }

// Fit computes the transform for the current measurements. The scale is
// capped at 1 and at the upper bound, and raised to the lower bound when
// the content does not fit.
func (f *Fitter) Fit() Transform {
	b := f.bounds
	b.Max = math.Min(b.Max, 1)
	if b.Min > b.Max {
		b.Min = b.Max
	}
	return fitBounded(f.width, f.height, f.box, f.padding, b)
}

// Reset restores the fit transform. The result is identical to a fresh Fit
// over the same measurements.
func (f *Fitter) Reset() Transform { return f.Fit() }
