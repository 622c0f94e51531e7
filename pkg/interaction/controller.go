// Package interaction translates pointer, wheel and pinch input into
// simulator pins and view transform changes.
//
// A [Controller] owns the current [viewport.Transform] of one mounted
// visualization. Pressing on a node pins it under the pointer; pressing on
// empty space pans. Wheel and pinch zoom around the pointer. Handlers run
// synchronously and to completion; a Controller is not safe for concurrent
// use.
//
// After [Controller.Teardown] every handler is a no-op. A drag that was in
// progress is abandoned without touching the simulator.
package interaction

import (
	"math"

	"github.com/matzehuels/forcegraph/pkg/force"
	"github.com/matzehuels/forcegraph/pkg/viewport"
)

// Defaults for Options.
const (
	DefaultHitSlop          = 4.0
	DefaultWheelSensitivity = 0.002
)

// Mode is what the pointer is currently doing.
type Mode int

const (
	ModeIdle Mode = iota
	ModeDragging
	ModePanning
)

func (m Mode) String() string {
	switch m {
	case ModeDragging:
		return "dragging"
	case ModePanning:
		return "panning"
	default:
		return "idle"
	}
}

// Options configures a Controller.
type Options struct {
	// HitSlop widens node hit targets, in screen pixels.
	HitSlop float64
	// WheelSensitivity converts a wheel delta into a zoom factor of
	// exp(-delta * WheelSensitivity).
	WheelSensitivity float64
	// Bounds limits the zoom scale.
	Bounds viewport.Bounds
	// Padding is applied around content when fitting.
	Padding float64
}

func (o Options) withDefaults() Options {
	if !(o.HitSlop >= 0) || math.IsInf(o.HitSlop, 0) {
		o.HitSlop = DefaultHitSlop
	}
	if !(o.WheelSensitivity > 0) || math.IsInf(o.WheelSensitivity, 0) {
		o.WheelSensitivity = DefaultWheelSensitivity
	}
	o.Bounds = o.Bounds.WithDefaults()
	return o
}

type drag struct {
	id     string
	offset force.Point
}

// Controller routes input events of one visualization.
type Controller struct {
	opts   Options
	sim    *force.Simulator
	fitter *viewport.Fitter
	view   viewport.Transform

	mode Mode
	drag drag
	last force.Point

	torn bool
}

// New returns a Controller driving sim. sim may be nil for views that only
// pan and zoom external content.
func New(sim *force.Simulator, opts Options) *Controller {
	opts = opts.withDefaults()
	return &Controller{
		opts:   opts,
		sim:    sim,
		fitter: viewport.NewFitter(opts.Padding, opts.Bounds),
		view:   viewport.Identity,
	}
}

// Transform returns the current view transform.
func (c *Controller) Transform() viewport.Transform { return c.view }

// Mode returns the current pointer mode.
func (c *Controller) Mode() Mode { return c.mode }

// Dragging returns the id of the node being dragged, if any.
func (c *Controller) Dragging() (string, bool) {
	if c.mode != ModeDragging {
		return "", false
	}
	return c.drag.id, true
}

// Alive reports whether the controller still handles events.
func (c *Controller) Alive() bool { return !c.torn }

// Fitter returns the fitter holding the container and content
// measurements.
func (c *Controller) Fitter() *viewport.Fitter { return c.fitter }

// SetSimulator replaces the driven simulator after a dataset change. Any
// drag on the previous simulator is abandoned.
func (c *Controller) SetSimulator(sim *force.Simulator) {
	if c.torn {
		return
	}
	c.sim = sim
	if c.mode == ModeDragging {
		c.mode = ModeIdle
	}
}

// Mount records the container and content measurements and applies the fit
// transform.
func (c *Controller) Mount(width, height float64, box viewport.ContentBox) viewport.Transform {
	if c.torn {
		return c.view
	}
	c.fitter.SetContainer(width, height)
	c.fitter.SetContent(box)
	c.view = c.fitter.Fit()
	return c.view
}

// Resize updates the container size, resizes the simulator without
// resetting positions and re-derives the fit transform.
func (c *Controller) Resize(width, height float64) viewport.Transform {
	if c.torn {
		return c.view
	}
	c.fitter.SetContainer(width, height)
	if c.sim != nil {
		c.sim.Resize(width, height)
	}
	c.view = c.fitter.Fit()
	return c.view
}

// Reset restores the fit transform.
func (c *Controller) Reset() viewport.Transform {
	if c.torn {
		return c.view
	}
	c.view = c.fitter.Reset()
	return c.view
}

// PointerDown starts a drag when the screen point is over a node and a pan
// otherwise. It reports whether a drag started. A drag still in progress
// is released first, as if the pointer had gone up.
func (c *Controller) PointerDown(x, y float64) bool {
	if c.torn || !finite(x, y) {
		return false
	}
	if c.mode == ModeDragging {
		c.PointerUp()
	}
	screen := force.Point{X: x, Y: y}
	c.last = screen

	if c.sim != nil && c.sim.Alive() {
		world := viewport.ToWorld(c.view, screen)
		slop := c.opts.HitSlop / c.view.Scale
		if n := c.sim.State().NodeAt(world, slop); n != nil {
			c.drag = drag{id: n.ID, offset: n.Pos.Sub(world)}
			c.mode = ModeDragging
			c.sim.Pin(n.ID, n.Pos)
			return true
		}
	}
	c.mode = ModePanning
	return false
}

// PointerMove moves the dragged node or pans the view. It reports whether
// anything changed.
func (c *Controller) PointerMove(x, y float64) bool {
	if c.torn || !finite(x, y) {
		return false
	}
	screen := force.Point{X: x, Y: y}
	defer func() { c.last = screen }()

	switch c.mode {
	case ModeDragging:
		if c.sim == nil {
			return false
		}
		world := viewport.ToWorld(c.view, screen)
		return c.sim.Pin(c.drag.id, world.Add(c.drag.offset))
	case ModePanning:
		c.view = viewport.Pan(c.view, x-c.last.X, y-c.last.Y)
		return true
	}
	return false
}

// PointerUp ends the current gesture. A dragged node is released at its
// last position.
func (c *Controller) PointerUp() bool {
	if c.torn {
		return false
	}
	mode := c.mode
	c.mode = ModeIdle
	if mode == ModeDragging && c.sim != nil {
		return c.sim.Unpin(c.drag.id)
	}
	return mode != ModeIdle
}

// Wheel zooms around the screen point by a wheel delta. Positive deltas
// zoom out.
func (c *Controller) Wheel(delta, x, y float64) bool {
	if c.torn || !finite(delta, x, y) {
		return false
	}
	return c.zoom(math.Exp(-delta*c.opts.WheelSensitivity), x, y)
}

// Pinch zooms around the screen point by a multiplicative factor.
func (c *Controller) Pinch(factor, x, y float64) bool {
	if c.torn || !finite(factor, x, y) {
		return false
	}
	return c.zoom(factor, x, y)
}

func (c *Controller) zoom(factor, x, y float64) bool {
	next := viewport.ZoomAt(c.view, factor, x, y, c.opts.Bounds)
	changed := next != c.view
	c.view = next
	return changed
}

// Teardown stops event handling for good. An active drag is dropped
// without unpinning: the simulator is expected to be halted alongside.
func (c *Controller) Teardown() {
	c.torn = true
	c.mode = ModeIdle
	c.drag = drag{}
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
