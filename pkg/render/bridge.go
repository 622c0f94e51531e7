package render

import (
	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/force"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/viewport"
)

// =============================================================================
// Surface
// =============================================================================

// Frame describes one drawing pass.
type Frame struct {
	// Width and Height are the container size in device-independent pixels.
	Width  float64
	Height float64
	// Transform maps world coordinates to the container.
	Transform viewport.Transform
	// Tick and Phase identify the simulator state being drawn.
	Tick  int
	Phase force.Phase
}

// NodeView is a node as handed to a surface, in world coordinates.
type NodeView struct {
	ID       string
	Label    string
	Category graph.Category
	Pos      force.Point
	Radius   float64
	Pinned   bool
}

// EdgeView is an edge as handed to a surface, in world coordinates.
type EdgeView struct {
	Source, Target string
	From, To       force.Point
}

// Surface is a drawing target. A pass is Begin, then all edges, then all
// nodes, then End; or Begin, Placeholder, End for a scene that failed to
// build.
type Surface interface {
	Begin(f Frame)
	Edge(e EdgeView)
	Node(n NodeView)
	Placeholder(message string)
	End() error
}

// =============================================================================
// Scene
// =============================================================================

// Scene is one dataset and the simulator built from it. A scene whose
// dataset failed validation has no simulator and draws as a placeholder.
type Scene struct {
	sim *force.Simulator
	err error
}

// NewScene builds a scene from g. Validation failures are kept on the scene
// rather than returned; use Err to inspect them.
func NewScene(g graph.Graph, params force.Params, opts ...force.BuildOption) *Scene {
	state, err := force.FromGraph(g, params, opts...)
	if err != nil {
		return &Scene{err: err}
	}
	return &Scene{sim: force.NewSimulator(state)}
}

// SceneOf wraps an existing simulator.
func SceneOf(sim *force.Simulator) *Scene { return &Scene{sim: sim} }

// Err returns the build error of a placeholder scene, or nil.
func (s *Scene) Err() error { return s.err }

// Placeholder reports whether the scene has no simulator.
func (s *Scene) Placeholder() bool { return s.sim == nil }

// Simulator returns the scene's simulator, or nil for a placeholder.
func (s *Scene) Simulator() *force.Simulator { return s.sim }

// Tick advances the simulator and reports whether it is still active. A
// placeholder scene never ticks.
func (s *Scene) Tick() bool {
	if s.sim == nil {
		return false
	}
	return s.sim.Tick()
}

// Halt stops the scene's simulator permanently.
func (s *Scene) Halt() {
	if s.sim != nil {
		s.sim.Halt()
	}
}

// Message returns the text a surface shows for a placeholder scene.
func (s *Scene) Message() string {
	if s.err == nil {
		return ""
	}
	if errors.IsValidation(s.err) {
		return "invalid graph: " + errors.UserMessage(s.err)
	}
	return "cannot display graph: " + errors.UserMessage(s.err)
}

// =============================================================================
// Bridge
// =============================================================================

// Bridge maps scenes onto a surface.
type Bridge struct {
	surface       Surface
	width, height float64
}

// NewBridge returns a bridge drawing onto s.
func NewBridge(s Surface) *Bridge {
	return &Bridge{surface: s}
}

// SetSize sets the container size reported in each Frame. When unset, the
// simulator's container is used.
func (b *Bridge) SetSize(width, height float64) {
	b.width, b.height = width, height
}

// Draw performs one drawing pass of scene under transform t.
func (b *Bridge) Draw(scene *Scene, t viewport.Transform) error {
	f := Frame{Width: b.width, Height: b.height, Transform: t}

	if scene == nil || scene.Placeholder() {
		b.surface.Begin(f)
		msg := "no graph"
		if scene != nil {
			msg = scene.Message()
		}
		b.surface.Placeholder(msg)
		return b.surface.End()
	}

	sim := scene.sim
	state := sim.State()
	if f.Width <= 0 || f.Height <= 0 {
		f.Width, f.Height = state.Params.Width, state.Params.Height
	}
	f.Tick = sim.Stats().Ticks
	f.Phase = sim.Phase()

	b.surface.Begin(f)
	for _, e := range state.Edges {
		if e.Source == e.Target {
			continue
		}
		b.surface.Edge(EdgeView{
			Source: e.Source.ID,
			Target: e.Target.ID,
			From:   e.Source.Pos,
			To:     e.Target.Pos,
		})
	}
	for _, n := range state.Nodes {
		b.surface.Node(NodeView{
			ID:       n.ID,
			Label:    n.Label,
			Category: n.Category,
			Pos:      n.Pos,
			Radius:   n.Radius,
			Pinned:   n.Pinned(),
		})
	}
	return b.surface.End()
}
