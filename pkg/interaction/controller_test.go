package interaction

import (
	"math"
	"testing"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/force"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/viewport"
)

// newFixture returns a controller over two placed nodes with an identity
// view: a 800x600 container showing an 800x600 content box.
func newFixture(t *testing.T) (*Controller, *force.Simulator) {
	t.Helper()
	g := graph.Graph{
		Nodes: []graph.Node{{ID: "a"}, {ID: "b"}},
		Edges: []graph.Edge{{Source: "a", Target: "b"}},
	}
	state, err := force.FromGraph(g, force.Params{}, force.WithPositions(map[string]force.Point{
		"a": {X: 100, Y: 100},
		"b": {X: 300, Y: 300},
	}))
	if err != nil {
		t.Fatalf("FromGraph: %v", err)
	}
	sim := force.NewSimulator(state)
	c := New(sim, Options{})
	if got := c.Mount(800, 600, viewport.ContentBox{Width: 800, Height: 600}); got != viewport.Identity {
		t.Fatalf("Mount() = %+v, want identity", got)
	}
	return c, sim
}

func TestDragPinsNode(t *testing.T) {
	c, sim := newFixture(t)
	a := sim.State().Node("a")

	if !c.PointerDown(102, 100) {
		t.Fatal("PointerDown on node did not start a drag")
	}
	if id, ok := c.Dragging(); !ok || id != "a" {
		t.Fatalf("Dragging() = %q, %v", id, ok)
	}
	if !a.Pinned() {
		t.Fatal("node not pinned on pointer down")
	}

	// The grab offset of (-2, 0) is preserved.
	if !c.PointerMove(202, 150) {
		t.Error("PointerMove reported no change")
	}
	want := force.Point{X: 200, Y: 150}
	if a.Pos != want {
		t.Errorf("dragged node at %+v, want %+v", a.Pos, want)
	}

	for range 10 {
		sim.Tick()
	}
	if a.Pos != want {
		t.Errorf("pinned node drifted to %+v", a.Pos)
	}

	if !c.PointerUp() {
		t.Error("PointerUp reported no change")
	}
	if a.Pinned() {
		t.Error("node still pinned after pointer up")
	}
	if a.Pos != want {
		t.Errorf("released node at %+v, want last pin position", a.Pos)
	}
	if c.Mode() != ModeIdle {
		t.Errorf("mode = %s, want idle", c.Mode())
	}
}

func TestPointerDownReleasesPreviousDrag(t *testing.T) {
	tests := []struct {
		name       string
		x, y       float64
		wantDrag   string
		wantPinned map[string]bool
	}{
		{"second press on empty space", 600, 500, "", map[string]bool{"a": false, "b": false}},
		{"second press on another node", 300, 300, "b", map[string]bool{"a": false, "b": true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, sim := newFixture(t)
			if !c.PointerDown(100, 100) {
				t.Fatal("first press did not grab node a")
			}

			c.PointerDown(tt.x, tt.y)
			id, _ := c.Dragging()
			if id != tt.wantDrag {
				t.Errorf("Dragging() = %q, want %q", id, tt.wantDrag)
			}
			for nid, want := range tt.wantPinned {
				if got := sim.State().Node(nid).Pinned(); got != want {
					t.Errorf("%s pinned = %v, want %v", nid, got, want)
				}
			}

			c.PointerUp()
			for range 20 {
				sim.Tick()
			}
			for _, n := range sim.State().Nodes {
				if n.Pinned() {
					t.Errorf("%s still pinned after the gesture ended", n.ID)
				}
			}
		})
	}
}

func TestDragReheatsStopped(t *testing.T) {
	c, sim := newFixture(t)
	sim.Run(10000)
	if sim.Active() {
		t.Fatal("expected stopped simulator")
	}
	a := sim.State().Node("a")
	c.PointerDown(a.Pos.X, a.Pos.Y)
	if !sim.Active() {
		t.Error("drag did not reheat the simulator")
	}
}

func TestPanOnEmptySpace(t *testing.T) {
	c, sim := newFixture(t)

	if c.PointerDown(600, 500) {
		t.Error("PointerDown on empty space started a drag")
	}
	if c.Mode() != ModePanning {
		t.Fatalf("mode = %s, want panning", c.Mode())
	}
	c.PointerMove(610, 490)
	c.PointerMove(615, 480)
	c.PointerUp()

	want := viewport.Transform{Scale: 1, TranslateX: 15, TranslateY: -20}
	if got := c.Transform(); got != want {
		t.Errorf("Transform() = %+v, want %+v", got, want)
	}
	if sim.State().Node("a").Pinned() {
		t.Error("pan pinned a node")
	}
}

func TestHitTestUsesTransform(t *testing.T) {
	c, sim := newFixture(t)
	c.Pinch(2, 0, 0)

	// a sits at world (100, 100), which is screen (200, 200) at scale 2.
	if !c.PointerDown(200, 200) {
		t.Fatal("PointerDown at transformed node position missed")
	}
	c.PointerMove(220, 200)
	if got := sim.State().Node("a").Pos; got != (force.Point{X: 110, Y: 100}) {
		t.Errorf("dragged node at %+v, want {110 100}", got)
	}
}

func TestWheelZoomsAtPointer(t *testing.T) {
	c, _ := newFixture(t)
	anchor := force.Point{X: 400, Y: 300}
	world := viewport.ToWorld(c.Transform(), anchor)

	if !c.Wheel(-100, anchor.X, anchor.Y) {
		t.Fatal("Wheel reported no change")
	}
	if c.Transform().Scale <= 1 {
		t.Errorf("scale = %v, want zoomed in", c.Transform().Scale)
	}
	got := viewport.ToScreen(c.Transform(), world)
	if math.Abs(got.X-anchor.X) > 1e-9 || math.Abs(got.Y-anchor.Y) > 1e-9 {
		t.Errorf("anchor moved to %+v", got)
	}

	for range 100 {
		c.Wheel(-1000, 0, 0)
	}
	if got := c.Transform().Scale; got != viewport.DefaultMaxScale {
		t.Errorf("scale = %v, want clamped to %v", got, viewport.DefaultMaxScale)
	}
	if c.Wheel(-1000, 0, 0) {
		t.Error("Wheel at max scale reported a change")
	}
	for range 100 {
		c.Pinch(0.5, 0, 0)
	}
	if got := c.Transform().Scale; got != viewport.DefaultMinScale {
		t.Errorf("scale = %v, want clamped to %v", got, viewport.DefaultMinScale)
	}
}

func TestResetRestoresFit(t *testing.T) {
	c, _ := newFixture(t)
	fit := c.Fitter().Fit()

	c.PointerDown(700, 50)
	c.PointerMove(650, 80)
	c.PointerUp()
	c.Wheel(250, 10, 10)

	if c.Transform() == fit {
		t.Fatal("gestures did not change the transform")
	}
	first := c.Reset()
	second := c.Reset()
	if first != fit || second != fit {
		t.Errorf("Reset() = %+v then %+v, want %+v", first, second, fit)
	}
}

func TestResize(t *testing.T) {
	c, sim := newFixture(t)
	sim.Run(1)

	got := c.Resize(400, 300)
	if got.Scale != 0.5 {
		t.Errorf("scale after resize = %v, want 0.5", got.Scale)
	}
	p := sim.State().Params
	if p.Width != 400 || p.Height != 300 {
		t.Errorf("simulator bounds = %vx%v, want 400x300", p.Width, p.Height)
	}
}

func TestTeardownMidDrag(t *testing.T) {
	c, sim := newFixture(t)
	a := sim.State().Node("a")
	c.PointerDown(100, 100)
	c.PointerMove(150, 150)
	view := c.Transform()

	c.Teardown()
	sim.Halt()
	pos := a.Pos

	if c.Alive() {
		t.Error("controller alive after teardown")
	}
	if c.PointerMove(400, 400) || c.PointerUp() || c.PointerDown(1, 1) {
		t.Error("handler reported a change after teardown")
	}
	if c.Wheel(-100, 0, 0) || c.Pinch(2, 0, 0) {
		t.Error("zoom accepted after teardown")
	}
	if a.Pos != pos {
		t.Errorf("node moved after teardown: %+v -> %+v", pos, a.Pos)
	}
	if c.Transform() != view {
		t.Error("transform changed after teardown")
	}
	c.Teardown()
}

func TestNonFiniteInputIgnored(t *testing.T) {
	c, _ := newFixture(t)
	view := c.Transform()
	if c.PointerDown(math.NaN(), 0) || c.Wheel(math.Inf(1), 0, 0) || c.Pinch(2, math.NaN(), 0) {
		t.Error("non-finite input accepted")
	}
	if c.Transform() != view {
		t.Error("transform changed")
	}
}

func TestNilSimulator(t *testing.T) {
	c := New(nil, Options{})
	c.Mount(800, 600, viewport.ContentBox{Width: 400, Height: 400})
	if c.PointerDown(400, 300) {
		t.Error("drag started without a simulator")
	}
	if !c.PointerMove(410, 300) {
		t.Error("pan without simulator reported no change")
	}
}

func TestHandle(t *testing.T) {
	c, sim := newFixture(t)
	events := []Event{
		{Type: EventPointerDown, X: 100, Y: 100},
		{Type: EventPointerMove, X: 120, Y: 100},
		{Type: EventPointerUp},
		{Type: EventWheel, Delta: -50, X: 10, Y: 10},
		{Type: EventPinch, Factor: 1.5, X: 10, Y: 10},
		{Type: EventReset},
	}
	for _, e := range events {
		changed, err := c.Handle(e)
		if err != nil {
			t.Fatalf("Handle(%s): %v", e.Type, err)
		}
		if !changed {
			t.Errorf("Handle(%s) reported no change", e.Type)
		}
	}
	if got := sim.State().Node("a").Pos; got != (force.Point{X: 120, Y: 100}) {
		t.Errorf("node at %+v after drag events", got)
	}

	if _, err := c.Handle(Event{Type: "swipe"}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("unknown event err = %v", err)
	}
}
