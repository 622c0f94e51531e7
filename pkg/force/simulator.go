package force

import (
	"math"
)

// Phase is the lifecycle stage of a Simulator.
type Phase string

// Simulator phases, in order. Reheating moves a Cooling or Stopped simulator
// back to Running.
const (
	PhaseInitializing Phase = "initializing"
	PhaseRunning      Phase = "running"
	PhaseCooling      Phase = "cooling"
	PhaseStopped      Phase = "stopped"
)

// Stats summarizes simulator activity since construction.
type Stats struct {
	// Ticks is the total number of integrated ticks.
	Ticks int `json:"ticks"`
	// HeatTicks counts ticks since the last (re)heat.
	HeatTicks int `json:"heat_ticks"`
	Reheats   int `json:"reheats"`
	// Overlaps is the number of colliding pairs seen on the last tick.
	Overlaps int `json:"overlaps"`
	// Instabilities counts non-finite forces or positions that were reset.
	Instabilities int `json:"instabilities"`
	// BudgetStops counts heat cycles ended by MaxTicks rather than alpha.
	BudgetStops int `json:"budget_stops"`
}

// Snapshot is the per-tick output consumed by renderers. Order lists node
// ids in drawing order.
type Snapshot struct {
	Tick      int              `json:"tick"`
	Alpha     float64          `json:"alpha"`
	Phase     Phase            `json:"phase"`
	Positions map[string]Point `json:"positions"`
	Order     []string         `json:"order"`
}

// Simulator integrates a State one tick at a time. It never schedules work
// on its own: a host loop (frame callback, test, or pipeline) calls Tick.
//
// A Simulator is not safe for concurrent use. All mutation happens inside
// Tick or an explicit call (Pin, Unpin, Reheat, Resize, Halt) from its one
// owner.
type Simulator struct {
	state  *State
	phase  Phase
	halted bool
	stats  Stats

	forces     []Point
	correction []Point
}

// NewSimulator wraps s. The simulator starts in PhaseInitializing; the first
// Tick seeds positions for unplaced nodes.
func NewSimulator(s *State) *Simulator {
	return &Simulator{
		state:      s,
		phase:      PhaseInitializing,
		forces:     make([]Point, len(s.Nodes)),
		correction: make([]Point, len(s.Nodes)),
	}
}

// State returns the simulated state. Callers must treat node positions as
// read-only.
func (sim *Simulator) State() *State { return sim.state }

// Phase returns the current lifecycle phase. A halted simulator reports
// PhaseStopped.
func (sim *Simulator) Phase() Phase {
	if sim.halted {
		return PhaseStopped
	}
	return sim.phase
}

// Active reports whether further ticks will move anything.
func (sim *Simulator) Active() bool {
	return !sim.halted && sim.phase != PhaseStopped
}

// Alive reports whether the simulator still accepts mutations.
func (sim *Simulator) Alive() bool { return !sim.halted }

// Alpha returns the current temperature.
func (sim *Simulator) Alpha() float64 { return sim.state.Alpha }

// Stats returns activity counters.
func (sim *Simulator) Stats() Stats { return sim.stats }

// Tick advances the simulation by one step and reports whether the
// simulator is still active afterwards. Ticking a stopped or halted
// simulator is a no-op.
func (sim *Simulator) Tick() bool {
	if !sim.Active() {
		return false
	}
	if sim.phase == PhaseInitializing {
		sim.seed()
		sim.phase = PhaseRunning
	}

	s := sim.state
	p := s.Params

	for _, n := range s.Nodes {
		if n.Pin != nil {
			n.Pos = *n.Pin
			n.Vel = Point{}
		}
	}

	clear(sim.forces)
	clear(sim.correction)

	Repulsion(s.Nodes, p.RepulsionStrength, p.MinDistance, sim.forces)
	Attraction(s.Edges, p.LinkDistance, sim.forces)
	Centering(s.Nodes, p.CenterPoint(), p.CenterStrength, sim.forces)
	sim.stats.Overlaps = Collide(s.Nodes, p.CollisionStrength, sim.correction)

	sim.stats.Instabilities += sanitize(sim.forces) + sanitize(sim.correction)

	for _, n := range s.Nodes {
		if n.Pin != nil {
			continue
		}
		n.Vel = limit(sim.forces[n.idx].Scale(s.Alpha), p.MaxSpeed)
		n.Pos = n.Pos.Add(n.Vel).Add(limit(sim.correction[n.idx], p.MaxSpeed))
	}
	sim.clampPositions()

	sim.stats.Ticks++
	sim.stats.HeatTicks++
	s.Alpha *= 1 - p.AlphaDecay
	sim.advancePhase()

	return sim.Active()
}

// Run ticks until the simulator stops or maxTicks ticks have run, whichever
// comes first, and returns the number of ticks performed.
func (sim *Simulator) Run(maxTicks int) int {
	n := 0
	for n < maxTicks && sim.Active() {
		sim.Tick()
		n++
	}
	return n
}

func (sim *Simulator) advancePhase() {
	s := sim.state
	p := s.Params
	switch {
	case s.Alpha < p.AlphaMin:
		sim.stop()
	case sim.stats.HeatTicks >= p.MaxTicks:
		sim.stats.BudgetStops++
		sim.stop()
	case s.Alpha < p.CoolingThreshold:
		sim.phase = PhaseCooling
	default:
		sim.phase = PhaseRunning
	}
}

func (sim *Simulator) stop() {
	sim.phase = PhaseStopped
	for _, n := range sim.state.Nodes {
		n.Vel = Point{}
	}
}

// Reheat raises alpha to at least the configured reheat level, resets the
// per-heat tick budget and resumes a cooling or stopped simulator. It
// returns false if the simulator has been halted.
func (sim *Simulator) Reheat() bool {
	if sim.halted {
		return false
	}
	s := sim.state
	s.Alpha = math.Max(s.Alpha, s.Params.ReheatAlpha)
	sim.stats.HeatTicks = 0
	sim.stats.Reheats++
	if sim.phase != PhaseInitializing {
		sim.phase = PhaseRunning
		if s.Alpha < s.Params.CoolingThreshold {
			sim.phase = PhaseCooling
		}
	}
	return true
}

// Pin fixes node id at p and reheats. Repeated calls move the pin. It
// returns false for unknown ids, non-finite points, or a halted simulator.
func (sim *Simulator) Pin(id string, p Point) bool {
	if sim.halted || !p.finite() {
		return false
	}
	n := sim.state.Node(id)
	if n == nil {
		return false
	}
	pin := p
	n.Pin = &pin
	n.Pos = pin
	n.Vel = Point{}
	n.placed = true
	return sim.Reheat()
}

// Unpin releases node id, leaving it at its last pinned position as the
// simulation's continuation point, and reheats. It returns false for
// unknown or unpinned ids, or a halted simulator.
func (sim *Simulator) Unpin(id string) bool {
	if sim.halted {
		return false
	}
	n := sim.state.Node(id)
	if n == nil || n.Pin == nil {
		return false
	}
	n.Pos = *n.Pin
	n.Pin = nil
	n.Vel = Point{}
	return sim.Reheat()
}

// Resize updates the container bounds without resetting positions; nodes
// outside the new bounds are clamped into them. When no explicit center
// was configured the centering target follows the new container center.
func (sim *Simulator) Resize(width, height float64) bool {
	if sim.halted || !(width > 0) || !(height > 0) || math.IsInf(width, 0) || math.IsInf(height, 0) {
		return false
	}
	sim.state.Params.Width = width
	sim.state.Params.Height = height
	if sim.phase != PhaseInitializing {
		sim.clampPositions()
	}
	return true
}

// Halt stops the simulator permanently. Later ticks and mutations are
// ignored. Halt is idempotent.
func (sim *Simulator) Halt() {
	if sim.halted {
		return
	}
	sim.halted = true
	sim.stop()
	for _, n := range sim.state.Nodes {
		n.Pin = nil
	}
}

// Snapshot returns the current node positions keyed by id.
func (sim *Simulator) Snapshot() Snapshot {
	pos := make(map[string]Point, len(sim.state.Nodes))
	order := make([]string, len(sim.state.Nodes))
	for i, n := range sim.state.Nodes {
		pos[n.ID] = n.Pos
		order[i] = n.ID
	}
	return Snapshot{
		Tick:      sim.stats.Ticks,
		Alpha:     sim.state.Alpha,
		Phase:     sim.Phase(),
		Positions: pos,
		Order:     order,
	}
}

// seed places unplaced nodes on a phyllotaxis spiral around the center so
// that no two start coincident.
func (sim *Simulator) seed() {
	p := sim.state.Params
	c := p.CenterPoint()
	k := 0
	for _, n := range sim.state.Nodes {
		if n.placed {
			continue
		}
		r := DefaultSeedRadius * math.Sqrt(0.5+float64(k))
		theta := float64(k) * math.Pi * (3 - math.Sqrt(5))
		n.Pos = Point{X: c.X + r*math.Cos(theta), Y: c.Y + r*math.Sin(theta)}
		n.placed = true
		k++
	}
	sim.clampPositions()
}

func (sim *Simulator) clampPositions() {
	p := sim.state.Params
	c := p.CenterPoint()
	for _, n := range sim.state.Nodes {
		if !n.Pos.finite() {
			n.Pos = c
			n.Vel = Point{}
			sim.stats.Instabilities++
		}
		n.Pos.X = clampAxis(n.Pos.X, p.Margin, p.Width-p.Margin)
		n.Pos.Y = clampAxis(n.Pos.Y, p.Margin, p.Height-p.Margin)
	}
}
