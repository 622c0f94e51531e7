// Package force implements the force-directed layout engine.
//
// The package has two halves. [Build] (the graph model) validates raw
// node/edge input and produces a fresh [State]; [Simulator] integrates that
// state one tick at a time.
//
// # Model
//
// Build clones its input, rejects empty or duplicate node ids, and silently
// drops edges that reference unknown nodes (recording them in
// [State.Dropped]). Input from the upstream analysis step is not trusted to
// be referentially consistent, so dangling edges are never an error.
//
// # Forces
//
// Each tick evaluates four forces, each a standalone function over the node
// slice that accumulates into a vector buffer:
//
//   - [Repulsion]: every pair, strength / max(d, MinDistance)²
//   - [Attraction]: every edge, Strength * (d - LinkDistance)
//   - [Centering]: every unpinned node toward the center point
//   - [Collide]: corrective separation to the sum of radii, applied after
//     the force pass and not scaled by alpha
//
// Velocity is the force sum scaled by alpha and limited to MaxSpeed.
// Positions are clamped into the container (minus a margin) after every
// tick. Non-finite intermediate values are zeroed and counted in [Stats].
//
// # Lifecycle
//
// A simulator moves through Initializing → Running → Cooling → Stopped as
// alpha decays geometrically. Pinning, unpinning or [Simulator.Reheat]
// resume a stopped simulator. Every heat cycle is bounded by
// Params.MaxTicks, so Tick is guaranteed to reach Stopped for any input.
// [Simulator.Halt] is the teardown path: it is permanent and idempotent.
//
// # Usage
//
//	state, err := force.Build(nodes, edges, force.Params{Width: w, Height: h})
//	if err != nil {
//	    // duplicate ids: show a placeholder
//	}
//	sim := force.NewSimulator(state)
//	for sim.Tick() {
//	    draw(sim.Snapshot())
//	}
//
// # Concurrency
//
// Nothing in this package starts goroutines or takes locks. A State and its
// Simulator have a single owner that calls Tick from its frame loop.
package force
