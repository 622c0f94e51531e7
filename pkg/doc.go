// Package pkg provides the core libraries for forcegraph.
//
// # Overview
//
// Forcegraph places the nodes of a graph with a force-directed simulation
// and fits the result into a viewport. A layout can be settled headlessly
// and rendered to a file, or kept live and driven one tick per frame while
// a user drags nodes, pans and zooms.
//
// # Architecture
//
// The typical data flow:
//
//	JSON/YAML graph
//	       ↓
//	  [graph] package (node/edge input)
//	       ↓
//	  [force] package (state, forces, simulator)
//	       ↓
//	  [viewport] package (content box, fit transform, pan and zoom)
//	       ↓
//	  [render] package (scene/surface bridge: SVG, terminal, Graphviz)
//	       ↓
//	  SVG/PNG/PDF/JSON output, terminal viewer, or WebSocket frames
//
// # Quick Start
//
// Settle a graph and render it to SVG:
//
//	g, _ := graph.ReadGraphFile("graph.json")
//	runner := pipeline.NewRunner(logger)
//	result, _ := runner.Run(ctx, g, pipeline.Options{
//	    Formats: []string{pipeline.FormatSVG},
//	})
//	os.WriteFile("graph.svg", result.Artifacts[pipeline.FormatSVG], 0o644)
//
// Drive a live simulation from a host loop:
//
//	state, _ := force.FromGraph(g, force.DefaultParams())
//	sim := force.NewSimulator(state)
//	ctrl := interaction.New(sim, interaction.Options{})
//	ctrl.Mount(width, height, viewport.ContentBox{Width: width, Height: height})
//	for sim.Tick() {
//	    draw(sim.Snapshot(), ctrl.Transform())
//	}
//
// # Main Packages
//
// ## Simulation
//
// [force] - Validated simulation state, the individual forces and the
// Simulator with its lifecycle phases, pinning, reheating and resizing.
//
// [viewport] - Content boxes, the pure Fit function, the stateful Fitter
// and view transforms with pan and zoom-at-point.
//
// [interaction] - Pointer, wheel and pinch handling that turns input into
// pins and view changes.
//
// ## Rendering
//
// [render] - The scene/surface bridge, category palette and SVG to PNG/PDF
// conversion. Surfaces live in [render/svg], [render/canvas] and
// [render/diagram].
//
// ## Serialization
//
// [graph] - Graph input types and JSON/YAML readers and writers.
//
// ## Infrastructure
//
// [pipeline] - Headless load, settle, fit and render used by the CLI and
// the server.
//
// [session] - In-memory store of live simulations with idle expiry.
//
// [server] - HTTP and WebSocket API over sessions.
//
// [config] - TOML/YAML configuration with environment overrides.
//
// [observability] - Layout, session and HTTP hooks with a Prometheus
// implementation.
//
// [errors] - Coded errors shared by every package.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/force/...              # Specific package
//
// [force]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/force
// [viewport]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/viewport
// [interaction]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/interaction
// [render]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/render
// [render/svg]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/render/svg
// [render/canvas]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/render/canvas
// [render/diagram]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/render/diagram
// [graph]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/graph
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/pipeline
// [session]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/session
// [server]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/server
// [config]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/errors
package pkg
