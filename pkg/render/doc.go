// Package render draws layout snapshots onto pluggable surfaces.
//
// # Overview
//
// A [Scene] pairs a dataset with the simulator built from it. A [Bridge]
// walks the scene's current positions and hands edges and nodes, in world
// coordinates, to a [Surface] together with the active view transform.
// Each surface decides how to apply the transform:
//
//   - [svg]: emits the transform as a group attribute
//   - [canvas]: maps every point into a terminal character grid
//
// A dataset that fails to build (duplicate node ids) yields a placeholder
// scene. Drawing a placeholder never fails; the surface shows the
// validation message instead of a graph.
//
//	scene := render.NewScene(g, force.Params{Width: w, Height: h})
//	bridge := render.NewBridge(svg.New(svg.WithLabels()))
//	for scene.Tick() {
//	    bridge.Draw(scene, view)
//	}
//
// # Diagrams
//
// The [diagram] subpackage renders graphs as Graphviz node-link diagrams.
// Those are the external, fixed-size content the viewport package fits
// into a container.
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert any SVG produced here using the external
// rsvg-convert tool (from librsvg).
//
// [svg]: github.com/matzehuels/forcegraph/pkg/render/svg
// [canvas]: github.com/matzehuels/forcegraph/pkg/render/canvas
// [diagram]: github.com/matzehuels/forcegraph/pkg/render/diagram
package render
