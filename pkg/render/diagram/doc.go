// Package diagram renders graphs as Graphviz node-link diagrams.
//
// # Overview
//
// Diagrams are the static counterpart of the force layout: Graphviz
// computes the positions once and the result is a fixed-size SVG. Hosts
// present that SVG inside a container with the viewport package, reading
// its size from the root element's viewBox.
//
// # Usage
//
//	dot := diagram.ToDOT(g, diagram.Options{})
//	svg, err := diagram.RenderSVG(ctx, dot)
//	box, err := viewport.BoxFromSVG(svg)
//
// # DOT Format
//
// [ToDOT] emits rounded, filled boxes colored by node category, laid out
// top to bottom unless [Options.Direction] says otherwise. Edges whose
// endpoints are not in the graph are skipped, matching the force layout.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process
// rendering; no Graphviz installation is required.
package diagram
