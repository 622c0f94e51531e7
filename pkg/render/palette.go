package render

import (
	"github.com/matzehuels/forcegraph/pkg/graph"
)

// Category fill colors, shared by every surface and the diagram renderer.
var palette = map[graph.Category]string{
	graph.CategoryModule:   "#4C78A8",
	graph.CategoryFile:     "#72B7B2",
	graph.CategoryFunction: "#F58518",
	graph.CategoryClass:    "#B279A2",
	graph.CategoryExternal: "#9D755D",
	graph.CategoryOther:    "#BAB0AC",
}

// Color returns the fill color for a category as a hex string.
func Color(c graph.Category) string {
	if col, ok := palette[c.Normalize()]; ok {
		return col
	}
	return palette[graph.CategoryOther]
}

// Stroke colors.
const (
	EdgeColor   = "#A0A0A0"
	PinnedColor = "#E45756"
	TextColor   = "#333333"
)
