package graph

import (
	"strings"
)

// =============================================================================
// Category - Node Classification
// =============================================================================

// Category classifies a node as produced by the upstream analysis step.
// Unknown values are normalized to CategoryOther so the layout never fails
// on an unfamiliar classification.
type Category string

// Node categories.
const (
	CategoryModule   Category = "module"
	CategoryFile     Category = "file"
	CategoryFunction Category = "function"
	CategoryClass    Category = "class"
	CategoryExternal Category = "external"
	CategoryOther    Category = "other"
)

// Categories lists every known category in display order.
var Categories = []Category{
	CategoryModule,
	CategoryFile,
	CategoryClass,
	CategoryFunction,
	CategoryExternal,
	CategoryOther,
}

// Normalize returns the canonical form of c. Matching is case-insensitive;
// unknown or empty categories map to CategoryOther.
func (c Category) Normalize() Category {
	v := Category(strings.ToLower(strings.TrimSpace(string(c))))
	switch v {
	case CategoryModule, CategoryFile, CategoryFunction, CategoryClass, CategoryExternal:
		return v
	}
	return CategoryOther
}

// RadiusScale returns the multiplier applied to the base collision radius
// for nodes of this category.
func (c Category) RadiusScale() float64 {
	switch c.Normalize() {
	case CategoryModule:
		return 1.5
	case CategoryFile:
		return 1.2
	default:
		return 1.0
	}
}

// =============================================================================
// Graph - Input Serialization
// =============================================================================

// Graph is the canonical serialization format for layout input.
// It mirrors what the upstream analysis collaborator produces: a flat list
// of categorized nodes and a list of directed edges by id.
//
// Edges may reference ids that are not present in Nodes; such edges are
// tolerated here and dropped when the layout model is built.
type Graph struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// Node is a single input node.
type Node struct {
	ID       string   `json:"id" yaml:"id"`
	Category Category `json:"category,omitempty" yaml:"category,omitempty"`
	Label    string   `json:"label,omitempty" yaml:"label,omitempty"` // Display label (defaults to ID)
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge is a directed relation between two node ids.
type Edge struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
}

// NodeCount returns the number of input nodes.
func (g Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of input edges, including dangling ones.
func (g Graph) EdgeCount() int { return len(g.Edges) }

// Clone returns a deep copy of g.
func (g Graph) Clone() Graph {
	out := Graph{}
	if g.Nodes != nil {
		out.Nodes = append(make([]Node, 0, len(g.Nodes)), g.Nodes...)
	}
	if g.Edges != nil {
		out.Edges = append(make([]Edge, 0, len(g.Edges)), g.Edges...)
	}
	return out
}
