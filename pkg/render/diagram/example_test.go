package diagram_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/render/diagram"
	"github.com/matzehuels/forcegraph/pkg/viewport"
)

func ExampleRender() {
	g := graph.Graph{
		Nodes: []graph.Node{
			{ID: "app", Category: graph.CategoryModule},
			{ID: "db.go", Category: graph.CategoryFile},
			{ID: "auth.go", Category: graph.CategoryFile},
		},
		Edges: []graph.Edge{
			{Source: "app", Target: "db.go"},
			{Source: "app", Target: "auth.go"},
		},
	}

	svg, err := diagram.Render(context.Background(), g, diagram.Options{})
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	box, err := viewport.BoxFromSVG(svg)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("origin:", box.X, box.Y)
	fmt.Println("fits:", !box.Degenerate())
	// Output:
	// origin: 0 0
	// fits: true
}
