package graph_test

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/forcegraph/pkg/graph"
)

func ExampleWriteGraph() {
	g := graph.Graph{
		Nodes: []graph.Node{
			{ID: "app", Category: graph.CategoryModule},
			{ID: "main.go", Category: graph.CategoryFile},
		},
		Edges: []graph.Edge{{Source: "app", Target: "main.go"}},
	}

	var buf bytes.Buffer
	if err := graph.WriteGraph(g, &buf); err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Print(buf.String())
	// Output:
	// {
	//   "nodes": [
	//     {
	//       "id": "app",
	//       "category": "module"
	//     },
	//     {
	//       "id": "main.go",
	//       "category": "file"
	//     }
	//   ],
	//   "edges": [
	//     {
	//       "source": "app",
	//       "target": "main.go"
	//     }
	//   ]
	// }
}

func ExampleReadGraph() {
	jsonData := `{
		"nodes": [{"id": "app"}, {"id": "lib", "category": "Module"}],
		"edges": [{"source": "app", "target": "lib"}]
	}`

	g, err := graph.ReadGraph(strings.NewReader(jsonData), graph.FormatJSON)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	for _, n := range g.Nodes {
		fmt.Printf("%s: %s\n", n.ID, n.Category.Normalize())
	}
	// Output:
	// app: other
	// lib: module
}
