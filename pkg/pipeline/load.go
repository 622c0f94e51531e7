package pipeline

import (
	"io"
	"os"

	"github.com/matzehuels/forcegraph/pkg/graph"
)

// Stdin is the path that selects standard input in Load.
const Stdin = "-"

// Load reads a graph from path, or from stdin when path is "-". Files are
// decoded by extension; stdin is decoded as format, JSON when empty.
func Load(path string, stdin io.Reader, format graph.Format) (graph.Graph, error) {
	if path != Stdin {
		return graph.ReadGraphFile(path)
	}
	if stdin == nil {
		stdin = os.Stdin
	}
	if format == "" {
		format = graph.FormatJSON
	}
	return graph.ReadGraph(stdin, format)
}
