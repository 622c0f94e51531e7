package svg

import (
	"strings"
	"testing"

	"github.com/matzehuels/forcegraph/pkg/force"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/render"
	"github.com/matzehuels/forcegraph/pkg/viewport"
)

func TestSurfaceDraw(t *testing.T) {
	g := graph.Graph{
		Nodes: []graph.Node{{ID: "a", Label: "A <main>"}, {ID: "b", Category: graph.CategoryFile}},
		Edges: []graph.Edge{{Source: "a", Target: "b"}},
	}
	scene := render.NewScene(g, force.Params{Width: 200, Height: 100})
	scene.Tick()

	s := New(WithLabels(), WithTitle("deps"), WithBackground("#fff"))
	view := viewport.Transform{Scale: 0.5, TranslateX: 10, TranslateY: -4}
	if err := render.NewBridge(s).Draw(scene, view); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	out := string(s.Bytes())

	for _, want := range []string{
		`viewBox="0 0 200.00 100.00"`,
		`transform="translate(10.00 -4.00) scale(0.5000)"`,
		`<title>deps</title>`,
		`class="edge" data-source="a" data-target="b"`,
		`id="node-a"`,
		`class="node file" id="node-b"`,
		`A &lt;main&gt;`,
		`data-phase="running"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Count(out, "<g ") != strings.Count(out, "</g>") {
		t.Error("unbalanced groups")
	}
	if !strings.HasSuffix(out, "</svg>\n") {
		t.Error("document not closed")
	}
}

func TestSurfacePlaceholder(t *testing.T) {
	scene := render.NewScene(graph.Graph{Nodes: []graph.Node{{ID: "x"}, {ID: "x"}}}, force.Params{})
	s := New()
	b := render.NewBridge(s)
	b.SetSize(300, 200)
	if err := b.Draw(scene, viewport.Identity); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	out := string(s.Bytes())
	if !strings.Contains(out, `class="placeholder"`) || !strings.Contains(out, "duplicate node id") {
		t.Errorf("placeholder missing:\n%s", out)
	}
	if strings.Contains(out, "<circle") {
		t.Error("placeholder drew nodes")
	}
	if strings.Count(out, "<g ") != strings.Count(out, "</g>") {
		t.Error("unbalanced groups")
	}
}

func TestSurfaceReuse(t *testing.T) {
	scene := render.NewScene(graph.Graph{Nodes: []graph.Node{{ID: "a"}}}, force.Params{})
	s := New()
	b := render.NewBridge(s)
	b.Draw(scene, viewport.Identity)
	first := len(s.Bytes())
	b.Draw(scene, viewport.Identity)
	if len(s.Bytes()) != first {
		t.Error("second pass did not replace the first document")
	}
}

func TestSurfaceEmbed(t *testing.T) {
	doc := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE svg PUBLIC "-//W3C//DTD SVG 1.1//EN" "http://www.w3.org/Graphics/SVG/1.1/DTD/svg11.dtd">
<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g id="graph0"></g></svg>
`)
	s := New()
	f := render.Frame{Width: 400, Height: 300, Transform: viewport.Transform{Scale: 2, TranslateX: 100, TranslateY: 100}}
	if err := s.Embed(f, doc); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	out := string(s.Bytes())
	if strings.Contains(out, "<?xml") || strings.Contains(out, "DOCTYPE") {
		t.Error("prolog was not dropped")
	}
	if !strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 400.00 300.00"`) {
		t.Errorf("outer root = %.80q", out)
	}
	if !strings.Contains(out, `transform="translate(100.00 100.00) scale(2.0000)"`) {
		t.Error("embedded content is not under the view transform")
	}
	if !strings.Contains(out, `<g id="graph0"></g></svg>`) {
		t.Error("embedded document missing")
	}
	if !strings.HasSuffix(out, "  </g>\n</svg>\n") {
		t.Errorf("document not closed: %q", out[len(out)-20:])
	}
}
