package pipeline

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/force"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/observability"
	"github.com/matzehuels/forcegraph/pkg/viewport"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateVizType(t *testing.T) {
	tests := []struct {
		vizType string
		wantErr bool
	}{
		{"force", false},
		{"diagram", false},
		{"sankey", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateVizType(tt.vizType)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateVizType(%q) error = %v, wantErr %v", tt.vizType, err, tt.wantErr)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Params: force.Params{Width: 1000}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}

	if opts.VizType != VizForce {
		t.Errorf("VizType = %q, want %q", opts.VizType, VizForce)
	}
	if opts.Width != 1000 || opts.Height != force.DefaultHeight {
		t.Errorf("size = %vx%v, want 1000x%v", opts.Width, opts.Height, force.DefaultHeight)
	}
	if opts.Params.Width != 1000 || opts.Params.Height != force.DefaultHeight {
		t.Errorf("params container = %vx%v", opts.Params.Width, opts.Params.Height)
	}
	if opts.Padding != DefaultPadding {
		t.Errorf("Padding = %v, want %v", opts.Padding, DefaultPadding)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats = %v, want [svg]", opts.Formats)
	}
	if opts.Scale != DefaultPNGScale {
		t.Errorf("Scale = %v, want %v", opts.Scale, DefaultPNGScale)
	}
	if opts.Logger == nil {
		t.Error("Logger not defaulted")
	}
}

func TestOptionsWidthOverridesParams(t *testing.T) {
	opts := Options{Width: 300, Height: 200, Params: force.Params{Width: 1000, Height: 900}}
	opts.SetLayoutDefaults()
	if opts.Params.Width != 300 || opts.Params.Height != 200 {
		t.Errorf("params container = %vx%v, want 300x200", opts.Params.Width, opts.Params.Height)
	}
}

func TestOptionsValidateForLayout(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"bad viz type", Options{VizType: "sankey"}},
		{"negative width", Options{Width: -1}},
		{"huge height", Options{Height: 1e9}},
		{"negative padding", Options{Padding: -5}},
		{"negative max ticks", Options{MaxTicks: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateForLayout()
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("code = %s, want %s", errors.GetCode(err), errors.ErrCodeInvalidInput)
			}
		})
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Formats: []string{"json"}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("first call: %v", err)
	}
	opts.Formats = append(opts.Formats, "bogus")
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second call should be a no-op, got %v", err)
	}
}

func TestOptionsNeedsSVG(t *testing.T) {
	tests := []struct {
		formats []string
		want    bool
	}{
		{[]string{"json"}, false},
		{[]string{"svg"}, true},
		{[]string{"json", "png"}, true},
		{nil, false},
	}
	for _, tt := range tests {
		opts := Options{Formats: tt.formats}
		if got := opts.NeedsSVG(); got != tt.want {
			t.Errorf("NeedsSVG(%v) = %v, want %v", tt.formats, got, tt.want)
		}
	}
}

func chain() graph.Graph {
	return graph.Graph{
		Nodes: []graph.Node{
			{ID: "main", Category: graph.CategoryFunction},
			{ID: "util.go", Category: graph.CategoryFile},
			{ID: "fmt", Category: graph.CategoryExternal},
		},
		Edges: []graph.Edge{
			{Source: "main", Target: "util.go"},
			{Source: "util.go", Target: "fmt"},
			{Source: "main", Target: "missing"},
		},
	}
}

func TestRunForce(t *testing.T) {
	r := NewRunner(nil)
	res, err := r.Run(context.Background(), chain(), Options{
		Width:   400,
		Height:  300,
		Formats: []string{"svg", "json"},
		Labels:  true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !res.Stats.Settled {
		t.Error("simulation did not settle")
	}
	if res.Snapshot.Phase != force.PhaseStopped {
		t.Errorf("phase = %s, want stopped", res.Snapshot.Phase)
	}
	if res.Stats.Dropped != 1 || len(res.Dropped) != 1 || res.Dropped[0].Target != "missing" {
		t.Errorf("dropped = %v", res.Dropped)
	}
	if len(res.Snapshot.Positions) != 3 {
		t.Errorf("positions = %d, want 3", len(res.Snapshot.Positions))
	}
	if res.Transform.Scale <= 0 || res.Transform.Scale > 1 {
		t.Errorf("scale = %v, want in (0, 1]", res.Transform.Scale)
	}
	if want := viewport.Fit(400, 300, res.Box, DefaultPadding); res.Transform != want {
		t.Errorf("transform = %+v, want %+v", res.Transform, want)
	}

	svg := string(res.Artifacts["svg"])
	for _, want := range []string{`viewBox="0 0 400.00 300.00"`, `id="node-main"`, `class="label"`, `data-phase="stopped"`} {
		if !strings.Contains(svg, want) {
			t.Errorf("svg missing %q", want)
		}
	}

	var doc Document
	if err := json.Unmarshal(res.Artifacts["json"], &doc); err != nil {
		t.Fatalf("decode json artifact: %v", err)
	}
	if doc.VizType != VizForce || len(doc.Nodes) != 3 || len(doc.Edges) != 2 || len(doc.Dropped) != 1 {
		t.Errorf("document = %s %d nodes %d edges %d dropped", doc.VizType, len(doc.Nodes), len(doc.Edges), len(doc.Dropped))
	}
	if doc.Transform != res.Transform {
		t.Errorf("document transform = %+v, want %+v", doc.Transform, res.Transform)
	}
	for _, n := range doc.Nodes {
		p := res.Snapshot.Positions[n.ID]
		if n.X != p.X || n.Y != p.Y {
			t.Errorf("node %s at (%v,%v), snapshot (%v,%v)", n.ID, n.X, n.Y, p.X, p.Y)
		}
	}
}

func TestRunDeterministic(t *testing.T) {
	r := NewRunner(nil)
	opts := Options{Formats: []string{"svg"}}
	a, err := r.Run(context.Background(), chain(), opts)
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Run(context.Background(), chain(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if string(a.Artifacts["svg"]) != string(b.Artifacts["svg"]) {
		t.Error("identical input produced different drawings")
	}
}

func TestRunMaxTicks(t *testing.T) {
	res, err := NewRunner(nil).Run(context.Background(), chain(), Options{MaxTicks: 5, Formats: []string{"json"}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Stats.Settled {
		t.Error("run capped at 5 ticks reported settled")
	}
	if res.Stats.Simulation.Ticks != 5 {
		t.Errorf("ticks = %d, want 5", res.Stats.Simulation.Ticks)
	}
}

func TestRunSeeds(t *testing.T) {
	g := graph.Graph{Nodes: []graph.Node{{ID: "solo"}}}
	res, err := NewRunner(nil).Run(context.Background(), g, Options{
		MaxTicks: 1,
		Seeds:    map[string]force.Point{"solo": {X: 100, Y: 120}},
		Params:   force.Params{CenterStrength: 1e-9},
		Formats:  []string{"json"},
	})
	if err != nil {
		t.Fatal(err)
	}
	p := res.Snapshot.Positions["solo"]
	if p.X < 99 || p.X > 101 || p.Y < 119 || p.Y > 121 {
		t.Errorf("seeded node at %+v, want near (100, 120)", p)
	}
}

func TestRunDuplicateNode(t *testing.T) {
	g := graph.Graph{Nodes: []graph.Node{{ID: "a"}, {ID: "a"}}}
	_, err := NewRunner(nil).Run(context.Background(), g, Options{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, errors.ErrCodeDuplicateNode) {
		t.Errorf("code = %s, want %s", errors.GetCode(err), errors.ErrCodeDuplicateNode)
	}
	if !errors.IsValidation(err) {
		t.Error("duplicate node should be a validation error")
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRunner(nil).Run(ctx, chain(), Options{})
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRunEmptyGraph(t *testing.T) {
	res, err := NewRunner(nil).Run(context.Background(), graph.Graph{}, Options{Formats: []string{"svg"}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Transform != viewport.Identity {
		t.Errorf("transform = %+v, want identity", res.Transform)
	}
}

func TestRunWarnings(t *testing.T) {
	codes := func(errs []error) []errors.Code {
		var out []errors.Code
		for _, err := range errs {
			out = append(out, errors.GetCode(err))
		}
		return out
	}

	tests := []struct {
		name string
		g    graph.Graph
		want []errors.Code
	}{
		{"clean", chain(), nil},
		{"empty graph", graph.Graph{}, []errors.Code{errors.ErrCodeDegenerateContent}},
		{
			"dangling edge and odd id",
			graph.Graph{
				Nodes: []graph.Node{{ID: "a"}, {ID: "tab\there"}},
				Edges: []graph.Edge{{Source: "a", Target: "tab\there"}, {Source: "a", Target: "ghost"}},
			},
			[]errors.Code{errors.ErrCodeInvalidInput, errors.ErrCodeDanglingEdge},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewRunner(nil).Run(context.Background(), tt.g, Options{Formats: []string{"json"}})
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			got := codes(res.Warnings)
			if len(got) != len(tt.want) {
				t.Fatalf("warnings = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("warnings[%d] = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestRunDiagram(t *testing.T) {
	res, err := NewRunner(nil).Run(context.Background(), chain(), Options{
		VizType: VizDiagram,
		Width:   600,
		Height:  400,
		Formats: []string{"svg", "json"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Box.X != 0 || res.Box.Y != 0 || res.Box.Width <= 0 || res.Box.Height <= 0 {
		t.Errorf("box = %+v, want zero origin and positive size", res.Box)
	}
	if res.Transform != viewport.Fit(600, 400, res.Box, DefaultPadding) {
		t.Errorf("transform = %+v", res.Transform)
	}
	if len(res.Snapshot.Positions) != 0 {
		t.Error("diagram run should not produce a force snapshot")
	}

	svg := string(res.Artifacts["svg"])
	if !strings.HasPrefix(svg, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 600.00 400.00"`) {
		t.Errorf("svg root = %.80q", svg)
	}
	if strings.Count(svg, "<svg") != 2 {
		t.Errorf("want the diagram nested in the presentation document")
	}

	var doc Document
	if err := json.Unmarshal(res.Artifacts["json"], &doc); err != nil {
		t.Fatal(err)
	}
	if doc.VizType != VizDiagram || doc.Box != res.Box || len(doc.Nodes) != 0 {
		t.Errorf("document = %+v", doc)
	}
}

func TestLoadStdin(t *testing.T) {
	in := strings.NewReader("nodes:\n  - id: a\n  - id: b\nedges:\n  - source: a\n    target: b\n")
	g, err := Load(Stdin, in, graph.FormatYAML)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if g.NodeCount() != 2 || g.EdgeCount() != 1 {
		t.Errorf("graph = %d nodes %d edges, want 2 1", g.NodeCount(), g.EdgeCount())
	}

	if _, err := Load(Stdin, strings.NewReader("{"), ""); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("malformed stdin: code = %s", errors.GetCode(err))
	}
	if _, err := Load("does-not-exist.json", nil, ""); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file: code = %s", errors.GetCode(err))
	}
}

type recordingHooks struct {
	observability.NoopLayoutHooks

	mu       sync.Mutex
	dropped  int
	results  []observability.SimulationResult
	rendered []string
	errs     []error
}

func (h *recordingHooks) OnBuild(_ context.Context, _, _, dropped int, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropped = dropped
}

func (h *recordingHooks) OnSimulationComplete(_ context.Context, r observability.SimulationResult, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.results = append(h.results, r)
}

func (h *recordingHooks) OnRenderComplete(_ context.Context, formats []string, _ time.Duration, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rendered = append(h.rendered, formats...)
	h.errs = append(h.errs, err)
}

func TestRunHooks(t *testing.T) {
	h := &recordingHooks{}
	observability.SetLayoutHooks(h)
	t.Cleanup(observability.Reset)

	if _, err := NewRunner(nil).Run(context.Background(), chain(), Options{Formats: []string{"json"}}); err != nil {
		t.Fatal(err)
	}

	if h.dropped != 1 {
		t.Errorf("OnBuild dropped = %d, want 1", h.dropped)
	}
	if len(h.results) != 1 || h.results[0].Phase != string(force.PhaseStopped) || h.results[0].Ticks == 0 {
		t.Errorf("simulation results = %+v", h.results)
	}
	if len(h.rendered) != 1 || h.rendered[0] != "json" || h.errs[0] != nil {
		t.Errorf("render events = %v %v", h.rendered, h.errs)
	}
}
