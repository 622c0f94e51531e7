package viewport

import (
	"math"
	"testing"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/force"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func approxTransform(a, b Transform) bool {
	return approx(a.Scale, b.Scale) && approx(a.TranslateX, b.TranslateX) && approx(a.TranslateY, b.TranslateY)
}

func TestFit(t *testing.T) {
	tests := []struct {
		name    string
		cw, ch  float64
		box     ContentBox
		padding float64
		want    Transform
	}{
		{"wide container", 800, 400, ContentBox{0, 0, 400, 400}, 40, Transform{0.8, 240, 40}},
		{"small content is not upscaled", 800, 600, ContentBox{0, 0, 100, 50}, 0, Transform{1, 350, 275}},
		{"offset origin", 200, 200, ContentBox{-50, 100, 400, 400}, 0, Transform{0.5, 25, -50}},
		{"zero width", 800, 400, ContentBox{0, 0, 0, 400}, 0, Identity},
		{"zero height", 800, 400, ContentBox{10, 10, 400, 0}, 0, Identity},
		{"NaN box", 800, 400, ContentBox{0, 0, math.NaN(), 10}, 0, Identity},
		{"infinite container", math.Inf(1), 400, ContentBox{0, 0, 10, 10}, 0, Identity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fit(tt.cw, tt.ch, tt.box, tt.padding)
			if !approxTransform(got, tt.want) {
				t.Errorf("Fit() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFitNoRoom(t *testing.T) {
	// Padding that consumes the container is ignored.
	got := Fit(50, 50, ContentBox{0, 0, 100, 100}, 40)
	if want := (Transform{0.5, 0, 0}); !approxTransform(got, want) {
		t.Errorf("Fit() = %+v, want %+v", got, want)
	}
}

func TestFitHasNoLowerBound(t *testing.T) {
	box := ContentBox{0, 0, 20000, 1000}
	got := Fit(800, 400, box, 0)
	if !approx(got.Scale, 0.04) {
		t.Fatalf("scale = %v, want 0.04", got.Scale)
	}
	left := ToScreen(got, force.Point{X: box.X, Y: box.Y})
	right := ToScreen(got, force.Point{X: box.X + box.Width, Y: box.Y + box.Height})
	if left.X < -1e-9 || right.X > 800+1e-9 {
		t.Errorf("content spans %v..%v, want inside 0..800", left.X, right.X)
	}
}

func TestFitterNoRoomUsesLowerBound(t *testing.T) {
	f := NewFitter(40, Bounds{Min: 0.25, Max: 4})
	f.SetContainer(50, 50)
	f.SetContent(ContentBox{0, 0, 100, 100})
	if got := f.Fit().Scale; got != 0.25 {
		t.Errorf("scale = %v, want lower bound 0.25", got)
	}
}

func TestFitterResetDeterministic(t *testing.T) {
	f := NewFitter(24, DefaultBounds())
	f.SetContainer(1024, 768)
	f.SetContent(ContentBox{X: -13.7, Y: 4.2, Width: 933.3, Height: 611.9})

	fresh := f.Fit()
	first := f.Reset()
	second := f.Reset()
	if first != fresh || second != first {
		t.Errorf("resets differ: fit=%+v first=%+v second=%+v", fresh, first, second)
	}
}

func TestFitterResize(t *testing.T) {
	f := NewFitter(0, DefaultBounds())
	f.SetContent(ContentBox{0, 0, 400, 400})

	f.SetContainer(400, 400)
	if got := f.Fit(); got != (Transform{1, 0, 0}) {
		t.Errorf("Fit() = %+v, want identity scale", got)
	}
	f.SetContainer(200, 400)
	if got := f.Fit(); !approxTransform(got, Transform{0.5, 0, 100}) {
		t.Errorf("after resize Fit() = %+v", got)
	}
}

func TestFitterBounds(t *testing.T) {
	f := NewFitter(0, Bounds{Min: 0.5, Max: 2})
	f.SetContainer(100, 100)
	f.SetContent(ContentBox{0, 0, 1000, 1000})
	if got := f.Fit().Scale; got != 0.5 {
		t.Errorf("scale = %v, want lower bound 0.5", got)
	}

	f = NewFitter(0, Bounds{Min: 2, Max: 4})
	f.SetContainer(100, 100)
	f.SetContent(ContentBox{0, 0, 10, 10})
	if got := f.Fit().Scale; got != 1 {
		t.Errorf("scale = %v, want capped at 1", got)
	}
}

func TestBoundsWithDefaults(t *testing.T) {
	tests := []struct {
		in, want Bounds
	}{
		{Bounds{}, DefaultBounds()},
		{Bounds{Min: 3, Max: 1}, Bounds{Min: 1, Max: 3}},
		{Bounds{Min: -1, Max: math.Inf(1)}, DefaultBounds()},
		{Bounds{Min: 0.2, Max: 8}, Bounds{Min: 0.2, Max: 8}},
	}
	for _, tt := range tests {
		if got := tt.in.WithDefaults(); got != tt.want {
			t.Errorf("%+v.WithDefaults() = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestZoomAtKeepsAnchor(t *testing.T) {
	start := Transform{Scale: 1.5, TranslateX: 30, TranslateY: -20}
	anchor := force.Point{X: 320, Y: 240}
	world := ToWorld(start, anchor)

	for _, factor := range []float64{0.5, 1.1, 2, 100, 0.0001} {
		got := ZoomAt(start, factor, anchor.X, anchor.Y, DefaultBounds())
		if got.Scale < DefaultMinScale || got.Scale > DefaultMaxScale {
			t.Errorf("factor %v: scale %v out of bounds", factor, got.Scale)
		}
		screen := ToScreen(got, world)
		if !approx(screen.X, anchor.X) || !approx(screen.Y, anchor.Y) {
			t.Errorf("factor %v: anchor drifted to %+v", factor, screen)
		}
	}
}

func TestZoomAtRejectsBadFactor(t *testing.T) {
	start := Transform{Scale: 1, TranslateX: 5, TranslateY: 5}
	for _, f := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if got := ZoomAt(start, f, 0, 0, DefaultBounds()); got != start {
			t.Errorf("ZoomAt(factor=%v) = %+v, want unchanged", f, got)
		}
	}
}

func TestPan(t *testing.T) {
	got := Pan(Transform{Scale: 2, TranslateX: 1, TranslateY: 1}, 10, -5)
	if got != (Transform{Scale: 2, TranslateX: 11, TranslateY: -4}) {
		t.Errorf("Pan() = %+v", got)
	}
	if got := Pan(Identity, math.NaN(), 0); got != Identity {
		t.Errorf("Pan(NaN) = %+v, want unchanged", got)
	}
}

func TestWorldScreenRoundTrip(t *testing.T) {
	tr := Transform{Scale: 0.75, TranslateX: -12, TranslateY: 40}
	p := force.Point{X: 123.5, Y: -7}
	back := ToWorld(tr, ToScreen(tr, p))
	if !approx(back.X, p.X) || !approx(back.Y, p.Y) {
		t.Errorf("round trip = %+v, want %+v", back, p)
	}
}

func TestBoxFromSVG(t *testing.T) {
	tests := []struct {
		name string
		svg  string
		want ContentBox
	}{
		{
			name: "viewBox",
			svg:  `<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg" width="300pt" viewBox="0.00 0.00 300.00 116.00"><g/></svg>`,
			want: ContentBox{0, 0, 300, 116},
		},
		{
			name: "negative origin with commas",
			svg:  `<svg viewBox="-10,-20, 50 60"></svg>`,
			want: ContentBox{-10, -20, 50, 60},
		},
		{
			name: "width and height fallback",
			svg:  `<svg width="640px" height="480px"></svg>`,
			want: ContentBox{0, 0, 640, 480},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BoxFromSVG([]byte(tt.svg))
			if err != nil {
				t.Fatalf("BoxFromSVG: %v", err)
			}
			if got != tt.want {
				t.Errorf("BoxFromSVG() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBoxFromSVGErrors(t *testing.T) {
	for _, svg := range []string{
		`<html></html>`,
		`<svg viewBox="0 0 10"></svg>`,
		`<svg viewBox="0 0 ten 10"></svg>`,
		`<svg></svg>`,
	} {
		if _, err := BoxFromSVG([]byte(svg)); !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("BoxFromSVG(%q) err = %v, want INVALID_FORMAT", svg, err)
		}
	}
}

func TestBoxOf(t *testing.T) {
	nodes := []*force.Node{
		{Pos: force.Point{X: 10, Y: 20}, Radius: 5},
		{Pos: force.Point{X: 100, Y: 50}, Radius: 10},
	}
	got := BoxOf(nodes)
	want := ContentBox{X: 5, Y: 15, Width: 105, Height: 45}
	if got != want {
		t.Errorf("BoxOf() = %+v, want %+v", got, want)
	}
	if !BoxOf(nil).Degenerate() {
		t.Error("empty box should be degenerate")
	}
}
