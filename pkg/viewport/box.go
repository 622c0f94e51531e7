package viewport

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/force"
)

var (
	svgTagRe   = regexp.MustCompile(`<svg\b[^>]*>`)
	viewBoxRe  = regexp.MustCompile(`\bviewBox\s*=\s*"([^"]*)"`)
	widthRe    = regexp.MustCompile(`\swidth\s*=\s*"([0-9.]+)(?:px|pt)?"`)
	heightRe   = regexp.MustCompile(`\sheight\s*=\s*"([0-9.]+)(?:px|pt)?"`)
	listSepsRe = regexp.MustCompile(`[\s,]+`)
)

// BoxFromSVG returns the content box of an SVG document, read from the
// root element's viewBox attribute, or from its width and height when no
// viewBox is present.
func BoxFromSVG(svg []byte) (ContentBox, error) {
	tag := svgTagRe.Find(svg)
	if tag == nil {
		return ContentBox{}, errors.New(errors.ErrCodeInvalidFormat, "no <svg> element found")
	}

	if m := viewBoxRe.FindSubmatch(tag); m != nil {
		fields := listSepsRe.Split(strings.TrimSpace(string(m[1])), -1)
		if len(fields) != 4 {
			return ContentBox{}, errors.New(errors.ErrCodeInvalidFormat, "malformed viewBox %q", m[1])
		}
		var v [4]float64
		for i, f := range fields {
			n, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return ContentBox{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "malformed viewBox %q", m[1])
			}
			v[i] = n
		}
		return ContentBox{X: v[0], Y: v[1], Width: v[2], Height: v[3]}, nil
	}

	wm, hm := widthRe.FindSubmatch(tag), heightRe.FindSubmatch(tag)
	if wm == nil || hm == nil {
		return ContentBox{}, errors.New(errors.ErrCodeInvalidFormat, "svg has neither viewBox nor width/height")
	}
	w, err := strconv.ParseFloat(string(wm[1]), 64)
	if err != nil {
		return ContentBox{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid svg width")
	}
	h, err := strconv.ParseFloat(string(hm[1]), 64)
	if err != nil {
		return ContentBox{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid svg height")
	}
	return ContentBox{Width: w, Height: h}, nil
}

// BoxOf returns the bounding box of the given nodes' current positions,
// inflated by each node's radius. An empty slice yields the zero box.
func BoxOf(nodes []*force.Node) ContentBox {
	if len(nodes) == 0 {
		return ContentBox{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range nodes {
		r := n.Radius
		minX = math.Min(minX, n.Pos.X-r)
		minY = math.Min(minY, n.Pos.Y-r)
		maxX = math.Max(maxX, n.Pos.X+r)
		maxY = math.Max(maxY, n.Pos.Y+r)
	}
	return ContentBox{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
