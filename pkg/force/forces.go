package force

import (
	"math"
)

// Each force below reads node positions and accumulates into acc, which is
// indexed like the node slice the State was built with. None of them mutate
// nodes, so they can be evaluated and tested in isolation.

// goldenAngle spreads the fallback directions of coincident pairs.
const goldenAngle = 2.399963229728653

// coincidentEpsilon is the distance under which two bodies are treated as
// sharing a position.
const coincidentEpsilon = 1e-9

// separation returns the unit vector from a to b and their distance. For
// coincident bodies a deterministic direction derived from the pair's
// indices is returned with distance 0.
func separation(a, b *Node) (ux, uy, d float64) {
	dx, dy := b.Pos.X-a.Pos.X, b.Pos.Y-a.Pos.Y
	d = math.Hypot(dx, dy)
	if d < coincidentEpsilon || math.IsNaN(d) || math.IsInf(d, 0) {
		theta := float64(a.idx*31+b.idx+1) * goldenAngle
		return math.Cos(theta), math.Sin(theta), 0
	}
	return dx / d, dy / d, d
}

// Repulsion pushes every pair of nodes apart with magnitude
// strength / max(d, minDistance)². Pinned nodes participate as sources.
func Repulsion(nodes []*Node, strength, minDistance float64, acc []Point) {
	if strength == 0 {
		return
	}
	floor := math.Max(minDistance, coincidentEpsilon)
	for i := 0; i < len(nodes); i++ {
		a := nodes[i]
		for j := i + 1; j < len(nodes); j++ {
			b := nodes[j]
			ux, uy, d := separation(a, b)
			d = math.Max(d, floor)
			f := strength / (d * d)
			acc[a.idx].X -= ux * f
			acc[a.idx].Y -= uy * f
			acc[b.idx].X += ux * f
			acc[b.idx].Y += uy * f
		}
	}
}

// Attraction pulls the endpoints of every edge toward restLength with
// magnitude Strength * (d - restLength), split between the endpoints by Bias.
// Self-loops exert no force.
func Attraction(edges []Edge, restLength float64, acc []Point) {
	for _, e := range edges {
		if e.Source == e.Target {
			continue
		}
		ux, uy, d := separation(e.Source, e.Target)
		stretch := (d - restLength) * e.Strength
		acc[e.Target.idx].X -= ux * stretch * e.Bias
		acc[e.Target.idx].Y -= uy * stretch * e.Bias
		acc[e.Source.idx].X += ux * stretch * (1 - e.Bias)
		acc[e.Source.idx].Y += uy * stretch * (1 - e.Bias)
	}
}

// Centering pulls every unpinned node toward center, proportionally to its
// offset.
func Centering(nodes []*Node, center Point, strength float64, acc []Point) {
	for _, n := range nodes {
		if n.Pinned() {
			continue
		}
		acc[n.idx].X += (center.X - n.Pos.X) * strength
		acc[n.idx].Y += (center.Y - n.Pos.Y) * strength
	}
}

// Collide computes the displacement that separates overlapping nodes to a
// distance of the sum of their radii, scaled by strength. Unpinned partners
// of a pinned node take the whole correction; two pinned nodes are left
// alone. It returns the number of overlapping pairs found.
func Collide(nodes []*Node, strength float64, acc []Point) int {
	overlaps := 0
	for i := 0; i < len(nodes); i++ {
		a := nodes[i]
		for j := i + 1; j < len(nodes); j++ {
			b := nodes[j]
			minSep := a.Radius + b.Radius
			if minSep <= 0 {
				continue
			}
			// Cheap reject before the square root.
			dx, dy := b.Pos.X-a.Pos.X, b.Pos.Y-a.Pos.Y
			if dx > minSep || dx < -minSep || dy > minSep || dy < -minSep {
				continue
			}
			ux, uy, d := separation(a, b)
			if d >= minSep {
				continue
			}
			overlaps++
			push := (minSep - d) * strength

			shareA, shareB := 0.5, 0.5
			switch {
			case a.Pinned() && b.Pinned():
				continue
			case a.Pinned():
				shareA, shareB = 0, 1
			case b.Pinned():
				shareA, shareB = 1, 0
			}
			acc[a.idx].X -= ux * push * shareA
			acc[a.idx].Y -= uy * push * shareA
			acc[b.idx].X += ux * push * shareB
			acc[b.idx].Y += uy * push * shareB
		}
	}
	return overlaps
}

// sanitize zeroes non-finite components in acc and reports how many vectors
// needed fixing.
func sanitize(acc []Point) int {
	fixed := 0
	for i := range acc {
		if !acc[i].finite() {
			acc[i] = Point{}
			fixed++
		}
	}
	return fixed
}

// limit scales v down to at most maxLen.
func limit(v Point, maxLen float64) Point {
	l := v.Len()
	if l > maxLen && l > 0 {
		return v.Scale(maxLen / l)
	}
	return v
}

// clampAxis keeps v within [lo, hi]; when the range is empty the midpoint
// is used.
func clampAxis(v, lo, hi float64) float64 {
	if lo > hi {
		return (lo + hi) / 2
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
