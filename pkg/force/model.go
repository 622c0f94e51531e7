package force

import (
	"math"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/graph"
)

// Point is a 2D coordinate or vector in layout (world) space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale returns p*k.
func (p Point) Scale(k float64) Point { return Point{p.X * k, p.Y * k} }

// Len returns the Euclidean length of p.
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

func (p Point) finite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Node is a simulation body. Pos and Vel are owned by the simulator; Pin is
// owned by whoever is dragging the node.
type Node struct {
	ID       string
	Label    string
	Category graph.Category
	Radius   float64

	Pos Point
	Vel Point

	// Pin fixes the node at a position while set. Pinned nodes keep exerting
	// forces on others but are not moved by them.
	Pin *Point

	idx    int
	degree int
	placed bool
}

// Pinned reports whether the node is currently held in place.
func (n *Node) Pinned() bool { return n.Pin != nil }

// Placed reports whether the node has a position (seeded or supplied).
func (n *Node) Placed() bool { return n.placed }

// Edge is a resolved spring between two live nodes.
type Edge struct {
	Source *Node
	Target *Node

	// Strength is the spring constant after dividing by the smaller endpoint
	// degree. Bias is the share of the correction applied to Target.
	Strength float64
	Bias     float64
}

// State is the simulation-ready form of one dataset. A State is built once
// per dataset and never incrementally mutated into a different graph.
type State struct {
	Nodes   []*Node
	Edges   []Edge
	Dropped []graph.Edge // dangling input edges, for diagnostics only
	Params  Params
	Alpha   float64

	byID map[string]*Node
}

// Node returns the node with the given id, or nil.
func (s *State) Node(id string) *Node {
	return s.byID[id]
}

// NodeAt returns the node nearest to p whose radius (plus slop) contains p,
// or nil when p is over empty space.
func (s *State) NodeAt(p Point, slop float64) *Node {
	var best *Node
	bestDist := math.Inf(1)
	for _, n := range s.Nodes {
		d := n.Pos.Sub(p).Len()
		if d <= n.Radius+slop && d < bestDist {
			best, bestDist = n, d
		}
	}
	return best
}

// BuildOption customizes Build.
type BuildOption func(*buildConfig)

type buildConfig struct {
	seeds map[string]Point
}

// WithPositions supplies starting positions for some or all nodes. Nodes not
// in the map are seeded by the simulator. Non-finite positions are ignored.
func WithPositions(seeds map[string]Point) BuildOption {
	return func(c *buildConfig) { c.seeds = seeds }
}

// Build validates and normalizes raw input into a fresh State.
//
// Build fails only when a node id repeats, with
// errors.ErrCodeDuplicateNode. Any other string, including the empty one, is
// a valid id. Edges whose source or target is not a known node are dropped
// and recorded in State.Dropped. Input slices are copied; Build has no side
// effects.
func Build(nodes []graph.Node, edges []graph.Edge, params Params, opts ...BuildOption) (*State, error) {
	var cfg buildConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	params = params.WithDefaults()
	s := &State{
		Nodes:  make([]*Node, 0, len(nodes)),
		Params: params,
		Alpha:  1,
		byID:   make(map[string]*Node, len(nodes)),
	}

	for _, in := range nodes {
		if _, dup := s.byID[in.ID]; dup {
			return nil, errors.New(errors.ErrCodeDuplicateNode, "duplicate node id %q", in.ID)
		}
		cat := in.Category.Normalize()
		n := &Node{
			ID:       in.ID,
			Label:    in.DisplayLabel(),
			Category: cat,
			Radius:   params.CollisionRadius * cat.RadiusScale(),
			idx:      len(s.Nodes),
		}
		if p, ok := cfg.seeds[in.ID]; ok && p.finite() {
			n.Pos = p
			n.placed = true
		}
		s.Nodes = append(s.Nodes, n)
		s.byID[n.ID] = n
	}

	resolved := make([]Edge, 0, len(edges))
	for _, e := range edges {
		src, tgt := s.byID[e.Source], s.byID[e.Target]
		if src == nil || tgt == nil {
			s.Dropped = append(s.Dropped, e)
			continue
		}
		resolved = append(resolved, Edge{Source: src, Target: tgt})
		if src != tgt {
			src.degree++
			tgt.degree++
		}
	}

	for i := range resolved {
		e := &resolved[i]
		ds, dt := float64(max(e.Source.degree, 1)), float64(max(e.Target.degree, 1))
		e.Strength = params.LinkStrength / min(ds, dt)
		e.Bias = ds / (ds + dt)
	}
	s.Edges = resolved

	return s, nil
}

// FromGraph is Build over a graph.Graph.
func FromGraph(g graph.Graph, params Params, opts ...BuildOption) (*State, error) {
	return Build(g.Nodes, g.Edges, params, opts...)
}
