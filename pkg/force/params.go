package force

import (
	"math"
)

// Default simulation parameters. They are tuned for graphs of up to a few
// hundred nodes in an 800x600 container.
const (
	DefaultWidth             = 800.0
	DefaultHeight            = 600.0
	DefaultMargin            = 20.0
	DefaultLinkDistance      = 60.0
	DefaultLinkStrength      = 0.5
	DefaultRepulsionStrength = 900.0
	DefaultMinDistance       = 1.0
	DefaultCenterStrength    = 0.02
	DefaultCollisionRadius   = 10.0
	DefaultCollisionStrength = 0.7
	DefaultAlphaMin          = 0.001
	DefaultAlphaDecay        = 0.0228 // 1 - AlphaMin^(1/300): ~300 ticks from alpha 1
	DefaultCoolingThreshold  = 0.05
	DefaultReheatAlpha       = 0.3
	DefaultMaxSpeed          = 40.0
	DefaultMaxTicks          = 1000
	DefaultSeedRadius        = 10.0
)

// Params configures a simulation. The zero value of any field selects its
// default; see [DefaultParams].
type Params struct {
	// Container geometry in device-independent pixels. Positions are clamped
	// into [Margin, Width-Margin] x [Margin, Height-Margin] after every tick.
	Width  float64 `json:"width" toml:"width"`
	Height float64 `json:"height" toml:"height"`
	Margin float64 `json:"margin" toml:"margin"`

	// Center is the point the centering force pulls toward. When nil, the
	// container center is used and follows container resizes.
	Center *Point `json:"center,omitempty" toml:"center,omitempty"`

	LinkDistance      float64 `json:"link_distance" toml:"link_distance"`           // spring rest length
	LinkStrength      float64 `json:"link_strength" toml:"link_strength"`           // spring constant, divided by endpoint degree
	RepulsionStrength float64 `json:"repulsion_strength" toml:"repulsion_strength"` // inverse-square numerator
	MinDistance       float64 `json:"min_distance" toml:"min_distance"`             // floor applied before 1/d²
	CenterStrength    float64 `json:"center_strength" toml:"center_strength"`
	CollisionRadius   float64 `json:"collision_radius" toml:"collision_radius"` // base node radius
	CollisionStrength float64 `json:"collision_strength" toml:"collision_strength"`

	AlphaMin         float64 `json:"alpha_min" toml:"alpha_min"`
	AlphaDecay       float64 `json:"alpha_decay" toml:"alpha_decay"`
	CoolingThreshold float64 `json:"cooling_threshold" toml:"cooling_threshold"`
	ReheatAlpha      float64 `json:"reheat_alpha" toml:"reheat_alpha"`

	MaxSpeed float64 `json:"max_speed" toml:"max_speed"`
	MaxTicks int     `json:"max_ticks" toml:"max_ticks"` // per heat cycle
}

// DefaultParams returns the default simulation parameters.
func DefaultParams() Params {
	return Params{}.WithDefaults()
}

// WithDefaults returns a copy of p with every unset, non-finite or
// out-of-range field replaced by its default.
func (p Params) WithDefaults() Params {
	p.Width = positiveOr(p.Width, DefaultWidth)
	p.Height = positiveOr(p.Height, DefaultHeight)
	p.Margin = nonNegativeOr(p.Margin, DefaultMargin)
	p.LinkDistance = nonNegativeOr(p.LinkDistance, DefaultLinkDistance)
	p.LinkStrength = positiveOr(p.LinkStrength, DefaultLinkStrength)
	p.RepulsionStrength = nonNegativeOr(p.RepulsionStrength, DefaultRepulsionStrength)
	p.MinDistance = positiveOr(p.MinDistance, DefaultMinDistance)
	p.CenterStrength = nonNegativeOr(p.CenterStrength, DefaultCenterStrength)
	p.CollisionRadius = nonNegativeOr(p.CollisionRadius, DefaultCollisionRadius)
	p.CollisionStrength = unitOr(p.CollisionStrength, DefaultCollisionStrength)
	p.AlphaMin = unitOr(p.AlphaMin, DefaultAlphaMin)
	p.AlphaDecay = unitOr(p.AlphaDecay, DefaultAlphaDecay)
	p.CoolingThreshold = unitOr(p.CoolingThreshold, DefaultCoolingThreshold)
	p.ReheatAlpha = unitOr(p.ReheatAlpha, DefaultReheatAlpha)
	p.MaxSpeed = positiveOr(p.MaxSpeed, DefaultMaxSpeed)
	if p.MaxTicks <= 0 {
		p.MaxTicks = DefaultMaxTicks
	}
	if p.CoolingThreshold < p.AlphaMin {
		p.CoolingThreshold = p.AlphaMin
	}
	if p.ReheatAlpha < p.CoolingThreshold {
		p.ReheatAlpha = p.CoolingThreshold
	}
	if p.Center != nil && !p.Center.finite() {
		p.Center = nil
	}
	return p
}

// CenterPoint returns the effective centering target.
func (p Params) CenterPoint() Point {
	if p.Center != nil {
		return *p.Center
	}
	return Point{X: p.Width / 2, Y: p.Height / 2}
}

// TickBound returns the maximum number of ticks a heat cycle starting at
// alpha can run before the simulator stops.
func (p Params) TickBound(alpha float64) int {
	if alpha <= p.AlphaMin {
		return 1
	}
	n := int(math.Ceil(math.Log(p.AlphaMin/alpha)/math.Log(1-p.AlphaDecay))) + 1
	if n > p.MaxTicks {
		return p.MaxTicks
	}
	return n
}

func positiveOr(v, def float64) float64 {
	if !(v > 0) || math.IsInf(v, 0) {
		return def
	}
	return v
}

func nonNegativeOr(v, def float64) float64 {
	if v == 0 || !(v >= 0) || math.IsInf(v, 0) {
		return def
	}
	return v
}

func unitOr(v, def float64) float64 {
	if !(v > 0) || v >= 1 {
		return def
	}
	return v
}
