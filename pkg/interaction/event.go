package interaction

import (
	"github.com/matzehuels/forcegraph/pkg/errors"
)

// EventType names an input event delivered by a remote host.
type EventType string

const (
	EventPointerDown EventType = "pointerdown"
	EventPointerMove EventType = "pointermove"
	EventPointerUp   EventType = "pointerup"
	EventWheel       EventType = "wheel"
	EventPinch       EventType = "pinch"
	EventReset       EventType = "reset"
)

// Event is the wire form of one input event. X and Y are screen
// coordinates; Delta is the wheel delta and Factor the pinch scale.
type Event struct {
	Type   EventType `json:"type"`
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	Delta  float64   `json:"delta,omitempty"`
	Factor float64   `json:"factor,omitempty"`
}

// Handle dispatches e to the matching handler and reports whether anything
// changed. Unknown event types are an error.
func (c *Controller) Handle(e Event) (bool, error) {
	switch e.Type {
	case EventPointerDown:
		c.PointerDown(e.X, e.Y)
		return c.mode != ModeIdle, nil
	case EventPointerMove:
		return c.PointerMove(e.X, e.Y), nil
	case EventPointerUp:
		return c.PointerUp(), nil
	case EventWheel:
		return c.Wheel(e.Delta, e.X, e.Y), nil
	case EventPinch:
		return c.Pinch(e.Factor, e.X, e.Y), nil
	case EventReset:
		before := c.view
		return c.Reset() != before, nil
	}
	return false, errors.New(errors.ErrCodeInvalidInput, "unknown event type %q", e.Type)
}
