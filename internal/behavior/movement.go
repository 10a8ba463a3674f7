package behavior

import "time"

// Direction of a movement request.
type Direction string

const (
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
	DirectionJump  Direction = "jump"
)

// MoveStep is the horizontal displacement of one left/right request.
const MoveStep = 2.0

// MovementRequest is consumed once by ClampMove.
type MovementRequest struct {
	Direction Direction
}

// Position of the avatar on the x axis.
type Position struct {
	X float64 `json:"x"`
}

// Bounds is an inclusive [Min, Max] range for Position.X.
type Bounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Clamp returns x limited to the bounds.
func (b Bounds) Clamp(x float64) float64 {
	if x < b.Min {
		return b.Min
	}
	if x > b.Max {
		return b.Max
	}
	return x
}

// BoundsForViewport derives movement bounds from the viewport width in pixels.
// A viewport narrower than the avatar collapses the range to zero.
func BoundsForViewport(widthPx float64, pixelsPerUnit float64, halfWidth float64) Bounds {
	if widthPx <= 0 || pixelsPerUnit <= 0 {
		return Bounds{}
	}
	limit := widthPx/pixelsPerUnit/2 - halfWidth
	if limit < 0 {
		limit = 0
	}
	return Bounds{Min: -limit, Max: limit}
}

// ClampMove applies a request to the current position and clamps the result.
// Jump leaves x unchanged.
func ClampMove(current Position, request MovementRequest, bounds Bounds) Position {
	x := current.X
	switch request.Direction {
	case DirectionLeft:
		x -= MoveStep
	case DirectionRight:
		x += MoveStep
	}
	return Position{X: bounds.Clamp(x)}
}

// Cooldown rejects requests while a previous one is still in flight.
type Cooldown struct {
	window time.Duration
	until  time.Time
}

// NewCooldown creates a cooldown with the given in-flight window.
func NewCooldown(window time.Duration) *Cooldown {
	return &Cooldown{window: window}
}

// Allow reports whether a request at now is accepted, and starts a new
// window when it is.
func (c *Cooldown) Allow(now time.Time) bool {
	if now.Before(c.until) {
		return false
	}
	c.until = now.Add(c.window)
	return true
}

// SetWindow changes the length of future windows. A window already running
// keeps its end time.
func (c *Cooldown) SetWindow(window time.Duration) {
	c.window = window
}
