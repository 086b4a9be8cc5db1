package game

import "math"

// HandFrame is one sample of hand-tracking input, already projected into
// canvas coordinates by the client. PinchDistance is normalized thumb to
// index distance; the engine owns the threshold.
type HandFrame struct {
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	PinchDistance float64 `json:"pinch_distance"`
	Detected      bool    `json:"detected"`
}

// AimResult reports what the controller did with one hand frame.
type AimResult struct {
	Dragging     bool    // ball is held after this frame
	Fired        bool    // released with enough stretch
	Cancelled    bool    // released short, or force-released by a lock
	PowerRatio   float64 // stretch / MaxDrag, capped at 1
	DragDistance float64
	AngleRad     float64 // fire direction, radians
}

// AimController turns pinch gestures into the ball's rest → drag → flight
// transitions. Pinch is edge-triggered: capture needs a closing edge with
// the cursor on the resting ball, release needs an opening edge.
type AimController struct {
	pinched bool
}

// Update applies one hand frame to the ball. While locked, new captures are
// suppressed and a held ball is let go without firing. An undetected frame
// changes nothing.
func (a *AimController) Update(ball *Ball, frame HandFrame, locked bool) AimResult {
	var res AimResult

	if locked && ball.Phase == PhaseDrag {
		ball.Phase = PhaseRest
		res.Cancelled = true
		return res
	}
	if !frame.Detected {
		res.Dragging = ball.Phase == PhaseDrag
		return res
	}

	cursor := NewVec2(frame.X, frame.Y)
	pinchNow := frame.PinchDistance < PinchThreshold
	closing := pinchNow && !a.pinched
	opening := !pinchNow && a.pinched
	a.pinched = pinchNow

	switch ball.Phase {
	case PhaseRest:
		if closing && !locked && cursor.DistanceTo(ball.Position) <= PinchRadius {
			ball.Phase = PhaseDrag
			res.Dragging = true
		}

	case PhaseDrag:
		anchor := LaunchAnchor()
		offset := cursor.Minus(anchor)
		if offset.Magnitude() > MaxDrag {
			offset = offset.Normalize().Times(MaxDrag)
		}
		ball.Position = anchor.Plus(offset)

		stretch := anchor.Minus(ball.Position)
		res.DragDistance = stretch.Magnitude()
		res.PowerRatio = math.Min(res.DragDistance/MaxDrag, 1)
		res.AngleRad = fix(math.Atan2(stretch.Y, stretch.X))

		if opening {
			if res.DragDistance >= MinStretch {
				ball.Velocity = LaunchVelocity(stretch)
				ball.Phase = PhaseFlight
				ball.FlightFrames = 0
				res.Fired = true
			} else {
				ball.Phase = PhaseRest
				res.Cancelled = true
			}
			return res
		}
		res.Dragging = true
	}
	return res
}

// LaunchVelocity converts a stretch vector into the release velocity in
// pixels per frame. The per-pixel multiplier scales with power squared, so
// short pulls stay gentle and a full pull snaps.
func LaunchVelocity(stretch Vec2) Vec2 {
	dist := stretch.Magnitude()
	if dist > MaxDrag {
		stretch = stretch.Normalize().Times(MaxDrag)
		dist = MaxDrag
	}
	power := math.Min(dist/MaxDrag, 1)
	mult := MinVelFactor + (MaxVelFactor-MinVelFactor)*power*power
	return stretch.Times(fix(mult))
}
