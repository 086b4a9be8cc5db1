package game

import "math"

// BallPhase tracks where the projectile is in its rest → drag → flight
// cycle.
type BallPhase string

const (
	PhaseRest   BallPhase = "rest"
	PhaseDrag   BallPhase = "drag"
	PhaseFlight BallPhase = "flight"
)

// FlightTimeoutFrames is the hard cutoff for a shot that never lands.
const FlightTimeoutFrames = FlightTimeoutSec * TickRate

// Ball is the player's projectile. At rest it eases toward the anchor;
// in flight it moves in sub-steps so fast shots cannot tunnel through
// the grid.
type Ball struct {
	Phase        BallPhase `json:"phase"`
	Position     Vec2      `json:"position"`
	Velocity     Vec2      `json:"velocity"`
	Color        Color     `json:"color"`
	FlightFrames int       `json:"-"`
}

// NewBall returns a resting ball of the given color sitting on the anchor.
func NewBall(color Color) *Ball {
	return &Ball{
		Phase:    PhaseRest,
		Position: LaunchAnchor(),
		Color:    color,
	}
}

// Reset puts the ball back on the anchor at rest, recolored to color.
func (ball *Ball) Reset(color Color) {
	ball.Phase = PhaseRest
	ball.Position = LaunchAnchor()
	ball.Velocity = Vec2{}
	ball.Color = color
	ball.FlightFrames = 0
}

// EaseStep pulls a resting ball a fraction of the way to the anchor.
// Called every frame while at rest so a cancelled drag glides back.
func (ball *Ball) EaseStep() {
	ball.Position = ball.Position.Lerp(LaunchAnchor(), EaseRate)
}

// Contact describes how a flight frame ended.
type Contact struct {
	Hit       bool  // stuck to a bubble or the ceiling
	HitBubble bool  // false means ceiling contact
	HitCell   Cell  // bubble struck, when HitBubble
	HitColor  Color // its color, when HitBubble
	Point     Vec2  // ball center at the moment of contact
	TimedOut  bool  // flight cutoff reached, shot dissolves
}

// StepFlight advances a flying ball one frame against the board. The frame
// is split into sub-steps sized to half a radius so the ball cannot pass
// through a bubble between positions. Walls reflect; the ceiling and any
// bubble within collision range stop the flight.
func (ball *Ball) StepFlight(b *Board) Contact {
	speed := ball.Velocity.Magnitude()
	steps := int(math.Ceil(speed / (BubbleRadius / 2)))
	if steps < 1 {
		steps = 1
	}
	stepVel := ball.Velocity.Times(1 / float64(steps))

	for i := 0; i < steps; i++ {
		ball.Position = ball.Position.Plus(stepVel)

		// Side walls reflect, with the center clamped back inside.
		if ball.Position.X < BubbleRadius {
			ball.Position = NewVec2(BubbleRadius, ball.Position.Y)
			ball.Velocity = NewVec2(-ball.Velocity.X, ball.Velocity.Y)
			stepVel = NewVec2(-stepVel.X, stepVel.Y)
		} else if ball.Position.X > CanvasWidth-BubbleRadius {
			ball.Position = NewVec2(CanvasWidth-BubbleRadius, ball.Position.Y)
			ball.Velocity = NewVec2(-ball.Velocity.X, ball.Velocity.Y)
			stepVel = NewVec2(-stepVel.X, stepVel.Y)
		}

		// Ceiling contact sticks the ball to the top row.
		if ball.Position.Y <= BubbleRadius {
			ball.Position = NewVec2(ball.Position.X, BubbleRadius)
			return Contact{Hit: true, Point: ball.Position}
		}

		if cell, ok := nearestCollision(b, ball.Position); ok {
			color, _ := b.At(cell)
			return Contact{
				Hit:       true,
				HitBubble: true,
				HitCell:   cell,
				HitColor:  color,
				Point:     ball.Position,
			}
		}
	}

	ball.Velocity = ball.Velocity.Times(FrameFriction)
	ball.FlightFrames++
	if ball.FlightFrames > FlightTimeoutFrames {
		return Contact{TimedOut: true}
	}
	return Contact{}
}

// nearestCollision finds the settled bubble whose center is within collision
// range of pos, preferring the closest. Equal distances break toward the
// lower row-major cell so the outcome never depends on map order.
func nearestCollision(b *Board, pos Vec2) (Cell, bool) {
	limit := fix(CollisionFactor * BubbleRadius)
	var best Cell
	bestDist := math.MaxFloat64
	found := false
	for c := range b.cells {
		d := CellToPixel(c).DistanceTo(pos)
		if d >= limit {
			continue
		}
		if d < bestDist || (d == bestDist && cellLess(c, best)) {
			best, bestDist, found = c, d, true
		}
	}
	return best, found
}

func cellLess(a, b Cell) bool {
	if a.Row != b.Row {
		return a.Row < b.Row
	}
	return a.Col < b.Col
}
