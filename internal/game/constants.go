package game

// Physics and board constants for the bubble grid.
// These MUST match the constants in frontend/src/game/constants.ts exactly.

const (
	CanvasWidth  = 1000.0
	CanvasHeight = 1400.0

	// GridCols is the column count on even rows; odd rows hold one fewer.
	GridCols       = 8
	InitialRows    = 5
	DangerRow      = 8
	BubbleDiameter = CanvasWidth / GridCols
	BubbleRadius   = BubbleDiameter / 2

	// RowHeightFactor * BubbleRadius is the vertical pitch between rows.
	RowHeightFactor = 1.7320508075688772 // sqrt(3)

	// Collision triggers when center distance drops below this times radius.
	// Slightly under 2 so grazing passes still register.
	CollisionFactor = 1.8

	MinMatchSize    = 3
	BonusThreshold  = 3   // cluster sizes above this earn the bonus multiplier
	BonusMultiplier = 1.5

	// Launch tuning. Drag distance is clamped to MaxDrag; pulls shorter than
	// MinStretch never fire.
	MaxDrag       = 150.0
	MinStretch    = 20.0
	MinVelFactor  = 0.12
	MaxVelFactor  = 0.30
	FrameFriction = 0.998

	// A projectile that survives this many seconds without sticking is lost.
	FlightTimeoutSec = 5.0

	// EaseRate pulls the loaded bubble toward the launch anchor each frame.
	EaseRate = 0.18

	AnchorOffsetY = 150.0

	// Pinch capture: cursor must be within PinchRadius of the loaded bubble
	// and the normalized pinch gap under PinchThreshold to start a draw.
	PinchRadius    = 80.0
	PinchThreshold = 0.05

	TickRate     = 60
	SnapshotRate = 20
)

// LaunchAnchor is the rest position of the loaded bubble.
func LaunchAnchor() Vec2 {
	return NewVec2(CanvasWidth/2, CanvasHeight-AnchorOffsetY)
}

// RowWidth reports how many columns row r holds. Odd rows are offset half a
// diameter and lose the last slot.
func RowWidth(row int) int {
	if row%2 != 0 {
		return GridCols - 1
	}
	return GridCols
}
