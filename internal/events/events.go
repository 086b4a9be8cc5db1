// Package events delivers fire-and-forget gameplay notifications to an
// external sink (a robot/companion service that reacts to the game).
// Nothing here may ever block or crash the frame loop that emits.
package events

// Kind names one notification type on the wire.
type Kind string

const (
	KindDraw       Kind = "slingshot_draw"
	KindFire       Kind = "slingshot_fire"
	KindCollision  Kind = "ball_collision"
	KindEliminated Kind = "bubble_eliminated"
	KindWin        Kind = "game_win"
)

// AllKinds lists every kind, in dispatch order.
func AllKinds() []Kind {
	return []Kind{KindDraw, KindFire, KindCollision, KindEliminated, KindWin}
}

// Envelope is the frame POSTed to the sink. Timestamp is unix milliseconds.
type Envelope struct {
	EventType Kind  `json:"eventType"`
	Timestamp int64 `json:"timestamp"`
	Data      any   `json:"data"`
}

// DrawData reports an in-progress slingshot pull. Angle is the fire
// direction in radians.
type DrawData struct {
	PowerRatio   float64 `json:"powerRatio"`
	DragDistance float64 `json:"dragDistance"`
	Angle        float64 `json:"angle"`
}

type Velocity struct {
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`
}

type FireData struct {
	PowerRatio float64  `json:"powerRatio"`
	Velocity   Velocity `json:"velocity"`
	Color      string   `json:"color"`
}

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type CollisionData struct {
	HitBubbleColor    string   `json:"hitBubbleColor"`
	CollisionPosition Position `json:"collisionPosition"`
}

// GridCell addresses one slot, mirrored here so payloads stand alone.
type GridCell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type EliminatedData struct {
	Count       int        `json:"count"`
	ColorLabel  string     `json:"colorLabel"`
	TotalPoints int        `json:"totalPoints"`
	Cells       []GridCell `json:"cells"`
}

// WinData reports a cleared board. Duration is milliseconds since the
// board was filled.
type WinData struct {
	FinalScore    int   `json:"finalScore"`
	ShotsFired    int   `json:"shotsFired"`
	BubblesPopped int   `json:"bubblesPopped"`
	Duration      int64 `json:"duration"`
}
