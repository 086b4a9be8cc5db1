package game

import (
	"testing"
	"time"
)

// Helper building playable state from an explicit board layout.
func stateWith(bubbles map[Cell]Color, selected Color) *State {
	snap := Snapshot{Selected: selected, Status: StatusPlaying}
	for c, color := range bubbles {
		snap.Bubbles = append(snap.Bubbles, Bubble{Cell: c, Color: color})
	}
	return StateFromSnapshot(snap, time.Now())
}

func TestNewStateStartsPlaying(t *testing.T) {
	st := NewState(7, time.Now())
	if st.Status != StatusPlaying {
		t.Errorf("status = %s, want playing", st.Status)
	}
	if st.Board.Count() != 38 {
		t.Errorf("bubble count = %d, want 38", st.Board.Count())
	}
	if st.Selected != st.Board.ActiveColors()[0] {
		t.Errorf("selected = %s, want first active color %s", st.Selected, st.Board.ActiveColors()[0])
	}
	if st.Ball.Color != st.Selected || st.Ball.Phase != PhaseRest {
		t.Errorf("ball not loaded with selected color at rest: %+v", st.Ball)
	}
}

func TestPlaceBallPopsTripleAndWins(t *testing.T) {
	st := stateWith(map[Cell]Color{
		{0, 0}: Red,
		{0, 1}: Red,
	}, Red)

	contact := Contact{Hit: true, Point: CellToPixel(Cell{0, 2})}
	res, ok := st.PlaceBall(contact)
	if !ok {
		t.Fatal("contact against the top row should place")
	}
	if res.Placed != (Cell{0, 2}) {
		t.Errorf("placed at %v, want (0,2)", res.Placed)
	}
	if len(res.Matched) != 3 {
		t.Fatalf("matched %d bubbles, want 3 (%v)", len(res.Matched), res.Matched)
	}
	if res.Points != 300 {
		t.Errorf("points = %d, want 300", res.Points)
	}
	if !res.Won {
		t.Error("clearing the board should win")
	}
	if st.Score != 300 || st.BubblesPopped != 3 {
		t.Errorf("score/popped = %d/%d, want 300/3", st.Score, st.BubblesPopped)
	}
	if st.Status != StatusWon {
		t.Errorf("status = %s, want won", st.Status)
	}
	if st.Ball.Phase != PhaseRest || !st.Ball.Position.IsEqualTo(LaunchAnchor()) {
		t.Errorf("ball not reloaded at anchor: %+v", st.Ball)
	}
}

func TestPlaceBallPopsQuadAcrossRows(t *testing.T) {
	st := stateWith(map[Cell]Color{
		{0, 0}: Red,
		{0, 1}: Red,
		{0, 2}: Red,
	}, Red)

	// Snap below the row: (1,0) touches (0,0) and (0,1), and the flood
	// fill reaches (0,2) through the row above.
	res, ok := st.PlaceBall(Contact{Hit: true, Point: CellToPixel(Cell{1, 0})})
	if !ok {
		t.Fatal("supported contact should place")
	}
	if res.Placed != (Cell{1, 0}) {
		t.Errorf("placed at %v, want (1,0)", res.Placed)
	}
	if len(res.Matched) != 4 {
		t.Fatalf("matched %d bubbles, want 4 (%v)", len(res.Matched), res.Matched)
	}
	if res.Color != Red {
		t.Errorf("matched color = %s, want Red", res.Color)
	}
	if res.Points != 600 {
		t.Errorf("points = %d, want 4*100*1.5 = 600", res.Points)
	}
	if !res.Won {
		t.Error("clearing the board should win")
	}
	if st.Score != 600 || st.BubblesPopped != 4 {
		t.Errorf("score/popped = %d/%d, want 600/4", st.Score, st.BubblesPopped)
	}
}

func TestPlaceBallBelowThresholdSticks(t *testing.T) {
	st := stateWith(map[Cell]Color{{0, 0}: Red}, Red)

	res, ok := st.PlaceBall(Contact{Hit: true, Point: CellToPixel(Cell{0, 1})})
	if !ok {
		t.Fatal("placement should succeed")
	}
	if res.Matched != nil {
		t.Errorf("pair should not pop, matched %v", res.Matched)
	}
	if st.Board.Count() != 2 {
		t.Errorf("bubble count = %d, want 2", st.Board.Count())
	}
	if st.Score != 0 || st.Status != StatusPlaying {
		t.Errorf("score/status = %d/%s, want 0/playing", st.Score, st.Status)
	}
}

func TestPlaceBallSwitchesDepletedColor(t *testing.T) {
	st := stateWith(map[Cell]Color{
		{0, 0}: Red,
		{0, 1}: Red,
		{1, 0}: Green,
	}, Red)

	res, ok := st.PlaceBall(Contact{Hit: true, Point: CellToPixel(Cell{0, 2})})
	if !ok || len(res.Matched) != 3 {
		t.Fatalf("red triple should pop: ok=%v res=%+v", ok, res)
	}
	if res.Won {
		t.Error("green bubble remains, game should not be won")
	}
	if st.Selected != Green || st.Ball.Color != Green {
		t.Errorf("depleted red should hand selection to Green, got %s / ball %s", st.Selected, st.Ball.Color)
	}
}

func TestPlaceBallDissolvesWithoutSupport(t *testing.T) {
	st := stateWith(map[Cell]Color{{0, 0}: Red}, Red)

	res, ok := st.PlaceBall(Contact{Hit: true, Point: NewVec2(500, 800)})
	if ok {
		t.Fatalf("mid-air contact should dissolve, got %+v", res)
	}
	if st.Board.Count() != 1 {
		t.Errorf("dissolved shot changed the board: count=%d", st.Board.Count())
	}
	if st.Ball.Phase != PhaseRest {
		t.Errorf("ball should reload after a dissolve, phase=%s", st.Ball.Phase)
	}
}

func TestStateFromSnapshotRestores(t *testing.T) {
	now := time.Now()
	snap := Snapshot{
		Bubbles: []Bubble{
			{Cell: Cell{0, 0}, Color: Green},
			{Cell: Cell{0, 1}, Color: Red},
		},
		Score:         500,
		ShotsFired:    7,
		BubblesPopped: 12,
		Selected:      Blue, // no longer on the board
		Status:        StatusPlaying,
		ElapsedMS:     60000,
	}

	st := StateFromSnapshot(snap, now)
	if st.Score != 500 || st.ShotsFired != 7 || st.BubblesPopped != 12 {
		t.Errorf("counters = %d/%d/%d, want 500/7/12", st.Score, st.ShotsFired, st.BubblesPopped)
	}
	if st.Selected != Red {
		t.Errorf("stale selection should fall back to first active color, got %s", st.Selected)
	}
	if st.Ball.Phase != PhaseRest || st.Ball.Color != Red {
		t.Errorf("ball should reload fresh at the anchor: %+v", st.Ball)
	}
	if got := st.BuildSnapshot(now).ElapsedMS; got != 60000 {
		t.Errorf("elapsed after restore = %d, want 60000", got)
	}
}

func TestSelectColor(t *testing.T) {
	st := stateWith(map[Cell]Color{
		{0, 0}: Red,
		{0, 1}: Blue,
	}, Red)

	if !st.SelectColor(Blue) {
		t.Error("switching to an active color should succeed")
	}
	if st.Selected != Blue || st.Ball.Color != Blue {
		t.Errorf("selection not applied: %s / ball %s", st.Selected, st.Ball.Color)
	}
	if st.SelectColor(Green) {
		t.Error("color absent from the board should be rejected")
	}
	if st.SelectColor(Color("Teal")) {
		t.Error("unknown color should be rejected")
	}

	st.Ball.Phase = PhaseFlight
	if st.SelectColor(Red) {
		t.Error("selection must be rejected while the ball is in flight")
	}
}

func TestRestartRebuildsBoard(t *testing.T) {
	st := NewState(1, time.Now())
	st.Score = 900
	st.ShotsFired = 14
	st.BubblesPopped = 21
	st.Status = StatusWon

	st.Restart(99, time.Now())
	if st.Board.Count() != 38 {
		t.Errorf("bubble count after restart = %d, want 38", st.Board.Count())
	}
	if st.Score != 0 || st.ShotsFired != 0 || st.BubblesPopped != 0 {
		t.Errorf("counters not cleared: %d/%d/%d", st.Score, st.ShotsFired, st.BubblesPopped)
	}
	if st.Status != StatusPlaying {
		t.Errorf("status = %s, want playing", st.Status)
	}
	if st.Selected != st.Board.ActiveColors()[0] {
		t.Errorf("selected = %s, want %s", st.Selected, st.Board.ActiveColors()[0])
	}
}

func TestBuildSnapshotDoesNotAlias(t *testing.T) {
	st := stateWith(map[Cell]Color{{0, 0}: Red}, Red)
	target := Cell{2, 2}
	st.Hint = &Hint{Target: &target, Color: Red, Message: "aim here"}

	snap := st.BuildSnapshot(time.Now())

	st.Board.Set(Cell{5, 5}, Blue)
	st.Hint.Target.Row = 9
	st.Hint.Message = "changed"

	if len(snap.Bubbles) != 1 {
		t.Errorf("snapshot bubbles grew with the live board: %d", len(snap.Bubbles))
	}
	if snap.Hint.Target.Row != 2 || snap.Hint.Message != "aim here" {
		t.Errorf("snapshot hint aliases live state: %+v", snap.Hint)
	}
}
