package game

import (
	"context"
	"math/rand"
	"time"
)

// Game status values.
const (
	StatusPlaying   = "playing"
	StatusWon       = "won"
	StatusAbandoned = "abandoned" // persisted rows only, never a live status
)

// Hint is the advisory overlay shown to the player: where to shoot, what
// color to load, and why.
type Hint struct {
	Target    *Cell  `json:"target,omitempty"`
	Color     Color  `json:"color,omitempty"`
	Message   string `json:"message"`
	Rationale string `json:"rationale,omitempty"`
	Heuristic bool   `json:"heuristic"`
}

func (h *Hint) clone() *Hint {
	if h == nil {
		return nil
	}
	out := *h
	if h.Target != nil {
		t := *h.Target
		out.Target = &t
	}
	return &out
}

// AdviceRequest carries everything the advisor needs to weigh a position.
// Board is a private clone; the advisor may read it from any goroutine.
type AdviceRequest struct {
	Board      *Board
	Candidates []Candidate
	Danger     bool
	Score      int
}

// Advisor produces a hint for a board position. Implementations absorb
// their own failures: Advise always returns a usable hint.
type Advisor interface {
	Advise(ctx context.Context, req AdviceRequest) Hint
}

// State is the full authoritative state of one game. Owned exclusively by
// the session loop; everyone else reads copies built by BuildSnapshot.
type State struct {
	Board     *Board
	Ball      *Ball
	Particles *ParticleSystem

	Score         int
	ShotsFired    int
	BubblesPopped int
	Selected      Color
	Status        string
	Locked        bool
	Danger        bool
	Hint          *Hint
	StartedAt     time.Time

	rng *rand.Rand
}

// NewState builds a fresh game. The seed fixes board generation and
// particle spread, so a seed replays identically.
func NewState(seed int64, now time.Time) *State {
	rng := rand.New(rand.NewSource(seed))
	board := GenerateBoard(rng)
	selected := board.ActiveColors()[0]
	return &State{
		Board:     board,
		Ball:      NewBall(selected),
		Particles: NewParticleSystem(MaxParticles),
		Selected:  selected,
		Status:    StatusPlaying,
		StartedAt: now,
		rng:       rng,
	}
}

// StateFromSnapshot rebuilds playable state from a saved snapshot, for
// picking a game back up after the owning process went away. Particles and
// any in-flight ball are not restored; the ball reloads at the anchor.
func StateFromSnapshot(snap Snapshot, now time.Time) *State {
	st := &State{
		Board:         NewBoard(),
		Particles:     NewParticleSystem(MaxParticles),
		Score:         snap.Score,
		ShotsFired:    snap.ShotsFired,
		BubblesPopped: snap.BubblesPopped,
		Status:        snap.Status,
		StartedAt:     now.Add(-time.Duration(snap.ElapsedMS) * time.Millisecond),
		rng:           rand.New(rand.NewSource(now.UnixNano())),
	}
	if st.Status == "" {
		st.Status = StatusPlaying
	}
	for _, b := range snap.Bubbles {
		st.Board.Set(b.Cell, b.Color)
	}
	st.Danger = st.Board.InDanger()

	st.Selected = snap.Selected
	if active := st.Board.ActiveColors(); len(active) > 0 {
		found := false
		for _, c := range active {
			if c == st.Selected {
				found = true
				break
			}
		}
		if !found {
			st.Selected = active[0]
		}
	} else if !st.Selected.Valid() {
		st.Selected = Red
	}
	st.Ball = NewBall(st.Selected)
	return st
}

// SelectColor switches the loaded color. Rejected while the ball is in
// flight or when the color is gone from the board.
func (st *State) SelectColor(c Color) bool {
	if !c.Valid() || st.Ball.Phase == PhaseFlight {
		return false
	}
	active := false
	for _, ac := range st.Board.ActiveColors() {
		if ac == c {
			active = true
			break
		}
	}
	if !active {
		return false
	}
	st.Selected = c
	st.Ball.Color = c
	return true
}

// PlacementResult sums up everything one landed shot changed.
type PlacementResult struct {
	Placed  Cell
	Color   Color
	Matched []Cell // nil below the match threshold
	Points  int
	Won     bool
}

// PlaceBall snaps the landed ball into the nearest free slot, runs the
// match flood fill, scores and pops, then reloads the ball. Returns false
// when no supported slot exists, in which case the shot just dissolves.
func (st *State) PlaceBall(contact Contact) (PlacementResult, bool) {
	cell, ok := st.Board.NearestFreeCell(contact.Point)
	if !ok {
		st.Ball.Reset(st.Selected)
		return PlacementResult{}, false
	}

	color := st.Ball.Color
	st.Board.Set(cell, color)
	res := PlacementResult{Placed: cell, Color: color}

	cluster := MatchCluster(st.Board, cell)
	if len(cluster) >= MinMatchSize {
		for _, c := range cluster {
			st.Particles.Burst(CellToPixel(c), color, st.rng)
			st.Board.Remove(c)
		}
		res.Matched = cluster
		res.Points = ScoreCluster(len(cluster), color)
		st.Score += res.Points
		st.BubblesPopped += len(cluster)
	}

	st.Danger = st.Board.InDanger()
	if st.Board.Count() == 0 {
		st.Status = StatusWon
		res.Won = true
	}

	// Reload. A depleted color hands the selection to the first color
	// still on the board.
	active := st.Board.ActiveColors()
	if len(active) > 0 {
		depleted := true
		for _, c := range active {
			if c == st.Selected {
				depleted = false
				break
			}
		}
		if depleted {
			st.Selected = active[0]
		}
	}
	st.Ball.Reset(st.Selected)
	return res, true
}

// Restart rebuilds the game in place with a fresh seed.
func (st *State) Restart(seed int64, now time.Time) {
	*st = *NewState(seed, now)
}

// Snapshot is the deep-copied wire form of State, safe to hand to any
// goroutine.
type Snapshot struct {
	Bubbles       []Bubble   `json:"bubbles"`
	Ball          Ball       `json:"ball"`
	Particles     []Particle `json:"particles"`
	Score         int        `json:"score"`
	ShotsFired    int        `json:"shotsFired"`
	BubblesPopped int        `json:"bubblesPopped"`
	Selected      Color      `json:"selectedColor"`
	ActiveColors  []Color    `json:"activeColors"`
	Status        string     `json:"status"`
	Locked        bool       `json:"locked"`
	Danger        bool       `json:"danger"`
	Hint          *Hint      `json:"hint,omitempty"`
	ElapsedMS     int64      `json:"elapsedMs"`
}

// BuildSnapshot copies the state for broadcast. Nothing in the result
// aliases loop-owned memory.
func (st *State) BuildSnapshot(now time.Time) Snapshot {
	return Snapshot{
		Bubbles:       st.Board.Snapshot(),
		Ball:          *st.Ball,
		Particles:     st.Particles.Snapshot(),
		Score:         st.Score,
		ShotsFired:    st.ShotsFired,
		BubblesPopped: st.BubblesPopped,
		Selected:      st.Selected,
		ActiveColors:  st.Board.ActiveColors(),
		Status:        st.Status,
		Locked:        st.Locked,
		Danger:        st.Danger,
		Hint:          st.Hint.clone(),
		ElapsedMS:     now.Sub(st.StartedAt).Milliseconds(),
	}
}
