package game

import "testing"

// Helper to build a board from explicit cell assignments.
func boardOf(cells map[Cell]Color) *Board {
	b := NewBoard()
	for c, color := range cells {
		b.Set(c, color)
	}
	return b
}

func TestMatchClusterFloodsSameColorOnly(t *testing.T) {
	// L-shaped red run with a green bubble wedged against it.
	b := boardOf(map[Cell]Color{
		{0, 0}: Red,
		{0, 1}: Red,
		{1, 0}: Red,
		{1, 1}: Green,
	})

	got := MatchCluster(b, Cell{0, 0})
	want := []Cell{{0, 0}, {0, 1}, {1, 0}}
	if len(got) != len(want) {
		t.Fatalf("cluster = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("cluster[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestMatchClusterEmptyStart(t *testing.T) {
	b := boardOf(map[Cell]Color{{0, 0}: Red})
	if got := MatchCluster(b, Cell{3, 3}); got != nil {
		t.Errorf("empty start should yield nil, got %v", got)
	}
}

func TestMatchClusterDoesNotBridgeGaps(t *testing.T) {
	// Two red groups separated by a blue bubble.
	b := boardOf(map[Cell]Color{
		{0, 0}: Red,
		{0, 1}: Red,
		{0, 2}: Blue,
		{0, 3}: Red,
		{0, 4}: Red,
	})

	left := MatchCluster(b, Cell{0, 0})
	if len(left) != 2 {
		t.Errorf("left cluster size = %d, want 2 (%v)", len(left), left)
	}

	groups := ColorClusters(b, Red)
	if len(groups) != 2 {
		t.Fatalf("red cluster groups = %d, want 2 (%v)", len(groups), groups)
	}
	if groups[0][0] != (Cell{0, 0}) || groups[1][0] != (Cell{0, 3}) {
		t.Errorf("groups out of order: %v", groups)
	}
}

func TestScoreCluster(t *testing.T) {
	cases := []struct {
		size  int
		color Color
		want  int
	}{
		{3, Red, 300},
		{4, Red, 600},
		{3, Green, 270},
		{5, Green, 675},
		{4, Blue, 480},
		{6, Yellow, 630},
	}
	for _, c := range cases {
		if got := ScoreCluster(c.size, c.color); got != c.want {
			t.Errorf("ScoreCluster(%d, %s) = %d, want %d", c.size, c.color, got, c.want)
		}
	}
}

func TestActiveColorsPaletteOrder(t *testing.T) {
	b := boardOf(map[Cell]Color{
		{0, 0}: Yellow,
		{0, 1}: Blue,
		{0, 2}: Red,
	})
	got := b.ActiveColors()
	want := []Color{Red, Blue, Yellow}
	if len(got) != len(want) {
		t.Fatalf("active colors = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("active[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}
