package game

import (
	"math/rand"
	"testing"
)

func TestGenerateBoardDeterministic(t *testing.T) {
	a := GenerateBoard(rand.New(rand.NewSource(42)))
	b := GenerateBoard(rand.New(rand.NewSource(42)))

	if a.Count() != 38 {
		t.Errorf("initial bubble count = %d, want 38", a.Count())
	}
	if a.MaxRow() != InitialRows-1 {
		t.Errorf("deepest row = %d, want %d", a.MaxRow(), InitialRows-1)
	}
	for _, bub := range a.Snapshot() {
		other, ok := b.At(bub.Cell)
		if !ok || other != bub.Color {
			t.Fatalf("same seed diverged at %v: %s vs %s", bub.Cell, bub.Color, other)
		}
	}

	c := GenerateBoard(rand.New(rand.NewSource(43)))
	same := true
	for _, bub := range a.Snapshot() {
		if color, _ := c.At(bub.Cell); color != bub.Color {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical boards")
	}
}

func TestNearestFreeCellSnapsBesideBubble(t *testing.T) {
	b := boardOf(map[Cell]Color{{0, 0}: Red})

	cell, ok := b.NearestFreeCell(NewVec2(170, 70))
	if !ok {
		t.Fatal("expected a snap slot next to the bubble")
	}
	if cell != (Cell{0, 1}) {
		t.Errorf("snapped to %v, want (0,1)", cell)
	}
}

func TestNearestFreeCellSearchesOutward(t *testing.T) {
	// Row zero is full, so contact against it must settle into row one.
	cells := make(map[Cell]Color)
	for col := 0; col < RowWidth(0); col++ {
		cells[Cell{0, col}] = Blue
	}
	b := boardOf(cells)

	cell, ok := b.NearestFreeCell(NewVec2(500, 62.5))
	if !ok {
		t.Fatal("expected a snap slot below the full row")
	}
	if cell != (Cell{1, 3}) {
		t.Errorf("snapped to %v, want (1,3)", cell)
	}
}

func TestNearestFreeCellRejectsUnsupported(t *testing.T) {
	// Mid-air contact on an empty board has nothing to hang from.
	b := NewBoard()
	if cell, ok := b.NearestFreeCell(NewVec2(500, 800)); ok {
		t.Errorf("unsupported contact should dissolve, snapped to %v", cell)
	}
}

func TestInDangerBand(t *testing.T) {
	b := boardOf(map[Cell]Color{{DangerRow - 1, 0}: Red})
	if b.InDanger() {
		t.Error("row above the danger band flagged as danger")
	}
	b.Set(Cell{DangerRow, 0}, Red)
	if !b.InDanger() {
		t.Error("danger row not flagged")
	}
}

func TestSnapshotRowMajorWithCenters(t *testing.T) {
	b := boardOf(map[Cell]Color{
		{1, 2}: Green,
		{0, 5}: Red,
		{0, 1}: Blue,
	})
	snap := b.Snapshot()
	want := []Cell{{0, 1}, {0, 5}, {1, 2}}
	if len(snap) != len(want) {
		t.Fatalf("snapshot length = %d, want %d", len(snap), len(want))
	}
	for i, bub := range snap {
		if bub.Cell != want[i] {
			t.Errorf("snapshot[%d] = %v, want %v", i, bub.Cell, want[i])
		}
		if !bub.Pos.IsEqualTo(CellToPixel(bub.Cell)) {
			t.Errorf("snapshot[%d] center = %v, want %v", i, bub.Pos, CellToPixel(bub.Cell))
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	b := boardOf(map[Cell]Color{{0, 0}: Red})
	c := b.Clone()
	c.Set(Cell{0, 1}, Blue)
	c.Remove(Cell{0, 0})

	if b.Count() != 1 || !b.Occupied(Cell{0, 0}) {
		t.Error("mutating the clone changed the original")
	}
}
