package game

import (
	"math"
	"math/rand"
	"sort"
)

// Bubble is one settled bubble, addressed by slot and carrying its canvas
// center for the renderer.
type Bubble struct {
	Cell
	Color Color `json:"color"`
	Pos   Vec2  `json:"pos"`
}

// Board is the sparse set of settled bubbles. Only the owning session
// goroutine mutates it; everyone else works from Snapshot or Clone.
type Board struct {
	cells map[Cell]Color
}

func NewBoard() *Board {
	return &Board{cells: make(map[Cell]Color)}
}

// GenerateBoard fills the top InitialRows rows with colors drawn from rng.
// The same seed always yields the same board.
func GenerateBoard(rng *rand.Rand) *Board {
	b := NewBoard()
	for row := 0; row < InitialRows; row++ {
		for col := 0; col < RowWidth(row); col++ {
			b.cells[Cell{Row: row, Col: col}] = RandomColor(rng)
		}
	}
	return b
}

func (b *Board) At(c Cell) (Color, bool) {
	color, ok := b.cells[c]
	return color, ok
}

func (b *Board) Occupied(c Cell) bool {
	_, ok := b.cells[c]
	return ok
}

func (b *Board) Set(c Cell, color Color) {
	b.cells[c] = color
}

func (b *Board) Remove(c Cell) {
	delete(b.cells, c)
}

func (b *Board) Count() int {
	return len(b.cells)
}

// MaxRow is the deepest occupied row, or -1 on an empty board.
func (b *Board) MaxRow() int {
	max := -1
	for c := range b.cells {
		if c.Row > max {
			max = c.Row
		}
	}
	return max
}

// InDanger reports whether the stack has grown into the danger band.
func (b *Board) InDanger() bool {
	return b.MaxRow() >= DangerRow
}

func (b *Board) Clone() *Board {
	out := NewBoard()
	for c, color := range b.cells {
		out.cells[c] = color
	}
	return out
}

// Snapshot lists every bubble in row-major order, ready for the wire.
func (b *Board) Snapshot() []Bubble {
	out := make([]Bubble, 0, len(b.cells))
	for c, color := range b.cells {
		out = append(out, Bubble{Cell: c, Color: color, Pos: CellToPixel(c)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}

// supported reports whether a bubble placed at c would have something to
// hang from: the ceiling, or any occupied neighbor.
func (b *Board) supported(c Cell) bool {
	if c.Row == 0 {
		return true
	}
	for _, n := range Neighbors(c) {
		if b.Occupied(n) {
			return true
		}
	}
	return false
}

// snapSearchDepth bounds the ring search. Contact always happens against a
// bubble or the ceiling, so a free supported slot sits within a ring or two;
// the bound only guards against a pathologically packed board.
const snapSearchDepth = 6

// NearestFreeCell finds the free, supported slot closest to the contact
// point, searching outward ring by ring from the snapped cell. The frontier
// is expanded in a fixed order, so equal-distance ties resolve the same way
// every time.
func (b *Board) NearestFreeCell(contact Vec2) (Cell, bool) {
	start := PixelToCell(contact)
	visited := map[Cell]bool{start: true}
	frontier := []Cell{start}
	for depth := 0; depth <= snapSearchDepth && len(frontier) > 0; depth++ {
		var best Cell
		bestDist := math.MaxFloat64
		found := false
		for _, c := range frontier {
			if b.Occupied(c) || !b.supported(c) {
				continue
			}
			if d := CellToPixel(c).DistanceSquaredTo(contact); d < bestDist {
				best, bestDist, found = c, d, true
			}
		}
		if found {
			return best, true
		}
		var next []Cell
		for _, c := range frontier {
			for _, n := range Neighbors(c) {
				if !visited[n] {
					visited[n] = true
					next = append(next, n)
				}
			}
		}
		frontier = next
	}
	return Cell{}, false
}
