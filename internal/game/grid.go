package game

import "math"

// Cell addresses one slot in the staggered grid. Even rows hold GridCols
// slots, odd rows are shifted half a diameter right and hold one fewer.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// InBounds reports whether c names a real slot. Rows grow downward without
// limit; the ceiling is row zero.
func (c Cell) InBounds() bool {
	return c.Row >= 0 && c.Col >= 0 && c.Col < RowWidth(c.Row)
}

// CellToPixel returns the center of a slot in canvas coordinates.
func CellToPixel(c Cell) Vec2 {
	x := float64(c.Col)*BubbleDiameter + BubbleRadius
	if c.Row%2 != 0 {
		x += BubbleRadius
	}
	y := BubbleRadius + float64(c.Row)*BubbleRadius*RowHeightFactor
	return NewVec2(x, y)
}

// PixelToCell snaps a canvas point to the nearest slot. The result is always
// in bounds; points above the ceiling or past the side walls clamp inward.
func PixelToCell(p Vec2) Cell {
	row := int(math.Round((p.Y - BubbleRadius) / (BubbleRadius * RowHeightFactor)))
	if row < 0 {
		row = 0
	}
	x := p.X - BubbleRadius
	if row%2 != 0 {
		x -= BubbleRadius
	}
	col := int(math.Round(x / BubbleDiameter))
	if col < 0 {
		col = 0
	}
	if max := RowWidth(row) - 1; col > max {
		col = max
	}
	return Cell{Row: row, Col: col}
}

// Neighbors returns the in-bounds slots adjacent to c: two on the same row
// and up to two on each neighboring row, picked by row parity.
func Neighbors(c Cell) []Cell {
	var off [6]Cell
	if c.Row%2 != 0 {
		off = [6]Cell{
			{c.Row, c.Col - 1}, {c.Row, c.Col + 1},
			{c.Row - 1, c.Col}, {c.Row - 1, c.Col + 1},
			{c.Row + 1, c.Col}, {c.Row + 1, c.Col + 1},
		}
	} else {
		off = [6]Cell{
			{c.Row, c.Col - 1}, {c.Row, c.Col + 1},
			{c.Row - 1, c.Col - 1}, {c.Row - 1, c.Col},
			{c.Row + 1, c.Col - 1}, {c.Row + 1, c.Col},
		}
	}
	out := make([]Cell, 0, 6)
	for _, n := range off {
		if n.InBounds() {
			out = append(out, n)
		}
	}
	return out
}
