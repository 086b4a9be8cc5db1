package game

import (
	"math"
	"sort"
)

// MatchCluster flood-fills from start across adjacent bubbles of the same
// color. Returns nil when start is empty. Output is sorted row-major so
// callers and tests see a stable order.
func MatchCluster(b *Board, start Cell) []Cell {
	color, ok := b.At(start)
	if !ok {
		return nil
	}
	visited := map[Cell]bool{start: true}
	queue := []Cell{start}
	out := []Cell{start}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		for _, n := range Neighbors(c) {
			if visited[n] {
				continue
			}
			if nc, occ := b.At(n); occ && nc == color {
				visited[n] = true
				queue = append(queue, n)
				out = append(out, n)
			}
		}
	}
	sortCells(out)
	return out
}

// ColorClusters partitions all bubbles of one color into connected groups,
// each group sorted row-major, groups ordered by their first member.
func ColorClusters(b *Board, color Color) [][]Cell {
	var seeds []Cell
	for c, cc := range b.cells {
		if cc == color {
			seeds = append(seeds, c)
		}
	}
	sortCells(seeds)
	visited := make(map[Cell]bool, len(seeds))
	var out [][]Cell
	for _, s := range seeds {
		if visited[s] {
			continue
		}
		cluster := MatchCluster(b, s)
		for _, c := range cluster {
			visited[c] = true
		}
		out = append(out, cluster)
	}
	return out
}

// ActiveColors lists the colors still on the board, in palette order.
func (b *Board) ActiveColors() []Color {
	present := make(map[Color]bool, len(Palette))
	for _, color := range b.cells {
		present[color] = true
	}
	out := make([]Color, 0, len(present))
	for _, color := range Palette {
		if present[color] {
			out = append(out, color)
		}
	}
	return out
}

// ScoreCluster is the points awarded for popping size bubbles of one color:
// size times the color's base value, boosted by half again for clusters
// larger than the bonus threshold.
func ScoreCluster(size int, color Color) int {
	mult := 1.0
	if size > BonusThreshold {
		mult = BonusMultiplier
	}
	return int(math.Floor(float64(size*color.BasePoints()) * mult))
}

func sortCells(cells []Cell) {
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Row != cells[j].Row {
			return cells[i].Row < cells[j].Row
		}
		return cells[i].Col < cells[j].Col
	})
}
