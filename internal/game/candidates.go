package game

// Candidate is one advisory target: the most exposed member of a same-color
// cluster, annotated with what popping the cluster is worth.
type Candidate struct {
	Target      Cell  `json:"target"`
	Pos         Vec2  `json:"pos"`
	Color       Color `json:"color"`
	ClusterSize int   `json:"clusterSize"`
	PointsPer   int   `json:"pointsPerBubble"`
}

// segmentDistanceToPoint is the closest approach between segment a→b and
// point p.
func segmentDistanceToPoint(a, b, p Vec2) float64 {
	ab := b.Minus(a)
	lenSq := ab.MagnitudeSquared()
	if lenSq == 0 {
		return a.DistanceTo(p)
	}
	t := fix(p.Minus(a).Dot(ab) / lenSq)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return a.Plus(ab.Times(t)).DistanceTo(p)
}

// reachable reports whether a straight shot from the anchor can touch the
// target cell without grazing another bubble. Grazing uses the same
// clearance as flight collision, so a reachable target really is hittable.
func (b *Board) reachable(anchor Vec2, target Cell) bool {
	to := CellToPixel(target)
	limit := CollisionFactor * BubbleRadius
	for c := range b.cells {
		if c == target {
			continue
		}
		if segmentDistanceToPoint(anchor, to, CellToPixel(c)) < limit {
			return false
		}
	}
	return true
}

// CandidateTargets builds the cross-color target list sent with every
// advisory request: for each cluster of each active color, the lowest
// member a straight shot can reach. Clusters with no reachable member are
// skipped. Colors follow palette order and clusters follow board order, so
// the list is stable for a given board.
func CandidateTargets(b *Board) []Candidate {
	anchor := LaunchAnchor()
	var out []Candidate
	for _, color := range b.ActiveColors() {
		for _, cluster := range ColorClusters(b, color) {
			var best Cell
			bestY := -1.0
			found := false
			for _, c := range cluster {
				if !b.reachable(anchor, c) {
					continue
				}
				if p := CellToPixel(c); p.Y > bestY {
					best, bestY, found = c, p.Y, true
				}
			}
			if found {
				out = append(out, Candidate{
					Target:      best,
					Pos:         CellToPixel(best),
					Color:       color,
					ClusterSize: len(cluster),
					PointsPer:   color.BasePoints(),
				})
			}
		}
	}
	return out
}
