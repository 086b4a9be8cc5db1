package advisor

import (
	"fmt"

	"github.com/pinchpop/backend/internal/game"
)

// ChooseHeuristic picks the highest-value candidate locally: cluster size
// times per-bubble points, ties going to the cluster lowest on the board
// since those are the easiest to actually hit.
func ChooseHeuristic(req game.AdviceRequest) game.Hint {
	best := -1
	bestValue := -1
	for i, c := range req.Candidates {
		value := c.ClusterSize * c.PointsPer
		if value < bestValue {
			continue
		}
		if value == bestValue && best >= 0 {
			prev := req.Candidates[best]
			if c.Target.Row < prev.Target.Row {
				continue
			}
			if c.Target.Row == prev.Target.Row && c.Target.Col >= prev.Target.Col {
				continue
			}
		}
		best = i
		bestValue = value
	}

	if best < 0 {
		msg := "No open cluster to aim at. Land a bubble anywhere to start one."
		if req.Danger {
			msg = "No open cluster and the stack is near the line. Place carefully."
		}
		return game.Hint{Message: msg, Heuristic: true}
	}

	c := req.Candidates[best]
	target := c.Target
	msg := fmt.Sprintf("Best local read: the %s cluster of %d, row %d.", c.Color, c.ClusterSize, target.Row)
	if req.Danger {
		msg = fmt.Sprintf("Stack is near the line. Clear the %s cluster of %d at row %d.", c.Color, c.ClusterSize, target.Row)
	}
	return game.Hint{
		Target:    &target,
		Color:     c.Color,
		Message:   msg,
		Rationale: fmt.Sprintf("%d bubbles at %d points each is the top value on the board.", c.ClusterSize, c.PointsPer),
		Heuristic: true,
	}
}
