// Package advisor turns a settled board into a playable hint. The external
// AI service gets first say; the local heuristic covers every way that can
// go wrong, so a session that asked for advice always gets an answer.
package advisor

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/pinchpop/backend/internal/game"
)

// Coordinator implements game.Advisor around the HTTP client plus the
// heuristic fallback. A nil client degrades to heuristic-only play.
type Coordinator struct {
	client *Client
	rdb    *redis.Client
}

// NewCoordinator wires the advisory path. rdb is optional and only feeds
// the service health counters.
func NewCoordinator(client *Client, rdb *redis.Client) *Coordinator {
	return &Coordinator{client: client, rdb: rdb}
}

// Advise never fails. Transport errors, bad payloads, and timeouts all
// resolve to the heuristic pick so the session can unlock.
func (co *Coordinator) Advise(ctx context.Context, req game.AdviceRequest) game.Hint {
	fallback := ChooseHeuristic(req)
	if co == nil || co.client == nil {
		return fallback
	}

	img, err := EncodeBoardImage(req.Board)
	if err != nil {
		log.Printf("[ADVISOR] board render failed, using heuristic: %v", err)
		return fallback
	}

	advice, err := co.client.Advise(ctx, Query{
		Image:      img,
		Candidates: req.Candidates,
		Danger:     req.Danger,
		Score:      req.Score,
	})
	if err != nil {
		log.Printf("[ADVISOR] request failed, using heuristic: %v", err)
		co.trackHealth(false)
		return fallback
	}
	co.trackHealth(true)

	return mergeAdvice(advice, fallback)
}

// mergeAdvice keeps whatever the service answered and fills the gaps from
// the heuristic pick. Out-of-bounds targets and unknown colors count as
// gaps.
func mergeAdvice(advice *Advice, fallback game.Hint) game.Hint {
	hint := game.Hint{
		Message:   advice.Message,
		Rationale: advice.Rationale,
	}
	if hint.Message == "" {
		hint.Message = fallback.Message
	}
	if hint.Rationale == "" {
		hint.Rationale = fallback.Rationale
	}

	if advice.Target != nil && advice.Target.InBounds() {
		t := *advice.Target
		hint.Target = &t
	} else {
		hint.Target = fallback.Target
	}

	if c, ok := game.ParseColor(advice.Color); ok {
		hint.Color = c
	} else {
		hint.Color = fallback.Color
	}
	return hint
}

func (co *Coordinator) trackHealth(ok bool) {
	if co.rdb == nil {
		return
	}
	ctx := context.Background()
	co.rdb.Incr(ctx, "advisor:requests")
	if !ok {
		co.rdb.Incr(ctx, "advisor:failures")
	}
}
