package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/pinchpop/backend/internal/advisor"
	"github.com/pinchpop/backend/internal/game"
)

type runStats struct {
	runIndex int
	seed     int64

	shots        int
	score        int
	popped       int
	won          bool
	winShot      int
	flightFrames int

	poppedShots    int
	stuckShots     int
	lostShots      int
	noTargetStalls int

	bubblesLeft int
	sawDanger   bool
}

func main() {
	var runs int
	var maxShots int
	var seedBase int64
	var seedStep int64
	var verbose bool

	flag.IntVar(&runs, "runs", 5, "number of autoplay runs")
	flag.IntVar(&maxShots, "shots", 200, "shot budget per run")
	flag.Int64Var(&seedBase, "seed-base", 42, "board seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.BoolVar(&verbose, "v", false, "log every shot")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if maxShots <= 0 {
		fmt.Println("error: -shots must be > 0")
		return
	}

	fmt.Printf("=== Headless Autoplay Report ===\n")
	fmt.Printf("runs=%d shots=%d seed_base=%d seed_step=%d\n\n", runs, maxShots, seedBase, seedStep)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		stats := playRun(i+1, seed, maxShots, verbose)
		all = append(all, stats)
		printRun(stats)
	}

	printAggregate(all)
}

// playRun plays one full game with the local heuristic choosing every shot.
// Shots go through the real aim controller and flight physics, so the run
// exercises the same path a live session does.
func playRun(runIndex int, seed int64, maxShots int, verbose bool) runStats {
	stats := runStats{runIndex: runIndex, seed: seed}

	st := game.NewState(seed, time.Now())
	var aim game.AimController
	anchor := game.LaunchAnchor()

	for shot := 1; shot <= maxShots && st.Status == game.StatusPlaying; shot++ {
		req := game.AdviceRequest{
			Board:      st.Board.Clone(),
			Candidates: game.CandidateTargets(st.Board),
			Danger:     st.Board.InDanger(),
			Score:      st.Score,
		}
		hint := advisor.ChooseHeuristic(req)
		if hint.Target == nil {
			// Nothing reachable. The live game would wait for the player;
			// headless play just stops.
			stats.noTargetStalls++
			break
		}
		if hint.Color != "" {
			st.SelectColor(hint.Color)
		}

		// Full-power pull directly away from the target.
		target := game.CellToPixel(*hint.Target)
		dir := target.Minus(anchor).Normalize()
		drag := anchor.Minus(dir.Times(game.MaxDrag))

		aim.Update(st.Ball, game.HandFrame{X: st.Ball.Position.X, Y: st.Ball.Position.Y, PinchDistance: 0.01, Detected: true}, false)
		aim.Update(st.Ball, game.HandFrame{X: drag.X, Y: drag.Y, PinchDistance: 0.01, Detected: true}, false)
		res := aim.Update(st.Ball, game.HandFrame{X: drag.X, Y: drag.Y, PinchDistance: 1.0, Detected: true}, false)
		if !res.Fired {
			// Ball was not at rest on the anchor, or the pull fell short.
			// Either way this run cannot continue making progress.
			stats.noTargetStalls++
			break
		}
		stats.shots++

		outcome := flyShot(st, &stats)
		if st.Board.InDanger() {
			stats.sawDanger = true
		}
		if verbose {
			fmt.Printf("  shot=%d target=(%d,%d) color=%s outcome=%s score=%d\n",
				shot, hint.Target.Row, hint.Target.Col, hint.Color, outcome, st.Score)
		}
		if st.Status == game.StatusWon {
			stats.won = true
			stats.winShot = shot
		}
	}

	stats.score = st.Score
	stats.popped = st.BubblesPopped
	stats.bubblesLeft = st.Board.Count()
	return stats
}

// flyShot advances the ball until it lands, dissolves, or times out, and
// settles it into the grid. Returns a short outcome label.
func flyShot(st *game.State, stats *runStats) string {
	for st.Ball.Phase == game.PhaseFlight {
		stats.flightFrames++
		contact := st.Ball.StepFlight(st.Board)
		if contact.TimedOut {
			st.Ball.Reset(st.Selected)
			stats.lostShots++
			return "timeout"
		}
		if !contact.Hit {
			continue
		}
		res, ok := st.PlaceBall(contact)
		if !ok {
			stats.lostShots++
			return "dissolved"
		}
		if len(res.Matched) > 0 {
			stats.poppedShots++
			return "popped"
		}
		stats.stuckShots++
		return "stuck"
	}
	return "rest"
}

func printRun(rs runStats) {
	fmt.Printf("--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	result := "exhausted"
	if rs.won {
		result = fmt.Sprintf("won at shot %d", rs.winShot)
	} else if rs.noTargetStalls > 0 {
		result = "stalled"
	}
	fmt.Printf("result: %s\n", result)
	fmt.Printf("shots: total=%d popped=%d stuck=%d lost=%d\n",
		rs.shots, rs.poppedShots, rs.stuckShots, rs.lostShots)
	avgFlight := 0.0
	if rs.shots > 0 {
		avgFlight = float64(rs.flightFrames) / float64(rs.shots)
	}
	fmt.Printf("score=%d bubbles_popped=%d bubbles_left=%d avg_flight_frames=%.1f saw_danger=%v\n\n",
		rs.score, rs.popped, rs.bubblesLeft, avgFlight, rs.sawDanger)
}

func printAggregate(all []runStats) {
	wins := 0
	totalScore := 0
	totalShots := 0
	totalLost := 0
	winShots := 0
	for _, rs := range all {
		if rs.won {
			wins++
			winShots += rs.winShot
		}
		totalScore += rs.score
		totalShots += rs.shots
		totalLost += rs.lostShots
	}

	fmt.Printf("=== Aggregate (%d runs) ===\n", len(all))
	fmt.Printf("wins=%d/%d avg_score=%.1f avg_shots=%.1f lost_shots=%d\n",
		wins, len(all),
		float64(totalScore)/float64(len(all)),
		float64(totalShots)/float64(len(all)),
		totalLost)
	if wins > 0 {
		fmt.Printf("avg_shots_to_win=%.1f\n", float64(winShots)/float64(wins))
	}
}
