package game

import (
	"math"
	"testing"
)

func pinchFrame(x, y float64, closed bool) HandFrame {
	dist := 1.0
	if closed {
		dist = 0.01
	}
	return HandFrame{X: x, Y: y, PinchDistance: dist, Detected: true}
}

func TestAimCaptureNeedsProximity(t *testing.T) {
	ball := NewBall(Red)
	var aim AimController

	// Pinch closing far from the ball grabs nothing.
	res := aim.Update(ball, pinchFrame(100, 100, true), false)
	if res.Dragging || ball.Phase != PhaseRest {
		t.Errorf("far pinch captured the ball: %+v phase=%s", res, ball.Phase)
	}
}

func TestAimCaptureIsEdgeTriggered(t *testing.T) {
	ball := NewBall(Red)
	var aim AimController

	// Close the pinch away from the ball, then move onto it still closed.
	aim.Update(ball, pinchFrame(100, 100, true), false)
	anchor := LaunchAnchor()
	res := aim.Update(ball, pinchFrame(anchor.X, anchor.Y, true), false)
	if res.Dragging || ball.Phase != PhaseRest {
		t.Error("held pinch moved onto the ball should not capture")
	}
}

func TestAimCaptureOnBall(t *testing.T) {
	ball := NewBall(Red)
	var aim AimController
	anchor := LaunchAnchor()

	res := aim.Update(ball, pinchFrame(anchor.X, anchor.Y, true), false)
	if !res.Dragging || ball.Phase != PhaseDrag {
		t.Errorf("pinch on the ball should capture: %+v phase=%s", res, ball.Phase)
	}
}

func TestAimShortReleaseCancels(t *testing.T) {
	ball := NewBall(Red)
	var aim AimController
	anchor := LaunchAnchor()

	aim.Update(ball, pinchFrame(anchor.X, anchor.Y, true), false)
	aim.Update(ball, pinchFrame(anchor.X+5, anchor.Y+5, true), false)
	res := aim.Update(ball, pinchFrame(anchor.X+5, anchor.Y+5, false), false)

	if !res.Cancelled || res.Fired {
		t.Errorf("short release should cancel, got %+v", res)
	}
	if ball.Phase != PhaseRest {
		t.Errorf("phase = %s, want rest", ball.Phase)
	}
}

func TestAimFullPullFires(t *testing.T) {
	ball := NewBall(Red)
	var aim AimController
	anchor := LaunchAnchor()

	aim.Update(ball, pinchFrame(anchor.X, anchor.Y, true), false)
	aim.Update(ball, pinchFrame(anchor.X, anchor.Y+MaxDrag, true), false)
	res := aim.Update(ball, pinchFrame(anchor.X, anchor.Y+MaxDrag, false), false)

	if !res.Fired {
		t.Fatalf("full pull release should fire: %+v", res)
	}
	if !closeEnough(res.PowerRatio, 1) {
		t.Errorf("power ratio = %.4f, want 1", res.PowerRatio)
	}
	if !closeEnough(res.AngleRad, -math.Pi/2) {
		t.Errorf("angle = %.4f, want straight up (-pi/2)", res.AngleRad)
	}
	if ball.Phase != PhaseFlight {
		t.Errorf("phase = %s, want flight", ball.Phase)
	}
	if !closeEnough(ball.Velocity.X, 0) || !closeEnough(ball.Velocity.Y, -45) {
		t.Errorf("launch velocity = %v, want (0, -45)", ball.Velocity)
	}
}

func TestAimDragClampsToMaxDrag(t *testing.T) {
	ball := NewBall(Red)
	var aim AimController
	anchor := LaunchAnchor()

	aim.Update(ball, pinchFrame(anchor.X, anchor.Y, true), false)
	res := aim.Update(ball, pinchFrame(anchor.X, anchor.Y+400, true), false)

	if !closeEnough(res.DragDistance, MaxDrag) {
		t.Errorf("drag distance = %.4f, want %v", res.DragDistance, MaxDrag)
	}
	if !closeEnough(ball.Position.Y, anchor.Y+MaxDrag) {
		t.Errorf("ball y = %.4f, want %.4f", ball.Position.Y, anchor.Y+MaxDrag)
	}
}

func TestAimLockedSuppressesCapture(t *testing.T) {
	ball := NewBall(Red)
	var aim AimController
	anchor := LaunchAnchor()

	res := aim.Update(ball, pinchFrame(anchor.X, anchor.Y, true), true)
	if res.Dragging || ball.Phase != PhaseRest {
		t.Error("capture should be suppressed while locked")
	}
}

func TestAimLockReleasesHeldBall(t *testing.T) {
	ball := NewBall(Red)
	var aim AimController
	anchor := LaunchAnchor()

	aim.Update(ball, pinchFrame(anchor.X, anchor.Y, true), false)
	aim.Update(ball, pinchFrame(anchor.X, anchor.Y+100, true), false)

	// Lock lands mid-drag; even a dropout frame lets the ball go.
	res := aim.Update(ball, HandFrame{}, true)
	if !res.Cancelled || res.Fired {
		t.Errorf("lock should force a cancel, got %+v", res)
	}
	if ball.Phase != PhaseRest {
		t.Errorf("phase = %s, want rest", ball.Phase)
	}
}

func TestAimUndetectedFrameKeepsState(t *testing.T) {
	ball := NewBall(Red)
	var aim AimController
	anchor := LaunchAnchor()

	aim.Update(ball, pinchFrame(anchor.X, anchor.Y, true), false)
	held := ball.Position

	res := aim.Update(ball, HandFrame{}, false)
	if !res.Dragging {
		t.Error("dropout frame should keep the drag alive")
	}
	if ball.Phase != PhaseDrag || !ball.Position.IsEqualTo(held) {
		t.Errorf("dropout frame moved the ball: %v -> %v", held, ball.Position)
	}
}
