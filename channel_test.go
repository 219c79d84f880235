package spritelayer

import "testing"

func TestScalarChannelSnapsOnZeroDuration(t *testing.T) {
	c := NewScalarChannel(1)
	c.Commit(5, nil)
	if got := c.Current(); got != 5 {
		t.Fatalf("Current() = %v, want 5", got)
	}
	if c.Active() {
		t.Fatal("expected no in-flight interpolation after a zero-duration commit")
	}
}

func TestScalarChannelInterpolatesOverDuration(t *testing.T) {
	c := NewScalarChannel(0)
	c.Commit(10, &CommitOptions{DurationMs: 100, EasingName: "linear"})
	if !c.Active() {
		t.Fatal("expected an in-flight interpolation")
	}

	done, active := c.Step(0)
	if done || !active {
		t.Fatalf("Step(0): done=%v active=%v, want false/true", done, active)
	}
	if got := c.Current(); got != 0 {
		t.Fatalf("Current() at t=0 = %v, want 0", got)
	}

	done, active = c.Step(50)
	if done || !active {
		t.Fatalf("Step(50): done=%v active=%v, want false/true", done, active)
	}
	if got := c.Current(); got != 5 {
		t.Fatalf("Current() at t=50 = %v, want 5", got)
	}

	done, active = c.Step(100)
	if !done || active {
		t.Fatalf("Step(100): done=%v active=%v, want true/false", done, active)
	}
	if got := c.Current(); got != 10 {
		t.Fatalf("Current() at t=100 = %v, want 10", got)
	}
}

func TestScalarChannelStepPastDurationClampsToTarget(t *testing.T) {
	c := NewScalarChannel(0)
	c.Commit(10, &CommitOptions{DurationMs: 100, EasingName: "linear"})
	c.Step(0)
	c.Step(10000)
	if got := c.Current(); got != 10 {
		t.Fatalf("Current() after overshoot = %v, want 10", got)
	}
	if c.Active() {
		t.Fatal("expected interpolation to be finished after overshoot")
	}
}

func TestAngleChannelTakesShortestArc(t *testing.T) {
	c := NewAngleChannel(350)
	c.Commit(10, &CommitOptions{DurationMs: 100, EasingName: "linear"})
	c.Step(0)
	c.Step(50)
	got := c.Current()
	// 350 -> 10 the short way crosses 360/0, so the midpoint is 0, not 180.
	if got > 1 && got < 359 {
		t.Fatalf("Current() at midpoint = %v, want near 0 (wrap-around path)", got)
	}
}

func TestAngleChannelNormalizesInitial(t *testing.T) {
	c := NewAngleChannel(-30)
	if got := c.Current(); got != 330 {
		t.Fatalf("Current() = %v, want 330 (normalized -30)", got)
	}
}

func TestChannelInvalidateForcesSnapOnNextCommit(t *testing.T) {
	c := NewScalarChannel(0)
	c.Commit(10, &CommitOptions{DurationMs: 100, EasingName: "linear"})
	if !c.Active() {
		t.Fatal("expected an in-flight interpolation before invalidate")
	}

	c.Invalidate()
	if c.Active() {
		t.Fatal("expected Invalidate to clear the in-flight interpolation")
	}

	c.Commit(20, &CommitOptions{DurationMs: 100, EasingName: "linear"})
	if got := c.Current(); got != 20 {
		t.Fatalf("Current() after invalidated commit = %v, want an immediate snap to 20", got)
	}
	if c.Active() {
		t.Fatal("expected the post-invalidate commit to snap rather than animate")
	}
}

func TestChannelFeedforwardExtrapolatesPastCommand(t *testing.T) {
	c := NewScalarChannel(0)
	c.Commit(10, &CommitOptions{DurationMs: 100, EasingName: "linear"})
	c.Step(100)

	c.Commit(20, &CommitOptions{DurationMs: 100, Mode: ModeFeedforward, EasingName: "linear"})
	_, active := c.Step(100)
	if !active {
		t.Fatal("expected a fresh in-flight interpolation after the feedforward commit")
	}
	c.Step(200)
	if got := c.Current(); got != 30 {
		t.Fatalf("Current() after feedforward completion = %v, want 30 (20 + (20-10))", got)
	}
}

func TestChannelNoopCommitStillUpdatesLastCommandValue(t *testing.T) {
	c := NewScalarChannel(5)
	c.Commit(5, &CommitOptions{DurationMs: 100, EasingName: "linear"})
	if c.Active() {
		t.Fatal("expected no interpolation for a commit equal to the current value")
	}
	if got := c.LastCommandValue(); got != 5 {
		t.Fatalf("LastCommandValue() = %v, want 5", got)
	}
}

func TestChannelStepOnIdleChannelReportsDone(t *testing.T) {
	c := NewScalarChannel(3)
	done, active := c.Step(123)
	if !done || active {
		t.Fatalf("Step on an idle channel: done=%v active=%v, want true/false", done, active)
	}
}
