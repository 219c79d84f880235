package spritelayer

import (
	"encoding/json"
	"fmt"
)

// testStep is one scripted action in a FrameTestRunner script: "move" and
// "click" dispatch a pointer event at (x,y); "wait"/"frame" advance the
// virtual clock by Frames frame-steps of DeltaMs each (defaults: 1 frame,
// 16ms).
type testStep struct {
	Action   string  `json:"action"`
	SpriteID string  `json:"spriteId,omitempty"`
	X        float64 `json:"x,omitempty"`
	Y        float64 `json:"y,omitempty"`
	Frames   int     `json:"frames,omitempty"`
	DeltaMs  float64 `json:"deltaMs,omitempty"`
}

type testScript struct {
	Steps []testStep `json:"steps"`
}

// FrameTestRunner sequences scripted pointer events and frame advances
// against a Layer, without a real host render loop. It is the frame-driven
// analogue of the teacher's screenshot/injectClick/injectDrag runner: the
// same cursor/done bookkeeping, driving Layer.Frame instead of Scene.Update.
type FrameTestRunner struct {
	layer    *Layer
	mapHost  HostMap
	projHost ProjectionHost
	nowMs    float64

	steps  []testStep
	cursor int
	done   bool

	lastHit hitTestEntry
	hasHit  bool
}

// NewFrameTestRunner builds a runner driving layer's frames through mapHost
// and projHost. Use NewFakeHostMap/NewFakeProjectionHost for deterministic
// fixtures.
func NewFrameTestRunner(layer *Layer, mapHost HostMap, projHost ProjectionHost) *FrameTestRunner {
	return &FrameTestRunner{layer: layer, mapHost: mapHost, projHost: projHost}
}

// LoadScript parses a JSON test script and queues it for Step/Run.
func (r *FrameTestRunner) LoadScript(jsonData []byte) error {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return fmt.Errorf("spritelayer: parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return fmt.Errorf("spritelayer: parse test script: no steps")
	}
	r.steps = script.Steps
	r.cursor = 0
	r.done = false
	return nil
}

// Done reports whether every scripted step has executed.
func (r *FrameTestRunner) Done() bool { return r.done }

// AdvanceFrame steps the virtual clock by deltaMs, drains queued atlas/glyph
// work, and runs one Layer.Frame call.
func (r *FrameTestRunner) AdvanceFrame(deltaMs float64) (FrameBatch, error) {
	r.nowMs += deltaMs
	r.layer.DrainQueues()
	return r.layer.Frame(r.mapHost, r.projHost, r.nowMs)
}

// Move dispatches a pointer-move event at (x,y) and records the resolved
// hit, if any, for a later LastHit assertion.
func (r *FrameTestRunner) Move(x, y float64) {
	r.layer.DispatchPointerEvent(PointerEvent{ClientX: x, ClientY: y, Type: "move"})
	r.lastHit, r.hasHit = r.layer.ResolveHitTest(Vec2{X: x, Y: y})
}

// Click dispatches a pointer-down event at (x,y).
func (r *FrameTestRunner) Click(x, y float64) {
	r.layer.DispatchPointerEvent(PointerEvent{ClientX: x, ClientY: y, Type: "down"})
}

// LastHit returns the most recently resolved hit-test entry from Move.
func (r *FrameTestRunner) LastHit() (hitTestEntry, bool) { return r.lastHit, r.hasHit }

// Step executes the next queued script step, advancing the cursor. Returns
// an error for an unrecognized action or when a frame advance fails.
func (r *FrameTestRunner) Step() error {
	if r.done {
		return nil
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return nil
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "move":
		r.Move(st.X, st.Y)
	case "click":
		r.Click(st.X, st.Y)
	case "wait", "frame":
		frames := st.Frames
		if frames <= 0 {
			frames = 1
		}
		delta := st.DeltaMs
		if delta <= 0 {
			delta = 16
		}
		for i := 0; i < frames; i++ {
			if _, err := r.AdvanceFrame(delta); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("spritelayer: unknown test step action %q", st.Action)
	}

	if r.cursor >= len(r.steps) {
		r.done = true
	}
	return nil
}

// Run executes every remaining queued step, stopping at the first error.
func (r *FrameTestRunner) Run() error {
	for !r.done {
		if err := r.Step(); err != nil {
			return err
		}
	}
	return nil
}
