package spritelayer

// frameScheduler coalesces redraw requests and gates the interpolation
// virtual clock on visibility, per the frame scheduler & visibility
// component. There is no real per-frame timing accumulator in the
// teacher's codebase to ground this on (its fps.go is an FPS-display
// widget, not a clock gate), so the virtual-time bookkeeping below is
// original, built to the spec's pause/resume contract.
type frameScheduler struct {
	redrawRequested bool

	visible                      bool
	interpolationEnabled        bool
	virtualTimeMs                float64
	lastWallTimeMs                float64
	hasWallAnchor                 bool
}

func newFrameScheduler() *frameScheduler {
	return &frameScheduler{visible: true, interpolationEnabled: true}
}

// requestRedraw marks a redraw as pending; idempotent until consumeRedraw
// is called by the host's render() invocation.
func (s *frameScheduler) requestRedraw() {
	s.redrawRequested = true
}

// consumeRedraw reports and clears the pending redraw flag.
func (s *frameScheduler) consumeRedraw() bool {
	r := s.redrawRequested
	s.redrawRequested = false
	return r
}

// setInterpolationCalculation toggles whether the virtual clock advances
// at all, independent of visibility.
func (s *frameScheduler) setInterpolationCalculation(enabled bool) {
	s.interpolationEnabled = enabled
}

// setVisible updates the visibility signal. On a hidden->visible
// transition the wall-clock anchor is reset (so the next advance() doesn't
// charge the elapsed hidden time) and a redraw is requested. On a
// visible->hidden transition, every channel across every sprite/image is
// invalidated so the next visible frame snaps instead of animating.
func (s *frameScheduler) setVisible(visible bool, store *spriteStore) {
	if visible == s.visible {
		return
	}
	s.visible = visible
	if visible {
		s.hasWallAnchor = false
		s.requestRedraw()
		return
	}
	invalidateAllInterpolations(store)
}

// advance moves the virtual clock forward by the wall-clock delta since
// the last call, but only while visible and interpolation is enabled; time
// elapsed while paused is skipped entirely rather than applied in one
// jump on resume. Returns the current virtual timestamp in milliseconds.
func (s *frameScheduler) advance(nowWallMs float64) float64 {
	if !s.hasWallAnchor {
		s.lastWallTimeMs = nowWallMs
		s.hasWallAnchor = true
		return s.virtualTimeMs
	}
	delta := nowWallMs - s.lastWallTimeMs
	s.lastWallTimeMs = nowWallMs
	if delta < 0 {
		delta = 0
	}
	if s.visible && s.interpolationEnabled {
		s.virtualTimeMs += delta
	}
	return s.virtualTimeMs
}

// invalidateAllInterpolations marks every channel across every sprite and
// image as invalidated and clears in-flight interpolation state, per I6:
// current values are preserved, only the animating-toward-a-target state
// is dropped.
func invalidateAllInterpolations(store *spriteStore) {
	store.forEach(func(sp *SpriteState) {
		sp.Location.Invalidate()
		sp.AutoRotationInvalidated = true
		sp.forEachImage(func(img *ImageState) {
			img.FinalOpacity.Invalidate()
			img.FinalRotateDeg.Invalidate()
			img.OffsetMeters.Invalidate()
			img.OffsetDeg.Invalidate()
		})
	})
}
