package spritelayer

import "math"

// InterpMode selects how a committed target is interpreted: feedback
// animates from the current value toward the command; feedforward
// extrapolates past the command, treating it as the midpoint reached at
// half the duration.
type InterpMode int

const (
	ModeFeedback InterpMode = iota
	ModeFeedforward
)

// CommitOptions configures how a Channel.Commit call is animated. A zero
// value (or DurationMs <= 0) snaps immediately.
type CommitOptions struct {
	DurationMs float64
	Mode       InterpMode
	EasingName string
	Bezier     [4]float64
}

// sanitizeDuration falls back to an immediate snap (duration=0) for any
// non-finite or negative duration, per the malformed-options failure
// semantics.
func sanitizeDuration(ms float64) float64 {
	if math.IsNaN(ms) || math.IsInf(ms, 0) || ms < 0 {
		return 0
	}
	return ms
}

// interpState is the in-flight interpolation for a Channel.
type interpState[T any] struct {
	from, to   T
	started    bool
	startTs    float64
	durationMs float64
	easing     EasingFunc
}

// Channel holds a caller-committed target value and, optionally, an
// in-flight interpolation toward it. The zero value is not usable; build
// one with newChannel and a type-specific lerp/equal/extrapolate triple.
//
// Invariant: when interp is nil, current equals the last committed value
// (or the value last reached by Step); when interp is non-nil, current is
// the value evaluated at the last Step call.
type Channel[T any] struct {
	current          T
	lastCommandValue T
	hasCommand       bool
	invalidated      bool
	interp           *interpState[T]

	lerp        func(from, to T, eased float32) T
	equal       func(a, b T) bool
	extrapolate func(prev, next T) T
}

// newChannel constructs a Channel seeded at initial with the given
// type-specific numeric behavior. extrapolate may be nil if the channel
// never uses feedforward mode.
func newChannel[T any](initial T, lerp func(from, to T, eased float32) T, equal func(a, b T) bool, extrapolate func(prev, next T) T) *Channel[T] {
	return &Channel[T]{
		current:          initial,
		lastCommandValue: initial,
		lerp:             lerp,
		equal:            equal,
		extrapolate:      extrapolate,
	}
}

// Current returns the channel's value as of the last Step (or the last
// committed value if no interpolation is in flight).
func (c *Channel[T]) Current() T { return c.current }

// LastCommandValue returns the most recent caller-requested value,
// regardless of whether it has finished animating.
func (c *Channel[T]) LastCommandValue() T { return c.lastCommandValue }

// Invalidated reports whether the channel is pending a forced snap on its
// next Commit (set via Invalidate, typically on hide or re-enable).
func (c *Channel[T]) Invalidated() bool { return c.invalidated }

// Active reports whether an interpolation is currently in flight.
func (c *Channel[T]) Active() bool { return c.interp != nil }

// Commit records nextValue as the channel's last-requested value and, if
// options request a non-zero duration and the channel is not invalidated
// and nextValue differs from current, starts a new interpolation. A no-op
// command (nextValue == current, with no pending interpolation) still
// updates lastCommandValue but performs no further work.
func (c *Channel[T]) Commit(nextValue T, opts *CommitOptions) {
	prevCommand := c.lastCommandValue
	hadCommand := c.hasCommand
	c.lastCommandValue = nextValue
	c.hasCommand = true

	var durationMs float64
	mode := ModeFeedback
	easingName := ""
	var bezier [4]float64
	if opts != nil {
		durationMs = sanitizeDuration(opts.DurationMs)
		mode = opts.Mode
		easingName = opts.EasingName
		bezier = opts.Bezier
	}

	if durationMs > 0 && !c.invalidated && !c.equal(c.current, nextValue) {
		target := nextValue
		if mode == ModeFeedforward && hadCommand && c.extrapolate != nil {
			target = c.extrapolate(prevCommand, nextValue)
		}
		c.interp = &interpState[T]{
			from:       c.current,
			to:         target,
			durationMs: durationMs,
			easing:     resolveEasing(easingName, bezier),
		}
		return
	}

	c.current = nextValue
	c.interp = nil
	c.invalidated = false
}

// Step advances the in-flight interpolation to nowVirtual (a virtual
// timestamp in milliseconds, paused while the layer is hidden). done is
// true exactly on the tick that completes the interpolation (or when there
// was nothing to do); active is true while an interpolation remains
// in-flight after this call.
func (c *Channel[T]) Step(nowVirtual float64) (done, active bool) {
	st := c.interp
	if st == nil {
		return true, false
	}
	if !st.started {
		st.startTs = nowVirtual
		st.started = true
	}

	p := 1.0
	if st.durationMs > 0 {
		p = (nowVirtual - st.startTs) / st.durationMs
	}
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}

	eased := st.easing(float32(p))
	c.current = c.lerp(st.from, st.to, eased)

	if p >= 1 {
		c.current = st.to
		c.interp = nil
		return true, false
	}
	return false, true
}

// Clear erases any in-flight interpolation without touching current or
// lastCommandValue.
func (c *Channel[T]) Clear() { c.interp = nil }

// Invalidate marks the channel so the next Commit snaps immediately
// instead of animating, and clears any in-flight interpolation. Used when
// the layer is hidden or a sprite/image is re-enabled.
func (c *Channel[T]) Invalidate() {
	c.invalidated = true
	c.interp = nil
}

// --- type-specific constructors ---

func lerpFloat64(from, to float64, eased float32) float64 {
	return from + (to-from)*float64(eased)
}

func equalFloat64(a, b float64) bool { return a == b }

func extrapolateFloat64(prev, next float64) float64 { return next + (next - prev) }

// NewScalarChannel builds a Channel for a plain float64 value (opacity,
// offset-meters).
func NewScalarChannel(initial float64) *Channel[float64] {
	return newChannel(initial, lerpFloat64, equalFloat64, extrapolateFloat64)
}

// shortestArcDelta returns the signed difference to add to from to reach
// to by the shortest path around the circle, in [-180,180).
func shortestArcDelta(from, to float64) float64 {
	delta := normalizeDeg(to-from+180) - 180
	return delta
}

func lerpAngle(from, to float64, eased float32) float64 {
	delta := shortestArcDelta(from, to)
	return normalizeDeg(from + delta*float64(eased))
}

func equalAngle(a, b float64) bool {
	return math.Abs(shortestArcDelta(a, b)) < 1e-9
}

func extrapolateAngle(prev, next float64) float64 {
	return normalizeDeg(next + shortestArcDelta(prev, next))
}

// NewAngleChannel builds a Channel for a degree value (rotation, bearing,
// offset-deg) that always interpolates along the shortest signed arc.
func NewAngleChannel(initial float64) *Channel[float64] {
	return newChannel(normalizeDeg(initial), lerpAngle, equalAngle, extrapolateAngle)
}

func lerpLocation(from, to Location, eased float32) Location {
	t := float64(eased)
	return Location{
		Lng: from.Lng + (to.Lng-from.Lng)*t,
		Lat: from.Lat + (to.Lat-from.Lat)*t,
		Alt: from.Alt + (to.Alt-from.Alt)*t,
	}
}

func equalLocation(a, b Location) bool {
	return a.Lng == b.Lng && a.Lat == b.Lat && a.Alt == b.Alt
}

func extrapolateLocation(prev, next Location) Location {
	return Location{
		Lng: next.Lng + (next.Lng - prev.Lng),
		Lat: next.Lat + (next.Lat - prev.Lat),
		Alt: next.Alt + (next.Alt - prev.Alt),
	}
}

// NewLocationChannel builds a Channel for the compound (lng,lat,alt)
// location value.
func NewLocationChannel(initial Location) *Channel[Location] {
	return newChannel(initial, lerpLocation, equalLocation, extrapolateLocation)
}
