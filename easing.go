package spritelayer

import (
	"math"

	"github.com/tanema/gween/ease"
)

// EasingFunc maps a progress value in [0,1] to an eased progress value.
// Implementations need not be clamped to [0,1] on output (overshoot curves
// are allowed), but must accept any t in [0,1].
type EasingFunc func(t float32) float32

// namedEasing maps the curve names accepted by Channel commit options to a
// gween/ease function. linear is handled separately (gween/ease has no
// identity function).
var namedEasing = map[string]func(t, b, c, d float32) float32{
	"ease-in-quad":     ease.InQuad,
	"ease-out-quad":    ease.OutQuad,
	"ease-in-out-quad": ease.InOutQuad,
	"ease-in-cubic":    ease.InCubic,
	"ease-out-cubic":   ease.OutCubic,
	"ease-in-out-cubic": ease.InOutCubic,
	"ease-in-sine":     ease.InSine,
	"ease-out-sine":    ease.OutSine,
	"ease-in-out-sine": ease.InOutSine,
	"ease-in-back":     ease.InBack,
	"ease-out-back":    ease.OutBack,
	"ease-in-out-back": ease.InOutBack,
	"ease-in-bounce":   ease.InBounce,
	"ease-out-bounce":  ease.OutBounce,
}

// linearEasing is the identity easing function.
func linearEasing(t float32) float32 { return t }

// resolveEasing returns the EasingFunc for a named curve, a cubic-bezier
// descriptor, or linear as the fail-open fallback for anything unrecognised
// or out-of-range, per the projection primitives' numerical contract.
func resolveEasing(name string, bezier [4]float64) EasingFunc {
	if name == "cubic-bezier" {
		if fn, ok := newCubicBezierEasing(bezier[0], bezier[1], bezier[2], bezier[3]); ok {
			return fn
		}
		return linearEasing
	}
	if name == "" || name == "linear" {
		return linearEasing
	}
	if fn, ok := namedEasing[name]; ok {
		return func(t float32) float32 { return fn(t, 0, 1, 1) }
	}
	return linearEasing
}

// newCubicBezierEasing builds a CSS-style cubic-bezier(p1x,p1y,p2x,p2y)
// easing function. gween/ease has no generic bezier constructor, so this
// solves for t given x via Newton-Raphson with a bisection fallback, then
// evaluates y(t) -- the standard approach for CSS timing functions.
func newCubicBezierEasing(p1x, p1y, p2x, p2y float64) (EasingFunc, bool) {
	if math.IsNaN(p1x) || math.IsNaN(p1y) || math.IsNaN(p2x) || math.IsNaN(p2y) {
		return nil, false
	}
	if p1x < 0 || p1x > 1 || p2x < 0 || p2x > 1 {
		return nil, false
	}

	bezierComponent := func(t, a1, a2 float64) float64 {
		// Cubic bezier with endpoints (0,0) and (1,1).
		c := 3 * a1
		b := 3*(a2-a1) - c
		a := 1 - c - b
		return ((a*t+b)*t + c) * t
	}
	bezierDerivative := func(t, a1, a2 float64) float64 {
		c := 3 * a1
		b := 3*(a2-a1) - c
		a := 1 - c - b
		return (3*a*t+2*b)*t + c
	}

	solveT := func(x float64) float64 {
		t := x
		for i := 0; i < 8; i++ {
			xAtT := bezierComponent(t, p1x, p2x) - x
			d := bezierDerivative(t, p1x, p2x)
			if math.Abs(d) < 1e-6 {
				break
			}
			t -= xAtT / d
		}
		if t < 0 || t > 1 || math.IsNaN(t) {
			lo, hi := 0.0, 1.0
			for i := 0; i < 20; i++ {
				mid := (lo + hi) / 2
				if bezierComponent(mid, p1x, p2x) < x {
					lo = mid
				} else {
					hi = mid
				}
			}
			t = (lo + hi) / 2
		}
		return t
	}

	return func(t float32) float32 {
		x := float64(t)
		if x <= 0 {
			return 0
		}
		if x >= 1 {
			return 1
		}
		solved := solveT(x)
		return float32(bezierComponent(solved, p1y, p2y))
	}, true
}
