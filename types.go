package spritelayer

import "math"

// Color is a straight-alpha RGBA color with components in [0,1].
type Color struct {
	R, G, B, A float64
}

// ColorWhite is fully opaque white.
var ColorWhite = Color{R: 1, G: 1, B: 1, A: 1}

// Vec2 is a 2D float64 vector, used for both screen points and meter offsets.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle, min-inclusive and max-exclusive.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Contains reports whether (x,y) lies within the rectangle.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.MinX && x < r.MaxX && y >= r.MinY && y < r.MaxY
}

// Intersects reports whether r and o overlap.
func (r Rect) Intersects(o Rect) bool {
	return r.MinX < o.MaxX && r.MaxX > o.MinX && r.MinY < o.MaxY && r.MaxY > o.MinY
}

// Range is an inclusive [Min,Max] clamp range.
type Range struct {
	Min, Max float64
}

// Clamp restricts v to the range.
func (r Range) Clamp(v float64) float64 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// EventType names a pointer event dispatched to listeners registered via
// Layer.On. These are the only four event kinds the dispatcher emits.
type EventType string

const (
	EventSpriteClick EventType = "spriteclick"
	EventSpriteHover EventType = "spritehover"
	EventSpriteMove  EventType = "spritemove"
	EventSpriteLeave EventType = "spriteleave"
)

// ImageMode selects whether an image is drawn as a screen-facing billboard
// or as a quad laid flat on the map surface.
type ImageMode int

const (
	ModeBillboard ImageMode = iota
	ModeSurface
)

// MinFilter enumerates texture minification filters a host graphics context
// may apply. Mipmap variants imply GenerateMipmaps.
type MinFilter int

const (
	MinFilterNearest MinFilter = iota
	MinFilterLinear
	MinFilterNearestMipmapNearest
	MinFilterLinearMipmapNearest
	MinFilterNearestMipmapLinear
	MinFilterLinearMipmapLinear
)

// MagFilter enumerates texture magnification filters.
type MagFilter int

const (
	MagFilterNearest MagFilter = iota
	MagFilterLinear
)

// IsMipmap reports whether f requires mipmap generation.
func (f MinFilter) IsMipmap() bool {
	switch f {
	case MinFilterNearestMipmapNearest, MinFilterLinearMipmapNearest,
		MinFilterNearestMipmapLinear, MinFilterLinearMipmapLinear:
		return true
	default:
		return false
	}
}

// clamp01 restricts v to [0,1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// normalizeDeg wraps a degree value into [0,360).
func normalizeDeg(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}
