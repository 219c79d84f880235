package spritelayer

// HostMap is the external map engine collaborator: projection, zoom,
// canvas, repaint signalling, camera control, and visibility.
type HostMap interface {
	Project(loc Location) (Vec2, bool)
	Unproject(p Vec2) (Location, bool)
	GetZoom() float64
	GetCenter() Location
	TriggerRepaint()
	SetCenter(loc Location)
	SetBearing(deg float64)
	Visible() bool
}

// ProjectionHost produces a per-frame clip context and the mercator/
// perspective inputs C8 needs. Two implementations are expected in a real
// deployment -- a pure-math native one and a drop-in compiled engine; this
// module depends only on the interface.
type ProjectionHost interface {
	ClipContext() (ClipContext, bool)
	FromLngLat(loc Location) MercatorPoint
	CalculatePerspectiveRatio(loc Location, m MercatorPoint) float64
}

// GraphicsContext is the abstracted GPU-facing collaborator: vertex
// upload/draw programs, a texture store, and filter-option resolution.
// This module never implements it -- only declares the shape its batches
// are produced for, mirroring how the teacher leaves shader compilation
// and buffer upload to ebiten.
type GraphicsContext interface {
	BeginFrame()
	UploadVertexBatch(batch FrameBatch)
	Draw()
	BorderOutline(vertices []LineVertex)
	LeaderLine(vertices []LineVertex)
	EnsureTextures(manager *AtlasManager, filtering TextureFiltering)
}

// CalculationHost is the pluggable per-frame numeric engine. No type in
// this package implements it (Layer.Frame performs the calculation
// directly); the interface exists so a future drop-in compiled engine has
// somewhere to attach without callers caring which one is active, per the
// "do not leak implementation choice into callers" design note. No
// compiled implementation ships here.
type CalculationHost interface {
	Calculate(entries []renderTargetEntry, nowVirtualMs float64) (hasActiveInterpolation bool)
}

// PointerSource emits raw pointer events from the host canvas.
type PointerSource interface {
	Events() []PointerEvent
}
