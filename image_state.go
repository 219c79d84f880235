package spritelayer

// originKey identifies an image within its owning sprite by its
// (subLayer, order) position. noOriginKey is the NONE sentinel: no image
// has a negative subLayer or order, so (-1,-1) never collides with a real
// position.
type originKey struct {
	subLayer, order int
}

var noOriginKey = originKey{subLayer: -1, order: -1}

// noRenderTargetIndex is the NONE sentinel for ImageState.OriginRenderTargetIndex.
const noRenderTargetIndex = -1

// BorderStyle draws an outline around an image's rendered quad, sized in
// meters so it scales consistently with surface-mode geometry.
type BorderStyle struct {
	WidthMeters float64
	Color       Color
}

// LeaderLineStyle draws a line from an image's rendered centre to the
// centre of its origin-reference entry.
type LeaderLineStyle struct {
	MaxWidthPixels float64
	Color          Color
	Opacity        float64
}

// ImageState is one sprite's image at a given (subLayer, order). It is
// created/destroyed exclusively through the mutation API (C6); the
// per-frame calculator (C8) only steps and commits the channel fields and
// writes LodOpacity and the hit-test fields.
type ImageState struct {
	SubLayer int
	Order    int

	ImageID     string
	ImageHandle uint32
	Mode        ImageMode

	AnchorX, AnchorY float64
	Scale            float64

	// Opacity is the caller-requested base value, before
	// opacityMultiplier * lodOpacity is applied. FinalOpacity.Current()
	// is the value actually drawn.
	Opacity      float64
	FinalOpacity *Channel[float64]
	LodOpacity   float64

	Border     *BorderStyle
	LeaderLine *LeaderLineStyle

	RotateDeg                    float64
	AutoRotation                 bool
	AutoRotationMinDistanceMeters float64
	FinalRotateDeg               *Channel[float64]

	OffsetMeters *Channel[float64]
	OffsetDeg    *Channel[float64]

	HasOrigin               bool
	Origin                  originKey
	UseResolvedAnchor       bool
	OriginRenderTargetIndex int

	InterpolationDirty bool

	HasHitTestCorners bool
	HitTestCorners    [4]Vec2
	HitTestAABB       Rect

	// lastProjectedCentre and hasProjectedCentre are not written or read
	// anywhere; Frame keeps each frame's resolved centres in its own
	// per-entry slice, which is what origin-referencing images adopt.
	lastProjectedCentre Vec2
	hasProjectedCentre  bool
}

// newImageState builds an ImageState from caller-supplied init fields,
// with channels seeded at their initial (non-animating) values.
func newImageState(subLayer, order int, init ImageInit) *ImageState {
	img := &ImageState{
		SubLayer:                      subLayer,
		Order:                         order,
		ImageID:                       init.ImageID,
		Mode:                          init.Mode,
		AnchorX:                       init.AnchorX,
		AnchorY:                       init.AnchorY,
		Scale:                         valueOr(init.Scale, 1),
		Opacity:                       valueOr(init.Opacity, 1),
		LodOpacity:                    1,
		Border:                        init.Border,
		LeaderLine:                    init.LeaderLine,
		RotateDeg:                     init.RotateDeg,
		AutoRotation:                  init.AutoRotation,
		AutoRotationMinDistanceMeters: init.AutoRotationMinDistanceMeters,
		OriginRenderTargetIndex:       noRenderTargetIndex,
		Origin:                        noOriginKey,
		UseResolvedAnchor:             init.UseResolvedAnchor,
	}
	img.FinalOpacity = NewScalarChannel(clamp01(img.Opacity * img.LodOpacity))
	img.FinalRotateDeg = NewAngleChannel(init.RotateDeg)
	img.OffsetMeters = NewScalarChannel(init.OffsetMeters)
	img.OffsetDeg = NewAngleChannel(init.OffsetDeg)
	if init.HasOrigin {
		img.HasOrigin = true
		img.Origin = originKey{subLayer: init.OriginSubLayer, order: init.OriginOrder}
	}
	return img
}

// reapplyOpacity recomputes the clamped render opacity from the base
// value and the current multiplier/LOD factors, per the opacity channel's
// reapply contract. It does not animate -- callers decide whether the
// change should be committed through FinalOpacity.Commit with a duration.
func (img *ImageState) reapplyOpacity(spriteMultiplier float64) float64 {
	return clamp01(img.Opacity * spriteMultiplier * img.LodOpacity)
}

// valueOr substitutes fallback for an unset (zero-value) field. Used for
// init fields where 0 is never a meaningful caller intent (scale, opacity
// default to fully visible/unscaled).
func valueOr(v, fallback float64) float64 {
	if v == 0 {
		return fallback
	}
	return v
}
