package spritelayer

// SpriteInit are the fields accepted by AddSprite/AddSprites.
type SpriteInit struct {
	Enabled                  bool
	Tag                      string
	VisibilityDistanceMeters *float64
	OpacityMultiplier        float64
	Location                 Location
	Images                   []SpriteImageInit
}

// SpriteImageInit pairs a (subLayer, order) position with its ImageInit,
// for use in AddSprite's initial image set.
type SpriteImageInit struct {
	SubLayer int
	Order    int
	Init     ImageInit
}

// ImageInit are the fields accepted by AddSpriteImage.
type ImageInit struct {
	ImageID string
	Mode    ImageMode

	AnchorX, AnchorY float64
	Scale            float64
	Opacity          float64

	Border     *BorderStyle
	LeaderLine *LeaderLineStyle

	RotateDeg                     float64
	AutoRotation                  bool
	AutoRotationMinDistanceMeters float64

	OffsetMeters float64
	OffsetDeg    float64

	HasOrigin         bool
	OriginSubLayer    int
	OriginOrder       int
	UseResolvedAnchor bool
}

// SpritePatch are the fields UpdateSprite may change; a nil/zero field
// leaves the corresponding state untouched except where noted.
type SpritePatch struct {
	Enabled                  *bool
	Tag                      *string
	VisibilityDistanceMeters *float64
	OpacityMultiplier        *float64
	Location                 *Location
	LocationDurationMs       float64
	LocationMode             InterpMode
	LocationEasing           string
}

// SpriteState is one sprite's full in-memory state: identity, animated
// location, auto-rotation bookkeeping, and its nested image map. It is
// created/destroyed exclusively through the mutation API (C6); the
// per-frame calculator (C8) only steps the location channel and updates
// the auto-rotation fields.
type SpriteState struct {
	SpriteID string
	Handle   uint32
	Enabled  bool
	Tag      string

	VisibilityDistanceMeters *float64
	OpacityMultiplier        float64

	Location *Channel[Location]

	CurrentAutoRotateDeg        float64
	LastAutoRotationLocation    Location
	HasLastAutoRotationLocation bool
	AutoRotationInvalidated     bool

	InterpolationDirty bool

	// Images is keyed by subLayer then order, matching the spec's nested
	// ownership map exactly (I1: at most one ImageState per (subLayer,
	// order) pair).
	Images map[int]map[int]*ImageState

	cachedMercator    MercatorPoint
	hasCachedMercator bool
}

// newSpriteState builds a SpriteState from caller-supplied init fields.
// It never validates origin references -- that is the mutation layer's
// job, performed before any state is constructed.
func newSpriteState(id string, init SpriteInit) *SpriteState {
	s := &SpriteState{
		SpriteID:                 id,
		Handle:                   nextImageHandle(),
		Enabled:                  init.Enabled,
		Tag:                      init.Tag,
		VisibilityDistanceMeters: init.VisibilityDistanceMeters,
		OpacityMultiplier:        valueOr(init.OpacityMultiplier, 1),
		Images:                   make(map[int]map[int]*ImageState),
	}
	s.Location = NewLocationChannel(init.Location)
	return s
}

// image returns the ImageState at (subLayer, order), if any.
func (s *SpriteState) image(subLayer, order int) (*ImageState, bool) {
	sub, ok := s.Images[subLayer]
	if !ok {
		return nil, false
	}
	img, ok := sub[order]
	return img, ok
}

// setImage installs img at its own (SubLayer, Order) key.
func (s *SpriteState) setImage(img *ImageState) {
	sub, ok := s.Images[img.SubLayer]
	if !ok {
		sub = make(map[int]*ImageState)
		s.Images[img.SubLayer] = sub
	}
	sub[img.Order] = img
}

// removeImage deletes the image at (subLayer, order), reports whether one
// existed.
func (s *SpriteState) removeImage(subLayer, order int) bool {
	sub, ok := s.Images[subLayer]
	if !ok {
		return false
	}
	if _, ok := sub[order]; !ok {
		return false
	}
	delete(sub, order)
	if len(sub) == 0 {
		delete(s.Images, subLayer)
	}
	return true
}

// forEachImage visits every image in the sprite, in no particular order.
func (s *SpriteState) forEachImage(fn func(*ImageState)) {
	for _, sub := range s.Images {
		for _, img := range sub {
			fn(img)
		}
	}
}

// SpriteView is the read-only projection of a SpriteState returned by
// GetSpriteState -- callers can inspect but not mutate it directly; all
// changes go through the mutation API.
type SpriteView struct {
	SpriteID                 string
	Enabled                  bool
	Tag                      string
	VisibilityDistanceMeters *float64
	OpacityMultiplier        float64
	Location                 Location
	CurrentAutoRotateDeg     float64
	ImageCount               int
}

func (s *SpriteState) view() SpriteView {
	count := 0
	for _, sub := range s.Images {
		count += len(sub)
	}
	return SpriteView{
		SpriteID:                 s.SpriteID,
		Enabled:                  s.Enabled,
		Tag:                      s.Tag,
		VisibilityDistanceMeters: s.VisibilityDistanceMeters,
		OpacityMultiplier:        s.OpacityMultiplier,
		Location:                 s.Location.Current(),
		CurrentAutoRotateDeg:     s.CurrentAutoRotateDeg,
		ImageCount:               count,
	}
}
