package spritelayer

import "github.com/hajimehoshi/ebiten/v2"

// Layer owns one independent set of sprites, images, and atlas pages.
// Multiple Layers coexist without sharing sprite, image, or atlas state.
// The package-level state they do share is the handle counters, the
// static-atlas placeholder image, and the debug-logging flag, which stays
// on for every Layer once any Layer is built with LayerOptions.Debug.
type Layer struct {
	id      string
	options LayerOptions

	registry     *registry
	atlasManager *AtlasManager
	atlasQueue   *AtlasQueue

	rasterizer GlyphRasterizer
	glyphQueue *GlyphQueue

	store         *spriteStore
	renderTargets []renderTargetEntry

	hitTest    *hitTestIndex
	dispatcher *dispatcher
	scheduler  *frameScheduler
	tracking   spriteTracking
}

// NewLayer constructs a Layer. rasterizer may be nil, in which case a
// BasicGlyphRasterizer is used for RegisterTextGlyph.
func NewLayer(opts LayerOptions, rasterizer GlyphRasterizer) *Layer {
	opts = opts.withDefaults()
	if rasterizer == nil {
		rasterizer = BasicGlyphRasterizer{}
	}

	l := &Layer{
		id:           opts.ID,
		options:      opts,
		registry:     newRegistry(),
		atlasManager: newAtlasManager(opts.AtlasPageSize),
		rasterizer:   rasterizer,
		store:        newSpriteStore(),
		hitTest:      newHitTestIndex(),
		scheduler:    newFrameScheduler(),
	}
	globalDebug = globalDebug || opts.Debug
	l.atlasQueue = newAtlasQueue(l.atlasManager, opts.AtlasBudget, l.scheduler.requestRedraw)
	l.glyphQueue = newGlyphQueue(l.rasterizer, l.registry, l.atlasQueue, opts.GlyphBudget)
	l.dispatcher = newDispatcher(l.hitTest)
	l.hitTest.enabled = true
	return l
}

// --- C3: image registry ---

// RegisterImage adopts bitmap under id and queues it for atlas packing.
// Returns false immediately if id is already registered (Duplicate); the
// actual placement result (or a ResourceExhaustion/Cancelled error)
// arrives later via onPlaced, called from a subsequent DrainQueues call.
func (l *Layer) RegisterImage(id string, bitmap *ebiten.Image, cancel *cancelSignal, onPlaced func(placed bool, err error)) bool {
	if _, exists := l.registry.get(id); exists {
		return false
	}
	if _, ok := l.registry.register(id, bitmap); !ok {
		return false
	}
	l.atlasQueue.Upsert(id, bitmap, cancel, func(placed bool, err error) {
		if err != nil {
			l.registry.unregister(id)
			logWarn("register image %q: %v", id, err)
		}
		if onPlaced != nil {
			onPlaced(placed, err)
		}
		l.scheduler.requestRedraw()
	})
	return true
}

// RegisterTextGlyph queues a text rasterisation + registration + atlas
// placement job. Returns false immediately if id is already registered.
func (l *Layer) RegisterTextGlyph(id, text string, dims GlyphDimensions, opts GlyphOptions, cancel *cancelSignal, onPlaced func(placed bool, err error)) bool {
	if _, exists := l.registry.get(id); exists {
		return false
	}
	l.glyphQueue.Enqueue(id, text, dims, opts, cancel, func(ok bool, err error) {
		if onPlaced != nil {
			onPlaced(ok, err)
		}
		l.scheduler.requestRedraw()
	})
	return true
}

// UnregisterImage removes id from the registry and evicts it from the
// atlas. Returns false if id was not registered.
func (l *Layer) UnregisterImage(id string) bool {
	if _, ok := l.registry.unregister(id); !ok {
		return false
	}
	l.atlasQueue.Remove(id)
	l.scheduler.requestRedraw()
	return true
}

// CancelRegisterImage cancels an in-flight RegisterImage or
// RegisterTextGlyph call for id before it lands: any operation still
// queued for id in the atlas or glyph queue is rejected with reason
// (ErrCancelled if nil), and if id had already been registered, it is
// unregistered and evicted from the atlas. Returns false if id had nothing
// queued and was not registered.
func (l *Layer) CancelRegisterImage(id string, reason error) bool {
	if reason == nil {
		reason = ErrCancelled
	}
	queuedOrPlaced := l.atlasQueue.CancelForImage(id, reason)
	if l.glyphQueue.CancelForImage(id, reason) {
		queuedOrPlaced = true
	}
	if _, ok := l.registry.unregister(id); ok {
		queuedOrPlaced = true
	}
	if queuedOrPlaced {
		l.scheduler.requestRedraw()
	}
	return queuedOrPlaced
}

// UnregisterAllImages clears every registered image and atlas page.
func (l *Layer) UnregisterAllImages() {
	l.registry.clear()
	l.atlasQueue.Clear()
	l.scheduler.requestRedraw()
}

// GetAllImageIds returns every currently registered image id.
func (l *Layer) GetAllImageIds() []string { return l.registry.allIDs() }

// GetAllSpriteIds returns every currently stored sprite id.
func (l *Layer) GetAllSpriteIds() []string { return l.store.allIDs() }

// DrainQueues cooperatively drains the atlas and glyph operation queues,
// bounded by their configured budgets. The host should call this once per
// tick before Frame.
func (l *Layer) DrainQueues() {
	if l.atlasQueue.Drain() {
		l.rebuildRenderTargets()
	}
	l.glyphQueue.Drain()
}

// rebuildRenderTargets rebuilds the authoritative draw-order vector and
// requests a redraw. Called at most once per mutating call (mutation.go)
// or atlas drain pass.
func (l *Layer) rebuildRenderTargets() {
	l.renderTargets = buildRenderTargets(l.store)
	l.scheduler.requestRedraw()
}

// --- C12: scheduling & visibility ---

// SetVisible informs the layer of the host's visibility transition.
func (l *Layer) SetVisible(visible bool) {
	l.scheduler.setVisible(visible, l.store)
}

// SetInterpolationCalculation toggles the interpolation virtual clock.
func (l *Layer) SetInterpolationCalculation(enabled bool) {
	l.scheduler.setInterpolationCalculation(enabled)
}

// SetHitTestDetection toggles whether ResolveHitTest / pointer dispatch
// ever returns a hit.
func (l *Layer) SetHitTestDetection(enabled bool) {
	l.hitTest.enabled = enabled
}

// RequestRedraw marks a redraw as pending.
func (l *Layer) RequestRedraw() { l.scheduler.requestRedraw() }

// ConsumeRedrawRequest reports and clears whether a redraw was requested
// since the last call.
func (l *Layer) ConsumeRedrawRequest() bool { return l.scheduler.consumeRedraw() }

// --- C13: sprite tracking ---

// TrackSprite nominates id as the host camera's focal target. bearingImage,
// if non-nil, selects which of id's images contributes its rotateDeg to
// the camera bearing when trackRotation is true (see spriteTracking.resolve).
func (l *Layer) TrackSprite(id string, trackRotation bool, bearingImage *ImageRef) {
	l.tracking.trackSprite(id, trackRotation, bearingImage)
}

// UntrackSprite releases the current camera binding.
func (l *Layer) UntrackSprite() {
	l.tracking.untrackSprite()
}

// CameraTarget returns this frame's camera target, if a sprite is tracked
// and still exists.
func (l *Layer) CameraTarget() (cameraTarget, bool) {
	return l.tracking.resolve(l.store)
}

// --- C10: pointer events ---

// On registers a listener for event.
func (l *Layer) On(event EventType, listener EventListener) {
	l.dispatcher.on(event, listener)
}

// Off removes every listener registered for event.
func (l *Layer) Off(event EventType) {
	l.dispatcher.off(event, nil)
}

// DispatchPointerEvent translates one raw host pointer event into
// spriteclick/spritehover/spritemove/spriteleave events, resolved against
// the most recently completed frame's hit-test entries.
func (l *Layer) DispatchPointerEvent(raw PointerEvent) {
	l.dispatcher.dispatch(raw)
}

// ResolveHitTest resolves a raw screen point directly, without going
// through pointer-event translation.
func (l *Layer) ResolveHitTest(point Vec2) (hitTestEntry, bool) {
	return l.hitTest.resolveHitTestResult(point)
}
