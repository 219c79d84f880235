package spritelayer

import "fmt"

// validateSpriteImages walks the origin-reference graph of a candidate
// image set (what the sprite will look like after the mutation commits)
// and rejects missing referents or cycles. The walk is depth-bounded by
// construction: each step either finds an unvisited key (map has finite
// size) or the visited-check fires, so it always terminates.
func validateSpriteImages(images map[originKey]*ImageState) error {
	for start, img := range images {
		if !img.HasOrigin {
			continue
		}
		visited := map[originKey]bool{start: true}
		cur := img.Origin
		for {
			target, ok := images[cur]
			if !ok {
				return fmt.Errorf("spritelayer: origin reference (%d,%d) does not exist: %w", cur.subLayer, cur.order, ErrInvalidOrigin)
			}
			if visited[cur] {
				return fmt.Errorf("spritelayer: origin reference cycle at (%d,%d): %w", cur.subLayer, cur.order, ErrInvalidOrigin)
			}
			visited[cur] = true
			if !target.HasOrigin {
				break
			}
			cur = target.Origin
		}
	}
	return nil
}

// candidateImages flattens an existing sprite's images plus a set of
// proposed additions/replacements into one map keyed by originKey, for
// origin validation.
func candidateImages(existing *SpriteState, additions []SpriteImageInit) map[originKey]*ImageState {
	out := make(map[originKey]*ImageState)
	if existing != nil {
		existing.forEachImage(func(img *ImageState) {
			out[originKey{subLayer: img.SubLayer, order: img.Order}] = img
		})
	}
	for _, a := range additions {
		out[originKey{subLayer: a.SubLayer, order: a.Order}] = newImageState(a.SubLayer, a.Order, a.Init)
	}
	return out
}

// AddSprite adds a new sprite with its initial image set. Returns false
// without any state change if id already exists; returns ErrInvalidOrigin
// (no state change) if any initial image's origin reference is missing or
// cyclic.
func (l *Layer) AddSprite(id string, init SpriteInit) (bool, error) {
	if _, exists := l.store.get(id); exists {
		return false, nil
	}

	candidates := candidateImages(nil, init.Images)
	if err := validateSpriteImages(candidates); err != nil {
		return false, err
	}

	sp := newSpriteState(id, init)
	for _, item := range init.Images {
		img := newImageState(item.SubLayer, item.Order, item.Init)
		img.ImageHandle = l.registry.resolveImageHandle(img.ImageID)
		sp.setImage(img)
	}
	l.store.put(sp)
	l.rebuildRenderTargets()
	return true, nil
}

// SpriteAddItem pairs an id with its SpriteInit, for AddSprites.
type SpriteAddItem struct {
	ID   string
	Init SpriteInit
}

// AddSprites adds each item, skipping (not erroring the whole batch) any
// item whose id already exists or whose origin references are invalid.
// Returns the count successfully added.
func (l *Layer) AddSprites(items []SpriteAddItem) int {
	added := 0
	for _, item := range items {
		if _, exists := l.store.get(item.ID); exists {
			continue
		}
		candidates := candidateImages(nil, item.Init.Images)
		if err := validateSpriteImages(candidates); err != nil {
			logWarn("addSprites: skipping %q: %v", item.ID, err)
			continue
		}
		sp := newSpriteState(item.ID, item.Init)
		for _, si := range item.Init.Images {
			img := newImageState(si.SubLayer, si.Order, si.Init)
			img.ImageHandle = l.registry.resolveImageHandle(img.ImageID)
			sp.setImage(img)
		}
		l.store.put(sp)
		added++
	}
	if added > 0 {
		l.rebuildRenderTargets()
	}
	return added
}

// RemoveSprite removes id. Returns false if it didn't exist.
func (l *Layer) RemoveSprite(id string) bool {
	if !l.store.delete(id) {
		return false
	}
	l.hitTest.entries = removeEntriesForSprite(l.hitTest.entries, id)
	l.rebuildRenderTargets()
	return true
}

// RemoveSprites removes each id present, returning the count removed.
func (l *Layer) RemoveSprites(ids []string) int {
	removed := 0
	for _, id := range ids {
		if l.store.delete(id) {
			l.hitTest.entries = removeEntriesForSprite(l.hitTest.entries, id)
			removed++
		}
	}
	if removed > 0 {
		l.rebuildRenderTargets()
	}
	return removed
}

// RemoveAllSprites clears the sprite store, returning the count removed.
func (l *Layer) RemoveAllSprites() int {
	n := l.store.deleteAll()
	l.hitTest.entries = l.hitTest.entries[:0]
	if n > 0 {
		l.rebuildRenderTargets()
	}
	return n
}

// RemoveAllSpriteImages removes every image from sprite id, returning the
// count removed. The sprite itself is left in place (enabled, location,
// etc. untouched).
func (l *Layer) RemoveAllSpriteImages(id string) int {
	sp, ok := l.store.get(id)
	if !ok {
		return 0
	}
	n := 0
	sp.forEachImage(func(img *ImageState) {
		n++
		l.hitTest.removeImageBounds(id, img.SubLayer, img.Order)
	})
	sp.Images = make(map[int]map[int]*ImageState)
	if n > 0 {
		l.rebuildRenderTargets()
	}
	return n
}

// GetSpriteState returns a read-only view of sprite id.
func (l *Layer) GetSpriteState(id string) (SpriteView, bool) {
	sp, ok := l.store.get(id)
	if !ok {
		return SpriteView{}, false
	}
	return sp.view(), true
}

// AddSpriteImage adds one image to an existing sprite at (subLayer,
// order). Returns false if the sprite doesn't exist or an image already
// occupies that position (I1, Duplicate). Returns ErrInvalidOrigin if
// init's origin reference is missing or cyclic against the sprite's
// resulting image set.
func (l *Layer) AddSpriteImage(id string, subLayer, order int, init ImageInit) (bool, error) {
	sp, ok := l.store.get(id)
	if !ok {
		return false, nil
	}
	if _, exists := sp.image(subLayer, order); exists {
		return false, nil
	}

	candidates := candidateImages(sp, []SpriteImageInit{{SubLayer: subLayer, Order: order, Init: init}})
	if err := validateSpriteImages(candidates); err != nil {
		return false, err
	}

	img := newImageState(subLayer, order, init)
	img.ImageHandle = l.registry.resolveImageHandle(img.ImageID)
	sp.setImage(img)
	l.rebuildRenderTargets()
	return true, nil
}

// RemoveSpriteImage removes the image at (subLayer, order) from sprite id.
func (l *Layer) RemoveSpriteImage(id string, subLayer, order int) bool {
	sp, ok := l.store.get(id)
	if !ok {
		return false
	}
	if !sp.removeImage(subLayer, order) {
		return false
	}
	l.hitTest.removeImageBounds(id, subLayer, order)
	l.rebuildRenderTargets()
	return true
}

// ImagePatch are the fields UpdateSpriteImage may change; nil fields leave
// the corresponding state untouched.
type ImagePatch struct {
	ImageID    *string
	Mode       *ImageMode
	AnchorX    *float64
	AnchorY    *float64
	Scale      *float64
	Opacity    *float64
	RotateDeg  *float64
	OffsetMeters *float64
	OffsetDeg    *float64

	DurationMs float64
	InterpMode InterpMode
	EasingName string
}

// UpdateSpriteImage applies patch to the image at (subLayer, order).
// Non-animatable fields (ImageID, Mode, AnchorX/Y, Scale) are set
// immediately; RotateDeg/Opacity/OffsetMeters/OffsetDeg are routed through
// their channels' Commit so they animate per patch's duration/easing.
func (l *Layer) UpdateSpriteImage(id string, subLayer, order int, patch ImagePatch) bool {
	sp, ok := l.store.get(id)
	if !ok {
		return false
	}
	img, ok := sp.image(subLayer, order)
	if !ok {
		return false
	}

	if patch.ImageID != nil {
		img.ImageID = *patch.ImageID
		img.ImageHandle = l.registry.resolveImageHandle(img.ImageID)
	}
	if patch.Mode != nil {
		img.Mode = *patch.Mode
	}
	if patch.AnchorX != nil {
		img.AnchorX = *patch.AnchorX
	}
	if patch.AnchorY != nil {
		img.AnchorY = *patch.AnchorY
	}
	if patch.Scale != nil {
		img.Scale = *patch.Scale
	}

	opts := &CommitOptions{DurationMs: patch.DurationMs, Mode: patch.InterpMode, EasingName: patch.EasingName}
	if patch.Opacity != nil {
		img.Opacity = *patch.Opacity
		img.FinalOpacity.Commit(img.reapplyOpacity(sp.OpacityMultiplier), opts)
	}
	if patch.RotateDeg != nil {
		img.RotateDeg = *patch.RotateDeg
		img.FinalRotateDeg.Commit(*patch.RotateDeg, opts)
	}
	if patch.OffsetMeters != nil {
		img.OffsetMeters.Commit(*patch.OffsetMeters, opts)
	}
	if patch.OffsetDeg != nil {
		img.OffsetDeg.Commit(*patch.OffsetDeg, opts)
	}

	img.InterpolationDirty = true
	return true
}

// UpdateSprite applies patch to sprite id's own fields (not its images).
// Returns false if id doesn't exist. Two identical consecutive calls
// produce identical post-state (P9): re-committing the same location with
// the same options is a no-op once the first call's interpolation
// completes or if it snapped immediately.
func (l *Layer) UpdateSprite(id string, patch SpritePatch) bool {
	sp, ok := l.store.get(id)
	if !ok {
		return false
	}
	l.applySpritePatchNoRebuild(sp, patch)
	l.rebuildRenderTargets()
	return true
}

func removeEntriesForSprite(entries []hitTestEntry, spriteID string) []hitTestEntry {
	kept := entries[:0]
	for _, e := range entries {
		if e.SpriteID != spriteID {
			kept = append(kept, e)
		}
	}
	return kept
}
