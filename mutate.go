package spritelayer

// SpriteUpdaterEntry is the reusable mutable object handed to a
// MutateSprites/UpdateForEach modify callback. The callback writes
// whichever fields it wants to change; a single instance is reused across
// every item for allocation efficiency, so callbacks must not retain a
// pointer to it past their own invocation.
type SpriteUpdaterEntry struct {
	Enabled                  *bool
	Tag                      *string
	VisibilityDistanceMeters *float64
	OpacityMultiplier        *float64
	Location                 *Location
	LocationDurationMs       float64
	LocationMode             InterpMode
	LocationEasing           string

	remove bool
}

// Remove marks the current item's sprite for removal instead of update.
func (u *SpriteUpdaterEntry) Remove() { u.remove = true }

func (u *SpriteUpdaterEntry) reset() {
	*u = SpriteUpdaterEntry{}
}

func (u *SpriteUpdaterEntry) toPatch() SpritePatch {
	return SpritePatch{
		Enabled:                  u.Enabled,
		Tag:                      u.Tag,
		VisibilityDistanceMeters: u.VisibilityDistanceMeters,
		OpacityMultiplier:        u.OpacityMultiplier,
		Location:                 u.Location,
		LocationDurationMs:       u.LocationDurationMs,
		LocationMode:             u.LocationMode,
		LocationEasing:           u.LocationEasing,
	}
}

// MutateCallbacks bundles the per-item decisions MutateSprites needs: how
// to derive a stable sprite id from a source item, how to build an init
// for an item with no existing sprite, and how to populate the shared
// updater for an item whose sprite already exists.
type MutateCallbacks[T any] struct {
	SpriteID func(item T) string
	Add      func(item T) (SpriteInit, bool)
	Modify   func(item T, existing SpriteView, updater *SpriteUpdaterEntry)
}

// MutateSprites reconciles the layer's sprite set against sourceItems, an
// external authoritative collection: items with no existing sprite go
// through Add, items with one go through Modify (which may call
// updater.Remove() to delete instead of patch). Exactly one render-target
// rebuild is requested for the whole batch, not per item.
func MutateSprites[T any](l *Layer, sourceItems []T, cb MutateCallbacks[T]) (added, modified, removed int) {
	updater := &SpriteUpdaterEntry{}
	changed := false

	for _, item := range sourceItems {
		id := cb.SpriteID(item)
		existing, ok := l.store.get(id)
		if !ok {
			if cb.Add == nil {
				continue
			}
			init, shouldAdd := cb.Add(item)
			if !shouldAdd {
				continue
			}
			if ok, err := l.addSpriteNoRebuild(id, init); ok {
				added++
				changed = true
			} else if err != nil {
				logWarn("mutateSprites: add %q rejected: %v", id, err)
			}
			continue
		}

		if cb.Modify == nil {
			continue
		}
		updater.reset()
		cb.Modify(item, existing.view(), updater)
		if updater.remove {
			if l.store.delete(id) {
				l.hitTest.entries = removeEntriesForSprite(l.hitTest.entries, id)
				removed++
				changed = true
			}
			continue
		}
		l.applySpritePatchNoRebuild(existing, updater.toPatch())
		modified++
		changed = true
	}

	if changed {
		l.rebuildRenderTargets()
	}
	return added, modified, removed
}

// UpdateForEach applies a shared updater to every stored sprite, removing
// those whose callback calls updater.Remove(). Returns the count patched.
func (l *Layer) UpdateForEach(cb func(id string, updater *SpriteUpdaterEntry)) int {
	updater := &SpriteUpdaterEntry{}
	count := 0
	var removedIDs []string
	l.store.forEach(func(sp *SpriteState) {
		updater.reset()
		cb(sp.SpriteID, updater)
		if updater.remove {
			removedIDs = append(removedIDs, sp.SpriteID)
			return
		}
		l.applySpritePatchNoRebuild(sp, updater.toPatch())
		count++
	})
	for _, id := range removedIDs {
		l.store.delete(id)
		l.hitTest.entries = removeEntriesForSprite(l.hitTest.entries, id)
	}
	if count > 0 || len(removedIDs) > 0 {
		l.rebuildRenderTargets()
	}
	return count
}

// addSpriteNoRebuild is AddSprite without the render-target rebuild, for
// batch callers that rebuild once at the end.
func (l *Layer) addSpriteNoRebuild(id string, init SpriteInit) (bool, error) {
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
	return true, nil
}

// applySpritePatchNoRebuild is UpdateSprite without the render-target
// rebuild.
func (l *Layer) applySpritePatchNoRebuild(sp *SpriteState, patch SpritePatch) {
	if patch.Enabled != nil {
		sp.Enabled = *patch.Enabled
	}
	if patch.Tag != nil {
		sp.Tag = *patch.Tag
	}
	if patch.VisibilityDistanceMeters != nil {
		sp.VisibilityDistanceMeters = patch.VisibilityDistanceMeters
	}
	if patch.OpacityMultiplier != nil {
		sp.OpacityMultiplier = *patch.OpacityMultiplier
		sp.forEachImage(func(img *ImageState) {
			img.FinalOpacity.Commit(img.reapplyOpacity(sp.OpacityMultiplier), nil)
		})
	}
	if patch.Location != nil {
		sp.Location.Commit(*patch.Location, &CommitOptions{
			DurationMs: patch.LocationDurationMs,
			Mode:       patch.LocationMode,
			EasingName: patch.LocationEasing,
		})
	}
}
