package spritelayer

import "sort"

// renderTargetEntry is one (sprite, image) pair selected for drawing this
// frame. It holds weak references (ids, not pointers) resolved per-frame
// from the store, per the reference-counting design note.
type renderTargetEntry struct {
	SpriteID string
	SubLayer int
	Order    int
	ImageID  string
}

// buildRenderTargets filters visible images and produces the authoritative
// draw-order vector: stable-sorted by (subLayer, order, imageId), with
// each entry's OriginRenderTargetIndex resolved against the resulting
// vector. It mutates OriginRenderTargetIndex on the underlying ImageStates
// as a side effect (the resolved index is consumed directly by C8).
func buildRenderTargets(store *spriteStore) []renderTargetEntry {
	var entries []renderTargetEntry
	// perSprite maps spriteId -> originKey -> vector index, used in the
	// second pass to resolve origin references.
	perSprite := make(map[string]map[originKey]int)

	store.forEach(func(sp *SpriteState) {
		if !sp.Enabled {
			return
		}
		sp.forEachImage(func(img *ImageState) {
			if isImageCulled(sp, img) {
				return
			}
			entries = append(entries, renderTargetEntry{
				SpriteID: sp.SpriteID,
				SubLayer: img.SubLayer,
				Order:    img.Order,
				ImageID:  img.ImageID,
			})
		})
	})

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.SubLayer != b.SubLayer {
			return a.SubLayer < b.SubLayer
		}
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return a.ImageID < b.ImageID
	})

	for i, e := range entries {
		m, ok := perSprite[e.SpriteID]
		if !ok {
			m = make(map[originKey]int)
			perSprite[e.SpriteID] = m
		}
		m[originKey{subLayer: e.SubLayer, order: e.Order}] = i
	}

	for _, e := range entries {
		sp, ok := store.get(e.SpriteID)
		if !ok {
			continue
		}
		img, ok := sp.image(e.SubLayer, e.Order)
		if !ok || !img.HasOrigin {
			continue
		}
		if idx, ok := perSprite[e.SpriteID][img.Origin]; ok {
			img.OriginRenderTargetIndex = idx
		} else {
			img.OriginRenderTargetIndex = noRenderTargetIndex
		}
	}

	return entries
}

// isImageCulled reports whether img should be skipped from the
// render-target vector: final opacity <= 0 while not interpolating, or an
// invalid/missing image id. Per I5, a NONE atlas placement still keeps the
// image in the vector (it's culled from drawing later, in C8) so dependent
// origin resolution still works. Visibility-distance LOD is not decided
// here -- this builder has no camera position to measure against, and only
// runs on mutation/atlas-drain events rather than every frame -- so it is
// evaluated per-frame in C8 instead, against the actual camera distance; an
// image whose LodOpacity is 0 is kept in the vector so C8 can bring it back.
func isImageCulled(sp *SpriteState, img *ImageState) bool {
	if img.ImageID == "" {
		return true
	}
	if img.FinalOpacity.Current() <= 0 && !img.FinalOpacity.Active() && img.LodOpacity > 0 {
		return true
	}
	return false
}
