package spritelayer

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// imageHandleCounter and glyphHandleCounter are plain package-level
// counters, not atomics: the layer is single-threaded cooperative by
// design (see the concurrency model), so there is never a concurrent
// writer to race against.
var imageHandleCounter uint32
var glyphHandleCounter uint32

// nextImageHandle returns the next monotonically increasing, non-zero
// image handle.
func nextImageHandle() uint32 {
	imageHandleCounter++
	return imageHandleCounter
}

// nextGlyphHandle returns the next monotonically increasing, non-zero
// glyph handle, drawn from a separate counter so glyph ids never collide
// with caller-registered image ids in diagnostics.
func nextGlyphHandle() uint32 {
	glyphHandleCounter++
	return glyphHandleCounter
}

// ImageResource is the registry entry for one registered image: stable
// metadata plus its current atlas placement (PageIndex == -1 when
// unplaced).
type ImageResource struct {
	ID     string
	Handle uint32
	Width  uint16
	Height uint16
	Bitmap *ebiten.Image

	PageIndex int32
	UV        UVRect
}

// registry owns the identifier <-> handle tables and the canonical image
// resource records. It has no knowledge of sprites or the atlas pages
// themselves (that's C4's job) beyond the placement fields it stores.
type registry struct {
	byID   map[string]*ImageResource
	byHandle map[uint32]*ImageResource
}

func newRegistry() *registry {
	return &registry{
		byID:     make(map[string]*ImageResource),
		byHandle: make(map[uint32]*ImageResource),
	}
}

// register adds a new image resource. Returns false without changes if id
// already exists (Duplicate).
func (r *registry) register(id string, bitmap *ebiten.Image) (*ImageResource, bool) {
	if _, exists := r.byID[id]; exists {
		return nil, false
	}
	w, h := bitmap.Size()
	res := &ImageResource{
		ID:        id,
		Handle:    nextImageHandle(),
		Width:     uint16(w),
		Height:    uint16(h),
		Bitmap:    bitmap,
		PageIndex: -1,
	}
	r.byID[id] = res
	r.byHandle[res.Handle] = res
	return res, true
}

// unregister removes an image resource, returning it (for the caller to
// close its bitmap and evict it from the atlas) and true if it existed.
func (r *registry) unregister(id string) (*ImageResource, bool) {
	res, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	delete(r.byID, id)
	delete(r.byHandle, res.Handle)
	return res, true
}

// resolveImageHandle returns the handle currently assigned to id, or 0 if
// id is not registered (P2: the zero handle never refers to a live image).
func (r *registry) resolveImageHandle(id string) uint32 {
	if res, ok := r.byID[id]; ok {
		return res.Handle
	}
	return 0
}

// get returns the resource for id, if registered.
func (r *registry) get(id string) (*ImageResource, bool) {
	res, ok := r.byID[id]
	return res, ok
}

// allIDs returns every currently registered image id, in no particular
// order.
func (r *registry) allIDs() []string {
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	return ids
}

// clear unregisters every image, returning the resources removed so the
// caller can close their bitmaps and clear the atlas.
func (r *registry) clear() []*ImageResource {
	removed := make([]*ImageResource, 0, len(r.byID))
	for _, res := range r.byID {
		removed = append(removed, res)
	}
	r.byID = make(map[string]*ImageResource)
	r.byHandle = make(map[uint32]*ImageResource)
	return removed
}

func (r *registry) String() string {
	return fmt.Sprintf("registry{%d images}", len(r.byID))
}
