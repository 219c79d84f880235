package spritelayer

import (
	"encoding/json"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// UVRect is a normalized (u0,v0,u1,v1) texture-coordinate rectangle within
// an atlas page.
type UVRect struct {
	U0, V0, U1, V1 float32
}

// atlasPlacement is where an image currently lives in the atlas, or the
// NONE sentinel (PageIndex == -1) when it isn't placed.
type atlasPlacement struct {
	PageIndex int32
	UV        UVRect
}

const unplacedPage int32 = -1

// shelf is one horizontal strip of a page reserved for images of roughly
// the same height, filled left to right.
type shelf struct {
	y, height uint16
	nextX     uint16
}

// atlasPage is one fixed-size bitmap page managed by the shelf packer.
type atlasPage struct {
	image      *ebiten.Image
	size       int
	shelves    []shelf
	usedBy     map[string]struct{ x, y, w, h uint16 }
}

func newAtlasPage(size int) *atlasPage {
	return &atlasPage{
		image:  ebiten.NewImage(size, size),
		size:   size,
		usedBy: make(map[string]struct{ x, y, w, h uint16 }),
	}
}

// tryPlace attempts to fit a w x h rectangle using the shelf algorithm: try
// the current shelves first, falling back to opening a new shelf if there
// is vertical room left on the page.
func (p *atlasPage) tryPlace(w, h int) (x, y uint16, ok bool) {
	const padding = 1
	pw, ph := uint16(w+padding), uint16(h+padding)

	for i := range p.shelves {
		s := &p.shelves[i]
		if s.height < ph {
			continue
		}
		if int(s.nextX)+int(pw) > p.size {
			continue
		}
		x, y = s.nextX, s.y
		s.nextX += pw
		return x, y, true
	}

	var bottom uint16
	for _, s := range p.shelves {
		if s.y+s.height > bottom {
			bottom = s.y + s.height
		}
	}
	if int(bottom)+int(ph) > p.size || int(pw) > p.size {
		return 0, 0, false
	}
	p.shelves = append(p.shelves, shelf{y: bottom, height: ph, nextX: pw})
	return 0, bottom, true
}

// AtlasManager packs registered bitmaps into one or more fixed-size pages
// using a shelf bin-packer, allocating a new page on failure to fit.
// Fragmentation from removals is tolerated (periodic repack is optional and
// not implemented here, per the packing policy's own allowance).
type AtlasManager struct {
	pageSize   int
	pages      []*atlasPage
	placements map[string]atlasPlacement
}

// newAtlasManager builds an AtlasManager whose pages are pageSize x
// pageSize square bitmaps.
func newAtlasManager(pageSize int) *AtlasManager {
	if pageSize <= 0 {
		pageSize = 1024
	}
	return &AtlasManager{
		pageSize:   pageSize,
		placements: make(map[string]atlasPlacement),
	}
}

// Upsert packs bitmap under imageId. Returns true if newly placed; false
// (with no state change) if imageId is already placed, matching the
// idempotent-upsert failure semantics. An error indicates resource
// exhaustion: the image does not fit even on a fresh, empty page. The
// number of pages is not limited.
func (m *AtlasManager) Upsert(imageId string, bitmap *ebiten.Image) (bool, error) {
	if _, exists := m.placements[imageId]; exists {
		return false, nil
	}

	w, h := bitmap.Size()
	if w > m.pageSize || h > m.pageSize {
		return false, fmt.Errorf("spritelayer: atlas upsert %q: %w (image larger than page)", imageId, ErrResourceExhaustion)
	}

	for pageIdx, page := range m.pages {
		if x, y, ok := page.tryPlace(w, h); ok {
			m.commitPlacement(imageId, int32(pageIdx), page, x, y, w, h, bitmap)
			return true, nil
		}
	}

	page := newAtlasPage(m.pageSize)
	x, y, ok := page.tryPlace(w, h)
	if !ok {
		return false, fmt.Errorf("spritelayer: atlas upsert %q: %w", imageId, ErrResourceExhaustion)
	}
	m.pages = append(m.pages, page)
	m.commitPlacement(imageId, int32(len(m.pages)-1), page, x, y, w, h, bitmap)
	return true, nil
}

func (m *AtlasManager) commitPlacement(imageId string, pageIdx int32, page *atlasPage, x, y uint16, w, h int, bitmap *ebiten.Image) {
	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Translate(float64(x), float64(y))
	page.image.DrawImage(bitmap, opts)
	page.usedBy[imageId] = struct{ x, y, w, h uint16 }{x, y, uint16(w), uint16(h)}

	size := float32(page.size)
	m.placements[imageId] = atlasPlacement{
		PageIndex: pageIdx,
		UV: UVRect{
			U0: float32(x) / size,
			V0: float32(y) / size,
			U1: float32(int(x)+w) / size,
			V1: float32(int(y)+h) / size,
		},
	}
}

// Remove evicts imageId's placement. The vacated rectangle is not
// reclaimed by the shelf packer until the page is cleared or repacked;
// this trades fragmentation tolerance for O(1) removal, acceptable per the
// packing policy.
func (m *AtlasManager) Remove(imageId string) bool {
	placement, ok := m.placements[imageId]
	if !ok {
		return false
	}
	delete(m.placements, imageId)
	if int(placement.PageIndex) < len(m.pages) {
		delete(m.pages[placement.PageIndex].usedBy, imageId)
	}
	return true
}

// Clear drops every page and placement.
func (m *AtlasManager) Clear() {
	m.pages = nil
	m.placements = make(map[string]atlasPlacement)
}

// PlacementFor returns imageId's current placement, or the NONE sentinel
// (PageIndex == -1) if unplaced.
func (m *AtlasManager) PlacementFor(imageId string) atlasPlacement {
	if p, ok := m.placements[imageId]; ok {
		return p
	}
	return atlasPlacement{PageIndex: unplacedPage}
}

// Page returns the ebiten image backing page index i, or nil if out of
// range.
func (m *AtlasManager) Page(i int32) *ebiten.Image {
	if i < 0 || int(i) >= len(m.pages) {
		return nil
	}
	return m.pages[i].image
}

// PageCount returns the number of atlas pages currently allocated.
func (m *AtlasManager) PageCount() int { return len(m.pages) }

// --- static bulk-import path (TexturePacker JSON) ---
//
// Bulk-imported atlases are a convenience for seeding a large, pre-baked
// sprite sheet (e.g. a shipped icon set) without routing every region
// through the dynamic packer above. Regions loaded this way are looked up
// by name via StaticAtlas.Region and are not tracked by AtlasManager.

// TextureRegion describes a sub-rectangle within a statically loaded atlas
// page.
type TextureRegion struct {
	Page      uint16
	X, Y      uint16
	Width     uint16
	Height    uint16
	OriginalW uint16
	OriginalH uint16
	OffsetX   int16
	OffsetY   int16
	Rotated   bool
}

// StaticAtlas holds one or more pre-baked atlas page images plus a map of
// named regions, loaded via LoadStaticAtlas.
type StaticAtlas struct {
	Pages   []*ebiten.Image
	regions map[string]TextureRegion
}

// Region returns the TextureRegion for the given name. If the name isn't
// found, it logs a warning (when debug logging is enabled) and returns a
// 1x1 magenta placeholder region on a sentinel page index, so a missing
// bulk-imported region degrades visibly rather than panicking the render
// loop.
func (a *StaticAtlas) Region(name string) TextureRegion {
	if r, ok := a.regions[name]; ok {
		return r
	}
	logWarn("static atlas region %q not found, using magenta placeholder", name)
	return magentaRegion()
}

var magentaImage *ebiten.Image

func ensureMagentaImage() *ebiten.Image {
	if magentaImage == nil {
		magentaImage = ebiten.NewImage(1, 1)
		magentaImage.Fill(color.RGBA{R: 255, G: 0, B: 255, A: 255})
	}
	return magentaImage
}

const magentaPlaceholderPage = 0xFFFF

func magentaRegion() TextureRegion {
	return TextureRegion{
		Page:      magentaPlaceholderPage,
		Width:     1,
		Height:    1,
		OriginalW: 1,
		OriginalH: 1,
	}
}

// LoadStaticAtlas parses TexturePacker JSON data and associates the given
// page images. Supports both the hash format (single "frames" object) and
// the array format ("textures" array with per-page frame lists).
func LoadStaticAtlas(jsonData []byte, pages []*ebiten.Image) (*StaticAtlas, error) {
	var probe struct {
		Frames   json.RawMessage `json:"frames"`
		Textures json.RawMessage `json:"textures"`
	}
	if err := json.Unmarshal(jsonData, &probe); err != nil {
		return nil, fmt.Errorf("spritelayer: failed to parse atlas JSON: %w", err)
	}

	atlas := &StaticAtlas{
		Pages:   pages,
		regions: make(map[string]TextureRegion),
	}

	switch {
	case probe.Textures != nil:
		if err := parseArrayFormat(probe.Textures, atlas); err != nil {
			return nil, err
		}
	case probe.Frames != nil:
		if err := parseHashFrames(probe.Frames, 0, atlas); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("spritelayer: atlas JSON has neither \"frames\" nor \"textures\" key")
	}

	return atlas, nil
}

type jsonRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type jsonSize struct {
	W int `json:"w"`
	H int `json:"h"`
}

type jsonFrame struct {
	Frame            jsonRect `json:"frame"`
	Rotated          bool     `json:"rotated"`
	Trimmed          bool     `json:"trimmed"`
	SpriteSourceSize jsonRect `json:"spriteSourceSize"`
	SourceSize       jsonSize `json:"sourceSize"`
}

type jsonTexturePage struct {
	Image  string               `json:"image"`
	Frames map[string]jsonFrame `json:"frames"`
}

func parseHashFrames(raw json.RawMessage, pageIndex uint16, atlas *StaticAtlas) error {
	var frames map[string]jsonFrame
	if err := json.Unmarshal(raw, &frames); err != nil {
		return fmt.Errorf("spritelayer: failed to parse atlas frames: %w", err)
	}
	for name, f := range frames {
		atlas.regions[name] = frameToRegion(f, pageIndex)
	}
	return nil
}

func parseArrayFormat(raw json.RawMessage, atlas *StaticAtlas) error {
	var textures []jsonTexturePage
	if err := json.Unmarshal(raw, &textures); err != nil {
		return fmt.Errorf("spritelayer: failed to parse atlas textures array: %w", err)
	}
	for i, tex := range textures {
		for name, f := range tex.Frames {
			atlas.regions[name] = frameToRegion(f, uint16(i))
		}
	}
	return nil
}

func frameToRegion(f jsonFrame, page uint16) TextureRegion {
	return TextureRegion{
		Page:      page,
		X:         uint16(f.Frame.X),
		Y:         uint16(f.Frame.Y),
		Width:     uint16(f.Frame.W),
		Height:    uint16(f.Frame.H),
		OriginalW: uint16(f.SourceSize.W),
		OriginalH: uint16(f.SourceSize.H),
		OffsetX:   int16(f.SpriteSourceSize.X),
		OffsetY:   int16(f.SpriteSourceSize.Y),
		Rotated:   f.Rotated,
	}
}
