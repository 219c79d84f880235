package spritelayer

import "testing"

func TestShelfPackerPlacesAcrossOneShelf(t *testing.T) {
	p := newAtlasPage(64)

	x1, y1, ok := p.tryPlace(10, 10)
	if !ok {
		t.Fatal("expected first placement to fit")
	}
	x2, y2, ok := p.tryPlace(10, 10)
	if !ok {
		t.Fatal("expected second placement to fit on the same shelf")
	}
	if y1 != y2 {
		t.Fatalf("expected same-height placements to share a shelf, y1=%d y2=%d", y1, y2)
	}
	if x2 <= x1 {
		t.Fatalf("expected the second placement to be to the right of the first, x1=%d x2=%d", x1, x2)
	}
}

func TestShelfPackerOpensNewShelfWhenRowIsFull(t *testing.T) {
	p := newAtlasPage(32)

	// Each is 30 wide, padding 1, so only one fits per shelf on a 32-wide
	// page; the next must open a new shelf below.
	_, y1, ok := p.tryPlace(30, 10)
	if !ok {
		t.Fatal("expected first placement to fit")
	}
	_, y2, ok := p.tryPlace(30, 10)
	if !ok {
		t.Fatal("expected second placement to fit on a new shelf")
	}
	if y2 <= y1 {
		t.Fatalf("expected the second shelf to be below the first, y1=%d y2=%d", y1, y2)
	}
}

func TestShelfPackerFailsWhenImageExceedsPage(t *testing.T) {
	p := newAtlasPage(16)
	if _, _, ok := p.tryPlace(20, 20); ok {
		t.Fatal("expected a placement larger than the page to fail")
	}
}

func TestNewAtlasManagerDefaultsPageSize(t *testing.T) {
	m := newAtlasManager(0) // zero falls back to the default page size
	if m.pageSize != 1024 {
		t.Fatalf("pageSize = %d, want default 1024", m.pageSize)
	}
}

func TestAtlasManagerPlacementForUnplacedReturnsSentinel(t *testing.T) {
	m := newAtlasManager(1024)
	placement := m.PlacementFor("never-registered")
	if placement.PageIndex != unplacedPage {
		t.Fatalf("PageIndex = %d, want unplacedPage", placement.PageIndex)
	}
}

func TestAtlasManagerRemoveUnplacedReturnsFalse(t *testing.T) {
	m := newAtlasManager(1024)
	if m.Remove("never-registered") {
		t.Fatal("expected Remove to report false for an unplaced id")
	}
}

func TestLoadStaticAtlasParsesHashFormat(t *testing.T) {
	data := []byte(`{
		"frames": {
			"pin.png": {
				"frame": {"x": 0, "y": 0, "w": 16, "h": 16},
				"rotated": false,
				"trimmed": false,
				"spriteSourceSize": {"x": 0, "y": 0, "w": 16, "h": 16},
				"sourceSize": {"w": 16, "h": 16}
			}
		}
	}`)

	atlas, err := LoadStaticAtlas(data, nil)
	if err != nil {
		t.Fatalf("LoadStaticAtlas: %v", err)
	}
	region := atlas.Region("pin.png")
	if region.Width != 16 || region.Height != 16 {
		t.Fatalf("region = %+v, want 16x16", region)
	}
}

func TestLoadStaticAtlasParsesArrayFormat(t *testing.T) {
	data := []byte(`{
		"textures": [
			{
				"image": "page0.png",
				"frames": {
					"icon.png": {
						"frame": {"x": 4, "y": 8, "w": 32, "h": 32},
						"sourceSize": {"w": 32, "h": 32},
						"spriteSourceSize": {"x": 0, "y": 0, "w": 32, "h": 32}
					}
				}
			}
		]
	}`)

	atlas, err := LoadStaticAtlas(data, nil)
	if err != nil {
		t.Fatalf("LoadStaticAtlas: %v", err)
	}
	region := atlas.Region("icon.png")
	if region.X != 4 || region.Y != 8 || region.Page != 0 {
		t.Fatalf("region = %+v, want X=4 Y=8 Page=0", region)
	}
}

func TestLoadStaticAtlasRejectsMissingKeys(t *testing.T) {
	if _, err := LoadStaticAtlas([]byte(`{}`), nil); err == nil {
		t.Fatal("expected an error for JSON with neither frames nor textures")
	}
}

func TestStaticAtlasRegionFallsBackToMagentaPlaceholder(t *testing.T) {
	atlas := &StaticAtlas{regions: map[string]TextureRegion{}}
	region := atlas.Region("missing.png")
	if region.Page != magentaPlaceholderPage || region.Width != 1 || region.Height != 1 {
		t.Fatalf("region = %+v, want the 1x1 magenta placeholder", region)
	}
}
