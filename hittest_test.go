package spritelayer

import "testing"

func squareCorners(cx, cy, halfExtent float64) [4]Vec2 {
	return [4]Vec2{
		{X: cx - halfExtent, Y: cy - halfExtent},
		{X: cx + halfExtent, Y: cy - halfExtent},
		{X: cx + halfExtent, Y: cy + halfExtent},
		{X: cx - halfExtent, Y: cy + halfExtent},
	}
}

func TestHitTestIndexResolvesPointInsideQuad(t *testing.T) {
	h := newHitTestIndex()
	h.beginFrame()
	h.registerHitTestEntry("unit-1", 0, 0, squareCorners(10, 10, 5), 0)

	entry, ok := h.resolveHitTestResult(Vec2{X: 10, Y: 10})
	if !ok {
		t.Fatal("expected a hit at the quad centre")
	}
	if entry.SpriteID != "unit-1" {
		t.Errorf("SpriteID = %q, want unit-1", entry.SpriteID)
	}
}

func TestHitTestIndexMissesPointOutsideQuad(t *testing.T) {
	h := newHitTestIndex()
	h.beginFrame()
	h.registerHitTestEntry("unit-1", 0, 0, squareCorners(10, 10, 5), 0)

	if _, ok := h.resolveHitTestResult(Vec2{X: 100, Y: 100}); ok {
		t.Fatal("expected no hit far outside the quad")
	}
}

func TestHitTestIndexReturnsTopmostOverlap(t *testing.T) {
	h := newHitTestIndex()
	h.beginFrame()
	h.registerHitTestEntry("back", 0, 0, squareCorners(10, 10, 5), 0)
	h.registerHitTestEntry("front", 0, 1, squareCorners(10, 10, 5), 1)

	entry, ok := h.resolveHitTestResult(Vec2{X: 10, Y: 10})
	if !ok || entry.SpriteID != "front" {
		t.Fatalf("got %+v, ok=%v, want front", entry, ok)
	}
}

func TestHitTestIndexBeginFrameDiscardsPreviousEntries(t *testing.T) {
	h := newHitTestIndex()
	h.beginFrame()
	h.registerHitTestEntry("unit-1", 0, 0, squareCorners(10, 10, 5), 0)
	h.beginFrame()

	if _, ok := h.resolveHitTestResult(Vec2{X: 10, Y: 10}); ok {
		t.Fatal("expected beginFrame to discard the previous frame's entries")
	}
}

func TestHitTestIndexDisabledNeverHits(t *testing.T) {
	h := newHitTestIndex()
	h.enabled = false
	h.beginFrame()
	h.registerHitTestEntry("unit-1", 0, 0, squareCorners(10, 10, 5), 0)

	if _, ok := h.resolveHitTestResult(Vec2{X: 10, Y: 10}); ok {
		t.Fatal("expected no hit while hit testing is disabled")
	}
}

func TestRemoveImageBoundsDropsMatchingEntry(t *testing.T) {
	h := newHitTestIndex()
	h.beginFrame()
	h.registerHitTestEntry("unit-1", 0, 0, squareCorners(10, 10, 5), 0)
	h.removeImageBounds("unit-1", 0, 0)

	if _, ok := h.resolveHitTestResult(Vec2{X: 10, Y: 10}); ok {
		t.Fatal("expected the entry to be gone after removeImageBounds")
	}
}

func TestAabbOfComputesBoundingBox(t *testing.T) {
	r := aabbOf(squareCorners(10, 10, 5))
	if r.MinX != 5 || r.MaxX != 15 || r.MinY != 5 || r.MaxY != 15 {
		t.Fatalf("aabbOf = %+v, want {5 5 15 15}", r)
	}
}
