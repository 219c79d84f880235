package spritelayer

// hitTestEntry is a persisted screen-space quad from the last completed
// frame, used to resolve pointer events independent of the frame currently
// being built.
type hitTestEntry struct {
	SpriteID  string
	SubLayer  int
	Order     int
	Corners   [4]Vec2
	AABB      Rect
	DrawOrder int
}

// hitTestIndex rebuilds its entry vector once per frame (fed by C8 step 5)
// and answers point queries against the most recently completed frame's
// geometry, never the in-progress one.
type hitTestIndex struct {
	entries []hitTestEntry
	enabled bool
}

func newHitTestIndex() *hitTestIndex {
	return &hitTestIndex{enabled: true}
}

// beginFrame discards the previous frame's entries; callers repopulate via
// registerHitTestEntry before the frame is considered complete.
func (h *hitTestIndex) beginFrame() {
	h.entries = h.entries[:0]
}

func (h *hitTestIndex) registerHitTestEntry(spriteID string, subLayer, order int, corners [4]Vec2, drawOrder int) {
	h.entries = append(h.entries, hitTestEntry{
		SpriteID:  spriteID,
		SubLayer:  subLayer,
		Order:     order,
		Corners:   corners,
		AABB:      aabbOf(corners),
		DrawOrder: drawOrder,
	})
}

// removeImageBounds drops the persisted entry for (spriteID, subLayer,
// order), if present, e.g. when the image is removed between frames.
func (h *hitTestIndex) removeImageBounds(spriteID string, subLayer, order int) {
	for i, e := range h.entries {
		if e.SpriteID == spriteID && e.SubLayer == subLayer && e.Order == order {
			h.entries = append(h.entries[:i], h.entries[i+1:]...)
			return
		}
	}
}

func aabbOf(corners [4]Vec2) Rect {
	r := Rect{MinX: corners[0].X, MinY: corners[0].Y, MaxX: corners[0].X, MaxY: corners[0].Y}
	for _, c := range corners[1:] {
		if c.X < r.MinX {
			r.MinX = c.X
		}
		if c.X > r.MaxX {
			r.MaxX = c.X
		}
		if c.Y < r.MinY {
			r.MinY = c.Y
		}
		if c.Y > r.MaxY {
			r.MaxY = c.Y
		}
	}
	return r
}

// pointInTriangle uses the sign-of-cross-product test.
func pointInTriangle(p, a, b, c Vec2) bool {
	d1 := cross(p, a, b)
	d2 := cross(p, b, c)
	d3 := cross(p, c, a)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

func cross(p, a, b Vec2) float64 {
	return (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
}

// pointInQuad tests the point against the quad's two triangles (0,1,2) and
// (0,2,3), the fixed corner-order split used everywhere else in this
// package.
func pointInQuad(p Vec2, corners [4]Vec2) bool {
	return pointInTriangle(p, corners[0], corners[1], corners[2]) ||
		pointInTriangle(p, corners[0], corners[2], corners[3])
}

// resolveHitTestResult returns the top-most entry (largest DrawOrder)
// whose quad contains point, scanning in reverse draw order. An AABB
// precheck prunes entries before the more expensive triangle test. If hit
// testing is disabled, no entry is ever returned.
func (h *hitTestIndex) resolveHitTestResult(point Vec2) (hitTestEntry, bool) {
	if !h.enabled {
		return hitTestEntry{}, false
	}
	for i := len(h.entries) - 1; i >= 0; i-- {
		e := h.entries[i]
		if !e.AABB.Contains(point.X, point.Y) {
			continue
		}
		if pointInQuad(point, e.Corners) {
			return e, true
		}
	}
	return hitTestEntry{}, false
}
