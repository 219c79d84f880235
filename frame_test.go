package spritelayer

import "testing"

func newTestLayer() *Layer {
	return NewLayer(LayerOptions{ID: "test"}, nil)
}

func TestFrameBillboardSpriteProjectsToCentre(t *testing.T) {
	l := newTestLayer()
	mapHost := NewFakeHostMap()
	projHost := NewFakeProjectionHost()

	if _, err := l.AddSprite("unit-1", SpriteInit{
		Enabled:  true,
		Location: Location{Lng: 1, Lat: 0},
	}); err != nil {
		t.Fatalf("AddSprite: %v", err)
	}
	if _, err := l.AddSpriteImage("unit-1", 0, 0, ImageInit{
		ImageID: "pin",
		Mode:    ModeBillboard,
		AnchorX: 0.5,
		AnchorY: 0.5,
		Scale:   1,
		Opacity: 1,
	}); err != nil {
		t.Fatalf("AddSpriteImage: %v", err)
	}
	l.rebuildRenderTargets()

	batch, err := l.Frame(mapHost, projHost, 0)
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if batch.HasActiveInterpolation {
		t.Error("expected no active interpolation for a static sprite")
	}

	sp, ok := l.store.get("unit-1")
	if !ok {
		t.Fatal("sprite missing from store")
	}
	img, ok := sp.image(0, 0)
	if !ok {
		t.Fatal("image missing from sprite")
	}
	if !img.HasHitTestCorners {
		t.Fatal("expected hit-test corners to be populated after Frame")
	}

	wantX := 1 * mapHost.PixelsPerDegree
	centre := quadCentre(img.HitTestCorners)
	if diff := centre.X - wantX; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("billboard centre X = %v, want %v", centre.X, wantX)
	}
}

func TestFrameSkipsWhenNotVisible(t *testing.T) {
	l := newTestLayer()
	mapHost := NewFakeHostMap()
	mapHost.VisibleFlag = false
	projHost := NewFakeProjectionHost()

	l.AddSprite("unit-1", SpriteInit{Enabled: true, Location: Location{Lng: 1, Lat: 1}})
	l.AddSpriteImage("unit-1", 0, 0, ImageInit{ImageID: "pin", Mode: ModeBillboard, Scale: 1, Opacity: 1})
	l.rebuildRenderTargets()

	batch, err := l.Frame(mapHost, projHost, 0)
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if batch.QuadsBySubLayer != nil || batch.HasActiveInterpolation {
		t.Errorf("expected an empty batch while invisible, got %+v", batch)
	}
}

func TestFrameReturnsErrProjectionUnavailable(t *testing.T) {
	l := newTestLayer()
	mapHost := NewFakeHostMap()

	noClip := &noClipProjectionHost{}
	_, err := l.Frame(mapHost, noClip, 0)
	if err != ErrProjectionUnavailable {
		t.Fatalf("got err=%v, want ErrProjectionUnavailable", err)
	}
}

type noClipProjectionHost struct{}

func (n *noClipProjectionHost) ClipContext() (ClipContext, bool) { return ClipContext{}, false }
func (n *noClipProjectionHost) FromLngLat(loc Location) MercatorPoint {
	return MercatorPoint{X: loc.Lng, Y: loc.Lat, Z: loc.Alt}
}
func (n *noClipProjectionHost) CalculatePerspectiveRatio(loc Location, m MercatorPoint) float64 {
	return 1
}

func TestFrameOriginChainFollowsCentre(t *testing.T) {
	l := newTestLayer()
	mapHost := NewFakeHostMap()
	projHost := NewFakeProjectionHost()

	l.AddSprite("unit-1", SpriteInit{Enabled: true, Location: Location{Lng: 2, Lat: 0}})
	l.AddSpriteImage("unit-1", 0, 0, ImageInit{ImageID: "body", Mode: ModeBillboard, Scale: 1, Opacity: 1})
	l.AddSpriteImage("unit-1", 0, 1, ImageInit{
		ImageID:        "label",
		Mode:           ModeBillboard,
		Scale:          1,
		Opacity:        1,
		HasOrigin:      true,
		OriginSubLayer: 0,
		OriginOrder:    0,
	})
	l.rebuildRenderTargets()

	if _, err := l.Frame(mapHost, projHost, 0); err != nil {
		t.Fatalf("Frame: %v", err)
	}

	sp, _ := l.store.get("unit-1")
	body, _ := sp.image(0, 0)
	label, _ := sp.image(0, 1)

	bodyCentre := quadCentre(body.HitTestCorners)
	labelCentre := quadCentre(label.HitTestCorners)
	if diff := bodyCentre.X - labelCentre.X; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("label centre X = %v, want body centre X = %v", labelCentre.X, bodyCentre.X)
	}
}

func TestApplyDepthBiasIsMonotonicInOrder(t *testing.T) {
	const clipW = 1.0
	z0 := applyDepthBias(0, clipW, 0, 0)
	z1 := applyDepthBias(0, clipW, 0, 1)
	z2 := applyDepthBias(0, clipW, 1, 0)
	if !(z1 < z0 && z2 < z1) {
		t.Errorf("expected z1 < z0 and z2 < z1, got z0=%v z1=%v z2=%v", z0, z1, z2)
	}
}

func TestApplyDepthBiasClampsToFloor(t *testing.T) {
	const clipW = 1.0
	z := applyDepthBias(-clipW, clipW, 1000, 1000)
	floor := -clipW + minClipZEpsilon
	if z < floor {
		t.Errorf("biased z = %v, should never go below floor %v", z, floor)
	}
}

func TestPolarOffsetMetersNorthIsPositiveY(t *testing.T) {
	east, north := polarOffsetMeters(10, 0)
	if east > 1e-9 || east < -1e-9 {
		t.Errorf("east = %v, want 0 for bearing 0", east)
	}
	if north != 10 {
		t.Errorf("north = %v, want 10 for bearing 0", north)
	}
}

func TestFrameCullsSpriteBeyondVisibilityDistance(t *testing.T) {
	l := newTestLayer()
	mapHost := NewFakeHostMap()
	projHost := NewFakeProjectionHost()

	limit := 1000.0
	l.AddSprite("unit-1", SpriteInit{
		Enabled:                  true,
		Location:                 Location{Lng: 1, Lat: 0},
		VisibilityDistanceMeters: &limit,
	})
	l.AddSpriteImage("unit-1", 0, 0, ImageInit{ImageID: "pin", Mode: ModeBillboard, Scale: 1, Opacity: 1})
	l.rebuildRenderTargets()

	if _, err := l.Frame(mapHost, projHost, 0); err != nil {
		t.Fatalf("Frame: %v", err)
	}

	sp, _ := l.store.get("unit-1")
	img, _ := sp.image(0, 0)
	if img.LodOpacity != 0 {
		t.Fatalf("LodOpacity = %v, want 0 once the sprite is beyond its visibility distance", img.LodOpacity)
	}
	if !img.HasHitTestCorners {
		t.Fatal("expected the quad to still resolve its corners even while LOD-culled (I5)")
	}
	if _, ok := l.ResolveHitTest(quadCentre(img.HitTestCorners)); ok {
		t.Fatal("expected no hit-test entry for a sprite culled by visibility distance")
	}
}

func TestFrameKeepsSpriteWithinVisibilityDistance(t *testing.T) {
	l := newTestLayer()
	mapHost := NewFakeHostMap()
	projHost := NewFakeProjectionHost()

	limit := 500000.0
	l.AddSprite("unit-1", SpriteInit{
		Enabled:                  true,
		Location:                 Location{Lng: 1, Lat: 0},
		VisibilityDistanceMeters: &limit,
	})
	l.AddSpriteImage("unit-1", 0, 0, ImageInit{ImageID: "pin", Mode: ModeBillboard, Scale: 1, Opacity: 1})
	l.rebuildRenderTargets()

	if _, err := l.Frame(mapHost, projHost, 0); err != nil {
		t.Fatalf("Frame: %v", err)
	}

	sp, _ := l.store.get("unit-1")
	img, _ := sp.image(0, 0)
	if img.LodOpacity != 1 {
		t.Fatalf("LodOpacity = %v, want 1 while within the visibility distance", img.LodOpacity)
	}
	if _, ok := l.ResolveHitTest(quadCentre(img.HitTestCorners)); !ok {
		t.Fatal("expected a hit-test entry for a sprite within its visibility distance")
	}
}

func TestTrackSpriteBearingImageAddsRotateDegToAutoRotation(t *testing.T) {
	l := newTestLayer()
	l.AddSprite("unit-1", SpriteInit{Enabled: true, Location: Location{Lng: 0, Lat: 0}})
	l.AddSpriteImage("unit-1", 0, 0, ImageInit{ImageID: "body", Mode: ModeBillboard, Scale: 1, Opacity: 1, RotateDeg: 15})

	sp, _ := l.store.get("unit-1")
	sp.CurrentAutoRotateDeg = 10

	l.TrackSprite("unit-1", true, &ImageRef{SubLayer: 0, Order: 0})

	target, ok := l.CameraTarget()
	if !ok {
		t.Fatal("expected a camera target while tracking a live sprite")
	}
	if !target.HasBearing {
		t.Fatal("expected HasBearing when trackRotation is true")
	}
	if target.BearingDeg != 25 {
		t.Fatalf("BearingDeg = %v, want 25 (10 auto-rotate + 15 image rotate)", target.BearingDeg)
	}
}

func TestTrackSpriteWithoutBearingImageUsesAutoRotationAlone(t *testing.T) {
	l := newTestLayer()
	l.AddSprite("unit-1", SpriteInit{Enabled: true, Location: Location{Lng: 0, Lat: 0}})

	sp, _ := l.store.get("unit-1")
	sp.CurrentAutoRotateDeg = 42

	l.TrackSprite("unit-1", true, nil)

	target, ok := l.CameraTarget()
	if !ok {
		t.Fatal("expected a camera target while tracking a live sprite")
	}
	if target.BearingDeg != 42 {
		t.Fatalf("BearingDeg = %v, want 42 (auto-rotate alone, no bearing image)", target.BearingDeg)
	}
}

func TestBillboardHalfExtentsClampsToMinPixel(t *testing.T) {
	halfW, halfH := billboardHalfExtentsPixels(4, 4, 1, ScalingOptions{SpriteMinPixel: 40})
	if halfW < 19.9 || halfW > 20.1 {
		t.Errorf("halfW = %v, want ~20 after min-pixel clamp", halfW)
	}
	if halfH < 19.9 || halfH > 20.1 {
		t.Errorf("halfH = %v, want ~20 after min-pixel clamp", halfH)
	}
}
