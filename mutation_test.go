package spritelayer

import (
	"errors"
	"testing"
)

func TestAddSpriteRejectsDuplicateID(t *testing.T) {
	l := newTestLayer()
	l.AddSprite("unit-1", SpriteInit{Location: Location{Lng: 1, Lat: 1}})

	ok, err := l.AddSprite("unit-1", SpriteInit{Location: Location{Lng: 2, Lat: 2}})
	if ok || err != nil {
		t.Fatalf("AddSprite duplicate: ok=%v err=%v, want false/nil", ok, err)
	}
}

func TestAddSpriteImageRejectsMissingOriginReferent(t *testing.T) {
	l := newTestLayer()
	l.AddSprite("unit-1", SpriteInit{Location: Location{Lng: 0, Lat: 0}})

	ok, err := l.AddSpriteImage("unit-1", 0, 0, ImageInit{
		ImageID:        "label",
		HasOrigin:      true,
		OriginSubLayer: 9,
		OriginOrder:    9,
	})
	if ok || !errors.Is(err, ErrInvalidOrigin) {
		t.Fatalf("AddSpriteImage with dangling origin: ok=%v err=%v, want false/ErrInvalidOrigin", ok, err)
	}
}

func TestAddSpriteRejectsOriginCycleInInitialImageSet(t *testing.T) {
	l := newTestLayer()
	// "a" origins on "b" and "b" origins on "a": a 2-cycle entirely within
	// one AddSprite call's initial image set.
	ok, err := l.AddSprite("unit-1", SpriteInit{
		Location: Location{Lng: 0, Lat: 0},
		Images: []SpriteImageInit{
			{SubLayer: 0, Order: 0, Init: ImageInit{ImageID: "a", HasOrigin: true, OriginSubLayer: 0, OriginOrder: 1}},
			{SubLayer: 0, Order: 1, Init: ImageInit{ImageID: "b", HasOrigin: true, OriginSubLayer: 0, OriginOrder: 0}},
		},
	})
	if ok || !errors.Is(err, ErrInvalidOrigin) {
		t.Fatalf("AddSprite with a cyclic initial image set: ok=%v err=%v, want false/ErrInvalidOrigin", ok, err)
	}
	if _, exists := l.GetSpriteState("unit-1"); exists {
		t.Fatal("expected no sprite state to be created for a rejected cycle")
	}
}

func TestAddSpriteImageRejectsDuplicatePosition(t *testing.T) {
	l := newTestLayer()
	l.AddSprite("unit-1", SpriteInit{Location: Location{Lng: 0, Lat: 0}})
	if ok, err := l.AddSpriteImage("unit-1", 0, 0, ImageInit{ImageID: "a"}); !ok || err != nil {
		t.Fatalf("first add: ok=%v err=%v", ok, err)
	}

	ok, err := l.AddSpriteImage("unit-1", 0, 0, ImageInit{ImageID: "b"})
	if ok || err != nil {
		t.Fatalf("duplicate-position add: ok=%v err=%v, want false/nil", ok, err)
	}
}

func TestRemoveSpriteRemovesHitTestEntries(t *testing.T) {
	l := newTestLayer()
	l.AddSprite("unit-1", SpriteInit{Enabled: true, Location: Location{Lng: 1, Lat: 0}})
	l.AddSpriteImage("unit-1", 0, 0, ImageInit{ImageID: "pin", Mode: ModeBillboard, Scale: 1, Opacity: 1})

	mapHost := NewFakeHostMap()
	projHost := NewFakeProjectionHost()
	l.Frame(mapHost, projHost, 0)

	if !l.RemoveSprite("unit-1") {
		t.Fatal("expected RemoveSprite to report success")
	}
	if _, ok := l.GetSpriteState("unit-1"); ok {
		t.Fatal("expected sprite to be gone")
	}
	if _, ok := l.ResolveHitTest(Vec2{X: 100000, Y: 0}); ok {
		t.Fatal("expected no hit-test entry to survive sprite removal")
	}
}

func TestRemoveAllSpriteImagesClearsWithoutRemovingSprite(t *testing.T) {
	l := newTestLayer()
	l.AddSprite("unit-1", SpriteInit{Location: Location{Lng: 0, Lat: 0}})
	l.AddSpriteImage("unit-1", 0, 0, ImageInit{ImageID: "a"})
	l.AddSpriteImage("unit-1", 1, 0, ImageInit{ImageID: "b"})

	n := l.RemoveAllSpriteImages("unit-1")
	if n != 2 {
		t.Fatalf("RemoveAllSpriteImages = %d, want 2", n)
	}
	if _, ok := l.GetSpriteState("unit-1"); !ok {
		t.Fatal("expected the sprite itself to still exist")
	}
}
