package spritelayer

import (
	"errors"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func newTestGlyphQueue() (*registry, *AtlasManager, *AtlasQueue, *GlyphQueue) {
	reg := newRegistry()
	manager := newAtlasManager(64)
	atlasQueue := newAtlasQueue(manager, AtlasQueueBudget{}, nil)
	glyphQueue := newGlyphQueue(BasicGlyphRasterizer{}, reg, atlasQueue, GlyphQueueBudget{})
	return reg, manager, atlasQueue, glyphQueue
}

func TestGlyphQueueEnqueueRegistersAndPlaces(t *testing.T) {
	reg, manager, atlasQueue, glyphQueue := newTestGlyphQueue()

	var placed bool
	var resolveErr error
	glyphQueue.Enqueue("label-1", "hi", GlyphDimensions{Width: 16, Height: 16}, GlyphOptions{}, nil, func(p bool, err error) {
		placed = p
		resolveErr = err
	})

	glyphQueue.Drain()
	atlasQueue.Drain()

	if resolveErr != nil {
		t.Fatalf("unexpected resolve error: %v", resolveErr)
	}
	if !placed {
		t.Fatal("expected the glyph to resolve placed=true")
	}
	if _, ok := reg.get("label-1"); !ok {
		t.Fatal("expected the glyph to be registered")
	}
	if manager.PlacementFor("label-1").PageIndex == unplacedPage {
		t.Fatal("expected the glyph to have a real atlas placement")
	}
}

func TestGlyphQueueEnqueueIsIdempotentForRegisteredId(t *testing.T) {
	reg, _, _, glyphQueue := newTestGlyphQueue()
	reg.register("label-1", ebiten.NewImage(1, 1))

	var placed bool
	glyphQueue.Enqueue("label-1", "hi", GlyphDimensions{Width: 8, Height: 8}, GlyphOptions{}, nil, func(p bool, _ error) {
		placed = p
	})
	glyphQueue.Drain()

	if placed {
		t.Fatal("expected false for an id already present in the registry")
	}
}

func TestGlyphQueueDrainRespectsMaxPerPass(t *testing.T) {
	_, _, _, glyphQueue := newTestGlyphQueue()
	glyphQueue.budget = GlyphQueueBudget{MaxPerPass: 1}

	for i := 0; i < 3; i++ {
		glyphQueue.Enqueue(string(rune('a'+i)), "x", GlyphDimensions{Width: 8, Height: 8}, GlyphOptions{}, nil, nil)
	}

	glyphQueue.Drain()
	if len(glyphQueue.pending) != 2 {
		t.Fatalf("pending = %d, want 2 after draining a 1-per-pass budget against 3 queued", len(glyphQueue.pending))
	}
}

func TestGlyphQueueCancelForImageRejectsQueuedJob(t *testing.T) {
	_, _, _, glyphQueue := newTestGlyphQueue()

	var gotErr error
	glyphQueue.Enqueue("label-1", "hi", GlyphDimensions{Width: 8, Height: 8}, GlyphOptions{}, nil, func(_ bool, err error) {
		gotErr = err
	})

	if !glyphQueue.CancelForImage("label-1", nil) {
		t.Fatal("expected CancelForImage to report it found the queued job")
	}
	if !errors.Is(gotErr, ErrCancelled) {
		t.Fatalf("gotErr = %v, want ErrCancelled", gotErr)
	}
	if len(glyphQueue.pending) != 0 {
		t.Fatalf("pending = %d, want 0 after cancelling the only queued job", len(glyphQueue.pending))
	}

	glyphQueue.Drain()
}

func TestGlyphQueueCancelForImageReportsFalseWhenNothingQueued(t *testing.T) {
	_, _, _, glyphQueue := newTestGlyphQueue()
	if glyphQueue.CancelForImage("never-queued", nil) {
		t.Fatal("expected false when nothing was queued for the id")
	}
}
