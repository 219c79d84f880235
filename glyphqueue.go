package spritelayer

import (
	"image"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// GlyphDimensions bounds the bitmap a glyph job renders into.
type GlyphDimensions struct {
	Width, Height int
}

// GlyphOptions configures how RenderTextGlyphBitmap draws its text.
type GlyphOptions struct {
	Color Color
}

// GlyphRasterizer rasterises text into a bitmap. Font shaping/hinting is
// an external collaborator concern; this module only defines the contract
// and drains the queue that calls it.
type GlyphRasterizer interface {
	RenderTextGlyphBitmap(text string, dims GlyphDimensions, opts GlyphOptions) (*ebiten.Image, error)
}

// GlyphQueueBudget bounds one drain pass, mirroring AtlasQueueBudget.
type GlyphQueueBudget struct {
	MaxPerPass int
	TimeBudget time.Duration
}

// DefaultGlyphQueueBudget is deliberately smaller than the atlas budget --
// rasterisation is comparatively expensive per entry.
var DefaultGlyphQueueBudget = GlyphQueueBudget{
	MaxPerPass: 2,
	TimeBudget: 2 * time.Millisecond,
}

type glyphJob struct {
	glyphId  string
	text     string
	dims     GlyphDimensions
	opts     GlyphOptions
	cancel   *cancelSignal
	deferred *deferred[bool]
}

// GlyphQueue drains text->bitmap rendering jobs cooperatively, then feeds
// each rendered bitmap through the registry and atlas queue exactly as a
// regular registered image. On any failure partway through a job, whatever
// state that job created (registry entry, atlas placement) is rolled back.
type GlyphQueue struct {
	rasterizer GlyphRasterizer
	registry   *registry
	atlasQueue *AtlasQueue
	budget     GlyphQueueBudget
	pending    []*glyphJob
}

func newGlyphQueue(rasterizer GlyphRasterizer, reg *registry, atlasQueue *AtlasQueue, budget GlyphQueueBudget) *GlyphQueue {
	return &GlyphQueue{rasterizer: rasterizer, registry: reg, atlasQueue: atlasQueue, budget: budget}
}

// Enqueue queues a glyph render job. onResolve is called once the job
// resolves: true if newly registered and placed, false if glyphId was
// already registered (idempotent), or an error (Cancelled or a
// rasterisation failure, which is treated as InvalidImage: logged, not
// poisoning the registry).
func (q *GlyphQueue) Enqueue(glyphId, text string, dims GlyphDimensions, opts GlyphOptions, cancel *cancelSignal, onResolve func(bool, error)) {
	q.pending = append(q.pending, &glyphJob{
		glyphId:  glyphId,
		text:     text,
		dims:     dims,
		opts:     opts,
		cancel:   cancel,
		deferred: newDeferred(onResolve),
	})
}

// CancelForImage rejects and drops any pending glyph job for glyphId.
// Returns true if a pending job was found.
func (q *GlyphQueue) CancelForImage(glyphId string, reason error) bool {
	if reason == nil {
		reason = ErrCancelled
	}
	found := false
	kept := q.pending[:0]
	for _, j := range q.pending {
		if j.glyphId == glyphId {
			j.deferred.reject(reason)
			found = true
			continue
		}
		kept = append(kept, j)
	}
	q.pending = kept
	return found
}

// Drain processes queued glyph jobs bounded by the configured budget.
func (q *GlyphQueue) Drain() {
	if len(q.pending) == 0 {
		return
	}
	budget := q.budget
	if budget.MaxPerPass <= 0 {
		budget.MaxPerPass = DefaultGlyphQueueBudget.MaxPerPass
	}
	if budget.TimeBudget <= 0 {
		budget.TimeBudget = DefaultGlyphQueueBudget.TimeBudget
	}
	deadline := time.Now().Add(budget.TimeBudget)

	processed := 0
	for len(q.pending) > 0 {
		if processed >= budget.MaxPerPass || time.Now().After(deadline) {
			break
		}
		job := q.pending[0]
		q.pending = q.pending[1:]
		q.process(job)
		processed++
	}
}

func (q *GlyphQueue) process(job *glyphJob) {
	if job.cancel.Cancelled() {
		job.deferred.reject(job.cancel.reason)
		return
	}
	if _, exists := q.registry.get(job.glyphId); exists {
		job.deferred.resolve(false)
		return
	}

	bitmap, err := q.rasterizer.RenderTextGlyphBitmap(job.text, job.dims, job.opts)
	if err != nil {
		logWarn("glyph %q rasterisation failed: %v", job.glyphId, err)
		job.deferred.reject(err)
		return
	}

	if job.cancel.Cancelled() {
		job.deferred.reject(job.cancel.reason)
		return
	}

	if _, ok := q.registry.register(job.glyphId, bitmap); !ok {
		job.deferred.resolve(false)
		return
	}

	q.atlasQueue.Upsert(job.glyphId, bitmap, job.cancel, func(placed bool, err error) {
		if err != nil {
			q.registry.unregister(job.glyphId)
			job.deferred.reject(err)
			return
		}
		job.deferred.resolve(true)
	})
}

// BasicGlyphRasterizer is a minimal GlyphRasterizer built on
// golang.org/x/image/font/basicfont, sufficient to exercise the glyph
// queue in tests without a host-supplied TTF rasteriser.
type BasicGlyphRasterizer struct{}

// RenderTextGlyphBitmap draws text onto a dims-sized bitmap using the
// bundled 7x13 basic font, left-aligned and vertically centred.
func (BasicGlyphRasterizer) RenderTextGlyphBitmap(text string, dims GlyphDimensions, opts GlyphOptions) (*ebiten.Image, error) {
	w, h := dims.Width, dims.Height
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}

	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	col := colorToNRGBA(opts.Color)
	face := basicfont.Face7x13

	d := &font.Drawer{
		Dst:  rgba,
		Src:  &image.Uniform{C: col},
		Face: face,
		Dot:  fixed.P(0, h/2+face.Ascent.Ceil()/2),
	}
	d.DrawString(text)

	img := ebiten.NewImageFromImage(rgba)
	return img, nil
}

func colorToNRGBA(c Color) color.NRGBA {
	if c == (Color{}) {
		return color.NRGBA{A: 255}
	}
	return color.NRGBA{
		R: uint8(clamp01(c.R) * 255),
		G: uint8(clamp01(c.G) * 255),
		B: uint8(clamp01(c.B) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}
