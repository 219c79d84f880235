package spritelayer

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// atlasOpKind distinguishes the three atlas operations that can be queued.
type atlasOpKind int

const (
	atlasOpUpsert atlasOpKind = iota
	atlasOpRemove
	atlasOpClear
)

// atlasOp is one queued atlas mutation. deferred, if non-nil, is resolved
// or rejected once the operation is actually processed.
type atlasOp struct {
	kind    atlasOpKind
	imageId string
	bitmap  *ebiten.Image
	cancel  *cancelSignal
	deferred *deferred[bool]
}

// cancelSignal is a simple cooperative cancellation token: a host or
// caller calls Cancel(), and any code observing Cancelled() == true must
// unwind and release whatever it was building.
type cancelSignal struct {
	cancelled bool
	reason    error
}

// newCancelSignal returns a fresh, unset cancellation token.
func newCancelSignal() *cancelSignal { return &cancelSignal{} }

// Cancel marks the signal cancelled with reason (defaults to ErrCancelled).
func (c *cancelSignal) Cancel(reason error) {
	if c == nil {
		return
	}
	c.cancelled = true
	if reason != nil {
		c.reason = reason
	} else {
		c.reason = ErrCancelled
	}
}

// Cancelled reports whether the signal has been cancelled.
func (c *cancelSignal) Cancelled() bool { return c != nil && c.cancelled }

// deferred is a minimal promise/future: a value and error are set exactly
// once, observers poll Done/Value/Err. There is no goroutine involved --
// resolution happens synchronously from the cooperative drain loop, and a
// caller who wants to be notified on completion provides onResolve.
type deferred[T any] struct {
	done      bool
	value     T
	err       error
	onResolve func(T, error)
}

func newDeferred[T any](onResolve func(T, error)) *deferred[T] {
	return &deferred[T]{onResolve: onResolve}
}

func (d *deferred[T]) resolve(v T) {
	if d == nil || d.done {
		return
	}
	d.done = true
	d.value = v
	if d.onResolve != nil {
		d.onResolve(v, nil)
	}
}

func (d *deferred[T]) reject(err error) {
	if d == nil || d.done {
		return
	}
	d.done = true
	d.err = err
	var zero T
	if d.onResolve != nil {
		d.onResolve(zero, err)
	}
}

// AtlasQueueBudget bounds one drain pass: processing stops once either
// limit is hit, deferring remaining work to the next tick.
type AtlasQueueBudget struct {
	MaxOperationsPerPass int
	TimeBudget           time.Duration
}

// DefaultAtlasQueueBudget mirrors a conservative per-tick allowance: enough
// to drain a modest burst of registrations without competing with the
// render tick's own frame budget.
var DefaultAtlasQueueBudget = AtlasQueueBudget{
	MaxOperationsPerPass: 8,
	TimeBudget:           2 * time.Millisecond,
}

// AtlasQueue is the cooperative, time-budgeted worker that drains queued
// atlas operations a few at a time, notifying an observer after each
// chunk processed so dependent state (UV rects, the render-target list)
// can be re-synced and a redraw requested.
type AtlasQueue struct {
	manager  *AtlasManager
	budget   AtlasQueueBudget
	pending  []*atlasOp
	observer func()
}

// newAtlasQueue builds a queue draining into manager, bounded by budget.
// observer is invoked once per drain pass that processed at least one
// operation.
func newAtlasQueue(manager *AtlasManager, budget AtlasQueueBudget, observer func()) *AtlasQueue {
	return &AtlasQueue{manager: manager, budget: budget, observer: observer}
}

// Upsert enqueues a pack operation for imageId. If onResolve is non-nil it
// is called with the packer's result (or the rejection error) once the
// operation is actually drained or cancelled.
func (q *AtlasQueue) Upsert(imageId string, bitmap *ebiten.Image, cancel *cancelSignal, onResolve func(bool, error)) {
	q.pending = append(q.pending, &atlasOp{
		kind:     atlasOpUpsert,
		imageId:  imageId,
		bitmap:   bitmap,
		cancel:   cancel,
		deferred: newDeferred(onResolve),
	})
}

// Remove enqueues a removal for imageId.
func (q *AtlasQueue) Remove(imageId string) {
	q.pending = append(q.pending, &atlasOp{kind: atlasOpRemove, imageId: imageId})
}

// Clear enqueues a full-clear operation. Once drained in its turn, every
// other operation still queued behind it is rejected with ErrCancelled,
// since clear invalidates any in-flight packing they were waiting on.
func (q *AtlasQueue) Clear() {
	q.pending = append(q.pending, &atlasOp{kind: atlasOpClear})
}

// CancelForImage rejects and drops every pending operation for imageId
// still in the queue, and if it was already placed, removes it from the
// atlas immediately. Returns true if anything (a queued operation or an
// existing placement) was found to cancel.
func (q *AtlasQueue) CancelForImage(imageId string, reason error) bool {
	if reason == nil {
		reason = ErrCancelled
	}
	found := false
	kept := q.pending[:0]
	for _, op := range q.pending {
		if op.imageId == imageId {
			op.deferred.reject(reason)
			found = true
			continue
		}
		kept = append(kept, op)
	}
	q.pending = kept
	if q.manager.Remove(imageId) {
		found = true
	}
	return found
}

// Drain processes queued operations until either the queue empties or the
// budget is exhausted, returning whether a redraw should be requested
// (true iff at least one operation was processed, since placements may
// have changed).
func (q *AtlasQueue) Drain() bool {
	if len(q.pending) == 0 {
		return false
	}

	budget := q.budget
	if budget.MaxOperationsPerPass <= 0 {
		budget.MaxOperationsPerPass = DefaultAtlasQueueBudget.MaxOperationsPerPass
	}
	if budget.TimeBudget <= 0 {
		budget.TimeBudget = DefaultAtlasQueueBudget.TimeBudget
	}

	deadline := time.Now().Add(budget.TimeBudget)
	processed := 0

	for len(q.pending) > 0 {
		if processed >= budget.MaxOperationsPerPass || time.Now().After(deadline) {
			break
		}
		op := q.pending[0]
		q.pending = q.pending[1:]
		q.process(op)
		processed++
	}

	if processed > 0 && q.observer != nil {
		q.observer()
	}
	return processed > 0
}

func (q *AtlasQueue) process(op *atlasOp) {
	switch op.kind {
	case atlasOpClear:
		rejected := q.pending
		q.pending = nil
		for _, other := range rejected {
			other.deferred.reject(ErrCancelled)
		}
		q.manager.Clear()
		op.deferred.resolve(true)
	case atlasOpRemove:
		q.manager.Remove(op.imageId)
	case atlasOpUpsert:
		if op.cancel.Cancelled() {
			op.deferred.reject(op.cancel.reason)
			return
		}
		placed, err := q.manager.Upsert(op.imageId, op.bitmap)
		if err != nil {
			logWarn("atlas upsert %q failed: %v", op.imageId, err)
			op.deferred.reject(err)
			return
		}
		op.deferred.resolve(placed)
	}
}

// Pending returns the number of operations still queued.
func (q *AtlasQueue) Pending() int { return len(q.pending) }
