package spritelayer

import "errors"

// Sentinel errors matching the error kinds from the error handling design.
// InvalidImage and ResourceExhaustion are logged warnings that degrade
// gracefully (image skipped/unplaced); Duplicate is a plain false return,
// not an error; InvalidOrigin and Cancelled are hard errors surfaced to the
// caller.
var (
	// ErrInvalidOrigin indicates a missing origin referent or an origin
	// reference cycle within a sprite's images.
	ErrInvalidOrigin = errors.New("invalid origin reference")

	// ErrCancelled indicates a pending glyph/atlas/register operation was
	// aborted via its cancellation signal.
	ErrCancelled = errors.New("operation cancelled")

	// ErrProjectionUnavailable indicates no clip context was available for
	// the current frame.
	ErrProjectionUnavailable = errors.New("projection unavailable")

	// ErrResourceExhaustion indicates the atlas could not allocate a new
	// page for an image; the image is left unplaced rather than the render
	// loop failing.
	ErrResourceExhaustion = errors.New("resource exhaustion")
)
