package lpd8806

import "errors"

var (
	// ErrInvalidCount is returned for a negative LED count or one whose buffer
	// size would overflow.
	ErrInvalidCount = errors.New("invalid LED count")
	// ErrAllocation is returned when the surface or the buffer can't be
	// allocated.
	ErrAllocation = errors.New("allocation failed")
	// ErrSizeMismatch is returned by Encode when the surface and the pixel
	// region disagree on the LED count.
	ErrSizeMismatch = errors.New("surface and buffer sizes diverged")
	// ErrIndex is returned for an LED index outside the strip.
	ErrIndex = errors.New("LED index out of range")
)

// ErrFrame is returned by ParseFrame for a buffer that isn't a valid
// transmission buffer.
var ErrFrame = errors.New("malformed frame")
