package gen

import "errors"

// Statuses returned by generator operations. Apart from ErrInErrorState,
// ErrGenerationComplete and ErrNoBuf, a failed operation also leaves the
// generator in its error state, so every subsequent operation reports
// ErrInErrorState.
var (
	// ErrKeysMustBeStrings reports that at a point where a map key is
	// expected, something other than a string was generated.
	ErrKeysMustBeStrings = errors.New("map keys must be strings")
	// ErrMaxDepthExceeded reports an attempt to open more than MaxDepth-1
	// nested containers.
	ErrMaxDepthExceeded = errors.New("maximum generation depth exceeded")
	// ErrInErrorState reports an operation on a generator already in its
	// error state.
	ErrInErrorState = errors.New("generator is in an error state")
	// ErrGenerationComplete reports an operation after a complete JSON
	// document has been generated.
	ErrGenerationComplete = errors.New("generation complete")
	// ErrInvalidNumber reports a double that is NaN or infinite; these
	// have no representation in JSON.
	ErrInvalidNumber = errors.New("invalid floating point number")
	// ErrNoBuf reports a Buf call while a print callback is installed, so
	// there is no internal buffer to get from.
	ErrNoBuf = errors.New("no internal buffer with a print callback set")
	// ErrInvalidString reports a string that failed UTF-8 validation.
	ErrInvalidString = errors.New("invalid UTF-8 string")
)
