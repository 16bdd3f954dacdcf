package parser

// Callbacks is the table of event handlers the parser invokes as JSON
// elements are recognized. Any field may be nil, the corresponding events
// are then skipped (including any decode work they would have cost).
// Returning false from any callback cancels the parse: Parse returns
// ErrClientCancelled and the parser stays in a terminal error state.
//
// Byte slices handed to callbacks are borrowed. They point into the
// caller's chunk or into an internal buffer and remain valid only for the
// duration of the callback invocation.
//
// A note about numbers: OnNumber, when set, receives every numeric token
// in its verbatim string form and OnInteger/OnDouble are ignored. With
// OnNumber unset, an integer too large for an int64 becomes a parse error
// when OnInteger is set, and a double too large for a float64 when
// OnDouble is set; numbers without a callback are not converted.
type Callbacks struct {
	OnNull    func() bool
	OnBool    func(val bool) bool
	OnInteger func(val int64) bool
	OnDouble  func(val float64) bool
	OnNumber  func(raw []byte) bool

	OnString func(val []byte) bool

	OnStartMap func() bool
	OnMapKey   func(key []byte) bool
	OnEndMap   func() bool

	OnStartArray func() bool
	OnEndArray   func() bool
}
