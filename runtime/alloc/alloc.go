// Package alloc provides pluggable backing-array allocation hooks.
//
// Every owning handle in the library (buffers, stacks, lexer, parser,
// generator) copies a Funcs value at construction and routes all backing
// array management through it. The default hooks are plain make/copy; a
// client that wants pooled or instrumented allocation supplies its own.
package alloc

import "errors"

// ErrIncompleteFuncs is returned by constructors that receive hooks with
// some but not all of the three functions set.
var ErrIncompleteFuncs = errors.New("allocation hooks must provide alloc, realloc and free")

// Funcs is a set of allocation hooks plus an opaque client context that is
// passed back on every call. The library never inspects Ctx.
type Funcs struct {
	Alloc   func(ctx any, n int) []byte
	Realloc func(ctx any, b []byte, n int) []byte
	Free    func(ctx any, b []byte)
	Ctx     any
}

// Default returns hooks backed by the Go runtime allocator.
func Default() Funcs {
	return Funcs{
		Alloc: func(_ any, n int) []byte {
			return make([]byte, n)
		},
		Realloc: func(_ any, b []byte, n int) []byte {
			if n <= cap(b) {
				return b[:n]
			}
			grown := make([]byte, n)
			copy(grown, b)
			return grown
		},
		Free: func(_ any, _ []byte) {},
	}
}

// Complete reports whether all three hook functions are present.
func (f Funcs) Complete() bool {
	return f.Alloc != nil && f.Realloc != nil && f.Free != nil
}

// zero reports whether no hook function is present at all.
func (f Funcs) zero() bool {
	return f.Alloc == nil && f.Realloc == nil && f.Free == nil
}

// Resolve returns the hooks to actually use: the zero value resolves to
// Default(), complete hooks pass through unchanged, and anything in between
// is an error.
func (f Funcs) Resolve() (Funcs, error) {
	if f.zero() {
		return Default(), nil
	}
	if !f.Complete() {
		return Funcs{}, ErrIncompleteFuncs
	}
	return f, nil
}
