// Package bytestack implements a small LIFO of state bytes. The parser uses
// it as the explicit pushdown stack that replaces recursion, so stack memory
// is bounded by allocation rather than by the goroutine call stack.
package bytestack

import "github.com/aledsdavies/jsonstream/runtime/alloc"

// inc is the growth increment of the backing array.
const inc = 128

// Stack is a contiguous stack of bytes.
type Stack struct {
	stack []byte // backing array; len(stack) is the capacity
	used  int
	alloc alloc.Funcs
}

// Init prepares the stack for use with the given allocation hooks. The
// hooks must already be resolved by the owning handle.
func (s *Stack) Init(hooks alloc.Funcs) {
	s.stack = nil
	s.used = 0
	s.alloc = hooks
}

// Free releases the backing array.
func (s *Stack) Free() {
	if s.stack != nil {
		s.alloc.Free(s.alloc.Ctx, s.stack)
		s.stack = nil
	}
	s.used = 0
}

// Current returns the top of the stack. The stack must not be empty.
func (s *Stack) Current() byte {
	if s.used == 0 {
		panic("bytestack: current on empty stack")
	}
	return s.stack[s.used-1]
}

// Push adds a byte on top, growing the backing array by a fixed increment
// when full.
func (s *Stack) Push(b byte) {
	if len(s.stack)-s.used == 0 {
		size := len(s.stack) + inc
		if s.stack == nil {
			s.stack = s.alloc.Alloc(s.alloc.Ctx, size)
		} else {
			s.stack = s.alloc.Realloc(s.alloc.Ctx, s.stack, size)
		}
	}
	s.stack[s.used] = b
	s.used++
}

// Pop removes the top of the stack.
func (s *Stack) Pop() {
	s.used--
}

// Set overwrites the top of the stack.
func (s *Stack) Set(b byte) {
	s.stack[s.used-1] = b
}

// Len returns the number of bytes on the stack.
func (s *Stack) Len() int {
	return s.used
}
