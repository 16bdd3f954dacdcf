// Package buf implements the growing byte buffer used throughout the
// library: the lexer's reassembly buffer, the parser's decode buffer, and
// the generator's internal output sink.
package buf

import "github.com/aledsdavies/jsonstream/runtime/alloc"

// initSize is the capacity of the backing array on first append.
const initSize = 2048

// Buffer is an exponentially growing byte buffer. The backing array always
// holds a 0 byte one past the logical content, so Data() can be handed to
// code that expects null-terminated text.
type Buffer struct {
	data  []byte // backing array; len(data) is the capacity
	used  int
	alloc alloc.Funcs
}

// New creates an empty buffer that allocates through the given hooks.
// Zero-value hooks resolve to the defaults; incomplete hooks are rejected.
func New(hooks alloc.Funcs) (*Buffer, error) {
	resolved, err := hooks.Resolve()
	if err != nil {
		return nil, err
	}
	return &Buffer{alloc: resolved}, nil
}

// ensureAvailable grows the backing array until want more bytes fit,
// doubling from the current capacity. The extra byte keeps room for the
// terminating 0.
func (b *Buffer) ensureAvailable(want int) {
	if b.data == nil {
		b.data = b.alloc.Alloc(b.alloc.Ctx, initSize)
		b.data[0] = 0
	}

	need := len(b.data)
	for want >= need-b.used {
		need <<= 1
	}

	if need != len(b.data) {
		b.data = b.alloc.Realloc(b.alloc.Ctx, b.data, need)
	}
}

// Append adds bytes to the buffer, keeping the null-termination invariant.
func (b *Buffer) Append(data []byte) {
	b.ensureAvailable(len(data))
	if len(data) > 0 {
		copy(b.data[b.used:], data)
		b.used += len(data)
		b.data[b.used] = 0
	}
}

// AppendString is Append for string arguments.
func (b *Buffer) AppendString(data string) {
	b.ensureAvailable(len(data))
	if len(data) > 0 {
		copy(b.data[b.used:], data)
		b.used += len(data)
		b.data[b.used] = 0
	}
}

// AppendByte adds a single byte.
func (b *Buffer) AppendByte(c byte) {
	b.ensureAvailable(1)
	b.data[b.used] = c
	b.used++
	b.data[b.used] = 0
}

// Clear resets the length to zero but keeps the backing array.
func (b *Buffer) Clear() {
	b.used = 0
	if b.data != nil {
		b.data[0] = 0
	}
}

// Data returns the buffer content. The backing array holds a 0 byte at
// index Len(); the slice remains valid only until the next mutating call.
func (b *Buffer) Data() []byte {
	if b.data == nil {
		return nil
	}
	return b.data[:b.used]
}

// Len returns the number of bytes in the buffer.
func (b *Buffer) Len() int {
	return b.used
}

// Truncate shortens the buffer to n bytes. n must not exceed Len().
func (b *Buffer) Truncate(n int) {
	if n > b.used {
		panic("buf: truncate beyond buffer length")
	}
	b.used = n
	if b.data != nil {
		b.data[b.used] = 0
	}
}

// Fetch detaches and returns the buffer content, leaving the buffer empty.
// The returned slice is owned by the caller.
func (b *Buffer) Fetch() []byte {
	data := b.data
	used := b.used
	b.data = nil
	b.used = 0
	if data == nil {
		return nil
	}
	return data[:used]
}

// Free releases the backing array through the allocation hooks.
func (b *Buffer) Free() {
	if b.data != nil {
		b.alloc.Free(b.alloc.Ctx, b.data)
		b.data = nil
	}
	b.used = 0
}
