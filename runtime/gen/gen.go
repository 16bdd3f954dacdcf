// Package gen implements a streaming JSON generator. Values are emitted
// through value-construction calls; the generator enforces structural
// validity (keys are strings, nothing follows a complete document) and
// writes either into an internal buffer or through a caller-supplied print
// callback.
package gen

import (
	"math"
	"strconv"
	"strings"

	"github.com/aledsdavies/jsonstream/runtime/alloc"
	"github.com/aledsdavies/jsonstream/runtime/buf"
	"github.com/aledsdavies/jsonstream/runtime/encode"
)

// MaxDepth is the number of per-depth generator states, the top level
// included, so at most MaxDepth-1 containers can be open at once; opening
// one more fails with ErrMaxDepthExceeded.
const MaxDepth = 255

// Per-depth generator states.
const (
	stateStart byte = iota
	stateMapStart
	stateMapKey
	stateMapVal
	stateArrayStart
	stateInArray
	stateComplete
	stateError
)

// Opt configures a Generator. All options default to off.
type Opt func(*Generator)

// Beautify makes the generator emit indented, human readable output.
func Beautify() Opt {
	return func(g *Generator) {
		g.beautify = true
	}
}

// Indent sets the string written once per nesting level when beautifying.
// The default is two spaces.
func Indent(indent string) Opt {
	return func(g *Generator) {
		g.indent = indent
	}
}

// ValidateUTF8 makes String verify its input is well-formed UTF-8 before
// emitting it.
func ValidateUTF8() Opt {
	return func(g *Generator) {
		g.validateUTF8 = true
	}
}

// EscapeSolidus makes the generator escape '/' as '\/'. JSON does not
// require this; by default the byte is saved.
func EscapeSolidus() Opt {
	return func(g *Generator) {
		g.escapeSolidus = true
	}
}

// WithAlloc routes the internal buffer's allocation through the given
// hooks.
func WithAlloc(hooks alloc.Funcs) Opt {
	return func(g *Generator) {
		g.alloc = hooks
	}
}

// Generator is an output state machine producing well-formed JSON text.
type Generator struct {
	alloc alloc.Funcs

	depth int
	state [MaxDepth]byte

	indent        string
	beautify      bool
	validateUTF8  bool
	escapeSolidus bool

	// output sink: either the internal buffer or a client callback
	print func([]byte)
	buf   *buf.Buffer
}

// New creates a generator writing into an internal buffer accessible via
// Buf.
func New(opts ...Opt) (*Generator, error) {
	g := &Generator{indent: "  "}
	for _, opt := range opts {
		opt(g)
	}

	resolved, err := g.alloc.Resolve()
	if err != nil {
		return nil, err
	}
	g.alloc = resolved

	g.buf, err = buf.New(g.alloc)
	if err != nil {
		return nil, err
	}
	g.print = g.buf.Append

	return g, nil
}

// PrintCallback installs fn as the output sink. The internal buffer, no
// longer reachable, is released.
func (g *Generator) PrintCallback(fn func([]byte)) {
	if g.buf != nil {
		g.buf.Free()
		g.buf = nil
	}
	g.print = fn
}

// Buf returns the generated output accumulated in the internal buffer. It
// fails with ErrNoBuf when a print callback is installed.
func (g *Generator) Buf() ([]byte, error) {
	if g.buf == nil {
		return nil, ErrNoBuf
	}
	return g.buf.Data(), nil
}

// Clear empties the internal output buffer but keeps all generation state,
// enabling incremental output of a single large document.
func (g *Generator) Clear() {
	if g.buf != nil {
		g.buf.Clear()
	}
}

// Reset returns the generator to its initial state so a client can
// generate multiple JSON entities in one stream. sep, when non-empty, is
// written to separate the previous entity from the next; clients beware,
// generating multiple numbers without a separator yields ambiguous output.
// Reset does not clear the internal buffer.
func (g *Generator) Reset(sep string) {
	g.depth = 0
	g.state = [MaxDepth]byte{}
	if sep != "" {
		g.print([]byte(sep))
	}
}

// Free releases the internal buffer, if any.
func (g *Generator) Free() {
	if g.buf != nil {
		g.buf.Free()
		g.buf = nil
	}
}

// fail records the error state at the current depth before reporting err.
func (g *Generator) fail(err error) error {
	g.state[g.depth] = stateError
	return err
}

// ensureValidState checks the generator is in a state where generating is
// possible at all.
func (g *Generator) ensureValidState() error {
	switch g.state[g.depth] {
	case stateError:
		return ErrInErrorState
	case stateComplete:
		return ErrGenerationComplete
	}
	return nil
}

// ensureNotKey rejects non-string output at a point where a map key is
// expected.
func (g *Generator) ensureNotKey() error {
	if g.state[g.depth] == stateMapKey || g.state[g.depth] == stateMapStart {
		return g.fail(ErrKeysMustBeStrings)
	}
	return nil
}

// insertSep writes the separator the current state calls for: ',' between
// container members, ':' between a key and its value.
func (g *Generator) insertSep() {
	switch g.state[g.depth] {
	case stateMapKey, stateInArray:
		g.print([]byte{','})
		if g.beautify {
			g.print([]byte{'\n'})
		}
	case stateMapVal:
		g.print([]byte{':'})
		if g.beautify {
			g.print([]byte{' '})
		}
	}
}

// insertWhitespace indents to the current depth when beautifying, except
// directly after a key separator.
func (g *Generator) insertWhitespace() {
	if !g.beautify || g.state[g.depth] == stateMapVal {
		return
	}
	for i := 0; i < g.depth; i++ {
		g.print([]byte(g.indent))
	}
}

// appendedAtom advances the state at the current depth after an atom or a
// closed container was emitted.
func (g *Generator) appendedAtom() {
	switch g.state[g.depth] {
	case stateStart:
		g.state[g.depth] = stateComplete
	case stateMapStart, stateMapKey:
		g.state[g.depth] = stateMapVal
	case stateArrayStart:
		g.state[g.depth] = stateInArray
	case stateMapVal:
		g.state[g.depth] = stateMapKey
	}
}

// finalNewline terminates a beautified document with a newline.
func (g *Generator) finalNewline() {
	if g.beautify && g.state[g.depth] == stateComplete {
		g.print([]byte{'\n'})
	}
}

// Integer generates a JSON integer.
func (g *Generator) Integer(number int64) error {
	if err := g.ensureValidState(); err != nil {
		return err
	}
	if err := g.ensureNotKey(); err != nil {
		return err
	}
	g.insertSep()
	g.insertWhitespace()
	g.print(strconv.AppendInt(nil, number, 10))
	g.appendedAtom()
	g.finalNewline()
	return nil
}

// Double generates a JSON number from a float. NaN and infinities have no
// representation in JSON and are rejected.
func (g *Generator) Double(number float64) error {
	if err := g.ensureValidState(); err != nil {
		return err
	}
	if err := g.ensureNotKey(); err != nil {
		return err
	}
	if math.IsNaN(number) || math.IsInf(number, 0) {
		return g.fail(ErrInvalidNumber)
	}
	g.insertSep()
	g.insertWhitespace()
	formatted := strconv.FormatFloat(number, 'g', 20, 64)
	if !strings.ContainsAny(formatted, ".eE") {
		// ensure the text re-parses as a double, not an integer
		formatted += ".0"
	}
	g.print([]byte(formatted))
	g.appendedAtom()
	g.finalNewline()
	return nil
}

// Number generates a number from its string form. The digits are the
// caller's responsibility, the generator passes them through untouched.
func (g *Generator) Number(num []byte) error {
	if err := g.ensureValidState(); err != nil {
		return err
	}
	if err := g.ensureNotKey(); err != nil {
		return err
	}
	g.insertSep()
	g.insertWhitespace()
	g.print(num)
	g.appendedAtom()
	g.finalNewline()
	return nil
}

// String generates a JSON string, escaping as needed.
func (g *Generator) String(str []byte) error {
	if g.validateUTF8 && !encode.ValidateUTF8(str) {
		return g.fail(ErrInvalidString)
	}
	if err := g.ensureValidState(); err != nil {
		return err
	}
	g.insertSep()
	g.insertWhitespace()
	g.print([]byte{'"'})
	encode.StringEncode(g.print, str, g.escapeSolidus)
	g.print([]byte{'"'})
	g.appendedAtom()
	g.finalNewline()
	return nil
}

// Null generates a JSON null.
func (g *Generator) Null() error {
	if err := g.ensureValidState(); err != nil {
		return err
	}
	if err := g.ensureNotKey(); err != nil {
		return err
	}
	g.insertSep()
	g.insertWhitespace()
	g.print([]byte("null"))
	g.appendedAtom()
	g.finalNewline()
	return nil
}

// Bool generates a JSON boolean.
func (g *Generator) Bool(val bool) error {
	if err := g.ensureValidState(); err != nil {
		return err
	}
	if err := g.ensureNotKey(); err != nil {
		return err
	}
	g.insertSep()
	g.insertWhitespace()
	if val {
		g.print([]byte("true"))
	} else {
		g.print([]byte("false"))
	}
	g.appendedAtom()
	g.finalNewline()
	return nil
}

// MapOpen begins a JSON object.
func (g *Generator) MapOpen() error {
	if err := g.ensureValidState(); err != nil {
		return err
	}
	if err := g.ensureNotKey(); err != nil {
		return err
	}
	g.insertSep()
	g.insertWhitespace()
	if g.depth+1 >= MaxDepth {
		return g.fail(ErrMaxDepthExceeded)
	}
	g.depth++
	g.state[g.depth] = stateMapStart
	g.print([]byte{'{'})
	if g.beautify {
		g.print([]byte{'\n'})
	}
	g.finalNewline()
	return nil
}

// MapClose ends the innermost open JSON object.
func (g *Generator) MapClose() error {
	if err := g.ensureValidState(); err != nil {
		return err
	}
	if g.depth == 0 {
		return ErrGenerationComplete
	}
	g.depth--
	if g.beautify {
		g.print([]byte{'\n'})
	}
	g.appendedAtom()
	g.insertWhitespace()
	g.print([]byte{'}'})
	g.finalNewline()
	return nil
}

// ArrayOpen begins a JSON array.
func (g *Generator) ArrayOpen() error {
	if err := g.ensureValidState(); err != nil {
		return err
	}
	if err := g.ensureNotKey(); err != nil {
		return err
	}
	g.insertSep()
	g.insertWhitespace()
	if g.depth+1 >= MaxDepth {
		return g.fail(ErrMaxDepthExceeded)
	}
	g.depth++
	g.state[g.depth] = stateArrayStart
	g.print([]byte{'['})
	if g.beautify {
		g.print([]byte{'\n'})
	}
	g.finalNewline()
	return nil
}

// ArrayClose ends the innermost open JSON array.
func (g *Generator) ArrayClose() error {
	if err := g.ensureValidState(); err != nil {
		return err
	}
	if g.depth == 0 {
		return ErrGenerationComplete
	}
	g.depth--
	if g.beautify {
		g.print([]byte{'\n'})
	}
	g.appendedAtom()
	g.insertWhitespace()
	g.print([]byte{']'})
	g.finalNewline()
	return nil
}
