// Package parser implements an event driven JSON parser: as elements are
// recognized in the input stream, the client's callbacks are invoked in
// document order. Input may be fed in arbitrary-sized chunks; parsing
// resumes exactly where the previous chunk ended.
package parser

import (
	"math"
	"strconv"

	"github.com/aledsdavies/jsonstream/runtime/alloc"
	"github.com/aledsdavies/jsonstream/runtime/buf"
	"github.com/aledsdavies/jsonstream/runtime/bytestack"
	"github.com/aledsdavies/jsonstream/runtime/encode"
	"github.com/aledsdavies/jsonstream/runtime/lexer"
)

// Parser states, kept on an explicit byte stack whose depth mirrors the
// JSON nesting depth. The stack replaces recursion: memory use is bounded
// deterministically even for adversarially deep input.
const (
	stateStart byte = iota
	stateParseComplete
	stateParseError
	stateLexicalError
	stateMapStart
	stateMapSep
	stateMapNeedVal
	stateMapGotVal
	stateMapNeedKey
	stateArrayStart
	stateArrayGotVal
	stateArrayNeedVal
	stateGotValue
)

// Parser is a pushdown JSON parser over a chunk-tolerant lexer.
type Parser struct {
	callbacks Callbacks
	alloc     alloc.Funcs
	lexer     *lexer.Lexer

	// static message describing the current parse error, if any
	parseError string

	// the number of bytes consumed from the last chunk; after an error
	// this is the error offset into that chunk
	bytesConsumed int

	// temporary storage for decoded strings and number text
	decodeBuf *buf.Buffer

	stack bytestack.Stack

	allowComments        bool
	dontValidateStrings  bool
	allowTrailingGarbage bool
	allowMultipleValues  bool
	allowPartialValues   bool
}

// New creates a parser dispatching to the given callbacks.
func New(callbacks Callbacks, opts ...Opt) (*Parser, error) {
	p := &Parser{callbacks: callbacks}
	for _, opt := range opts {
		opt(p)
	}

	resolved, err := p.alloc.Resolve()
	if err != nil {
		return nil, err
	}
	p.alloc = resolved

	p.decodeBuf, err = buf.New(p.alloc)
	if err != nil {
		return nil, err
	}

	var lexOpts []lexer.Opt
	if p.allowComments {
		lexOpts = append(lexOpts, lexer.AllowComments())
	}
	if !p.dontValidateStrings {
		lexOpts = append(lexOpts, lexer.ValidateUTF8())
	}
	p.lexer, err = lexer.New(p.alloc, lexOpts...)
	if err != nil {
		return nil, err
	}

	p.stack.Init(p.alloc)
	p.stack.Push(stateStart)

	return p, nil
}

// Free releases the parser's internal buffers and its lexer.
func (p *Parser) Free() {
	p.stack.Free()
	p.decodeBuf.Free()
	p.lexer.Free()
}

// BytesConsumed returns how much of the most recent chunk was absorbed. On
// success this equals the chunk length; after an error it points into the
// offending region.
func (p *Parser) BytesConsumed() int {
	return p.bytesConsumed
}

// cancel flips the parser into its terminal error state after a callback
// returned false.
func (p *Parser) cancel() error {
	p.stack.Set(stateParseError)
	p.parseError = "client cancelled parse via callback return value"
	return ErrClientCancelled
}

// rewindOffset moves bytesConsumed back over the just-lexed token so the
// error offset points at the token itself.
func (p *Parser) rewindOffset(tokenLen int) {
	if p.bytesConsumed >= tokenLen {
		p.bytesConsumed -= tokenLen
	} else {
		p.bytesConsumed = 0
	}
}

// Parse consumes a chunk of JSON text. A nil return means all available
// bytes were absorbed and parsing is suspended until the next chunk; call
// Finish after the last one.
func (p *Parser) Parse(chunk []byte) error {
	var tok lexer.TokenType
	var lit []byte

	p.bytesConsumed = 0
	offset := &p.bytesConsumed

	for {
		switch p.stack.Current() {
		case stateParseComplete:
			if p.allowMultipleValues {
				p.stack.Set(stateGotValue)
				continue
			}
			if !p.allowTrailingGarbage && *offset != len(chunk) {
				tok, _ = p.lexer.Lex(chunk, offset)
				if tok != lexer.EOF {
					p.stack.Set(stateParseError)
					p.parseError = "trailing garbage"
				}
				continue
			}
			return nil

		case stateLexicalError, stateParseError:
			return ErrParse

		case stateStart, stateGotValue, stateMapNeedVal, stateArrayNeedVal, stateArrayStart:
			// a value is expected here.  For maps and arrays the state at
			// this depth advances, then the state of the next depth is
			// pushed.
			stateToPush := stateStart

			tok, lit = p.lexer.Lex(chunk, offset)

			switch tok {
			case lexer.EOF:
				return nil

			case lexer.ERROR:
				p.stack.Set(stateLexicalError)
				continue

			case lexer.STRING:
				if p.callbacks.OnString != nil {
					if !p.callbacks.OnString(lit) {
						return p.cancel()
					}
				}

			case lexer.STRING_WITH_ESCAPES:
				if p.callbacks.OnString != nil {
					p.decodeBuf.Clear()
					encode.StringDecode(p.decodeBuf, lit)
					if !p.callbacks.OnString(p.decodeBuf.Data()) {
						return p.cancel()
					}
				}

			case lexer.BOOL:
				if p.callbacks.OnBool != nil {
					if !p.callbacks.OnBool(lit[0] == 't') {
						return p.cancel()
					}
				}

			case lexer.NULL:
				if p.callbacks.OnNull != nil {
					if !p.callbacks.OnNull() {
						return p.cancel()
					}
				}

			case lexer.LBRACE:
				if p.callbacks.OnStartMap != nil {
					if !p.callbacks.OnStartMap() {
						return p.cancel()
					}
				}
				stateToPush = stateMapStart

			case lexer.LSQUARE:
				if p.callbacks.OnStartArray != nil {
					if !p.callbacks.OnStartArray() {
						return p.cancel()
					}
				}
				stateToPush = stateArrayStart

			case lexer.INTEGER:
				if p.callbacks.OnNumber != nil {
					if !p.callbacks.OnNumber(lit) {
						return p.cancel()
					}
				} else if p.callbacks.OnInteger != nil {
					i, overflow := ParseInteger(lit)
					if overflow {
						p.stack.Set(stateParseError)
						p.parseError = "integer overflow"
						p.rewindOffset(len(lit))
						continue
					}
					if !p.callbacks.OnInteger(i) {
						return p.cancel()
					}
				}

			case lexer.DOUBLE:
				if p.callbacks.OnNumber != nil {
					if !p.callbacks.OnNumber(lit) {
						return p.cancel()
					}
				} else if p.callbacks.OnDouble != nil {
					// copy the token so the text handed to the float
					// parser is contiguous and owned by the parser
					p.decodeBuf.Clear()
					p.decodeBuf.Append(lit)
					d, err := strconv.ParseFloat(string(p.decodeBuf.Data()), 64)
					if err != nil && math.IsInf(d, 0) {
						p.stack.Set(stateParseError)
						p.parseError = "numeric (floating point) overflow"
						p.rewindOffset(len(lit))
						continue
					}
					if !p.callbacks.OnDouble(d) {
						return p.cancel()
					}
				}

			case lexer.RSQUARE:
				// ']' closes an empty array; in every other value
				// expecting state it is as unallowed as the tokens below
				if p.stack.Current() == stateArrayStart {
					if p.callbacks.OnEndArray != nil {
						if !p.callbacks.OnEndArray() {
							return p.cancel()
						}
					}
					p.stack.Pop()
					continue
				}
				fallthrough

			case lexer.COLON, lexer.COMMA, lexer.RBRACE:
				p.stack.Set(stateParseError)
				p.parseError = "unallowed token at this point in JSON text"
				continue

			default:
				p.stack.Set(stateParseError)
				p.parseError = "invalid token, internal error"
				continue
			}

			// got a value; the transition depends on the state we're in
			switch p.stack.Current() {
			case stateStart, stateGotValue:
				p.stack.Set(stateParseComplete)
			case stateMapNeedVal:
				p.stack.Set(stateMapGotVal)
			default:
				p.stack.Set(stateArrayGotVal)
			}
			if stateToPush != stateStart {
				p.stack.Push(stateToPush)
			}
			continue

		case stateMapStart, stateMapNeedKey:
			// the only difference between these two states is that in
			// map_start '}' is valid, whereas in need_key a comma has been
			// parsed and a string key must follow
			tok, lit = p.lexer.Lex(chunk, offset)

			switch tok {
			case lexer.EOF:
				return nil

			case lexer.ERROR:
				p.stack.Set(stateLexicalError)
				continue

			case lexer.STRING, lexer.STRING_WITH_ESCAPES:
				if p.callbacks.OnMapKey != nil {
					key := lit
					if tok == lexer.STRING_WITH_ESCAPES {
						p.decodeBuf.Clear()
						encode.StringDecode(p.decodeBuf, lit)
						key = p.decodeBuf.Data()
					}
					if !p.callbacks.OnMapKey(key) {
						return p.cancel()
					}
				}
				p.stack.Set(stateMapSep)
				continue

			case lexer.RBRACE:
				if p.stack.Current() == stateMapStart {
					if p.callbacks.OnEndMap != nil {
						if !p.callbacks.OnEndMap() {
							return p.cancel()
						}
					}
					p.stack.Pop()
					continue
				}
				p.stack.Set(stateParseError)
				p.parseError = "invalid object key (must be a string)"
				continue

			default:
				p.stack.Set(stateParseError)
				p.parseError = "invalid object key (must be a string)"
				continue
			}

		case stateMapSep:
			tok, _ = p.lexer.Lex(chunk, offset)

			switch tok {
			case lexer.COLON:
				p.stack.Set(stateMapNeedVal)
				continue
			case lexer.EOF:
				return nil
			case lexer.ERROR:
				p.stack.Set(stateLexicalError)
				continue
			default:
				p.stack.Set(stateParseError)
				p.parseError = "object key and value must be separated by a colon (':')"
				continue
			}

		case stateMapGotVal:
			tok, lit = p.lexer.Lex(chunk, offset)

			switch tok {
			case lexer.RBRACE:
				if p.callbacks.OnEndMap != nil {
					if !p.callbacks.OnEndMap() {
						return p.cancel()
					}
				}
				p.stack.Pop()
				continue
			case lexer.COMMA:
				p.stack.Set(stateMapNeedKey)
				continue
			case lexer.EOF:
				return nil
			case lexer.ERROR:
				p.stack.Set(stateLexicalError)
				continue
			default:
				p.stack.Set(stateParseError)
				p.parseError = "after key and value, inside map, I expect ',' or '}'"
				p.rewindOffset(len(lit))
				continue
			}

		case stateArrayGotVal:
			tok, _ = p.lexer.Lex(chunk, offset)

			switch tok {
			case lexer.RSQUARE:
				if p.callbacks.OnEndArray != nil {
					if !p.callbacks.OnEndArray() {
						return p.cancel()
					}
				}
				p.stack.Pop()
				continue
			case lexer.COMMA:
				p.stack.Set(stateArrayNeedVal)
				continue
			case lexer.EOF:
				return nil
			case lexer.ERROR:
				p.stack.Set(stateLexicalError)
				continue
			default:
				p.stack.Set(stateParseError)
				p.parseError = "after array element, I expect ',' or ']'"
				continue
			}

		default:
			return ErrParse
		}
	}
}

// Finish parses any remaining buffered input. Without an explicit end of
// input the parser sometimes cannot decide whether content at the end of
// the stream is complete; "1" might be a whole number or the start of
// "10". Finish resolves that ambiguity and verifies the document was
// complete.
func (p *Parser) Finish() error {
	if err := p.Parse([]byte(" ")); err != nil {
		return err
	}

	switch p.stack.Current() {
	case stateParseError, stateLexicalError:
		return ErrParse
	case stateGotValue, stateParseComplete:
		return nil
	default:
		if !p.allowPartialValues {
			p.stack.Set(stateParseError)
			p.parseError = "premature EOF"
			return ErrParse
		}
		return nil
	}
}
