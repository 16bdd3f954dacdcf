package lexer

import (
	"github.com/aledsdavies/jsonstream/runtime/alloc"
	"github.com/aledsdavies/jsonstream/runtime/buf"
	"github.com/aledsdavies/jsonstream/runtime/encode"
)

/* Impact of stream parsing on the lexer:

   The library parses the first bits of a JSON document before the last
   bits are available (still on the network or disk). The lexer's job is to
   handle transparently the case where a chunk boundary falls in the middle
   of a token. This is accomplished via a reassembly buffer and a character
   reading abstraction.

   When the current chunk ends before the end of a token, all input text
   composing the token so far is copied into the reassembly buffer. Every
   character is read through readChr, which drains the reassembly buffer
   before touching the live chunk. The next completed token is then
   reported as a slice into the reassembly buffer rather than the chunk. */

// Opt configures a Lexer.
type Opt func(*Lexer)

// AllowComments makes the lexer skip // line and /* block */ comments
// instead of treating them as errors.
func AllowComments() Opt {
	return func(l *Lexer) {
		l.allowComments = true
	}
}

// ValidateUTF8 makes the lexer verify that string contents are well-formed
// UTF-8.
func ValidateUTF8() Opt {
	return func(l *Lexer) {
		l.validateUTF8 = true
	}
}

// Lexer tokenizes JSON fed in arbitrary-sized chunks.
type Lexer struct {
	alloc alloc.Funcs

	// overall line and char offset into the data
	lineOff int
	charOff int

	err Error

	// reassembly holds the bytes of a token spread over multiple chunks;
	// reassemblyOff is the read cursor while serving them back
	reassembly       *buf.Buffer
	reassemblyOff    int
	reassemblyActive bool

	allowComments bool
	validateUTF8  bool
}

// New creates a lexer allocating through the given hooks. Zero-value hooks
// resolve to the defaults; incomplete hooks are rejected.
func New(hooks alloc.Funcs, opts ...Opt) (*Lexer, error) {
	resolved, err := hooks.Resolve()
	if err != nil {
		return nil, err
	}
	reassembly, err := buf.New(resolved)
	if err != nil {
		return nil, err
	}
	l := &Lexer{
		alloc:      resolved,
		reassembly: reassembly,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Free releases the reassembly buffer.
func (l *Lexer) Free() {
	l.reassembly.Free()
}

// Err returns the error code of the most recent ERROR token.
func (l *Lexer) Err() Error {
	return l.err
}

// CurrentLine returns the number of newlines seen so far between tokens.
// Newlines inside comments are not counted.
func (l *Lexer) CurrentLine() int {
	return l.lineOff
}

// CurrentChar returns the number of chars seen since the last newline. A
// string token counts its interior only, without the quotes, and comment
// text is not counted.
func (l *Lexer) CurrentChar() int {
	return l.charOff
}

// readChr serves the next character, draining the reassembly buffer before
// consuming chunk bytes.
func (l *Lexer) readChr(chunk []byte, offset *int) byte {
	if l.reassemblyActive && l.reassemblyOff < l.reassembly.Len() {
		c := l.reassembly.Data()[l.reassemblyOff]
		l.reassemblyOff++
		return c
	}
	c := chunk[*offset]
	*offset++
	return c
}

// unreadChr rewinds the last read, preferring the chunk cursor when it has
// moved.
func (l *Lexer) unreadChr(offset *int) {
	if *offset > 0 {
		*offset--
	} else {
		l.reassemblyOff--
	}
}

// utf8Char consumes the continuation bytes of a UTF-8 sequence whose
// leading byte c has already been read. It returns STRING when the
// sequence is complete, EOF when input ran out mid-sequence, and ERROR on
// a malformed sequence.
func (l *Lexer) utf8Char(chunk []byte, offset *int, c byte) TokenType {
	cont := func() (byte, bool) {
		if *offset >= len(chunk) && !(l.reassemblyActive && l.reassemblyOff < l.reassembly.Len()) {
			return 0, false
		}
		return l.readChr(chunk, offset), true
	}

	var need int
	switch {
	case c <= 0x7F:
		return STRING
	case c>>5 == 0x6:
		need = 1
	case c>>4 == 0x0E:
		need = 2
	case c>>3 == 0x1E:
		need = 3
	default:
		return ERROR
	}

	for i := 0; i < need; i++ {
		cur, ok := cont()
		if !ok {
			return EOF
		}
		if cur>>6 != 0x2 {
			return ERROR
		}
	}
	return STRING
}

// atEOF reports whether no further character can be served: the reassembly
// cursor is exhausted and the chunk cursor has reached the end.
func (l *Lexer) atEOF(chunk []byte, offset int) bool {
	if l.reassemblyActive && l.reassemblyOff < l.reassembly.Len() {
		return false
	}
	return offset >= len(chunk)
}

// lexString scans a string whose opening quote has been consumed. It
// returns STRING (offset past the terminating quote), EOF when the chunk
// ran out first, or ERROR with the offset at the offending char. A string
// containing escapes is upgraded to STRING_WITH_ESCAPES.
func (l *Lexer) lexString(chunk []byte, offset *int) TokenType {
	tok := ERROR
	hasEscapes := false

scan:
	for {
		// fast-scan past as much plain content as possible
		if l.reassemblyActive && l.reassembly.Len() > 0 && l.reassemblyOff < l.reassembly.Len() {
			l.reassemblyOff += stringScan(l.reassembly.Data()[l.reassemblyOff:], l.validateUTF8)
		} else if *offset < len(chunk) {
			*offset += stringScan(chunk[*offset:], l.validateUTF8)
		}

		if l.atEOF(chunk, *offset) {
			tok = EOF
			break scan
		}

		c := l.readChr(chunk, offset)

		switch {
		case c == '"':
			tok = STRING
			break scan

		case c == '\\':
			hasEscapes = true
			if l.atEOF(chunk, *offset) {
				tok = EOF
				break scan
			}
			c = l.readChr(chunk, offset)
			if c == 'u' {
				for i := 0; i < 4; i++ {
					if l.atEOF(chunk, *offset) {
						tok = EOF
						break scan
					}
					c = l.readChr(chunk, offset)
					if charLookup[c]&charVHC == 0 {
						l.unreadChr(offset)
						l.err = ErrStringInvalidHexChar
						break scan
					}
				}
			} else if charLookup[c]&charVEC == 0 {
				l.unreadChr(offset)
				l.err = ErrStringInvalidEscapedChar
				break scan
			}

		case charLookup[c]&charIJC != 0:
			l.unreadChr(offset)
			l.err = ErrStringInvalidJSONChar
			break scan

		case l.validateUTF8:
			switch l.utf8Char(chunk, offset, c) {
			case EOF:
				tok = EOF
				break scan
			case ERROR:
				l.err = ErrStringInvalidUTF8
				break scan
			}
		}
	}

	if hasEscapes && tok == STRING {
		tok = STRING_WITH_ESCAPES
	}
	return tok
}

// lexNumber scans a number starting at the current position. Numbers are
// the only JSON entities that must be read one char beyond their end to be
// recognized as complete, so the char following the number is always
// unread before returning.
func (l *Lexer) lexNumber(chunk []byte, offset *int) TokenType {
	tok := INTEGER

	if l.atEOF(chunk, *offset) {
		return EOF
	}
	c := l.readChr(chunk, offset)

	// optional leading minus
	if c == '-' {
		if l.atEOF(chunk, *offset) {
			return EOF
		}
		c = l.readChr(chunk, offset)
	}

	// a single zero, or a series of digits
	if c == '0' {
		if l.atEOF(chunk, *offset) {
			return EOF
		}
		c = l.readChr(chunk, offset)
	} else if c >= '1' && c <= '9' {
		for c >= '0' && c <= '9' {
			if l.atEOF(chunk, *offset) {
				return EOF
			}
			c = l.readChr(chunk, offset)
		}
	} else {
		l.unreadChr(offset)
		l.err = ErrMissingIntegerAfterMinus
		return ERROR
	}

	// optional fraction promotes the token to a double
	if c == '.' {
		numRd := 0
		if l.atEOF(chunk, *offset) {
			return EOF
		}
		c = l.readChr(chunk, offset)
		for c >= '0' && c <= '9' {
			numRd++
			if l.atEOF(chunk, *offset) {
				return EOF
			}
			c = l.readChr(chunk, offset)
		}
		if numRd == 0 {
			l.unreadChr(offset)
			l.err = ErrMissingIntegerAfterDecimal
			return ERROR
		}
		tok = DOUBLE
	}

	// optional exponent also promotes to a double
	if c == 'e' || c == 'E' {
		if l.atEOF(chunk, *offset) {
			return EOF
		}
		c = l.readChr(chunk, offset)
		if c == '+' || c == '-' {
			if l.atEOF(chunk, *offset) {
				return EOF
			}
			c = l.readChr(chunk, offset)
		}
		if c >= '0' && c <= '9' {
			for c >= '0' && c <= '9' {
				if l.atEOF(chunk, *offset) {
					return EOF
				}
				c = l.readChr(chunk, offset)
			}
		} else {
			l.unreadChr(offset)
			l.err = ErrMissingIntegerAfterExponent
			return ERROR
		}
		tok = DOUBLE
	}

	// we always go one too far
	l.unreadChr(offset)
	return tok
}

// lexComment scans a comment whose leading '/' has been consumed.
func (l *Lexer) lexComment(chunk []byte, offset *int) TokenType {
	if l.atEOF(chunk, *offset) {
		return EOF
	}
	c := l.readChr(chunk, offset)

	switch c {
	case '/':
		// line comment: discard to end of line
		for c != '\n' {
			if l.atEOF(chunk, *offset) {
				return EOF
			}
			c = l.readChr(chunk, offset)
		}
	case '*':
		// block comment: discard until star-slash
		for {
			if l.atEOF(chunk, *offset) {
				return EOF
			}
			c = l.readChr(chunk, offset)
			if c != '*' {
				continue
			}
			if l.atEOF(chunk, *offset) {
				return EOF
			}
			c = l.readChr(chunk, offset)
			if c == '/' {
				break
			}
			l.unreadChr(offset)
		}
	default:
		l.err = ErrInvalidChar
		return ERROR
	}
	return COMMENT
}

// Lex scans the next token from chunk starting at *offset, advancing
// *offset past the consumed bytes. offset must be reset to zero for each
// new chunk. The returned slice points into chunk when the token fits a
// single chunk and into the reassembly buffer otherwise; it remains valid
// only until the next call. String tokens report their interior, quotes
// excluded. EOF means more input is needed, ERROR details are available
// via Err().
func (l *Lexer) Lex(chunk []byte, offset *int) (TokenType, []byte) {
	tok := ERROR
	startOff := *offset

dispatch:
	for {
		if l.atEOF(chunk, *offset) {
			tok = EOF
			break dispatch
		}

		c := l.readChr(chunk, offset)

		switch c {
		case '{':
			tok = LBRACE
			break dispatch
		case '}':
			tok = RBRACE
			break dispatch
		case '[':
			tok = LSQUARE
			break dispatch
		case ']':
			tok = RSQUARE
			break dispatch
		case ',':
			tok = COMMA
			break dispatch
		case ':':
			tok = COLON
			break dispatch
		case '\t', '\n', '\v', '\f', '\r', ' ':
			startOff = *offset
			if c == '\n' {
				l.lineOff++
				l.charOff = 0
			} else {
				l.charOff++
			}
		case 't', 'f', 'n':
			want := "rue"
			lit := BOOL
			switch c {
			case 'f':
				want = "alse"
			case 'n':
				want = "ull"
				lit = NULL
			}
			for i := 0; i < len(want); i++ {
				if l.atEOF(chunk, *offset) {
					tok = EOF
					break dispatch
				}
				c = l.readChr(chunk, offset)
				if c != want[i] {
					l.unreadChr(offset)
					l.err = ErrInvalidString
					tok = ERROR
					break dispatch
				}
			}
			tok = lit
			break dispatch
		case '"':
			tok = l.lexString(chunk, offset)
			break dispatch
		case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			// number scanning wants to start from the first char
			l.unreadChr(offset)
			tok = l.lexNumber(chunk, offset)
			break dispatch
		case '/':
			// probable comment; an error when comments are disabled
			if !l.allowComments {
				l.unreadChr(offset)
				l.err = ErrUnallowedComment
				tok = ERROR
				break dispatch
			}
			tok = l.lexComment(chunk, offset)
			if tok == COMMENT {
				// comment consumed, drop it and keep scanning
				l.reassembly.Clear()
				l.reassemblyActive = false
				startOff = *offset
				tok = ERROR
				continue dispatch
			}
			// hit error or eof, bail
			break dispatch
		default:
			l.err = ErrInvalidChar
			tok = ERROR
			break dispatch
		}
	}

	var reportBuf []byte

	// a straddling token accumulates in the reassembly buffer: on EOF the
	// partial bytes are stashed, and the completing call publishes out of
	// the buffer instead of the chunk
	if tok == EOF || l.reassemblyActive {
		if !l.reassemblyActive {
			l.reassembly.Clear()
		}
		l.reassemblyActive = true
		l.reassembly.Append(chunk[startOff:*offset])
		l.reassemblyOff = 0

		if tok != EOF {
			reportBuf = l.reassembly.Data()
			l.reassemblyActive = false
		}
	} else if tok != ERROR {
		reportBuf = chunk[startOff:*offset]
	}

	// strings report their interior: skip the quotes
	if tok == STRING || tok == STRING_WITH_ESCAPES {
		reportBuf = reportBuf[1 : len(reportBuf)-1]
	}

	if tok != EOF {
		l.charOff += len(reportBuf)
	}

	return tok, reportBuf
}

// Peek reports the next token without moving the lexer forward.
func (l *Lexer) Peek(chunk []byte, offset int) TokenType {
	reassemblyLen := l.reassembly.Len()
	reassemblyOff := l.reassemblyOff
	reassemblyActive := l.reassemblyActive

	tok, _ := l.Lex(chunk, &offset)

	l.reassemblyOff = reassemblyOff
	l.reassemblyActive = reassemblyActive
	l.reassembly.Truncate(reassemblyLen)

	return tok
}

// Finalize flushes a pending token whose end was ambiguous at the end of
// input, by lexing a single space. This is only ever needed for numbers,
// which have no terminator of their own.
func (l *Lexer) Finalize(offset int) TokenType {
	tok, _ := l.Lex([]byte(" "), &offset)
	return tok
}

// Unescape decodes an escaped string interior into a freshly allocated
// slice owned by the caller.
func (l *Lexer) Unescape(s []byte) []byte {
	decodeBuf, err := buf.New(l.alloc)
	if err != nil {
		return nil
	}
	encode.StringDecode(decodeBuf, s)
	return decodeBuf.Fetch()
}
