package parser

import "github.com/aledsdavies/jsonstream/runtime/alloc"

// Opt configures a Parser. All options default to off.
type Opt func(*Parser)

// AllowComments makes the parser skip javascript style // and /* */
// comments in the input. Non-standard, but rather fun.
func AllowComments() Opt {
	return func(p *Parser) {
		p.allowComments = true
	}
}

// DontValidateStrings disables the UTF-8 check on input strings, which
// saves a table lookup per string byte.
func DontValidateStrings() Opt {
	return func(p *Parser) {
		p.dontValidateStrings = true
	}
}

// AllowTrailingGarbage suppresses the check that the entire input was
// consumed after the top-level value. Useful when JSON is embedded in a
// larger stream.
func AllowTrailingGarbage() Opt {
	return func(p *Parser) {
		p.allowTrailingGarbage = true
	}
}

// AllowMultipleValues lets one handle parse a whole stream of top-level
// values separated by whitespace, instead of completing after the first.
func AllowMultipleValues() Opt {
	return func(p *Parser) {
		p.allowMultipleValues = true
	}
}

// AllowPartialValues suppresses the premature-EOF check in Finish, so a
// stream may end in the middle of a value.
func AllowPartialValues() Opt {
	return func(p *Parser) {
		p.allowPartialValues = true
	}
}

// WithAlloc routes all internal allocation through the given hooks.
func WithAlloc(hooks alloc.Funcs) Opt {
	return func(p *Parser) {
		p.alloc = hooks
	}
}
