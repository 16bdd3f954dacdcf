package parser

import "errors"

// Statuses returned by Parse and Finish. Details about a parse error are
// available through ErrorString and BytesConsumed.
var (
	// ErrClientCancelled reports that a callback returned false.
	ErrClientCancelled = errors.New("client cancelled parse")
	// ErrParse reports a lexical or syntactic error in the input.
	ErrParse = errors.New("parse error")
)

// StatusString renders a status the way the library has always spelled
// them.
func StatusString(err error) string {
	switch {
	case err == nil:
		return "ok, no error"
	case errors.Is(err, ErrClientCancelled):
		return "client canceled parse"
	case errors.Is(err, ErrParse):
		return "parse error"
	default:
		return "unknown"
	}
}
