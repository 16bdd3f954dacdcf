package parser

import "strings"

// arrow points at column 41 of the preceding excerpt line.
const arrow = "                     (right here) ------^\n"

// ErrorString renders a human readable description of the current error
// state as "<kind> error: <text>\n". With verbose set, a second line shows
// up to 60 characters of the chunk centered on the error offset (newlines
// blanked so the excerpt stays on one line) and a third line points at the
// offending column.
func (p *Parser) ErrorString(verbose bool, chunk []byte) string {
	offset := p.bytesConsumed
	errorType := "unknown"
	errorText := ""

	switch p.stack.Current() {
	case stateParseError:
		errorType = "parse"
		errorText = p.parseError
	case stateLexicalError:
		errorType = "lexical"
		errorText = p.lexer.Err().String()
	}

	var sb strings.Builder
	sb.WriteString(errorType)
	sb.WriteString(" error")
	if errorText != "" {
		sb.WriteString(": ")
		sb.WriteString(errorText)
	}
	sb.WriteByte('\n')

	// pad so the offending char falls at column 41, where the arrow points
	if verbose {
		spacesNeeded := 10
		if offset < 30 {
			spacesNeeded = 40 - offset
		}
		start := 0
		if offset >= 30 {
			start = offset - 30
		}
		end := offset + 30
		if end > len(chunk) {
			end = len(chunk)
		}

		for i := 0; i < spacesNeeded; i++ {
			sb.WriteByte(' ')
		}
		for ; start < end; start++ {
			c := chunk[start]
			if c == '\n' || c == '\r' {
				c = ' '
			}
			sb.WriteByte(c)
		}
		sb.WriteByte('\n')
		sb.WriteString(arrow)
	}

	return sb.String()
}
