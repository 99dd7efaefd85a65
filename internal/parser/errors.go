package parser

import (
	"errors"
	"fmt"
)

// ErrSyntax is wrapped by every error returned from Parse.
var ErrSyntax = errors.New("syntax error")

// ParseError describes the position where parsing stopped.
type ParseError struct {
	Line     int  // 1-based line of the offending byte
	Offset   int  // 0-based byte offset into the input
	Expected byte // byte the grammar required, 0 if not applicable
	Found    byte // byte present at Offset, meaningless when AtEOF
	AtEOF    bool // input ended before the construct was closed
	Msg      string
}

func (e *ParseError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("line %d, byte %d: %s", e.Line, e.Offset, e.Msg)
	}
	found := fmt.Sprintf("%q", e.Found)
	if e.AtEOF {
		found = "end of input"
	}
	return fmt.Sprintf("line %d, byte %d: expected %q, found %s", e.Line, e.Offset, e.Expected, found)
}

// Unwrap lets callers match parse failures with errors.Is(err, ErrSyntax).
func (e *ParseError) Unwrap() error { return ErrSyntax }
