package headers

import (
	"errors"
	"fmt"
)

var (
	ErrNoParseCtx         = errors.New("header rule appears before any path template")
	ErrNoHeaderColon      = errors.New("header rule is missing a ':' separator")
	ErrInvalidHeaderName  = errors.New("invalid header name")
	ErrInvalidHeaderValue = errors.New("invalid header value")
)

// ParseError reports a malformed _headers line. Line numbers are 1-based so
// they can be pasted straight into an editor.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func parseErr(line int, err error) *ParseError {
	return &ParseError{Line: line, Err: err}
}
