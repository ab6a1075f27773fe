package router

import "errors"

var (
	ErrInvalidPattern   = errors.New("invalid route path pattern")
	ErrWildcardPosition = errors.New("wildcard capture must be the final segment")
	ErrDuplicateParam   = errors.New("duplicate capture name in pattern")
	ErrCaptureConflict  = errors.New("conflicting capture name for existing route")
	ErrDuplicateRoute   = errors.New("route already registered")
	ErrEmptyCaptureName = errors.New("capture name must not be empty")
	ErrMalformedSegment = errors.New("malformed capture segment")
)
