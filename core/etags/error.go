package etags

import "errors"

var (
	// ErrUnsupportedEntry is returned when the scanned tree contains
	// something other than regular files and directories. Symlinks are
	// deliberately not followed; a link pointing outside the served root
	// would otherwise end up fingerprinted and servable.
	ErrUnsupportedEntry = errors.New("unsupported directory entry kind")

	ErrPathNotUTF8        = errors.New("file path is not valid UTF-8")
	ErrInvalidHeaderValue = errors.New("fingerprint is not a valid header value")
)
