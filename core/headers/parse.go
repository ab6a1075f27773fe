// Package headers applies per-route response headers configured through a
// Cloudflare Pages style _headers file.
//
// The grammar is line oriented. An unindented line opens a group and names
// the path template it applies to; every indented line below it adds one
// header to that group:
//
//	/app
//	  X-Frame-Options: DENY
//	  Cache-Control: no-store
//	/assets/{*path}
//	  Cache-Control: public, max-age=31536000, immutable
//
// Blank lines and lines whose first non-whitespace character is '#' are
// ignored. Within a group, a later rule for the same header name wins.
package headers

import (
	"fmt"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// Header is a single name/value pair to apply to a response.
type Header struct {
	Name  string
	Value string
}

// Group is one path template and the ordered headers attached to it.
type Group struct {
	Path    string
	Headers []Header
}

// Parse reads _headers text into groups. It never partially succeeds: the
// first malformed line aborts with a *ParseError carrying its line number.
func Parse(text string) ([]Group, error) {
	if text == "" {
		return nil, nil
	}

	var groups []Group
	var current *Group

	for idx, line := range strings.Split(text, "\n") {
		lineNo := idx + 1
		line = strings.TrimSuffix(line, "\r")

		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		if !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t") {
			if current != nil {
				groups = append(groups, *current)
			}
			current = &Group{Path: trimmed}
			continue
		}

		if current == nil {
			return nil, parseErr(lineNo, ErrNoParseCtx)
		}

		name, value, ok := strings.Cut(trimmed, ":")
		if !ok {
			return nil, parseErr(lineNo, ErrNoHeaderColon)
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)

		if name == "" || !httpguts.ValidHeaderFieldName(name) {
			return nil, parseErr(lineNo, fmt.Errorf("%w: %q", ErrInvalidHeaderName, name))
		}
		if !httpguts.ValidHeaderFieldValue(value) {
			return nil, parseErr(lineNo, fmt.Errorf("%w: %q", ErrInvalidHeaderValue, value))
		}

		current.Headers = append(current.Headers, Header{Name: name, Value: value})
	}

	if current != nil {
		groups = append(groups, *current)
	}
	return groups, nil
}
