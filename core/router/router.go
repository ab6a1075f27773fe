// Package router implements a write-once radix tree that maps URL path
// templates to arbitrary values.
//
// Templates are built from literal segments, single named captures and an
// optional trailing wildcard capture:
//
//	/about
//	/articles/{slug}
//	/files/{*path}
//
// Matching walks the tree segment by segment, preferring literal edges over
// named captures and named captures over wildcards, backtracking as needed so
// the most specific full match always wins. Ambiguous registrations (the same
// shape with different capture names, or the same route twice) are rejected
// at Insert time; Match never has to break ties.
//
// A Router is not safe for concurrent mutation, but once construction is done
// it is safe for any number of concurrent Match calls.
package router

import (
	"fmt"
	"strings"
)

// Params holds the capture values extracted while matching a path.
// A wildcard capture value may itself contain slashes.
type Params map[string]string

// Router maps path templates to values of type T.
type Router[T any] struct {
	root *node[T]
	size int
}

// leaf is a terminal tree position holding a registered value.
type leaf[T any] struct {
	value   T
	pattern string
}

// node is one path segment position in the tree. Children are grouped by
// kind so that matching can try literal edges first, then the capture edge,
// then the wildcard edge.
type node[T any] struct {
	static map[string]*node[T]

	param    *node[T]
	paramKey string

	wild    *leaf[T]
	wildKey string

	leaf *leaf[T]
}

// New creates an empty router.
func New[T any]() *Router[T] {
	return &Router[T]{root: &node[T]{}}
}

// Len reports the number of registered templates.
func (r *Router[T]) Len() int {
	return r.size
}

// Insert registers a template with an associated value. It returns an error
// if the template is malformed or if it conflicts with a previously
// registered template. The router grows monotonically; there is no removal.
func (r *Router[T]) Insert(pattern string, value T) error {
	segs, err := parsePattern(pattern)
	if err != nil {
		return err
	}

	n := r.root
	for i, seg := range segs {
		switch seg.kind {
		case segLiteral:
			if n.static == nil {
				n.static = make(map[string]*node[T])
			}
			child, ok := n.static[seg.text]
			if !ok {
				child = &node[T]{}
				n.static[seg.text] = child
			}
			n = child

		case segParam:
			if n.param == nil {
				n.param = &node[T]{}
				n.paramKey = seg.text
			} else if n.paramKey != seg.text {
				return fmt.Errorf("%w: %q uses {%s} where an existing route uses {%s}",
					ErrCaptureConflict, pattern, seg.text, n.paramKey)
			}
			n = n.param

		case segWildcard:
			if i != len(segs)-1 {
				return fmt.Errorf("%w: %q", ErrWildcardPosition, pattern)
			}
			if n.wild != nil {
				if n.wildKey != seg.text {
					return fmt.Errorf("%w: %q uses {*%s} where an existing route uses {*%s}",
						ErrCaptureConflict, pattern, seg.text, n.wildKey)
				}
				return fmt.Errorf("%w: %q", ErrDuplicateRoute, pattern)
			}
			n.wild = &leaf[T]{value: value, pattern: pattern}
			n.wildKey = seg.text
			r.size++
			return nil
		}
	}

	if n.leaf != nil {
		return fmt.Errorf("%w: %q", ErrDuplicateRoute, pattern)
	}
	n.leaf = &leaf[T]{value: value, pattern: pattern}
	r.size++
	return nil
}

// Match resolves a concrete path against the registered templates. On
// success it returns the associated value and one entry per capture in the
// matched template. Paths that do not begin with '/' never match.
func (r *Router[T]) Match(path string) (T, Params, bool) {
	var zero T
	if len(path) == 0 || path[0] != '/' {
		return zero, nil, false
	}

	lf, caps := r.root.match(strings.Split(path[1:], "/"), nil)
	if lf == nil {
		return zero, nil, false
	}

	params := make(Params, len(caps))
	for _, c := range caps {
		params[c.key] = c.val
	}
	return lf.value, params, true
}

type capture struct {
	key, val string
}

func (n *node[T]) match(segs []string, caps []capture) (*leaf[T], []capture) {
	if len(segs) == 0 {
		if n.leaf != nil {
			return n.leaf, caps
		}
		return nil, nil
	}

	seg := segs[0]

	if child, ok := n.static[seg]; ok {
		if lf, cs := child.match(segs[1:], caps); lf != nil {
			return lf, cs
		}
	}

	if n.param != nil && seg != "" {
		if lf, cs := n.param.match(segs[1:], append(caps, capture{n.paramKey, seg})); lf != nil {
			return lf, cs
		}
	}

	if n.wild != nil {
		return n.wild, append(caps, capture{n.wildKey, strings.Join(segs, "/")})
	}

	return nil, nil
}

type segKind uint8

const (
	segLiteral segKind = iota
	segParam
	segWildcard
)

type segment struct {
	kind segKind
	text string
}

// parsePattern splits a template into validated segments and rejects
// duplicate capture names within the same template.
func parsePattern(pattern string) ([]segment, error) {
	if len(pattern) == 0 || pattern[0] != '/' {
		return nil, fmt.Errorf("%w: %q must begin with '/'", ErrInvalidPattern, pattern)
	}

	raw := strings.Split(pattern[1:], "/")
	segs := make([]segment, 0, len(raw))
	seen := make(map[string]struct{})

	for _, s := range raw {
		switch {
		case strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") && len(s) >= 2:
			name := s[1 : len(s)-1]
			kind := segParam
			if strings.HasPrefix(name, "*") {
				kind = segWildcard
				name = name[1:]
			}
			if name == "" {
				return nil, fmt.Errorf("%w: %q", ErrEmptyCaptureName, pattern)
			}
			if strings.ContainsAny(name, "{}*/") {
				return nil, fmt.Errorf("%w: %q in %q", ErrMalformedSegment, s, pattern)
			}
			if _, dup := seen[name]; dup {
				return nil, fmt.Errorf("%w: %q in %q", ErrDuplicateParam, name, pattern)
			}
			seen[name] = struct{}{}
			segs = append(segs, segment{kind: kind, text: name})

		case strings.ContainsAny(s, "{}*"):
			return nil, fmt.Errorf("%w: %q in %q", ErrMalformedSegment, s, pattern)

		default:
			segs = append(segs, segment{kind: segLiteral, text: s})
		}
	}

	return segs, nil
}
