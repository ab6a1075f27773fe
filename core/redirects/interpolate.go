package redirects

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/randomairborne/tunnelbana/core/router"
)

var (
	ErrUnterminatedRef = errors.New("unterminated '{' reference")
	ErrEmptyRefName    = errors.New("empty reference name")
)

// MissingKeysError reports reference names a template uses that the supplied
// arguments do not provide.
type MissingKeysError struct {
	Keys []string
}

func (e *MissingKeysError) Error() string {
	return fmt.Sprintf("missing interpolation keys: %s", strings.Join(e.Keys, ", "))
}

// Interpolation is a parsed target template: alternating literal text and
// {name} references. "{{" escapes a literal '{'; '}' carries no special
// meaning outside a reference.
type Interpolation struct {
	parts []part
}

type part struct {
	text string
	ref  bool
}

// ParseInterpolation compiles a target template.
func ParseInterpolation(s string) (*Interpolation, error) {
	var parts []part
	var lit strings.Builder

	for i := 0; i < len(s); i++ {
		if s[i] != '{' {
			lit.WriteByte(s[i])
			continue
		}
		if i+1 < len(s) && s[i+1] == '{' {
			lit.WriteByte('{')
			i++
			continue
		}

		end := strings.IndexByte(s[i:], '}')
		if end < 0 {
			return nil, fmt.Errorf("%w at offset %d", ErrUnterminatedRef, i)
		}
		name := s[i+1 : i+end]
		if name == "" {
			return nil, fmt.Errorf("%w at offset %d", ErrEmptyRefName, i)
		}

		if lit.Len() > 0 {
			parts = append(parts, part{text: lit.String()})
			lit.Reset()
		}
		parts = append(parts, part{text: name, ref: true})
		i += end
	}

	if lit.Len() > 0 {
		parts = append(parts, part{text: lit.String()})
	}
	return &Interpolation{parts: parts}, nil
}

// Keys returns the distinct reference names the template uses, sorted.
func (i *Interpolation) Keys() []string {
	seen := make(map[string]struct{})
	for _, p := range i.parts {
		if p.ref {
			seen[p.text] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Render substitutes captured values into the template. Every reference must
// be satisfied; unresolved names are reported together in a
// *MissingKeysError.
func (i *Interpolation) Render(args router.Params) (string, error) {
	var missing []string
	var out strings.Builder

	for _, p := range i.parts {
		if !p.ref {
			out.WriteString(p.text)
			continue
		}
		v, ok := args[p.text]
		if !ok {
			missing = append(missing, p.text)
			continue
		}
		out.WriteString(v)
	}

	if missing != nil {
		sort.Strings(missing)
		return "", &MissingKeysError{Keys: missing}
	}
	return out.String(), nil
}
