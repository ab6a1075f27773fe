// Package redirects turns a Cloudflare Pages style _redirects file into a
// request short-circuit stage.
//
// Each non-comment line names a source path template, a target template and
// an optional status code:
//
//	/old/{slug} /new/{slug} 301
//	/docs/{*rest} https://docs.example.org/{rest}
//	/promo /launch
//
// The target may reference any capture the source template binds. Every rule
// is self-validated at parse time by matching its own template and rendering
// the target with the resulting capture names, so a rule that could never
// render is rejected before the server starts.
package redirects

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/net/http/httpguts"

	"github.com/randomairborne/tunnelbana/core/router"
)

var (
	ErrWrongOptCount = errors.New("wrong number of fields on line, expected 2 or 3")
	ErrStatusCode    = errors.New("invalid status code")
	ErrHeaderValue   = errors.New("rendered target is not a valid header value")
	ErrInterpKeys    = errors.New("target references captures the path does not provide")
	ErrTriggerPath   = errors.New("invalid trigger path")
)

// ParseError reports a malformed _redirects line, 1-based.
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

// Rule is one validated redirect: a source template, a renderable target and
// the status code to respond with.
type Rule struct {
	Path   string
	Target *Interpolation
	Code   int
}

// Parse reads _redirects text into validated rules. The first malformed
// line aborts with a *ParseError; nothing is ever partially applied.
func Parse(text string) ([]Rule, error) {
	if text == "" {
		return nil, nil
	}

	var rules []Rule
	for idx, line := range strings.Split(text, "\n") {
		lineNo := idx + 1

		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		fields := strings.Fields(trimmed)
		if len(fields) < 2 || len(fields) > 3 {
			return nil, parseErr(lineNo, fmt.Errorf("%w: got %d", ErrWrongOptCount, len(fields)))
		}

		target, err := ParseInterpolation(fields[1])
		if err != nil {
			return nil, parseErr(lineNo, err)
		}

		rule := Rule{Path: fields[0], Target: target, Code: http.StatusTemporaryRedirect}
		if len(fields) == 3 {
			code, err := strconv.Atoi(fields[2])
			if err != nil || code < 100 || code > 999 {
				return nil, parseErr(lineNo, fmt.Errorf("%w: %q", ErrStatusCode, fields[2]))
			}
			rule.Code = code
		}

		if err := validateRule(rule); err != nil {
			return nil, parseErr(lineNo, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// validateRule proves that a rule's target can render from the captures its
// own path template produces. The template is matched against itself: its
// capture segments become the dummy values, which is enough to check key
// coverage and header-value shape.
func validateRule(rule Rule) error {
	probe := router.New[struct{}]()
	if err := probe.Insert(rule.Path, struct{}{}); err != nil {
		return fmt.Errorf("%w: %v", ErrTriggerPath, err)
	}

	_, params, ok := probe.Match(rule.Path)
	if !ok {
		// A template always matches its own literal text; reaching this
		// would be a router bug.
		return fmt.Errorf("%w: %q does not match itself", ErrTriggerPath, rule.Path)
	}

	rendered, err := rule.Target.Render(params)
	if err != nil {
		var missing *MissingKeysError
		if errors.As(err, &missing) {
			return fmt.Errorf("%w: %s", ErrInterpKeys, strings.Join(missing.Keys, ", "))
		}
		return err
	}

	if !httpguts.ValidHeaderFieldValue(rendered) {
		return fmt.Errorf("%w: %q", ErrHeaderValue, rendered)
	}
	return nil
}
