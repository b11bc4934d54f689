package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/getmockd/mockxhr/internal/matching"
	"github.com/getmockd/mockxhr/pkg/xhr"
)

// ValidationError reports an invalid route file with the offending field,
// e.g. "routes[2].urlPattern". It unwraps to ErrValidation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Validate checks the File without touching a server: selector
// exclusivity, matcher and expression syntax, method names, delay strings,
// and request rules. Apply runs it implicitly.
func (f *File) Validate() error {
	if f.ProgressRate < 0 {
		return &ValidationError{Field: "progressRate", Message: "must not be negative"}
	}
	for i := range f.Routes {
		if err := f.Routes[i].validate(fmt.Sprintf("routes[%d]", i)); err != nil {
			return err
		}
	}
	return nil
}

func (r *RouteConfig) validate(path string) error {
	if r.Method != "" {
		if _, err := xhr.NormalizeMethod(r.Method); err != nil {
			return &ValidationError{
				Field:   path + ".method",
				Message: fmt.Sprintf("invalid method %q", r.Method),
			}
		}
	}

	matcherKeys := r.matcherKeys()
	if len(matcherKeys) != 1 {
		return &ValidationError{
			Field: path,
			Message: fmt.Sprintf("exactly one of url, urlPattern, urlRegexp, urlExpr must be set (got %s)",
				keyList(matcherKeys)),
		}
	}
	switch matcherKeys[0] {
	case "urlPattern":
		if _, err := matching.NewGlob(r.URLPattern); err != nil {
			return &ValidationError{Field: path + ".urlPattern", Message: err.Error()}
		}
	case "urlRegexp":
		if _, err := regexp.Compile(r.URLRegexp); err != nil {
			return &ValidationError{Field: path + ".urlRegexp", Message: err.Error()}
		}
	case "urlExpr":
		if _, err := matching.NewExpression(r.URLExpr); err != nil {
			return &ValidationError{Field: path + ".urlExpr", Message: err.Error()}
		}
	}

	outcomeKeys := r.outcomeKeys()
	if len(outcomeKeys) != 1 {
		return &ValidationError{
			Field: path,
			Message: fmt.Sprintf("exactly one of response, responses, error, timeout must be set (got %s)",
				keyList(outcomeKeys)),
		}
	}

	if r.Response != nil {
		if err := r.Response.validate(path + ".response"); err != nil {
			return err
		}
	}
	for j := range r.Responses {
		if err := r.Responses[j].validate(fmt.Sprintf("%s.responses[%d]", path, j)); err != nil {
			return err
		}
	}

	if r.Validate != nil && !r.Validate.IsEmpty() {
		if _, err := r.Validate.Compile(); err != nil {
			return &ValidationError{Field: path + ".validate", Message: err.Error()}
		}
	}
	return nil
}

func (rc *ResponseConfig) validate(path string) error {
	if rc.Delay == "" {
		return nil
	}
	d, err := time.ParseDuration(rc.Delay)
	if err != nil {
		return &ValidationError{
			Field:   path + ".delay",
			Message: fmt.Sprintf("invalid duration %q", rc.Delay),
		}
	}
	if d < 0 {
		return &ValidationError{Field: path + ".delay", Message: "must not be negative"}
	}
	return nil
}

func keyList(keys []string) string {
	if len(keys) == 0 {
		return "none"
	}
	return strings.Join(keys, ", ")
}
