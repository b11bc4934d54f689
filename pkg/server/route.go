package server

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/getmockd/mockxhr/internal/matching"
	"github.com/getmockd/mockxhr/pkg/validation"
	"github.com/getmockd/mockxhr/pkg/xhr"
)

// URLMatcher decides whether a request URL selects a route. The matcher
// forms accepted by AddRoute compile to one of these; custom
// implementations work too.
type URLMatcher interface {
	Match(url string) bool
	String() string
}

// URL returns an exact URL matcher. Passing a bare string as the matcher
// argument means the same thing.
func URL(s string) URLMatcher { return matching.Exact(s) }

// GlobPattern marks a matcher string as a doublestar glob, e.g.
// Glob("/api/**"). The pattern is validated at route registration.
type GlobPattern string

// Glob returns a glob matcher form for AddRoute.
func Glob(pattern string) GlobPattern { return GlobPattern(pattern) }

// ExprPattern marks a matcher string as an expr-lang boolean expression
// over the variable "url", e.g. Expr(`url startsWith "/api/"`). The
// expression is compiled at route registration.
type ExprPattern string

// Expr returns an expression matcher form for AddRoute.
func Expr(src string) ExprPattern { return ExprPattern(src) }

// compileMatcher converts the matcher forms accepted by route registration
// into a URLMatcher: URLMatcher values pass through, GlobPattern and
// ExprPattern compile here, and everything else (string, *regexp.Regexp,
// func(string) bool) goes through the shared matcher compiler.
func compileMatcher(spec any) (URLMatcher, error) {
	switch m := spec.(type) {
	case GlobPattern:
		g, err := matching.NewGlob(string(m))
		if err != nil {
			return nil, err
		}
		return g, nil
	case ExprPattern:
		e, err := matching.NewExpression(string(m))
		if err != nil {
			return nil, err
		}
		return e, nil
	case URLMatcher:
		return m, nil
	default:
		compiled, err := matching.Compile(spec)
		if err != nil {
			return nil, err
		}
		return compiled, nil
	}
}

// Response is a canned response descriptor. Zero values fall back to
// status 200, the standard reason phrase, and no body, so &Response{} is a
// valid empty 200.
type Response struct {
	// Status is the response status code. 0 means 200.
	Status int

	// Headers are the response headers. Nil means none.
	Headers map[string]string

	// Body is the response body delivered through SetResponseBody.
	Body any

	// StatusText overrides the standard reason phrase for Status.
	StatusText string

	// Delay postpones delivery on the scheduler clock. The response is
	// applied when Advance moves the clock past the delay.
	Delay time.Duration
}

// HandlerFunc responds to a request programmatically through the
// MockRequest handle.
type HandlerFunc func(req *xhr.MockRequest, x *xhr.Request)

// outcome is the type behind the NetworkError and RequestTimeout handler
// sentinels.
type outcome int

const (
	// NetworkError is a handler that fails the request with a simulated
	// network error.
	NetworkError outcome = iota

	// RequestTimeout is a handler that fails the request as timed out. The
	// request must have a timeout configured.
	RequestTimeout
)

func (o outcome) String() string {
	switch o {
	case NetworkError:
		return "network_error"
	case RequestTimeout:
		return "timeout"
	}
	return "unknown"
}

// Route binds a method and URL matcher to an ordered handler list. Routes
// are tried in registration order; the first match wins.
type Route struct {
	id       string
	method   string
	matcher  URLMatcher
	handlers []any
	calls    int
	rules    *validation.CompiledRules
}

// ID returns the route's identifier.
func (rt *Route) ID() string { return rt.id }

// Method returns the route's normalized method.
func (rt *Route) Method() string { return rt.method }

func (rt *Route) String() string {
	return fmt.Sprintf("%s %s", rt.method, rt.matcher)
}

// matches reports whether the route accepts the method and URL pair.
func (rt *Route) matches(method, url string) bool {
	return rt.method == method && rt.matcher.Match(url)
}

// nextHandler returns the handler for this call and advances the call
// cursor. The cursor clamps at the last handler, which then repeats for
// every further call.
func (rt *Route) nextHandler() any {
	idx := rt.calls
	if idx >= len(rt.handlers) {
		idx = len(rt.handlers) - 1
	}
	rt.calls++
	return rt.handlers[idx]
}

// RouteOption configures a route at registration.
type RouteOption func(*Route)

// WithValidation attaches compiled request rules to the route. Requests
// failing the rules get a 422 response instead of the route's handler
// outcome.
func WithValidation(rules *validation.CompiledRules) RouteOption {
	return func(rt *Route) { rt.rules = rules }
}

// WithRouteID overrides the generated route id, giving log entries a
// stable name to assert on.
func WithRouteID(id string) RouteOption {
	return func(rt *Route) {
		if id != "" {
			rt.id = id
		}
	}
}

// newRoute validates the registration arguments and builds a route.
func newRoute(method string, matcherSpec, handler any, opts ...RouteOption) (*Route, error) {
	normalized, err := xhr.NormalizeMethod(method)
	if err != nil {
		return nil, err
	}
	m, err := compileMatcher(matcherSpec)
	if err != nil {
		return nil, err
	}
	handlers, err := normalizeHandlers(handler)
	if err != nil {
		return nil, err
	}
	rt := &Route{
		id:       uuid.NewString(),
		method:   normalized,
		matcher:  m,
		handlers: handlers,
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt, nil
}

// normalizeHandlers accepts a single handler or a []any sequence and
// returns the validated handler list.
func normalizeHandlers(handler any) ([]any, error) {
	seq, ok := handler.([]any)
	if !ok {
		h, err := normalizeHandler(handler)
		if err != nil {
			return nil, err
		}
		return []any{h}, nil
	}

	if len(seq) == 0 {
		return nil, fmt.Errorf("handler sequence is empty")
	}
	out := make([]any, len(seq))
	for i, h := range seq {
		hh, err := normalizeHandler(h)
		if err != nil {
			return nil, fmt.Errorf("handler %d: %w", i, err)
		}
		out[i] = hh
	}
	return out, nil
}

// normalizeHandler validates one handler variant. Response values are
// normalized to pointers and bare funcs to HandlerFunc.
func normalizeHandler(h any) (any, error) {
	switch v := h.(type) {
	case *Response:
		if v == nil {
			return nil, fmt.Errorf("nil *Response handler")
		}
		return v, nil
	case Response:
		return &v, nil
	case HandlerFunc:
		if v == nil {
			return nil, fmt.Errorf("nil handler func")
		}
		return v, nil
	case func(*xhr.MockRequest, *xhr.Request):
		if v == nil {
			return nil, fmt.Errorf("nil handler func")
		}
		return HandlerFunc(v), nil
	case outcome:
		if v != NetworkError && v != RequestTimeout {
			return nil, fmt.Errorf("unknown outcome sentinel %d", int(v))
		}
		return v, nil
	case nil:
		return nil, fmt.Errorf("nil handler")
	default:
		return nil, fmt.Errorf("unsupported handler type %T", h)
	}
}
