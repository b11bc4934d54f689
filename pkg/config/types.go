package config

import "github.com/getmockd/mockxhr/pkg/validation"

// File is a declarative route set: the serializable form of a server's
// route table, loadable from YAML or JSON.
type File struct {
	// ProgressRate enables chunked response delivery when greater than
	// zero.
	ProgressRate int `json:"progressRate,omitempty" yaml:"progressRate,omitempty"`

	// Routes register in order; the first match wins.
	Routes []RouteConfig `json:"routes,omitempty" yaml:"routes,omitempty"`

	// Default404 answers unmatched requests with an empty 404 instead of
	// leaving them unanswered.
	Default404 bool `json:"default404,omitempty" yaml:"default404,omitempty"`
}

// RouteConfig declares one route. Exactly one url key selects the matcher
// form, and exactly one of response, responses, error, or timeout selects
// the outcome.
type RouteConfig struct {
	// Method is the request method, GET when empty.
	Method string `json:"method,omitempty" yaml:"method,omitempty"`

	// ID names the route in request log entries. Optional.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	// URL matches the request URL exactly.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// URLPattern matches with doublestar glob syntax, e.g. "/api/**".
	URLPattern string `json:"urlPattern,omitempty" yaml:"urlPattern,omitempty"`

	// URLRegexp matches with a regular expression.
	URLRegexp string `json:"urlRegexp,omitempty" yaml:"urlRegexp,omitempty"`

	// URLExpr matches with a boolean expression over the url variable,
	// e.g. `url startsWith "/api/"`.
	URLExpr string `json:"urlExpr,omitempty" yaml:"urlExpr,omitempty"`

	// Response is a single canned response.
	Response *ResponseConfig `json:"response,omitempty" yaml:"response,omitempty"`

	// Responses is a scripted sequence: call k answers with element k,
	// clamped at the last.
	Responses []ResponseConfig `json:"responses,omitempty" yaml:"responses,omitempty"`

	// Error simulates a network error.
	Error bool `json:"error,omitempty" yaml:"error,omitempty"`

	// Timeout simulates a request timeout.
	Timeout bool `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// Validate holds request rules; violations answer with a 422.
	Validate *validation.RequestRules `json:"validate,omitempty" yaml:"validate,omitempty"`
}

// ResponseConfig is the serializable form of a canned response.
type ResponseConfig struct {
	// Status is the response status code, 200 when zero.
	Status int `json:"status,omitempty" yaml:"status,omitempty"`

	// StatusText overrides the standard reason phrase.
	StatusText string `json:"statusText,omitempty" yaml:"statusText,omitempty"`

	// Headers are the response headers.
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`

	// Body is the response body. Structured YAML/JSON values are passed
	// through as decoded.
	Body any `json:"body,omitempty" yaml:"body,omitempty"`

	// Delay postpones delivery, as a Go duration string like "150ms".
	Delay string `json:"delay,omitempty" yaml:"delay,omitempty"`
}

// matcherKeys returns the url selector values that are set.
func (r *RouteConfig) matcherKeys() []string {
	var keys []string
	if r.URL != "" {
		keys = append(keys, "url")
	}
	if r.URLPattern != "" {
		keys = append(keys, "urlPattern")
	}
	if r.URLRegexp != "" {
		keys = append(keys, "urlRegexp")
	}
	if r.URLExpr != "" {
		keys = append(keys, "urlExpr")
	}
	return keys
}

// outcomeKeys returns the outcome selector values that are set.
func (r *RouteConfig) outcomeKeys() []string {
	var keys []string
	if r.Response != nil {
		keys = append(keys, "response")
	}
	if len(r.Responses) > 0 {
		keys = append(keys, "responses")
	}
	if r.Error {
		keys = append(keys, "error")
	}
	if r.Timeout {
		keys = append(keys, "timeout")
	}
	return keys
}
