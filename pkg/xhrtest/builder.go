package xhrtest

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/getmockd/mockxhr/pkg/server"
	"github.com/getmockd/mockxhr/pkg/validation"
)

// MockBuilder builds a route through a fluent API. Response-shaping calls
// (WithStatus, WithBody, ...) mutate the step under construction; Times
// and the Then variants finish it and start a sequence. Register adds the
// finished route to the server.
type MockBuilder struct {
	t       testing.TB
	srv     *server.Server
	method  string
	matcher any
	steps   []any            // finished sequence steps
	pending *server.Response // step under construction
	opts    []server.RouteOption
	err     error // first error encountered during building
}

// Mock starts building a route on srv. The matcher accepts the same forms
// as Server.AddRoute: an exact URL string, *regexp.Regexp, server.Glob,
// server.Expr, a func(string) bool, or a compiled URLMatcher.
func Mock(t testing.TB, srv *server.Server, method string, matcher any) *MockBuilder {
	t.Helper()
	return &MockBuilder{t: t, srv: srv, method: method, matcher: matcher}
}

// setError records the first error encountered during building.
// Subsequent errors are ignored.
func (b *MockBuilder) setError(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Err returns any error encountered during building. Register reports the
// same error through t.Fatalf, so checking Err is only needed when a test
// wants to inspect a bad chain without registering it.
func (b *MockBuilder) Err() error {
	return b.err
}

// step returns the response under construction, creating it on first use.
func (b *MockBuilder) step() *server.Response {
	if b.pending == nil {
		b.pending = &server.Response{}
	}
	return b.pending
}

// finish moves the response under construction onto the step list.
func (b *MockBuilder) finish() {
	if b.pending != nil {
		b.steps = append(b.steps, b.pending)
		b.pending = nil
	}
}

// WithStatus sets the response status code. Default is 200.
func (b *MockBuilder) WithStatus(status int) *MockBuilder {
	b.step().Status = status
	return b
}

// WithStatusText overrides the standard reason phrase for the status.
func (b *MockBuilder) WithStatusText(text string) *MockBuilder {
	b.step().StatusText = text
	return b
}

// WithHeader adds a response header.
func (b *MockBuilder) WithHeader(key, value string) *MockBuilder {
	r := b.step()
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	r.Headers[key] = value
	return b
}

// WithHeaders sets multiple response headers at once.
func (b *MockBuilder) WithHeaders(headers map[string]string) *MockBuilder {
	r := b.step()
	if r.Headers == nil {
		r.Headers = make(map[string]string, len(headers))
	}
	for k, v := range headers {
		r.Headers[k] = v
	}
	return b
}

// WithBody sets the response body, delivered through the response protocol
// as-is: strings, byte slices, Blobs and FormData carry a measurable size,
// anything else reaches the client verbatim with size 0. Use WithJSON for
// automatic encoding.
func (b *MockBuilder) WithBody(body any) *MockBuilder {
	b.step().Body = body
	return b
}

// WithJSON encodes body as JSON and sets Content-Type to application/json.
func (b *MockBuilder) WithJSON(body any) *MockBuilder {
	data, err := json.Marshal(body)
	if err != nil {
		b.setError(fmt.Errorf("WithJSON: failed to marshal body: %w", err))
		return b
	}
	b.step().Body = string(data)
	return b.WithHeader("Content-Type", "application/json")
}

// WithDelay postpones delivery on the scheduler clock. Tests release the
// response with Server.Advance.
func (b *MockBuilder) WithDelay(d time.Duration) *MockBuilder {
	b.step().Delay = d
	return b
}

// WithID gives the route a stable id to assert on in request log entries.
func (b *MockBuilder) WithID(id string) *MockBuilder {
	b.opts = append(b.opts, server.WithRouteID(id))
	return b
}

// WithValidation attaches compiled request rules. Requests failing them
// get a 422 response before the response steps are consulted.
func (b *MockBuilder) WithValidation(rules *validation.CompiledRules) *MockBuilder {
	b.opts = append(b.opts, server.WithValidation(rules))
	return b
}

// Times repeats the response under construction n times in the sequence.
// It is meaningful combined with further steps: the route's final step
// repeats for every later request, so a bare Times(n) behaves like a
// single response.
func (b *MockBuilder) Times(n int) *MockBuilder {
	if n < 1 {
		b.setError(fmt.Errorf("Times: count must be positive, got %d", n))
		return b
	}
	r := b.step()
	b.pending = nil
	for i := 0; i < n; i++ {
		b.steps = append(b.steps, r)
	}
	return b
}

// Once is shorthand for Times(1).
func (b *MockBuilder) Once() *MockBuilder {
	return b.Times(1)
}

// Twice is shorthand for Times(2).
func (b *MockBuilder) Twice() *MockBuilder {
	return b.Times(2)
}

// Then finishes the response under construction; later response-shaping
// calls describe the next step in the sequence.
func (b *MockBuilder) Then() *MockBuilder {
	b.finish()
	return b
}

// ThenError finishes the response under construction and appends a
// simulated network error step.
func (b *MockBuilder) ThenError() *MockBuilder {
	b.finish()
	b.steps = append(b.steps, server.NetworkError)
	return b
}

// ThenTimeout finishes the response under construction and appends a
// timeout step. Requests reaching it must have a timeout configured.
func (b *MockBuilder) ThenTimeout() *MockBuilder {
	b.finish()
	b.steps = append(b.steps, server.RequestTimeout)
	return b
}

// Register adds the route to the server and returns it. A builder with no
// response steps registers a plain 200. Registration failures, including
// errors recorded while building, fail the test immediately.
func (b *MockBuilder) Register() *server.Route {
	b.t.Helper()

	if b.err != nil {
		b.t.Fatalf("failed to register %s route: %v", b.method, b.err)
		return nil
	}

	b.finish()
	var handler any
	switch len(b.steps) {
	case 0:
		handler = &server.Response{}
	case 1:
		handler = b.steps[0]
	default:
		handler = b.steps
	}

	if err := b.srv.AddRoute(b.method, b.matcher, handler, b.opts...); err != nil {
		b.t.Fatalf("failed to register %s route: %v", b.method, err)
		return nil
	}
	routes := b.srv.Routes()
	return routes[len(routes)-1]
}
