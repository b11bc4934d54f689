package config

import (
	"fmt"
	"regexp"
	"time"

	"github.com/getmockd/mockxhr/pkg/server"
)

// Apply validates the File and registers its contents on srv: routes in
// declaration order, then the progress rate and the default 404 handler.
// Applying the same File to several servers is fine; each gets fresh
// routes with their own call cursors.
func (f *File) Apply(srv *server.Server) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	for i := range f.Routes {
		rc := &f.Routes[i]
		handler, err := rc.handler()
		if err != nil {
			return fmt.Errorf("routes[%d]: %w", i, err)
		}
		opts, err := rc.options()
		if err != nil {
			return fmt.Errorf("routes[%d]: %w", i, err)
		}
		method := rc.Method
		if method == "" {
			method = "GET"
		}
		if err := srv.AddRoute(method, rc.matcher(), handler, opts...); err != nil {
			return fmt.Errorf("routes[%d]: %w", i, err)
		}
	}

	if f.ProgressRate > 0 {
		srv.SetProgressRate(f.ProgressRate)
	}
	if f.Default404 {
		srv.SetDefault404()
	}
	return nil
}

// matcher returns the AddRoute matcher form for the route's url selector.
// Validate has already established that exactly one is set and compiles.
func (r *RouteConfig) matcher() any {
	switch {
	case r.URLPattern != "":
		return server.Glob(r.URLPattern)
	case r.URLRegexp != "":
		return regexp.MustCompile(r.URLRegexp)
	case r.URLExpr != "":
		return server.Expr(r.URLExpr)
	default:
		return r.URL
	}
}

// handler returns the AddRoute handler form for the route's outcome.
func (r *RouteConfig) handler() (any, error) {
	switch {
	case r.Response != nil:
		return r.Response.toResponse()
	case len(r.Responses) > 0:
		handlers := make([]any, len(r.Responses))
		for j := range r.Responses {
			res, err := r.Responses[j].toResponse()
			if err != nil {
				return nil, fmt.Errorf("responses[%d]: %w", j, err)
			}
			handlers[j] = res
		}
		return handlers, nil
	case r.Error:
		return server.NetworkError, nil
	default:
		return server.RequestTimeout, nil
	}
}

func (r *RouteConfig) options() ([]server.RouteOption, error) {
	var opts []server.RouteOption
	if r.ID != "" {
		opts = append(opts, server.WithRouteID(r.ID))
	}
	if r.Validate != nil && !r.Validate.IsEmpty() {
		rules, err := r.Validate.Compile()
		if err != nil {
			return nil, fmt.Errorf("validate: %w", err)
		}
		opts = append(opts, server.WithValidation(rules))
	}
	return opts, nil
}

// toResponse converts the serializable form into a response descriptor,
// parsing the delay string.
func (rc *ResponseConfig) toResponse() (*server.Response, error) {
	res := &server.Response{
		Status:     rc.Status,
		StatusText: rc.StatusText,
		Body:       rc.Body,
	}
	if len(rc.Headers) > 0 {
		res.Headers = make(map[string]string, len(rc.Headers))
		for k, v := range rc.Headers {
			res.Headers[k] = v
		}
	}
	if rc.Delay != "" {
		d, err := time.ParseDuration(rc.Delay)
		if err != nil {
			return nil, fmt.Errorf("invalid delay %q: %w", rc.Delay, err)
		}
		res.Delay = d
	}
	return res, nil
}
