package server

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/getmockd/mockxhr/pkg/logging"
	"github.com/getmockd/mockxhr/pkg/metrics"
	"github.com/getmockd/mockxhr/pkg/requestlog"
	"github.com/getmockd/mockxhr/pkg/sched"
	"github.com/getmockd/mockxhr/pkg/xhr"
)

// installSlot is the environment key Install manages.
const installSlot = "XMLHttpRequest"

// Server is a declarative mock: a route table consulted for every request
// sent through the server's factory. Like the requests it serves, a Server
// is single-goroutine; it relies on the scheduler for ordering, not locks.
type Server struct {
	factory   *xhr.Factory
	scheduler *sched.Scheduler
	log       *slog.Logger

	routes       []*Route
	defaultRoute *Route

	store        requestlog.Store
	metrics      *serverMetrics
	progressRate int

	install *installState

	// pendingRoutes holds WithRoutes definitions until New finishes wiring
	// the logger and factory; they register last.
	pendingRoutes map[string]RouteDef
}

// installState remembers what the environment slot held before Install so
// Remove can put it back exactly: a slot that was absent is deleted again,
// a present nil stays a present nil.
type installState struct {
	env     map[string]any
	present bool
	prev    any
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server's logger, shared with its factory and
// requests. The default is a no-op logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithScheduler makes the server use s instead of creating its own.
func WithScheduler(sc *sched.Scheduler) Option {
	return func(s *Server) { s.scheduler = sc }
}

// WithRequestLog sets the store receiving one entry per dispatched request.
// The default is a MemoryStore with the default capacity.
func WithRequestLog(store requestlog.Store) Option {
	return func(s *Server) { s.store = store }
}

// WithMetrics registers the server's metrics on reg. Without this option
// the server records no metrics. Each server needs its own registry;
// registering two servers on one panics on the duplicate names.
func WithMetrics(reg *metrics.Registry) Option {
	return func(s *Server) { s.metrics = newServerMetrics(reg) }
}

// RouteDef declares one route for WithRoutes. The map key is the exact
// request URL unless Matcher overrides it.
type RouteDef struct {
	// Method is the request method, GET when empty.
	Method string

	// Matcher overrides the map key with any AddRoute matcher form.
	Matcher any

	// Handler is any AddRoute handler form.
	Handler any
}

// WithRoutes registers a declarative route set at construction, sorted by
// map key so registration order is deterministic. Definitions that fail to
// compile are logged and skipped.
func WithRoutes(defs map[string]RouteDef) Option {
	return func(s *Server) { s.pendingRoutes = defs }
}

// New returns a server with its own factory. The factory's send hook is
// the server's dispatcher, so every request created through the server is
// answered by the route table.
func New(opts ...Option) *Server {
	s := &Server{}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.log == nil {
		s.log = logging.Nop()
	}
	if s.scheduler == nil {
		s.scheduler = sched.New()
	}
	if s.store == nil {
		s.store = requestlog.NewMemoryStore(0)
	}
	s.factory = xhr.NewFactory(
		xhr.WithScheduler(s.scheduler),
		xhr.WithLogger(s.log),
	)
	hooks := s.factory.Hooks()
	hooks.OnCreate = func(x *xhr.Request) {
		s.metrics.requestCreated()
		s.log.Debug("request created for mock server")
	}
	hooks.OnSend = s.dispatch

	s.registerRouteDefs(s.pendingRoutes)
	s.pendingRoutes = nil
	return s
}

// registerRouteDefs applies WithRoutes definitions sorted by map key.
func (s *Server) registerRouteDefs(defs map[string]RouteDef) {
	keys := make([]string, 0, len(defs))
	for k := range defs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		def := defs[k]
		method := def.Method
		if method == "" {
			method = "GET"
		}
		matcher := def.Matcher
		if matcher == nil {
			matcher = k
		}
		if err := s.AddRoute(method, matcher, def.Handler); err != nil {
			s.log.Warn("skipping route definition", "key", k, "error", err)
		}
	}
}

// NewWithRoutes is a convenience for New(WithRoutes(defs), opts...).
func NewWithRoutes(defs map[string]RouteDef, opts ...Option) *Server {
	return New(append(opts, WithRoutes(defs))...)
}

// Factory returns the server's request factory. Deriving from it keeps the
// server's dispatch and scheduler while adding another hook scope.
func (s *Server) Factory() *xhr.Factory { return s.factory }

// Scheduler returns the scheduler driving the server's requests.
func (s *Server) Scheduler() *sched.Scheduler { return s.scheduler }

// NewRequest creates a request answered by this server.
func (s *Server) NewRequest() *xhr.Request { return s.factory.NewRequest() }

// Flush drains the scheduler's immediate task queue.
func (s *Server) Flush() { s.scheduler.Flush() }

// Advance flushes and then moves the scheduler clock forward by d, firing
// due timers (delayed responses, request timeouts).
func (s *Server) Advance(d time.Duration) { s.scheduler.Advance(d) }

// AddRoute registers a route. Matcher and handler accept the forms listed
// on URLMatcher and Route; errors cover invalid methods, patterns, and
// handler variants.
func (s *Server) AddRoute(method string, matcher, handler any, opts ...RouteOption) error {
	rt, err := newRoute(method, matcher, handler, opts...)
	if err != nil {
		return fmt.Errorf("add route %s: %w", method, err)
	}
	s.routes = append(s.routes, rt)
	s.metrics.routeCount(len(s.routes))
	s.log.Debug("route registered", "route", rt.String(), "route_id", rt.id)
	return nil
}

// Get registers a GET route.
func (s *Server) Get(matcher, handler any, opts ...RouteOption) error {
	return s.AddRoute("GET", matcher, handler, opts...)
}

// Post registers a POST route.
func (s *Server) Post(matcher, handler any, opts ...RouteOption) error {
	return s.AddRoute("POST", matcher, handler, opts...)
}

// Put registers a PUT route.
func (s *Server) Put(matcher, handler any, opts ...RouteOption) error {
	return s.AddRoute("PUT", matcher, handler, opts...)
}

// Delete registers a DELETE route.
func (s *Server) Delete(matcher, handler any, opts ...RouteOption) error {
	return s.AddRoute("DELETE", matcher, handler, opts...)
}

// Head registers a HEAD route.
func (s *Server) Head(matcher, handler any, opts ...RouteOption) error {
	return s.AddRoute("HEAD", matcher, handler, opts...)
}

// Options registers an OPTIONS route.
func (s *Server) Options(matcher, handler any, opts ...RouteOption) error {
	return s.AddRoute("OPTIONS", matcher, handler, opts...)
}

// Patch registers a PATCH route.
func (s *Server) Patch(matcher, handler any, opts ...RouteOption) error {
	return s.AddRoute("PATCH", matcher, handler, opts...)
}

// Routes returns the registered routes in registration order.
func (s *Server) Routes() []*Route {
	out := make([]*Route, len(s.routes))
	copy(out, s.routes)
	return out
}

// SetDefaultHandler sets the handler applied when no route matches. It
// accepts the same handler forms as AddRoute and keeps its own call
// cursor.
func (s *Server) SetDefaultHandler(handler any) error {
	handlers, err := normalizeHandlers(handler)
	if err != nil {
		return fmt.Errorf("set default handler: %w", err)
	}
	s.defaultRoute = &Route{id: "default", handlers: handlers}
	return nil
}

// SetDefault404 makes unmatched requests answer with an empty 404.
func (s *Server) SetDefault404() {
	_ = s.SetDefaultHandler(&Response{Status: 404})
}

// SetProgressRate enables chunked delivery for descriptor responses: body
// transfer is split into progress events of rate bytes each, one scheduler
// task per chunk. Zero or negative disables chunking. The rate is read
// before each chunk, so changing it mid-transfer takes effect immediately.
func (s *Server) SetProgressRate(rate int) {
	if rate < 0 {
		rate = 0
	}
	s.progressRate = rate
}

// ProgressRate returns the current chunked-delivery rate, 0 when disabled.
func (s *Server) ProgressRate() int { return s.progressRate }

// DisableTimeout suppresses request timeouts for the server's factory.
// Pending timeouts stay scheduled but do nothing when they become due.
func (s *Server) DisableTimeout() {
	s.factory.Hooks().TimeoutEnabled = false
}

// EnableTimeout re-enables request timeouts for the server's factory.
func (s *Server) EnableTimeout() {
	s.factory.Hooks().TimeoutEnabled = true
}

// Install points env[installSlot] at the server's factory, remembering the
// previous slot state. Remove restores it. Installing an already installed
// server logs a warning and changes nothing.
func (s *Server) Install(env map[string]any) {
	if s.install != nil {
		s.log.Warn("server already installed")
		return
	}
	prev, present := env[installSlot]
	s.install = &installState{env: env, present: present, prev: prev}
	env[installSlot] = s.factory
	s.log.Debug("server installed", "slot", installSlot)
}

// Remove undoes Install, restoring the slot to exactly its previous state:
// a slot that was absent is deleted, a present value (nil included) is put
// back. Calling Remove without a prior Install is a no-op.
func (s *Server) Remove() {
	if s.install == nil {
		return
	}
	st := s.install
	s.install = nil
	if st.present {
		st.env[installSlot] = st.prev
	} else {
		delete(st.env, installSlot)
	}
	s.log.Debug("server removed", "slot", installSlot)
}

// GetRequestLog returns copies of all logged requests, oldest first.
func (s *Server) GetRequestLog() []requestlog.Entry {
	entries := s.store.List(nil)
	out := make([]requestlog.Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, *e)
	}
	return out
}

// RequestLogStore returns the underlying store for filtered queries.
func (s *Server) RequestLogStore() requestlog.Store { return s.store }

// findRoute returns the first route matching the request, nil when none
// does.
func (s *Server) findRoute(method, url string) *Route {
	for _, rt := range s.routes {
		if rt.matches(method, url) {
			return rt
		}
	}
	return nil
}
