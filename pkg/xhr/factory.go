package xhr

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/getmockd/mockxhr/pkg/event"
	"github.com/getmockd/mockxhr/pkg/headers"
	"github.com/getmockd/mockxhr/pkg/logging"
	"github.com/getmockd/mockxhr/pkg/sched"
)

// Factory creates requests and defines one scope of the hook chain. Derived
// factories form a lineage: hooks resolve global first, then each lineage
// level from the root down, then the instance.
//
// A Factory also owns the scheduler its requests defer their work onto, so
// everything created by one factory shares a single deterministic timeline.
type Factory struct {
	id     string
	parent *Factory
	hooks  HookRegistry
	sched  *sched.Scheduler
	log    *slog.Logger
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithScheduler makes the factory use s instead of creating its own.
func WithScheduler(s *sched.Scheduler) FactoryOption {
	return func(f *Factory) { f.sched = s }
}

// WithLogger sets the logger for the factory and its requests. The default
// is a no-op logger.
func WithLogger(log *slog.Logger) FactoryOption {
	return func(f *Factory) { f.log = log }
}

// NewFactory returns a root factory with its own scheduler.
func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{
		id:    uuid.New().String(),
		hooks: HookRegistry{TimeoutEnabled: true},
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.sched == nil {
		f.sched = sched.New()
	}
	if f.log == nil {
		f.log = logging.Nop()
	}
	return f
}

// Derive returns a child factory. The child shares the parent's scheduler
// and logger unless options override them, and its hooks run after the
// parent's in the cascade.
func (f *Factory) Derive(opts ...FactoryOption) *Factory {
	child := &Factory{
		id:     uuid.New().String(),
		parent: f,
		hooks:  HookRegistry{TimeoutEnabled: true},
		sched:  f.sched,
		log:    f.log,
	}
	for _, opt := range opts {
		opt(child)
	}
	return child
}

// ID returns the factory's unique id, used in log output.
func (f *Factory) ID() string { return f.id }

// Hooks returns the factory's hook registry for this lineage level.
func (f *Factory) Hooks() *HookRegistry { return &f.hooks }

// Scheduler returns the scheduler driving this factory's requests.
func (f *Factory) Scheduler() *sched.Scheduler { return f.sched }

// lineage returns the chain from the root factory down to f.
func (f *Factory) lineage() []*Factory {
	var chain []*Factory
	for cur := f; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// NewRequest creates a request bound to this factory. Creation hooks run
// synchronously (global scope first, then the lineage from the root down)
// after the request is fully initialized.
func (f *Factory) NewRequest() *Request {
	x := &Request{
		TimeoutEnabled: true,
		factory:        f,
		sched:          f.sched,
		log:            f.log,
		reqHeaders:     headers.NewContainer(),
		resHeaders:     headers.NewContainer(),
	}
	x.Target = event.NewTargetFor(x)
	x.upload = event.NewTarget()

	if h := globalHooks.OnCreate; h != nil {
		h(x)
	}
	for _, level := range f.lineage() {
		if h := level.hooks.OnCreate; h != nil {
			h(x)
		}
	}
	f.log.Debug("request created", "factory_id", f.id)
	return x
}

// defaultFactory backs the package-level New.
var defaultFactory = NewFactory()

// Default returns the factory used by New. Its hooks form the default
// lineage scope between the global registry and the instance.
func Default() *Factory {
	return defaultFactory
}

// New creates a request from the default factory.
func New() *Request {
	return defaultFactory.NewRequest()
}
