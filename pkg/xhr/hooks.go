package xhr

// OnCreateHook observes newly constructed requests. It runs synchronously
// at the end of construction, before NewRequest returns.
type OnCreateHook func(*Request)

// OnSendHook observes sent requests and typically drives the mocked
// response through the MockRequest handle. Hooks run from a deferred task
// after the Send call stack unwinds.
type OnSendHook func(*MockRequest, *Request)

// HookRegistry holds the hooks and the timeout gate for one scope. The
// global registry and every Factory carry one; requests additionally hold
// an instance-level OnSend hook.
//
// Registries created by NewFactory and the global registry start with
// TimeoutEnabled true; a zero HookRegistry has timeouts disabled.
type HookRegistry struct {
	// OnCreate runs for every request created in this scope. Nil means no
	// hook.
	OnCreate OnCreateHook

	// OnSend runs for every request sent in this scope. Nil means no hook.
	OnSend OnSendHook

	// TimeoutEnabled gates request timeouts for this scope. The gate is
	// consulted when a timeout becomes due, not when it is scheduled, and
	// a false value at any scope suppresses the timeout.
	TimeoutEnabled bool
}

// Reset clears the hooks and re-enables timeouts.
func (r *HookRegistry) Reset() {
	r.OnCreate = nil
	r.OnSend = nil
	r.TimeoutEnabled = true
}

// globalHooks is the outermost scope, applying to every request from every
// factory.
var globalHooks = &HookRegistry{TimeoutEnabled: true}

// Global returns the global hook registry. Tests that set global hooks
// should restore them with Reset.
func Global() *HookRegistry {
	return globalHooks
}
