package event

import "reflect"

// AddOptions configures AddEventListener. The zero value registers a plain
// persistent listener.
type AddOptions struct {
	// Once removes the listener before its first invocation.
	Once bool

	// Capture is part of the registration identity: the same callback may
	// be registered once with capture and once without. It has no other
	// effect here since mocked requests have no propagation tree.
	Capture bool
}

type registration struct {
	listener Listener
	once     bool
	capture  bool
}

// Target dispatches events to a property handler and a registered listener
// list. It is not safe for concurrent use; all interaction is expected to
// happen on the single goroutine driving the mock.
type Target struct {
	owner     any
	handlers  map[string]Listener
	listeners map[string][]registration
}

// NewTarget returns a target that reports itself as the event target.
func NewTarget() *Target {
	t := &Target{}
	t.owner = t
	return t
}

// NewTargetFor returns a target that reports owner as the event target,
// for objects that embed a Target rather than being one.
func NewTargetFor(owner any) *Target {
	return &Target{owner: owner}
}

// SetHandler installs the property handler for typ, replacing any previous
// one. A nil listener clears it. The property handler runs before listeners
// when an event of that type is dispatched.
func (t *Target) SetHandler(typ string, l Listener) {
	if l == nil {
		delete(t.handlers, typ)
		return
	}
	if t.handlers == nil {
		t.handlers = make(map[string]Listener)
	}
	t.handlers[typ] = l
}

// Handler returns the property handler for typ, or nil.
func (t *Target) Handler(typ string) Listener {
	return t.handlers[typ]
}

// AddEventListener registers l for typ. Registration identity is the
// (typ, callback, capture) triple: adding a duplicate is a no-op and keeps
// the original registration, including its Once flag. A nil listener is
// ignored. At most one AddOptions value is honored.
func (t *Target) AddEventListener(typ string, l Listener, opts ...AddOptions) {
	if l == nil {
		return
	}
	var o AddOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	for _, reg := range t.listeners[typ] {
		if reg.capture == o.Capture && sameListener(reg.listener, l) {
			return
		}
	}
	if t.listeners == nil {
		t.listeners = make(map[string][]registration)
	}
	t.listeners[typ] = append(t.listeners[typ], registration{
		listener: l,
		once:     o.Once,
		capture:  o.Capture,
	})
}

// RemoveEventListener removes the registration matching the
// (typ, callback, capture) triple, if present. The optional bool is the
// capture flag and defaults to false.
func (t *Target) RemoveEventListener(typ string, l Listener, capture ...bool) {
	if l == nil {
		return
	}
	var withCapture bool
	if len(capture) > 0 {
		withCapture = capture[0]
	}
	regs := t.listeners[typ]
	for i, reg := range regs {
		if reg.capture == withCapture && sameListener(reg.listener, l) {
			t.listeners[typ] = append(regs[:i:i], regs[i+1:]...)
			return
		}
	}
}

// HasListeners reports whether any property handler or listener is
// registered, for any event type.
func (t *Target) HasListeners() bool {
	if len(t.handlers) > 0 {
		return true
	}
	for _, regs := range t.listeners {
		if len(regs) > 0 {
			return true
		}
	}
	return false
}

// DispatchEvent delivers ev to the property handler and then to each
// listener registered for its type. The callback set is snapshotted before
// the first callback runs.
func (t *Target) DispatchEvent(ev *Event) {
	ev.Target = t.owner

	handler := t.handlers[ev.Type]
	live := t.listeners[ev.Type]
	snapshot := make([]registration, len(live))
	copy(snapshot, live)

	if handler != nil {
		handler.HandleEvent(ev)
	}
	for _, reg := range snapshot {
		if reg.once {
			t.RemoveEventListener(ev.Type, reg.listener, reg.capture)
		}
		reg.listener.HandleEvent(ev)
	}
}

// sameListener reports whether two listeners are the same callback.
// Comparable values compare by equality; func-typed listeners compare by
// code pointer, so distinct closures are distinct registrations.
func sameListener(a, b Listener) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	if ta.Kind() == reflect.Func {
		return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
	}
	return false
}
