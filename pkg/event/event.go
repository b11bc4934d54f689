// Package event implements the event dispatch engine for mocked requests:
// progress-style events, listener registration with once/capture options,
// per-type property handlers, and snapshot dispatch.
//
// Dispatch follows fixed rules:
//
//   - The property handler for a type, when set, runs before listeners.
//   - The set of callbacks invoked for an event is snapshotted before the
//     first callback runs; adding or removing listeners from inside a
//     callback only affects later dispatches.
//   - A listener registered with Once is removed before its callback runs,
//     so it may re-register itself without being dropped.
//
// Listener identity mirrors the registration rules of browser event targets:
// a (type, callback, capture) triple registers at most once. Func-typed
// listeners are identified by code pointer, comparable listener values by
// equality.
package event

// Event types emitted during a mocked request lifecycle.
const (
	ReadyStateChange = "readystatechange"
	Loadstart        = "loadstart"
	Progress         = "progress"
	Abort            = "abort"
	Error            = "error"
	Load             = "load"
	Timeout          = "timeout"
	Loadend          = "loadend"
)

// ProgressTypes returns the progress-style event types, i.e. every type a
// request or upload target can emit except readystatechange.
func ProgressTypes() []string {
	return []string{Loadstart, Progress, Abort, Error, Load, Timeout, Loadend}
}

// Event is a dispatched lifecycle event. Progress-style events carry byte
// counts; readystatechange carries none.
type Event struct {
	// Type is one of the event type constants.
	Type string

	// Target is the object the event was dispatched on. For a request's
	// main target this is the request itself; for its upload target it is
	// the upload Target.
	Target any

	// Loaded and Total are the transmitted and expected byte counts.
	Loaded int
	Total  int

	// LengthComputable reports whether Total is meaningful.
	LengthComputable bool
}

// New returns a plain event with no progress payload.
func New(typ string) *Event {
	return &Event{Type: typ}
}

// NewProgress returns a progress-style event. LengthComputable is derived
// from total, matching how user agents construct progress events.
func NewProgress(typ string, loaded, total int) *Event {
	return &Event{
		Type:             typ,
		Loaded:           loaded,
		Total:            total,
		LengthComputable: total > 0,
	}
}

// Listener handles dispatched events.
type Listener interface {
	HandleEvent(*Event)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(*Event)

// HandleEvent calls f.
func (f ListenerFunc) HandleEvent(ev *Event) { f(ev) }
