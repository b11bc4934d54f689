package xhrtest

import (
	"fmt"

	"github.com/getmockd/mockxhr/pkg/event"
	"github.com/getmockd/mockxhr/pkg/xhr"
)

// EventRecorder records dispatched events as compact strings so tests can
// assert on exact ordering: "readystatechange(2)", "progress(4,10,true)",
// "upload.load(7,7,true)".
type EventRecorder struct {
	events []string
}

// RecordEvents attaches a recorder for readystatechange and every progress
// event type on the request's main target.
func RecordEvents(x *xhr.Request) *EventRecorder {
	rec := &EventRecorder{}
	x.AddEventListener(event.ReadyStateChange, event.ListenerFunc(func(*event.Event) {
		rec.events = append(rec.events, fmt.Sprintf("readystatechange(%d)", int(x.ReadyState())))
	}))
	for _, typ := range event.ProgressTypes() {
		x.AddEventListener(typ, event.ListenerFunc(func(ev *event.Event) {
			rec.add("", ev)
		}))
	}
	return rec
}

// RecordAllEvents additionally listens on the upload target. Upload
// progress events are only dispatched to requests with upload listeners,
// so recording also turns them on for subsequent sends.
func RecordAllEvents(x *xhr.Request) *EventRecorder {
	rec := RecordEvents(x)
	for _, typ := range event.ProgressTypes() {
		x.Upload().AddEventListener(typ, event.ListenerFunc(func(ev *event.Event) {
			rec.add("upload.", ev)
		}))
	}
	return rec
}

func (r *EventRecorder) add(prefix string, ev *event.Event) {
	r.events = append(r.events, fmt.Sprintf("%s%s(%d,%d,%t)",
		prefix, ev.Type, ev.Loaded, ev.Total, ev.LengthComputable))
}

// Events returns the recorded event strings in dispatch order.
func (r *EventRecorder) Events() []string {
	out := make([]string, len(r.events))
	copy(out, r.events)
	return out
}

// Reset discards the recorded events, keeping the listeners attached.
func (r *EventRecorder) Reset() {
	r.events = nil
}
