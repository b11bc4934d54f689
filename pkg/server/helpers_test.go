package server

import (
	"fmt"

	"github.com/getmockd/mockxhr/pkg/event"
	"github.com/getmockd/mockxhr/pkg/xhr"
)

// eventLog records dispatched events as compact strings so tests can assert
// on exact ordering: "readystatechange(2)", "progress(4,10,true)",
// "upload.load(7,7,true)".
type eventLog struct {
	events []string
}

func (l *eventLog) add(prefix string, ev *event.Event) {
	l.events = append(l.events, fmt.Sprintf("%s%s(%d,%d,%t)",
		prefix, ev.Type, ev.Loaded, ev.Total, ev.LengthComputable))
}

// recordMainEvents attaches listeners for readystatechange and all progress
// events on the main target only, leaving the upload listener flag unset.
func recordMainEvents(x *xhr.Request) *eventLog {
	rec := &eventLog{}
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

// recordAllEvents additionally listens on the upload target, which also
// flips the upload listener flag for subsequent sends.
func recordAllEvents(x *xhr.Request) *eventLog {
	rec := recordMainEvents(x)
	for _, typ := range event.ProgressTypes() {
		x.Upload().AddEventListener(typ, event.ListenerFunc(func(ev *event.Event) {
			rec.add("upload.", ev)
		}))
	}
	return rec
}
