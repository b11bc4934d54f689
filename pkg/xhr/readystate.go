package xhr

// ReadyState tracks where a request is in its lifecycle. States only move
// forward within one attempt; Abort returns to Unsent and Open returns to
// Opened, starting a new attempt.
type ReadyState int

const (
	// Unsent is the initial state, before Open.
	Unsent ReadyState = iota

	// Opened means Open succeeded; headers may be set and Send called.
	Opened

	// HeadersReceived means the mocked response status and headers are
	// available.
	HeadersReceived

	// Loading means the response body is being received.
	Loading

	// Done means the attempt concluded: response complete, network error,
	// timeout, or abort.
	Done
)

var readyStateNames = map[ReadyState]string{
	Unsent:          "UNSENT",
	HeadersReceived: "HEADERS_RECEIVED",
	Opened:          "OPENED",
	Loading:         "LOADING",
	Done:            "DONE",
}

func (s ReadyState) String() string {
	if name, ok := readyStateNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}
