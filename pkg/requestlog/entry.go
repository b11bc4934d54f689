package requestlog

import "time"

// Entry captures one sent request for later inspection: what was sent, when,
// and whether a route matched it.
type Entry struct {
	// ID is a unique identifier for the log entry.
	ID string `json:"id"`

	// Timestamp is when the request was sent.
	Timestamp time.Time `json:"timestamp"`

	// Method is the normalized request method.
	Method string `json:"method"`

	// URL is the request URL exactly as passed to Open.
	URL string `json:"url"`

	// Headers are the request headers with lower-cased names. Repeated
	// headers appear comma-joined under one name.
	Headers map[string]string `json:"headers,omitempty"`

	// Body is the request body as passed to Send. It is stored by
	// reference, not serialized.
	Body any `json:"body,omitempty"`

	// BodySize is the body size in bytes.
	BodySize int `json:"bodySize"`

	// RouteID identifies the route that handled the request (empty if no
	// route matched).
	RouteID string `json:"routeId,omitempty"`

	// Matched reports whether a registered route matched the request.
	// Requests answered by a catch-all default handler stay unmatched.
	Matched bool `json:"matched"`
}

// Clone returns a copy of the entry with its own headers map. The body is
// shared since entries never mutate it.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	out := *e
	if e.Headers != nil {
		out.Headers = make(map[string]string, len(e.Headers))
		for k, v := range e.Headers {
			out.Headers[k] = v
		}
	}
	return &out
}
