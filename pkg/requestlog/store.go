package requestlog

import "time"

// Logger is the minimal interface for recording request entries. The server
// dispatcher accepts this interface so entries can go to an in-memory store,
// a test recorder, or anything else that can take them.
type Logger interface {
	Log(entry *Entry)
}

// Store defines the interface for request history storage. Store embeds
// Logger, so any Store implementation can be used where Logger is expected.
type Store interface {
	Logger

	// Get retrieves a log entry by ID, or nil if absent.
	Get(id string) *Entry

	// List returns log entries oldest first, optionally filtered.
	List(filter *Filter) []*Entry

	// Clear removes all log entries.
	Clear()

	// Count returns the number of log entries.
	Count() int
}

// Filter defines criteria for filtering request logs. Zero-valued fields
// are ignored.
type Filter struct {
	// Method filters by normalized request method.
	Method string

	// URLPrefix filters by URL prefix.
	URLPrefix string

	// Matched filters by whether a route handled the request.
	Matched *bool

	// Since keeps only entries recorded at or after this time.
	Since time.Time

	// Limit is the maximum number of entries to return.
	Limit int

	// Offset is the number of matching entries to skip.
	Offset int
}
