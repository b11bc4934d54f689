package xhr

import (
	"errors"
	"fmt"
)

// ErrUsage is the marker for mock usage errors. Every error returned for a
// violated API precondition matches it with errors.Is.
//
// Usage errors are the only error channel in this package: simulated network
// failures (error, timeout, abort) are reported through events, never as
// returned errors.
var ErrUsage = errors.New("mock usage error")

// UsageError reports that the mocked API was called in a state that does not
// allow the operation, such as calling Send before Open or setting response
// headers twice.
type UsageError struct {
	// Op is the operation that was misused, in its API spelling
	// ("send", "setResponseHeaders", ...).
	Op string

	// Reason describes the violated precondition.
	Reason string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("mock usage error: %s: %s", e.Op, e.Reason)
}

// Is reports whether target is ErrUsage, so callers can detect misuse
// without depending on the concrete type.
func (e *UsageError) Is(target error) bool {
	return target == ErrUsage
}

func usageErrorf(op, format string, args ...any) *UsageError {
	return &UsageError{Op: op, Reason: fmt.Sprintf(format, args...)}
}
