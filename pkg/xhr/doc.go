// Package xhr implements a mocked XMLHttpRequest: the full lifecycle state
// machine, event ordering, and the mock-response protocol, with no network
// I/O at all.
//
// The package provides:
//   - Request: the mocked request object with ready states, request
//     headers, timeout handling, and abort semantics
//   - MockRequest: the handle hooks use to play the network side of one
//     attempt (headers, progress, body, network error, timeout)
//   - Factory: request construction plus one level of the hook chain;
//     derived factories form a lineage
//   - HookRegistry: onCreate/onSend hooks and the timeout gate, at global,
//     lineage, and instance scope
//
// # Core Flow
//
// A request is driven exactly like the API it mocks, and a hook supplies
// the response:
//
//	f := xhr.NewFactory()
//	f.Hooks().OnSend = func(req *xhr.MockRequest, _ *xhr.Request) {
//	    req.Respond(200, map[string]string{"Content-Type": "text/plain"}, "hello")
//	}
//
//	x := f.NewRequest()
//	x.AddEventListener(event.Load, event.ListenerFunc(func(ev *event.Event) {
//	    fmt.Println(x.Status(), x.Response())
//	}))
//	x.Open("GET", "/greeting")
//	x.Send(nil)
//	f.Scheduler().Flush() // hooks are deferred; run them
//
// # Ordering Guarantees
//
// Event order is deterministic. A successful response fires, in order:
// readystatechange (HeadersReceived), readystatechange (Loading), progress,
// readystatechange (Done), load, loadend. Abort, network error, and timeout
// fire their event followed by loadend, with the upload pair first when an
// upload was in flight and observable. Every concluded attempt fires
// exactly one loadend on the main target.
//
// # Staleness
//
// Each Send creates a new MockRequest bound to that attempt. Re-opening,
// aborting, or concluding the attempt makes the handle stale: its mutating
// methods become silent no-ops. Misusing a live handle (setting headers
// twice, progress before headers) returns a *UsageError matching ErrUsage.
//
// # Concurrency
//
// Nothing here is safe for concurrent use. All interaction — including
// draining the factory's scheduler — must happen on a single goroutine;
// ordering, not locking, is the correctness model.
package xhr
