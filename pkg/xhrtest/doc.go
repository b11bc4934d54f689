// Package xhrtest provides test helpers for the mock server: a fluent
// route builder bound to testing.TB, call assertions over the request log,
// and an event recorder for exact ordering checks.
//
// # Basic Usage
//
// Create a server, register routes through the builder, and drive requests
// through the simulated clock:
//
//	func TestFetchUsers(t *testing.T) {
//	    srv := xhrtest.Server(t)
//
//	    xhrtest.Mock(t, srv, "GET", "/api/users").
//	        WithStatus(200).
//	        WithJSON([]map[string]any{{"id": 1}}).
//	        Register()
//
//	    x := srv.NewRequest()
//	    x.Open("GET", "/api/users")
//	    x.Send(nil)
//	    srv.Flush()
//
//	    xhrtest.AssertCalled(t, srv, "GET", "/api/users")
//	}
//
// Server registers a cleanup that removes the server from any environment
// it was installed into, so tests need no teardown of their own.
//
// # Response Sequences
//
// Times and the Then variants chain response steps. Each request consumes
// the next step and the final step repeats for every later request:
//
//	xhrtest.Mock(t, srv, "GET", "/flaky").
//	    WithStatus(500).Times(2).
//	    WithStatus(200).WithBody("recovered").
//	    Register()
//
//	xhrtest.Mock(t, srv, "POST", "/upload").
//	    WithStatus(201).Once().
//	    ThenError().
//	    Register()
//
// # Assertions
//
// Call assertions count request log entries by method and exact URL:
//
//	xhrtest.AssertCalled(t, srv, "GET", "/api/users")
//	xhrtest.AssertCalledTimes(t, srv, "POST", "/api/users", 3)
//	xhrtest.AssertNotCalled(t, srv, "DELETE", "/api/users")
//
// Calls returns the matching entries for custom checks on headers and
// bodies.
//
// # Event Ordering
//
// EventRecorder captures dispatched events as compact strings:
//
//	x := srv.NewRequest()
//	rec := xhrtest.RecordEvents(x)
//	x.Open("GET", "/api/users")
//	x.Send(nil)
//	srv.Flush()
//	// rec.Events() is ["readystatechange(1)", "loadstart(0,0,false)", ...]
//
// RecordAllEvents also listens on the upload target, which turns upload
// progress events on for the request.
package xhrtest
