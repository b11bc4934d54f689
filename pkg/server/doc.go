// Package server provides a declarative mock server for XMLHttpRequest
// traffic: a route table consulted for every request sent through the
// server's factory, with canned responses, programmatic handlers, and
// simulated failures.
//
// # Basic Usage
//
// Create a server, register routes, then send requests created through it
// and flush the scheduler to deliver the mocked responses:
//
//	srv := server.New()
//	srv.Get("/api/users", &server.Response{
//	    Status: 200,
//	    Body:   `[{"name":"alice"}]`,
//	})
//	srv.Post("/api/users", server.HandlerFunc(func(req *xhr.MockRequest, x *xhr.Request) {
//	    req.Respond(201, nil, req.Body())
//	}))
//
//	x := srv.NewRequest()
//	x.Open("GET", "/api/users")
//	x.Send(nil)
//	srv.Flush()
//	// x.Status() == 200, x.Response() holds the body
//
// Routes are tried in registration order and the first match wins. URL
// matchers accept exact strings, regular expressions, predicates, glob
// patterns (Glob), and expressions over the url variable (Expr).
//
// # Features
//
// The server supports:
//   - Canned Response descriptors with optional delivery Delay
//   - Handler functions driving the MockRequest handle directly
//   - NetworkError and RequestTimeout outcome sentinels
//   - Handler sequences: call k uses element k, clamped at the last
//   - Request validation per route, answering violations with a 422
//   - A request log (GetRequestLog, RequestLogStore) for assertions
//   - Chunked delivery with SetProgressRate for progress-event consumers
//   - Install/Remove for swapping the factory into an environment map
package server
