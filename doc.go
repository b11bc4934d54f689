// Package mockxhr mocks XMLHttpRequest-style clients without any network.
//
// The module reproduces the XHR lifecycle — readyState transitions, event
// ordering on the main and upload targets, progress reporting, timeouts,
// and aborts — against in-process mock servers driven by a simulated
// clock. URLs are opaque strings matched exactly or through glob, regexp,
// and expression matchers; nothing is parsed, resolved, or transported.
//
// Packages:
//
//   - pkg/xhr: the request lifecycle state machine, its factory with
//     per-request hooks, and the MockRequest response protocol
//   - pkg/event: EventTarget dispatch with once/capture semantics
//   - pkg/headers: header containers with forbidden-name filtering
//   - pkg/sched: the simulated clock (Flush, Advance) behind all delivery
//   - pkg/server: declarative route matching, response sequences, request
//     logging, and environment installation
//   - pkg/config: YAML/JSON route files applied onto servers
//   - pkg/validation: per-route request rules (JSON Schema bodies, header
//     presence/equality)
//   - pkg/portability: OpenAPI 3 and HAR importers producing route files
//   - pkg/requestlog: the capacity-bounded request log with JSONPath body
//     queries
//   - pkg/xhrtest: testing.TB-bound helpers, fluent route builder, call
//     assertions, event recorder
//   - pkg/logging, pkg/metrics: slog construction and the counter/gauge
//     registry servers report into
//
// See examples/ for complete programs.
package mockxhr
