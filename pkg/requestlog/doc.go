// Package requestlog captures sent requests for later inspection.
//
// The server records an Entry for every request it dispatches, matched or
// not. Tests then query the store to assert on what was sent: which URLs,
// with which headers and bodies, in which order.
//
// # Core Types
//
// Entry is one captured request. Logger is the minimal write interface the
// server dispatcher needs; Store adds querying. MemoryStore is the bundled
// implementation: a capacity-bounded FIFO buffer, safe for concurrent use.
//
//	store := requestlog.NewMemoryStore(1000)
//	store.Log(&requestlog.Entry{Method: "GET", URL: "/api/users"})
//	entries := store.List(&requestlog.Filter{Method: "GET"})
//
// MemoryStore.QueryBodies runs a JSONPath expression over all stored
// request bodies, which keeps payload assertions short:
//
//	names, err := store.QueryBodies("$.user.name")
//
// # Package Design
//
// This is a leaf package with no internal dependencies, allowing it to be
// imported by any package without creating import cycles.
package requestlog
