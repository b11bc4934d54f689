// Package metrics provides a small dependency-free metrics facility:
// counters and gauges with labels, collected in a Registry and exposed in
// Prometheus text format.
//
// The server records dispatch counts and route gauges through a Registry
// passed in by the caller; nothing is collected unless one is provided.
// There is no HTTP endpoint here — exposition goes through Registry.WriteTo
// (or Expose for a string), so callers decide where the text ends up.
//
//	reg := metrics.NewRegistry()
//	requests := reg.NewCounter("requests_total", "Dispatched requests.", "method")
//	_ = requests.Inc("GET")
//	fmt.Print(reg.Expose())
//
// Instruments are safe for concurrent use.
package metrics
