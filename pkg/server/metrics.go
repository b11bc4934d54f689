package server

import (
	"strconv"

	"github.com/getmockd/mockxhr/pkg/metrics"
)

// serverMetrics bundles the server's instruments. A nil *serverMetrics is
// valid and records nothing, so dispatch never branches on whether metrics
// were configured.
type serverMetrics struct {
	created   *metrics.Counter
	requests  *metrics.Counter
	responses *metrics.Counter
	routes    *metrics.Gauge
}

func newServerMetrics(reg *metrics.Registry) *serverMetrics {
	if reg == nil {
		return nil
	}
	return &serverMetrics{
		created: reg.NewCounter("mockxhr_requests_created_total",
			"Requests created through the server's factory."),
		requests: reg.NewCounter("mockxhr_requests_total",
			"Requests dispatched, by method and whether a route matched.",
			"method", "matched"),
		responses: reg.NewCounter("mockxhr_responses_total",
			"Responses applied, by handler kind.",
			"kind"),
		routes: reg.NewGauge("mockxhr_routes",
			"Registered routes."),
	}
}

func (m *serverMetrics) requestCreated() {
	if m == nil {
		return
	}
	_ = m.created.Inc()
}

func (m *serverMetrics) requestDispatched(method string, matched bool) {
	if m == nil {
		return
	}
	_ = m.requests.Inc(method, strconv.FormatBool(matched))
}

func (m *serverMetrics) responseApplied(kind string) {
	if m == nil {
		return
	}
	_ = m.responses.Inc(kind)
}

func (m *serverMetrics) routeCount(n int) {
	if m == nil {
		return
	}
	_ = m.routes.Set(float64(n))
}
