package server

import (
	"encoding/json"

	"github.com/getmockd/mockxhr/pkg/requestlog"
	"github.com/getmockd/mockxhr/pkg/xhr"
)

// dispatch is the factory send hook: log the request, find a route, apply
// its next handler. It runs from a scheduler task after Send unwinds.
func (s *Server) dispatch(req *xhr.MockRequest, x *xhr.Request) {
	method, url := req.Method(), req.URL()
	entry := &requestlog.Entry{
		Method:   method,
		URL:      url,
		Headers:  req.HeadersHash(),
		Body:     req.Body(),
		BodySize: req.BodySize(),
	}

	rt := s.findRoute(method, url)
	if rt != nil {
		entry.RouteID = rt.id
		entry.Matched = true
	}
	s.store.Log(entry)
	s.metrics.requestDispatched(method, rt != nil)

	if rt == nil {
		if s.defaultRoute != nil {
			s.log.Debug("request fell through to default handler", "method", method, "url", url)
			s.applyHandler(s.defaultRoute.nextHandler(), req, x)
			return
		}
		s.log.Warn("no route matched, request left unanswered", "method", method, "url", url)
		return
	}

	s.log.Debug("route matched", "route_id", rt.id, "route", rt.String(), "url", url)
	if err := rt.rules.Check(req.RequestData); err != nil {
		s.respondValidationError(req, err)
		return
	}
	s.applyHandler(rt.nextHandler(), req, x)
}

// respondValidationError answers a request that failed its route's rules
// with a 422 and a JSON error body. The route's handler cursor does not
// advance, so the scripted responses stay in place for valid requests.
func (s *Server) respondValidationError(req *xhr.MockRequest, verr error) {
	s.metrics.responseApplied("validation_error")
	s.log.Debug("request failed validation", "error", verr.Error())
	body, _ := json.Marshal(map[string]string{"error": verr.Error()})
	_ = req.Respond(422, map[string]string{"content-type": "application/json"}, string(body))
}

// applyHandler runs one normalized handler variant against the request.
func (s *Server) applyHandler(h any, req *xhr.MockRequest, x *xhr.Request) {
	switch v := h.(type) {
	case *Response:
		s.applyResponse(v, req)
	case HandlerFunc:
		s.metrics.responseApplied("handler")
		v(req, x)
	case outcome:
		s.applyOutcome(v, req)
	}
}

func (s *Server) applyOutcome(o outcome, req *xhr.MockRequest) {
	s.metrics.responseApplied(o.String())
	switch o {
	case NetworkError:
		_ = req.SetNetworkError()
	case RequestTimeout:
		if err := req.SetRequestTimeout(); err != nil {
			s.log.Warn("timeout handler needs a request timeout", "url", req.URL(), "error", err.Error())
		}
	}
}

// applyResponse delivers a descriptor, honoring its Delay and the server's
// progress rate. A request that goes stale while a delayed or chunked
// delivery is in flight absorbs the remaining steps silently.
func (s *Server) applyResponse(res *Response, req *xhr.MockRequest) {
	s.metrics.responseApplied("response")
	if res.Delay > 0 {
		s.scheduler.AfterFunc(res.Delay, func() { s.deliver(res, req) })
		return
	}
	s.deliver(res, req)
}

func (s *Server) deliver(res *Response, req *xhr.MockRequest) {
	if s.progressRate > 0 {
		s.deliverChunked(res, req)
		return
	}
	if err := req.Respond(res.Status, res.Headers, res.Body, res.StatusText); err != nil {
		s.log.Warn("response rejected", "url", req.URL(), "error", err.Error())
	}
}

// deliverChunked splits delivery into scheduler tasks: upload progress in
// rate-sized increments when observable, then headers, then download
// progress, then the body. The rate is re-read before every chunk.
func (s *Server) deliverChunked(res *Response, req *xhr.MockRequest) {
	if req.Body() != nil && req.BodySize() > 0 {
		s.uploadPhase(res, req, 0)
		return
	}
	s.headersPhase(res, req)
}

// uploadPhase emits one cumulative upload chunk per task. The first chunk
// doubles as a probe: when upload progress is not observable (no upload
// listeners were registered before send), the phase is skipped.
func (s *Server) uploadPhase(res *Response, req *xhr.MockRequest, sent int) {
	s.scheduler.Defer(func() {
		rate := s.progressRate
		if rate <= 0 {
			s.deliver(res, req)
			return
		}
		size := req.BodySize()
		next := sent + rate
		if next > size {
			next = size
		}
		if err := req.UploadProgress(next); err != nil {
			s.headersPhase(res, req)
			return
		}
		if next < size {
			s.uploadPhase(res, req, next)
			return
		}
		s.headersPhase(res, req)
	})
}

func (s *Server) headersPhase(res *Response, req *xhr.MockRequest) {
	s.scheduler.Defer(func() {
		if err := req.SetResponseHeaders(res.Status, res.Headers, res.StatusText); err != nil {
			s.log.Warn("response headers rejected", "url", req.URL(), "error", err.Error())
			return
		}
		if size := xhr.BodySize(res.Body); size > 0 {
			s.downloadPhase(res, req, 0, size)
			return
		}
		s.scheduler.Defer(func() { s.completeBody(res, req) })
	})
}

// downloadPhase emits one cumulative download chunk per task up to the
// full body size, then completes with the body on a final task.
func (s *Server) downloadPhase(res *Response, req *xhr.MockRequest, sent, size int) {
	s.scheduler.Defer(func() {
		rate := s.progressRate
		if rate <= 0 {
			s.completeBody(res, req)
			return
		}
		next := sent + rate
		if next > size {
			next = size
		}
		if err := req.DownloadProgress(next, size); err != nil {
			s.log.Warn("download progress rejected", "url", req.URL(), "error", err.Error())
			return
		}
		if next < size {
			s.downloadPhase(res, req, next, size)
			return
		}
		s.scheduler.Defer(func() { s.completeBody(res, req) })
	})
}

func (s *Server) completeBody(res *Response, req *xhr.MockRequest) {
	if err := req.SetResponseBody(res.Body); err != nil {
		s.log.Warn("response body rejected", "url", req.URL(), "error", err.Error())
	}
}
