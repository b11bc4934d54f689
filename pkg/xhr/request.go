package xhr

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/getmockd/mockxhr/pkg/event"
	"github.com/getmockd/mockxhr/pkg/headers"
	"github.com/getmockd/mockxhr/pkg/sched"
)

// Request is a mocked XMLHttpRequest. It runs the full lifecycle state
// machine — ready states, event ordering, timeouts, aborts — without any
// network I/O; responses come from hooks or a server driving the
// MockRequest handle.
//
// The embedded event.Target is the main target (readystatechange plus the
// progress events); Upload returns the upload target. A Request is not safe
// for concurrent use: every interaction, including scheduler flushes, must
// happen on one goroutine.
type Request struct {
	*event.Target

	// TimeoutEnabled is the instance-level timeout gate, checked when a
	// timeout becomes due. Factory lineage and global gates also apply.
	TimeoutEnabled bool

	upload  *event.Target
	factory *Factory
	sched   *sched.Scheduler
	log     *slog.Logger

	// request state
	method          string
	url             string
	reqHeaders      *headers.Container
	withCredentials bool
	timeout         time.Duration

	// per-attempt state
	sendFlag           bool
	uploadListenerFlag bool
	uploadComplete     bool
	body               any
	sentAt             time.Time
	timeoutTimer       *sched.Timer

	// response state
	readyState ReadyState
	status     int
	statusText string
	resHeaders *headers.Container
	response   any

	// generation counts attempts; a MockRequest whose generation no longer
	// matches is stale and all its mutating methods become no-ops.
	generation uint64
	current    *MockRequest

	onSendHook OnSendHook
}

// Upload returns the upload event target.
func (x *Request) Upload() *event.Target { return x.upload }

// ReadyState returns the current lifecycle state.
func (x *Request) ReadyState() ReadyState { return x.readyState }

// Status returns the response status, 0 before headers arrive and after
// errors.
func (x *Request) Status() int { return x.status }

// StatusText returns the response reason phrase.
func (x *Request) StatusText() string { return x.statusText }

// Response returns the response body, nil until the response completes.
func (x *Request) Response() any { return x.response }

// GetResponseHeader returns the response header value for name,
// case-insensitively, and whether it is present.
func (x *Request) GetResponseHeader(name string) (string, bool) {
	return x.resHeaders.Get(name)
}

// GetAllResponseHeaders serializes the response headers with lower-cased,
// sorted names, one "name: value" line per header, CRLF-terminated.
func (x *Request) GetAllResponseHeaders() string {
	return x.resHeaders.All()
}

// ResponseHeadersHash returns the response headers keyed by lower-cased
// name.
func (x *Request) ResponseHeadersHash() map[string]string {
	return x.resHeaders.Hash()
}

// WithCredentials returns the credentials flag.
func (x *Request) WithCredentials() bool { return x.withCredentials }

// SetWithCredentials sets the credentials flag. It is only allowed before
// Send, in the Unsent or Opened state.
func (x *Request) SetWithCredentials(v bool) error {
	if (x.readyState != Unsent && x.readyState != Opened) || x.sendFlag {
		return usageErrorf("withCredentials", "cannot be changed after send or in state %s", x.readyState)
	}
	x.withCredentials = v
	return nil
}

// Timeout returns the configured timeout, 0 meaning none.
func (x *Request) Timeout() time.Duration { return x.timeout }

// SetTimeout sets the timeout. When a send is in flight the timeout is
// (re)scheduled relative to the send time, so the remaining delay is the
// new value minus the time already elapsed; a value at or below the elapsed
// time makes it due immediately. Zero cancels any scheduled timeout.
func (x *Request) SetTimeout(d time.Duration) {
	if d < 0 {
		d = 0
	}
	x.timeout = d
	if !x.sendFlag {
		return
	}
	x.stopTimeoutTimer()
	if d > 0 {
		x.scheduleTimeout()
	}
}

// SetOnSend installs the instance-level send hook, the innermost level of
// the cascade. Nil clears it.
func (x *Request) SetOnSend(h OnSendHook) {
	x.onSendHook = h
}

// CurrentRequest returns the handle for the most recent Send, nil before
// the first one. The handle may be stale.
func (x *Request) CurrentRequest() *MockRequest { return x.current }

// Open initializes a request attempt. The optional async flag exists for
// call-site compatibility with the mocked API and must be true when given;
// synchronous mode is not supported.
//
// Open may be called at any point, including from event handlers of an
// in-flight attempt: the previous attempt is terminated without events, its
// handle goes stale, and request and response state are reset. A
// readystatechange fires unless the state already was Opened.
func (x *Request) Open(method, url string, async ...bool) error {
	if len(async) > 0 && !async[0] {
		return usageErrorf("open", "synchronous requests are not supported")
	}
	normalized, err := NormalizeMethod(method)
	if err != nil {
		return err
	}

	x.terminate()
	x.sendFlag = false
	x.uploadListenerFlag = false
	x.uploadComplete = false
	x.body = nil
	x.reqHeaders.Reset()
	x.resetResponse()
	x.method = normalized
	x.url = url

	x.log.Debug("request opened", "method", normalized, "url", url)
	if x.readyState != Opened {
		x.readyState = Opened
		x.fireReadyStateChange()
	}
	return nil
}

// SetRequestHeader records a request header. The request must be opened and
// not sent. Invalid names and values are usage errors; forbidden names are
// silently dropped. Repeated names combine with a comma join.
func (x *Request) SetRequestHeader(name, value string) error {
	if x.readyState != Opened || x.sendFlag {
		return usageErrorf("setRequestHeader", "request must be opened and not sent")
	}
	value = headers.NormalizeValue(value)
	if !headers.IsToken(name) {
		return usageErrorf("setRequestHeader", "invalid header name %q", name)
	}
	if !headers.IsValidValue(value) {
		return usageErrorf("setRequestHeader", "invalid value for header %q", name)
	}
	if headers.IsForbiddenName(name) {
		x.log.Debug("dropped forbidden request header", "name", name)
		return nil
	}
	x.reqHeaders.Add(name, value)
	return nil
}

// Send starts an attempt. The request must be opened and not already sent.
// The body is ignored for GET and HEAD. A Content-Type header is inferred
// from the body type unless one was set explicitly.
//
// Send fires loadstart synchronously (on the main target, and on the upload
// target when a body is present and upload listeners were registered), then
// schedules the onSend hook cascade as a deferred task. Hook values are
// captured now; replacing a hook after Send does not change what runs.
func (x *Request) Send(body any) error {
	if x.readyState != Opened || x.sendFlag {
		return usageErrorf("send", "request must be opened and not already sent")
	}
	if x.method == "GET" || x.method == "HEAD" {
		body = nil
	}
	if body != nil {
		if ct := inferContentType(body); ct != "" && !x.reqHeaders.Has("Content-Type") {
			x.reqHeaders.Add("Content-Type", ct)
		}
	}

	x.body = body
	x.sendFlag = true
	x.uploadComplete = body == nil
	x.uploadListenerFlag = x.upload.HasListeners()
	x.sentAt = x.sched.Now()

	x.generation++
	req := &MockRequest{
		RequestData: &RequestData{
			method:          x.method,
			url:             x.url,
			headers:         x.reqHeaders.Clone(),
			body:            body,
			withCredentials: x.withCredentials,
			bodySize:        BodySize(body),
		},
		xhr: x,
		gen: x.generation,
	}
	x.current = req

	x.log.Debug("request sent",
		"method", x.method,
		"url", x.url,
		"body_size", req.BodySize(),
	)

	x.fireProgress(event.Loadstart, 0, 0)
	if body != nil && x.uploadListenerFlag {
		x.fireUpload(event.Loadstart, 0, req.BodySize())
	}

	// A loadstart handler may have re-opened or aborted; the cascade task
	// checks staleness itself, but a dead attempt must not keep a timer.
	x.deferHookCascade(req)
	if req.isCurrent() && x.timeout > 0 {
		x.scheduleTimeout()
	}
	return nil
}

// Abort terminates the in-flight attempt. From a state with work in flight
// (or already Done) it runs the abort event sequence and then resets the
// state to Unsent without a readystatechange. From Unsent, or Opened before
// Send, nothing is fired.
//
// Event handlers fired by Abort may call Open or Send; the state they
// produce is final and the reset to Unsent is skipped.
func (x *Request) Abort() {
	x.terminate()
	inFlight := (x.readyState == Opened && x.sendFlag) ||
		x.readyState == HeadersReceived ||
		x.readyState == Loading ||
		x.readyState == Done
	if inFlight {
		x.requestErrorSteps(event.Abort)
	}
	if x.readyState == Done {
		x.readyState = Unsent
		x.resetResponse()
	}
}

// requestErrorSteps runs the shared terminal sequence for abort, network
// errors, and timeouts: state Done without a readystatechange, the upload
// event pair when the upload was still in flight and observable, then the
// main event pair, with the response cleared first.
func (x *Request) requestErrorSteps(typ string) {
	x.sendFlag = false
	x.readyState = Done
	x.resetResponse()
	if !x.uploadComplete {
		x.uploadComplete = true
		if x.body != nil && x.uploadListenerFlag {
			x.fireUpload(typ, 0, 0)
			x.fireUpload(event.Loadend, 0, 0)
		}
	}
	x.fireProgress(typ, 0, 0)
	x.fireProgress(event.Loadend, 0, 0)
}

// terminate ends the current attempt: the handle goes stale and any pending
// timeout is cancelled. No events fire here.
func (x *Request) terminate() {
	x.generation++
	x.stopTimeoutTimer()
}

func (x *Request) resetResponse() {
	x.status = 0
	x.statusText = ""
	x.resHeaders = headers.NewContainer()
	x.response = nil
}

func (x *Request) deferHookCascade(req *MockRequest) {
	hooks := x.collectOnSendHooks()
	x.sched.Defer(func() {
		if !req.isCurrent() {
			return
		}
		for _, h := range hooks {
			h(req, x)
		}
	})
}

// collectOnSendHooks resolves the cascade at capture time: global scope,
// then each lineage level from the root down, then the instance hook. Every
// non-nil level is included, without de-duplication.
func (x *Request) collectOnSendHooks() []OnSendHook {
	var out []OnSendHook
	if h := globalHooks.OnSend; h != nil {
		out = append(out, h)
	}
	for _, level := range x.factory.lineage() {
		if h := level.hooks.OnSend; h != nil {
			out = append(out, h)
		}
	}
	if x.onSendHook != nil {
		out = append(out, x.onSendHook)
	}
	return out
}

func (x *Request) scheduleTimeout() {
	delay := x.timeout - x.sched.Now().Sub(x.sentAt)
	x.timeoutTimer = x.sched.AfterFunc(delay, x.fireTimeout)
}

func (x *Request) stopTimeoutTimer() {
	if x.timeoutTimer != nil {
		x.timeoutTimer.Stop()
		x.timeoutTimer = nil
	}
}

// fireTimeout runs when the timeout timer elapses. The three gates are
// checked now, not at schedule time, so disabling timeouts anywhere in the
// chain suppresses an already-scheduled firing.
func (x *Request) fireTimeout() {
	if !x.timeoutAllowed() {
		x.log.Debug("timeout suppressed by gate", "url", x.url)
		return
	}
	req := x.current
	if req == nil || !req.isCurrent() {
		return
	}
	x.log.Debug("request timed out", "method", x.method, "url", x.url, "timeout", x.timeout)
	req.phase = phaseTimedOut
	x.terminate()
	x.requestErrorSteps(event.Timeout)
}

func (x *Request) timeoutAllowed() bool {
	if !x.TimeoutEnabled {
		return false
	}
	for f := x.factory; f != nil; f = f.parent {
		if !f.hooks.TimeoutEnabled {
			return false
		}
	}
	return globalHooks.TimeoutEnabled
}

func (x *Request) fireReadyStateChange() {
	x.Target.DispatchEvent(event.New(event.ReadyStateChange))
}

func (x *Request) fireProgress(typ string, loaded, total int) {
	x.Target.DispatchEvent(event.NewProgress(typ, loaded, total))
}

func (x *Request) fireUpload(typ string, loaded, total int) {
	x.upload.DispatchEvent(event.NewProgress(typ, loaded, total))
}

// statusTextFor returns the default reason phrase for a status code.
func statusTextFor(code int) string {
	if text := http.StatusText(code); text != "" {
		return text
	}
	return "Unknown Status"
}
