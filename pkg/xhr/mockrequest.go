package xhr

import (
	"strconv"

	"github.com/getmockd/mockxhr/pkg/event"
	"github.com/getmockd/mockxhr/pkg/headers"
)

// phase is the response sub-state of one attempt. It only moves forward:
// headers, then exactly one terminal outcome.
type phase int

const (
	phaseNoHeaders phase = iota
	phaseHeadersSent
	phaseBodySent
	phaseNetworkError
	phaseTimedOut
)

// RequestData is the immutable snapshot of a request taken at Send time:
// later mutation of the Request does not change what hooks observe.
type RequestData struct {
	method          string
	url             string
	headers         *headers.Container
	body            any
	withCredentials bool
	bodySize        int
}

// Method returns the normalized request method.
func (d *RequestData) Method() string { return d.method }

// URL returns the request URL exactly as passed to Open. URLs are opaque
// strings here; nothing is parsed or normalized.
func (d *RequestData) URL() string { return d.url }

// Body returns the request body, nil if none was sent.
func (d *RequestData) Body() any { return d.body }

// WithCredentials returns the credentials flag at send time.
func (d *RequestData) WithCredentials() bool { return d.withCredentials }

// BodySize returns the request body size in bytes.
func (d *RequestData) BodySize() int { return d.bodySize }

// Header returns the request header value for name, case-insensitively.
func (d *RequestData) Header(name string) (string, bool) {
	return d.headers.Get(name)
}

// Headers returns a copy of the request headers.
func (d *RequestData) Headers() *headers.Container {
	return d.headers.Clone()
}

// HeadersHash returns the request headers keyed by lower-cased name.
func (d *RequestData) HeadersHash() map[string]string {
	return d.headers.Hash()
}

// MockRequest is the handle a hook or server uses to play the network side
// of one attempt: complete the upload, deliver headers, stream download
// progress, and finish with a body, a network error, or a timeout.
//
// A handle is bound to the attempt that created it. When the attempt ends —
// re-open, abort, timeout, or any terminal response method — the handle
// goes stale and every mutating method returns nil without doing anything,
// so a hook holding an outdated handle cannot corrupt a newer attempt.
// Within a live attempt, calling methods out of order returns a usage
// error.
type MockRequest struct {
	*RequestData

	xhr   *Request
	gen   uint64
	phase phase
}

func (r *MockRequest) isCurrent() bool {
	return r.gen == r.xhr.generation
}

// Request returns the mocked request this handle responds for.
func (r *MockRequest) Request() *Request { return r.xhr }

// UploadProgress fires an upload progress event with the given transmitted
// byte count. It requires a request body, an upload that has not completed
// yet, and upload listeners registered before Send; otherwise it is a usage
// error.
func (r *MockRequest) UploadProgress(transmitted int) error {
	if !r.isCurrent() {
		return nil
	}
	if r.body == nil {
		return usageErrorf("uploadProgress", "no request body was sent")
	}
	if r.xhr.uploadComplete {
		return usageErrorf("uploadProgress", "upload already completed")
	}
	if !r.xhr.uploadListenerFlag {
		return usageErrorf("uploadProgress", "no upload listeners registered before send")
	}
	r.xhr.fireUpload(event.Progress, transmitted, r.bodySize)
	return nil
}

// SetResponseHeaders delivers the response status line and headers. Status
// 0 defaults to 200 and an empty statusText to the standard reason phrase.
// If a request body was sent and upload listeners exist, the upload
// completion sequence (progress to 100%, load, loadend) fires first,
// exactly once per attempt. The ready state becomes HeadersReceived.
//
// Calling it twice in one attempt is a usage error.
func (r *MockRequest) SetResponseHeaders(status int, hdrs map[string]string, statusText string) error {
	if !r.isCurrent() {
		return nil
	}
	if r.phase != phaseNoHeaders {
		return usageErrorf("setResponseHeaders", "response headers were already set")
	}
	x := r.xhr

	if !x.uploadComplete {
		x.uploadComplete = true
		if x.uploadListenerFlag {
			x.fireUpload(event.Progress, r.bodySize, r.bodySize)
			x.fireUpload(event.Load, r.bodySize, r.bodySize)
			x.fireUpload(event.Loadend, r.bodySize, r.bodySize)
		}
	}

	if status == 0 {
		status = 200
	}
	if statusText == "" {
		statusText = statusTextFor(status)
	}
	x.status = status
	x.statusText = statusText
	x.resHeaders = headers.FromMap(hdrs)

	r.phase = phaseHeadersSent
	x.readyState = HeadersReceived
	x.fireReadyStateChange()
	return nil
}

// DownloadProgress fires a response progress event. Headers must have been
// set. The first call moves the ready state to Loading with a
// readystatechange; later calls fire only the progress event.
func (r *MockRequest) DownloadProgress(transmitted, length int) error {
	if !r.isCurrent() {
		return nil
	}
	if r.phase != phaseHeadersSent {
		return usageErrorf("downloadProgress", "response headers must be set first")
	}
	x := r.xhr
	if x.readyState != Loading {
		x.readyState = Loading
		x.fireReadyStateChange()
	}
	x.fireProgress(event.Progress, transmitted, length)
	return nil
}

// SetResponseBody completes the response. When headers were not set yet
// they are set implicitly with status 200 and a computed content-length.
// The full completion sequence fires on the main target:
// readystatechange (Loading, unconditionally — readystatechange fires more
// often than the state changes, as in user agents), progress with the final
// totals, readystatechange (Done), load, loadend.
//
// The attempt ends and the handle goes stale before the completion events
// fire.
func (r *MockRequest) SetResponseBody(body any) error {
	if !r.isCurrent() {
		return nil
	}
	size := BodySize(body)
	if r.phase == phaseNoHeaders {
		implicit := map[string]string{"content-length": strconv.Itoa(size)}
		if err := r.SetResponseHeaders(0, implicit, ""); err != nil {
			return err
		}
	}
	if r.phase != phaseHeadersSent {
		return usageErrorf("setResponseBody", "response was already completed")
	}
	x := r.xhr

	x.readyState = Loading
	x.fireReadyStateChange()

	x.response = body
	r.phase = phaseBodySent
	x.terminate()

	x.fireProgress(event.Progress, size, size)
	x.sendFlag = false
	x.readyState = Done
	x.fireReadyStateChange()
	x.fireProgress(event.Load, size, size)
	x.fireProgress(event.Loadend, size, size)
	return nil
}

// SetNetworkError concludes the attempt as a network failure. The outcome
// is reported purely through events (error then loadend, with the upload
// pair first when observable); no Go error is returned for the simulated
// failure itself.
func (r *MockRequest) SetNetworkError() error {
	if !r.isCurrent() {
		return nil
	}
	r.phase = phaseNetworkError
	x := r.xhr
	x.terminate()
	x.requestErrorSteps(event.Error)
	return nil
}

// SetRequestTimeout concludes the attempt as timed out, with the same event
// shape as a network error but the timeout event type. It is a usage error
// when the request has no timeout configured.
func (r *MockRequest) SetRequestTimeout() error {
	if !r.isCurrent() {
		return nil
	}
	if r.xhr.timeout == 0 {
		return usageErrorf("setRequestTimeout", "the request timeout is not set")
	}
	r.phase = phaseTimedOut
	x := r.xhr
	x.terminate()
	x.requestErrorSteps(event.Timeout)
	return nil
}

// Respond is the one-call form: SetResponseHeaders followed by
// SetResponseBody. The optional last argument is the status text.
func (r *MockRequest) Respond(status int, hdrs map[string]string, body any, statusText ...string) error {
	var text string
	if len(statusText) > 0 {
		text = statusText[0]
	}
	if err := r.SetResponseHeaders(status, hdrs, text); err != nil {
		return err
	}
	return r.SetResponseBody(body)
}
