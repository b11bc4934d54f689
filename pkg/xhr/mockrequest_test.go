package xhr

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/mockxhr/pkg/event"
)

func openAndSend(t *testing.T, method, url string, body any) (*Request, *MockRequest) {
	t.Helper()
	x := NewFactory().NewRequest()
	require.NoError(t, x.Open(method, url, true))
	require.NoError(t, x.Send(body))
	return x, x.CurrentRequest()
}

func TestRespondEventSequence(t *testing.T) {
	x, req := openAndSend(t, "GET", "/url", nil)
	rec := recordMainEvents(x)

	require.NoError(t, req.Respond(201, map[string]string{"X-Header": "1"}, "body"))

	assert.Equal(t, []string{
		"readystatechange(2)",
		"readystatechange(3)",
		"progress(4,4,true)",
		"readystatechange(4)",
		"load(4,4,true)",
		"loadend(4,4,true)",
	}, rec.events)

	assert.Equal(t, Done, x.ReadyState())
	assert.Equal(t, 201, x.Status())
	assert.Equal(t, "Created", x.StatusText())
	assert.Equal(t, "body", x.Response())

	got, ok := x.GetResponseHeader("x-header")
	require.True(t, ok)
	assert.Equal(t, "1", got)
}

func TestRespondCustomStatusText(t *testing.T) {
	x, req := openAndSend(t, "GET", "/url", nil)
	require.NoError(t, req.Respond(200, nil, "ok", "All Good"))
	assert.Equal(t, "All Good", x.StatusText())
}

func TestSetResponseHeadersDefaults(t *testing.T) {
	x, req := openAndSend(t, "GET", "/url", nil)
	require.NoError(t, req.SetResponseHeaders(0, nil, ""))

	assert.Equal(t, 200, x.Status())
	assert.Equal(t, "OK", x.StatusText())
	assert.Equal(t, HeadersReceived, x.ReadyState())
}

func TestSetResponseHeadersUnknownStatus(t *testing.T) {
	x, req := openAndSend(t, "GET", "/url", nil)
	require.NoError(t, req.SetResponseHeaders(599, nil, ""))
	assert.Equal(t, "Unknown Status", x.StatusText())
}

func TestSetResponseHeadersTwiceIsUsageError(t *testing.T) {
	_, req := openAndSend(t, "GET", "/url", nil)
	require.NoError(t, req.SetResponseHeaders(200, nil, ""))

	err := req.SetResponseHeaders(200, nil, "")
	assert.ErrorIs(t, err, ErrUsage)
}

func TestDownloadProgressBeforeHeadersIsUsageError(t *testing.T) {
	_, req := openAndSend(t, "GET", "/url", nil)
	assert.ErrorIs(t, req.DownloadProgress(1, 10), ErrUsage)
}

func TestDownloadProgress(t *testing.T) {
	x, req := openAndSend(t, "GET", "/url", nil)
	require.NoError(t, req.SetResponseHeaders(200, nil, ""))
	rec := recordMainEvents(x)

	require.NoError(t, req.DownloadProgress(2, 8))
	require.NoError(t, req.DownloadProgress(5, 8))

	// Only the first call moves the state to Loading.
	assert.Equal(t, []string{
		"readystatechange(3)",
		"progress(2,8,true)",
		"progress(5,8,true)",
	}, rec.events)
	assert.Equal(t, Loading, x.ReadyState())
}

func TestSetResponseBodyImplicitHeaders(t *testing.T) {
	x, req := openAndSend(t, "GET", "/url", nil)
	rec := recordMainEvents(x)

	require.NoError(t, req.SetResponseBody("hello"))

	assert.Equal(t, []string{
		"readystatechange(2)",
		"readystatechange(3)",
		"progress(5,5,true)",
		"readystatechange(4)",
		"load(5,5,true)",
		"loadend(5,5,true)",
	}, rec.events)

	assert.Equal(t, 200, x.Status())
	assert.Equal(t, "OK", x.StatusText())
	got, ok := x.GetResponseHeader("Content-Length")
	require.True(t, ok)
	assert.Equal(t, "5", got)
}

func TestSetResponseBodyAfterDownloadProgressRefiresLoadingState(t *testing.T) {
	x, req := openAndSend(t, "GET", "/url", nil)
	require.NoError(t, req.SetResponseHeaders(200, nil, ""))
	require.NoError(t, req.DownloadProgress(2, 5))
	rec := recordMainEvents(x)

	require.NoError(t, req.SetResponseBody("hello"))

	// readystatechange fires more often than the state changes: completing
	// the body re-fires the Loading transition even though the state was
	// already Loading.
	assert.Equal(t, []string{
		"readystatechange(3)",
		"progress(5,5,true)",
		"readystatechange(4)",
		"load(5,5,true)",
		"loadend(5,5,true)",
	}, rec.events)
}

func TestUploadCompletionSequence(t *testing.T) {
	x := NewFactory().NewRequest()
	rec := recordAllEvents(x)
	require.NoError(t, x.Open("POST", "/url"))
	require.NoError(t, x.Send("payload")) // 7 bytes
	req := x.CurrentRequest()
	rec.reset()

	require.NoError(t, req.SetResponseHeaders(200, nil, ""))

	assert.Equal(t, []string{
		"upload.progress(7,7,true)",
		"upload.load(7,7,true)",
		"upload.loadend(7,7,true)",
		"readystatechange(2)",
	}, rec.events)
}

func TestUploadCompletionOnlyOnce(t *testing.T) {
	x := NewFactory().NewRequest()
	rec := recordAllEvents(x)
	require.NoError(t, x.Open("POST", "/url"))
	require.NoError(t, x.Send("payload"))
	req := x.CurrentRequest()
	rec.reset()

	require.NoError(t, req.Respond(200, nil, "done"))

	uploads := 0
	for _, e := range rec.events {
		if len(e) > 7 && e[:7] == "upload." {
			uploads++
		}
	}
	assert.Equal(t, 3, uploads, "upload completion fires exactly once")
}

func TestUploadCompletionSkippedWithoutListeners(t *testing.T) {
	x := NewFactory().NewRequest()
	require.NoError(t, x.Open("POST", "/url"))
	require.NoError(t, x.Send("payload"))
	req := x.CurrentRequest()
	rec := recordMainEvents(x)

	require.NoError(t, req.SetResponseHeaders(200, nil, ""))
	assert.Equal(t, []string{"readystatechange(2)"}, rec.events)
}

func TestUploadProgress(t *testing.T) {
	x := NewFactory().NewRequest()
	rec := recordAllEvents(x)
	require.NoError(t, x.Open("POST", "/url"))
	require.NoError(t, x.Send("payload"))
	req := x.CurrentRequest()
	rec.reset()

	require.NoError(t, req.UploadProgress(3))
	require.NoError(t, req.UploadProgress(6))

	assert.Equal(t, []string{
		"upload.progress(3,7,true)",
		"upload.progress(6,7,true)",
	}, rec.events)
}

func TestUploadProgressPreconditions(t *testing.T) {
	t.Run("no body", func(t *testing.T) {
		x := NewFactory().NewRequest()
		recordAllEvents(x)
		require.NoError(t, x.Open("POST", "/url"))
		require.NoError(t, x.Send(nil))
		assert.ErrorIs(t, x.CurrentRequest().UploadProgress(1), ErrUsage)
	})

	t.Run("no upload listeners", func(t *testing.T) {
		_, req := openAndSend(t, "POST", "/url", "payload")
		assert.ErrorIs(t, req.UploadProgress(1), ErrUsage)
	})

	t.Run("upload already completed", func(t *testing.T) {
		x := NewFactory().NewRequest()
		recordAllEvents(x)
		require.NoError(t, x.Open("POST", "/url"))
		require.NoError(t, x.Send("payload"))
		req := x.CurrentRequest()
		require.NoError(t, req.SetResponseHeaders(200, nil, ""))
		assert.ErrorIs(t, req.UploadProgress(1), ErrUsage)
	})
}

func TestSetNetworkErrorBeforeHeaders(t *testing.T) {
	x := NewFactory().NewRequest()
	rec := recordAllEvents(x)
	require.NoError(t, x.Open("POST", "/url"))
	require.NoError(t, x.Send("payload"))
	req := x.CurrentRequest()
	rec.reset()

	require.NoError(t, req.SetNetworkError())

	assert.Equal(t, []string{
		"upload.error(0,0,false)",
		"upload.loadend(0,0,false)",
		"error(0,0,false)",
		"loadend(0,0,false)",
	}, rec.events)
	assert.Equal(t, Done, x.ReadyState())
	assert.Equal(t, 0, x.Status())
	assert.Nil(t, x.Response())
}

func TestSetNetworkErrorAfterHeaders(t *testing.T) {
	x := NewFactory().NewRequest()
	rec := recordAllEvents(x)
	require.NoError(t, x.Open("POST", "/url"))
	require.NoError(t, x.Send("payload"))
	req := x.CurrentRequest()
	require.NoError(t, req.SetResponseHeaders(200, nil, ""))
	rec.reset()

	require.NoError(t, req.SetNetworkError())

	// The upload completed with the headers, so only the main pair fires.
	assert.Equal(t, []string{"error(0,0,false)", "loadend(0,0,false)"}, rec.events)
	assert.Equal(t, 0, x.Status(), "response state is cleared")
}

func TestSetRequestTimeoutRequiresConfiguredTimeout(t *testing.T) {
	_, req := openAndSend(t, "GET", "/url", nil)
	err := req.SetRequestTimeout()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUsage)
	assert.Contains(t, err.Error(), "mock usage error")
}

func TestSetRequestTimeoutManual(t *testing.T) {
	x, req := openAndSend(t, "GET", "/url", nil)
	x.SetTimeout(5 * time.Second)
	rec := recordMainEvents(x)

	// No clock advance needed; the protocol call concludes immediately.
	require.NoError(t, req.SetRequestTimeout())

	assert.Equal(t, []string{"timeout(0,0,false)", "loadend(0,0,false)"}, rec.events)
	assert.Equal(t, Done, x.ReadyState())
}

func TestTerminalOutcomeMakesHandleStale(t *testing.T) {
	x, req := openAndSend(t, "GET", "/url", nil)
	require.NoError(t, req.Respond(200, nil, "first"))
	rec := recordMainEvents(x)

	require.NoError(t, req.SetResponseBody("second"))
	require.NoError(t, req.SetNetworkError())
	require.NoError(t, req.DownloadProgress(1, 2))

	assert.Empty(t, rec.events)
	assert.Equal(t, "first", x.Response())
}

func TestHandleStaleAfterReopen(t *testing.T) {
	x, req := openAndSend(t, "GET", "/url", nil)
	require.NoError(t, x.Open("GET", "/next"))

	rec := recordMainEvents(x)
	require.NoError(t, req.Respond(200, nil, "late"))

	assert.Empty(t, rec.events)
	assert.Equal(t, Opened, x.ReadyState())
	assert.Nil(t, x.Response())
}

func TestRequestDataSnapshot(t *testing.T) {
	x := NewFactory().NewRequest()
	require.NoError(t, x.Open("post", "/api/items"))
	require.NoError(t, x.SetRequestHeader("X-Version", "1"))
	require.NoError(t, x.SetWithCredentials(true))
	require.NoError(t, x.Send("héllo")) // 6 bytes in UTF-8
	req := x.CurrentRequest()

	// Re-opening resets the live request but not the snapshot.
	require.NoError(t, x.Open("GET", "/elsewhere"))

	assert.Equal(t, "POST", req.Method())
	assert.Equal(t, "/api/items", req.URL())
	assert.Equal(t, "héllo", req.Body())
	assert.Equal(t, 6, req.BodySize())
	assert.True(t, req.WithCredentials())

	got, ok := req.Header("x-version")
	require.True(t, ok)
	assert.Equal(t, "1", got)

	hash := req.HeadersHash()
	assert.Equal(t, "1", hash["x-version"])
}

func TestGetAllResponseHeadersFormat(t *testing.T) {
	x, req := openAndSend(t, "GET", "/url", nil)
	require.NoError(t, req.Respond(200, map[string]string{
		"Content-Type": "application/json",
		"X-Custom":     "yes",
	}, "{}"))

	assert.Equal(t,
		"content-type: application/json\r\nx-custom: yes\r\n",
		x.GetAllResponseHeaders())
	assert.Equal(t, map[string]string{
		"content-type": "application/json",
		"x-custom":     "yes",
	}, x.ResponseHeadersHash())
}

func TestReadyStateString(t *testing.T) {
	assert.Equal(t, "UNSENT", Unsent.String())
	assert.Equal(t, "OPENED", Opened.String())
	assert.Equal(t, "HEADERS_RECEIVED", HeadersReceived.String())
	assert.Equal(t, "LOADING", Loading.String())
	assert.Equal(t, "DONE", Done.String())
	assert.Equal(t, "UNKNOWN", ReadyState(9).String())
}

func TestMockRequestRequestAccessor(t *testing.T) {
	x, req := openAndSend(t, "GET", "/url", nil)
	assert.Same(t, x, req.Request())
}

func TestAbortInsideLoadHandler(t *testing.T) {
	x, req := openAndSend(t, "GET", "/url", nil)

	var states []ReadyState
	x.AddEventListener(event.Load, event.ListenerFunc(func(*event.Event) {
		x.Abort()
	}))
	x.AddEventListener(event.Loadend, event.ListenerFunc(func(*event.Event) {
		states = append(states, x.ReadyState())
	}))

	require.NoError(t, req.Respond(200, nil, "ok"))

	// The abort inside the load handler fires its own loadend while the
	// state is still Done, then resets to Unsent; the completion's final
	// loadend fires afterwards on the already-reset request.
	assert.Equal(t, []ReadyState{Done, Unsent}, states)
	assert.Equal(t, Unsent, x.ReadyState())
}
