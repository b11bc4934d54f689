package xhrtest

import (
	"testing"

	"github.com/getmockd/mockxhr/pkg/requestlog"
	"github.com/getmockd/mockxhr/pkg/server"
	"github.com/getmockd/mockxhr/pkg/xhr"
)

// Calls returns the logged requests matching method and url, oldest first.
// The method is normalized the way Open normalizes it; the url is compared
// verbatim against what was passed to Open.
func Calls(srv *server.Server, method, url string) []*requestlog.Entry {
	if norm, err := xhr.NormalizeMethod(method); err == nil {
		method = norm
	}
	entries := srv.RequestLogStore().List(&requestlog.Filter{Method: method})
	matched := make([]*requestlog.Entry, 0, len(entries))
	for _, entry := range entries {
		if entry.URL == url {
			matched = append(matched, entry)
		}
	}
	return matched
}

// AssertCalled asserts that method and url were requested at least once.
func AssertCalled(t testing.TB, srv *server.Server, method, url string) {
	t.Helper()

	if len(Calls(srv, method, url)) == 0 {
		t.Errorf("expected %s %s to be called, but it was not called", method, url)
	}
}

// AssertCalledTimes asserts that method and url were requested exactly the
// given number of times.
func AssertCalledTimes(t testing.TB, srv *server.Server, method, url string, times int) {
	t.Helper()

	if count := len(Calls(srv, method, url)); count != times {
		t.Errorf("expected %s %s to be called %d times, but was called %d times",
			method, url, times, count)
	}
}

// AssertNotCalled asserts that method and url were never requested.
func AssertNotCalled(t testing.TB, srv *server.Server, method, url string) {
	t.Helper()

	if count := len(Calls(srv, method, url)); count > 0 {
		t.Errorf("expected %s %s to not be called, but it was called %d times",
			method, url, count)
	}
}
