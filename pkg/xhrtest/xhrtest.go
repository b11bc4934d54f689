package xhrtest

import (
	"testing"

	"github.com/getmockd/mockxhr/pkg/server"
)

// Server returns a mock server that is removed when the test finishes.
// The cleanup restores any environment slot the test installed the server
// into, so tests can call Install without their own teardown.
func Server(t testing.TB, opts ...server.Option) *server.Server {
	t.Helper()
	srv := server.New(opts...)
	t.Cleanup(srv.Remove)
	return srv
}
