package xhr

import (
	"strings"

	"github.com/getmockd/mockxhr/pkg/headers"
)

// knownMethods are the verbs that normalize to uppercase when matched
// case-insensitively. Other valid tokens keep their spelling, so "patch"
// and "PATCH" are distinct methods, matching user agent behavior.
var knownMethods = []string{"DELETE", "GET", "HEAD", "OPTIONS", "POST", "PUT"}

// forbiddenMethods can never be opened; attempts are hard errors rather
// than silent drops, unlike forbidden headers.
var forbiddenMethods = map[string]struct{}{
	"CONNECT": {},
	"TRACE":   {},
	"TRACK":   {},
}

// NormalizeMethod validates an HTTP request method and returns its
// normalized form. Invalid tokens and forbidden methods return a usage
// error. Route matching and Open use the same normalization, so "get"
// routes match "GET" opens.
func NormalizeMethod(method string) (string, error) {
	if !headers.IsToken(method) {
		return "", usageErrorf("open", "invalid request method %q", method)
	}
	upper := strings.ToUpper(method)
	if _, bad := forbiddenMethods[upper]; bad {
		return "", usageErrorf("open", "request method %q is forbidden", method)
	}
	for _, known := range knownMethods {
		if upper == known {
			return known, nil
		}
	}
	return method, nil
}
