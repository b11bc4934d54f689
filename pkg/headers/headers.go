// Package headers provides the case-insensitive header container used for
// mocked request and response headers, along with the token grammar and
// forbidden-name rules that govern what callers may set on a request.
package headers

import (
	"sort"
	"strings"
)

// forbiddenNames lists request header names that callers are never allowed
// to set. Attempts to set them are silently ignored rather than rejected.
var forbiddenNames = map[string]struct{}{
	"accept-charset":                 {},
	"accept-encoding":                {},
	"access-control-request-headers": {},
	"access-control-request-method":  {},
	"connection":                     {},
	"content-length":                 {},
	"cookie":                         {},
	"cookie2":                        {},
	"date":                           {},
	"dnt":                            {},
	"expect":                         {},
	"host":                           {},
	"keep-alive":                     {},
	"origin":                         {},
	"referer":                        {},
	"te":                             {},
	"trailer":                        {},
	"transfer-encoding":              {},
	"upgrade":                        {},
	"via":                            {},
}

// IsForbiddenName reports whether name may not be set as a request header.
// The check is case-insensitive and includes the Proxy- and Sec- prefixes.
func IsForbiddenName(name string) bool {
	lower := strings.ToLower(name)
	if _, ok := forbiddenNames[lower]; ok {
		return true
	}
	return strings.HasPrefix(lower, "proxy-") || strings.HasPrefix(lower, "sec-")
}

// IsToken reports whether s is a valid HTTP token (RFC 9110 tchar grammar).
// Header names and request methods share this grammar.
func IsToken(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isTokenChar(s[i]) {
			return false
		}
	}
	return true
}

func isTokenChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '.', '^', '_', '`', '|', '~':
		return true
	}
	return false
}

// IsValidValue reports whether s may be used as a header value after
// normalization: no NUL, CR, or LF bytes.
func IsValidValue(s string) bool {
	return !strings.ContainsAny(s, "\x00\r\n")
}

// NormalizeValue trims leading and trailing HTTP whitespace from a header
// value, as user agents do before storing it.
func NormalizeValue(s string) string {
	return strings.Trim(s, " \t")
}

type entry struct {
	name  string // casing as first added
	value string // comma-joined on repeats
}

// Container stores headers with case-insensitive names. Repeated additions
// of the same name combine values with a comma join, matching how user
// agents merge request headers.
//
// The zero value is not usable; call NewContainer or FromMap.
type Container struct {
	entries []entry
}

// NewContainer returns an empty header container.
func NewContainer() *Container {
	return &Container{}
}

// FromMap builds a container from a plain map. Nil is treated as empty.
func FromMap(m map[string]string) *Container {
	c := NewContainer()
	// Sort for a deterministic entry order; lookups and serialization
	// normalize anyway, but deterministic internals make debugging easier.
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c.Add(name, m[name])
	}
	return c
}

// Add records a header. If the name is already present (case-insensitively)
// the new value is appended to the existing one with ", ".
func (c *Container) Add(name, value string) {
	for i := range c.entries {
		if strings.EqualFold(c.entries[i].name, name) {
			c.entries[i].value += ", " + value
			return
		}
	}
	c.entries = append(c.entries, entry{name: name, value: value})
}

// Get returns the (possibly combined) value for name and whether it exists.
func (c *Container) Get(name string) (string, bool) {
	for i := range c.entries {
		if strings.EqualFold(c.entries[i].name, name) {
			return c.entries[i].value, true
		}
	}
	return "", false
}

// Has reports whether name is present.
func (c *Container) Has(name string) bool {
	_, ok := c.Get(name)
	return ok
}

// Len returns the number of distinct header names.
func (c *Container) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Reset removes all headers.
func (c *Container) Reset() {
	c.entries = nil
}

// Clone returns an independent copy of the container.
func (c *Container) Clone() *Container {
	cp := &Container{entries: make([]entry, len(c.entries))}
	copy(cp.entries, c.entries)
	return cp
}

// All serializes the headers the way getAllResponseHeaders() does: names
// lower-cased and sorted, each line terminated with CRLF.
func (c *Container) All() string {
	if c == nil || len(c.entries) == 0 {
		return ""
	}
	lines := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		lines = append(lines, strings.ToLower(e.name)+": "+e.value)
	}
	sort.Strings(lines)
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("\r\n")
	}
	return b.String()
}

// Hash returns the headers as a map keyed by lower-cased name.
func (c *Container) Hash() map[string]string {
	m := make(map[string]string, c.Len())
	if c == nil {
		return m
	}
	for _, e := range c.entries {
		m[strings.ToLower(e.name)] = e.value
	}
	return m
}
