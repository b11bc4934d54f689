// Package matching provides the URL matchers behind route registration.
//
// A Matcher decides whether a request URL selects a route. Five kinds are
// supported:
//
//   - Exact: full string equality
//   - Regexp: an RE2 pattern applied with MatchString
//   - Predicate: an arbitrary func(url string) bool
//   - Glob: a doublestar pattern ("/api/**" matches nested segments)
//   - Expression: an expr-lang boolean expression over the variable "url"
//
// Glob and Expression matchers validate their pattern at construction, so a
// bad pattern surfaces as a registration error rather than a silent
// never-match route.
package matching

import (
	"fmt"
	"regexp"
)

// Matcher reports whether a request URL selects a route.
type Matcher interface {
	Match(url string) bool
	fmt.Stringer
}

// Exact matches a URL by full string equality.
type Exact string

// Match implements Matcher.
func (e Exact) Match(url string) bool { return string(e) == url }

func (e Exact) String() string { return fmt.Sprintf("exact(%q)", string(e)) }

// Regexp matches a URL with a compiled regular expression.
type Regexp struct {
	re *regexp.Regexp
}

// NewRegexp wraps an already compiled pattern.
func NewRegexp(re *regexp.Regexp) Regexp {
	return Regexp{re: re}
}

// CompileRegexp compiles pattern and wraps it.
func CompileRegexp(pattern string) (Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Regexp{}, fmt.Errorf("compiling url regexp %q: %w", pattern, err)
	}
	return Regexp{re: re}, nil
}

// Match implements Matcher.
func (r Regexp) Match(url string) bool {
	if r.re == nil {
		return false
	}
	return r.re.MatchString(url)
}

func (r Regexp) String() string {
	if r.re == nil {
		return "regexp(<nil>)"
	}
	return fmt.Sprintf("regexp(%q)", r.re.String())
}

// Predicate matches a URL with an arbitrary function.
type Predicate func(url string) bool

// Match implements Matcher.
func (p Predicate) Match(url string) bool {
	if p == nil {
		return false
	}
	return p(url)
}

func (p Predicate) String() string { return "predicate" }

// Compile converts the loosely typed matcher forms accepted by route
// registration into a Matcher:
//
//   - Matcher values pass through unchanged
//   - string means exact equality
//   - *regexp.Regexp means MatchString
//   - func(string) bool means predicate
//
// Glob and expression matchers carry their own constructors because a bare
// string is reserved for exact matching.
func Compile(spec any) (Matcher, error) {
	switch m := spec.(type) {
	case Matcher:
		return m, nil
	case string:
		return Exact(m), nil
	case *regexp.Regexp:
		if m == nil {
			return nil, fmt.Errorf("url matcher: nil *regexp.Regexp")
		}
		return NewRegexp(m), nil
	case func(string) bool:
		if m == nil {
			return nil, fmt.Errorf("url matcher: nil predicate")
		}
		return Predicate(m), nil
	case nil:
		return nil, fmt.Errorf("url matcher: nil")
	}
	return nil, fmt.Errorf("url matcher: unsupported type %T", spec)
}
