package matching

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// Glob matches a URL against a doublestar pattern. Patterns use "/" as the
// segment separator, so "/api/*" matches one segment and "/api/**" matches
// any depth.
type Glob struct {
	pattern string
}

// NewGlob validates pattern and returns a glob matcher.
func NewGlob(pattern string) (Glob, error) {
	if !doublestar.ValidatePattern(pattern) {
		return Glob{}, fmt.Errorf("invalid glob pattern %q", pattern)
	}
	return Glob{pattern: pattern}, nil
}

// Match implements Matcher.
func (g Glob) Match(url string) bool {
	if g.pattern == "" {
		return false
	}
	ok, err := doublestar.Match(g.pattern, url)
	return err == nil && ok
}

func (g Glob) String() string { return fmt.Sprintf("glob(%q)", g.pattern) }
