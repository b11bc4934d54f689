package matching

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ExprEnv is the variable environment visible to URL expressions.
type ExprEnv struct {
	URL string `expr:"url"`
}

// Expression matches a URL with a compiled expr-lang boolean expression.
// The request URL is exposed as the variable "url", so patterns like
// `url startsWith "/api/" && len(url) < 80` work as route matchers.
type Expression struct {
	src     string
	program *vm.Program
}

// NewExpression compiles src and returns an expression matcher. Compilation
// enforces a boolean result type.
func NewExpression(src string) (Expression, error) {
	program, err := expr.Compile(src, expr.Env(ExprEnv{}), expr.AsBool())
	if err != nil {
		return Expression{}, fmt.Errorf("compiling url expression %q: %w", src, err)
	}
	return Expression{src: src, program: program}, nil
}

// Match implements Matcher. A runtime evaluation error counts as no match.
func (e Expression) Match(url string) bool {
	if e.program == nil {
		return false
	}
	out, err := expr.Run(e.program, ExprEnv{URL: url})
	if err != nil {
		return false
	}
	ok, _ := out.(bool)
	return ok
}

func (e Expression) String() string { return fmt.Sprintf("expr(%q)", e.src) }
