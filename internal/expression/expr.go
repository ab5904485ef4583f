package expression

import (
	"strings"
)

// Expr is a parsed expression together with the source it came from.
type Expr struct {
	Source string
	Root   Node
}

func (e *Expr) String() string {
	return e.Source
}

// Evaluate reduces the expression to a number. The tree is never modified, so
// an Expr can be evaluated any number of times.
func (e *Expr) Evaluate() (float64, error) {
	return Evaluate(e.Root)
}

// EvaluateString removes every white space from source, then parses and
// evaluates it. Every failure is a *types.Error tagged LexicalError,
// SyntaxError or EvaluationError.
func EvaluateString(source string, opts ...ParseOption) (float64, error) {
	expr, err := ParseExpr(StripWhiteSpaces(source), opts...)
	if err != nil {
		return 0, err
	}

	return expr.Evaluate()
}

// StripWhiteSpaces removes white spaces anywhere in s, so "1 2 + 3" becomes
// "12+3".
func StripWhiteSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}
