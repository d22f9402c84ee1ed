package formula

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrSyntax is the kind of every grammar failure. Use errors.Is to test for
// it and errors.As with *SyntaxError for the details.
var ErrSyntax = errors.New("syntax error")

// Rule names a grammar entry point.
type Rule string

const (
	RuleFloat  Rule = "float"
	RuleInt    Rule = "int"
	RulePosInt Rule = "posint"
	RuleNum    Rule = "num"
	RuleTerm   Rule = "term"
	RuleExpr   Rule = "expr"
)

// SyntaxError reports where and why a grammar rule failed to match.
type SyntaxError struct {
	Rule    Rule   // entry point that was invoked
	Input   string // full text given to the entry point
	Pos     int    // byte offset of the failure in Input
	Message string
}

func newSyntaxError(rule Rule, input string, pos int, format string, args ...any) *SyntaxError {
	return &SyntaxError{
		Rule:    rule,
		Input:   input,
		Pos:     pos,
		Message: fmt.Sprintf(format, args...),
	}
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error in %s at column %d: %s", e.Rule, e.Column(), e.Message)
}

// Unwrap returns ErrSyntax.
func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}

// Column returns the 1-based rune column of the failure.
func (e *SyntaxError) Column() int {
	pos := e.Pos
	if pos > len(e.Input) {
		pos = len(e.Input)
	}
	if pos < 0 {
		pos = 0
	}
	return utf8.RuneCountInString(e.Input[:pos]) + 1
}

// Near returns up to 20 runes of input starting at the failure.
func (e *SyntaxError) Near() string {
	if e.Pos < 0 || e.Pos >= len(e.Input) {
		return ""
	}
	rest := e.Input[e.Pos:]
	n := 0
	for i := range rest {
		if n == 20 {
			return rest[:i]
		}
		n++
	}
	return rest
}
