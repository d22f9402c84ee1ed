// Package formula implements the front end of the record formula language:
// a best-effort tokenizer and a grammar engine that turns formula text such
// as `(d.TOTALVALUE + rbern(seed=159, prob=0.5)) / d.BUILDINGVALUE` into an
// expression tree. Evaluating the tree is left to the caller.
package formula

import "fmt"

// TokenType represents the type of a token produced by Tokenize.
type TokenType int

const (
	TokenLParen TokenType = iota // (
	TokenRParen                  // )
	TokenAdd                     // +
	TokenSub                     // -
	TokenDiv                     // /
	TokenMul                     // *
	TokenPow                     // ^
	TokenEq                      // =
	TokenString                  // identifiers, field references, function names
	TokenInt                     // integer literal
	TokenFloat                   // float literal
)

// Token represents a single token produced by Tokenize.
type Token struct {
	Type     TokenType
	Value    string  // raw text, without surrounding whitespace
	IntVal   int64   // parsed int (for TokenInt)
	FloatVal float64 // parsed float (for TokenFloat)
	StrVal   string  // text (for TokenString)
	Pos      int     // byte offset of Value in the input
}

// String returns a debug-friendly representation of the token type.
func (t TokenType) String() string {
	switch t {
	case TokenLParen:
		return "LPAREN"
	case TokenRParen:
		return "RPAREN"
	case TokenAdd:
		return "ADD"
	case TokenSub:
		return "SUB"
	case TokenDiv:
		return "DIV"
	case TokenMul:
		return "MUL"
	case TokenPow:
		return "POW"
	case TokenEq:
		return "EQ"
	case TokenString:
		return "STRING"
	case TokenInt:
		return "INT"
	case TokenFloat:
		return "FLOAT"
	default:
		return "UNKNOWN"
	}
}

// String returns the token type followed by its payload, e.g. INT(42).
func (t Token) String() string {
	switch t.Type {
	case TokenString:
		return fmt.Sprintf("%s(%s)", t.Type, t.StrVal)
	case TokenInt:
		return fmt.Sprintf("%s(%d)", t.Type, t.IntVal)
	case TokenFloat:
		return fmt.Sprintf("%s(%s)", t.Type, formatFloat(t.FloatVal))
	default:
		return t.Type.String()
	}
}
