package formula

import (
	"cmp"
	"math"
	"strconv"
	"strings"

	"github.com/lemonberrylabs/record-formula/pkg/selector"
)

// Expr is a node of the expression tree: *TermExpr, *BinaryExpr or
// *UnaryExpr. Every node owns its children and is never modified after the
// parser returns it.
type Expr interface {
	String() string
	isExpr()
}

// Term is a leaf of the expression tree: a Value, a *Selector or a
// ProbGenerator.
type Term interface {
	String() string
	isTerm()
}

// Value is a literal: Bool, Str, Null or one of the Num kinds.
type Value interface {
	Term
	isValue()
}

// Num is a numeric literal: PosInt, Int or Float. A literal gets exactly one
// of these kinds when it is parsed.
type Num interface {
	Value
	isNum()
}

// PosInt is an unsigned integer literal written without a sign.
type PosInt uint64

// Int is an integer literal written with an explicit leading '-'.
type Int int64

// Float is a float literal. Float ordering is total, see CompareNum.
type Float float64

// Bool is a boolean literal.
type Bool bool

// Str is a double-quoted string literal.
type Str string

// Null is the null literal.
type Null struct{}

func (PosInt) isTerm() {}
func (Int) isTerm()    {}
func (Float) isTerm()  {}
func (Bool) isTerm()   {}
func (Str) isTerm()    {}
func (Null) isTerm()   {}

func (PosInt) isValue() {}
func (Int) isValue()    {}
func (Float) isValue()  {}
func (Bool) isValue()   {}
func (Str) isValue()    {}
func (Null) isValue()   {}

func (PosInt) isNum() {}
func (Int) isNum()    {}
func (Float) isNum()  {}

func (v PosInt) String() string { return strconv.FormatUint(uint64(v), 10) }

// String keeps the sign on zero so the text parses back as an Int.
func (v Int) String() string {
	if v == 0 {
		return "-0"
	}
	return strconv.FormatInt(int64(v), 10)
}

func (v Float) String() string { return formatFloat(float64(v)) }

func (v Bool) String() string { return strconv.FormatBool(bool(v)) }

func (v Str) String() string { return quote(string(v)) }

func (Null) String() string { return "null" }

// Selector is a field path into the current record.
type Selector struct {
	Path selector.Path
}

func (*Selector) isTerm() {}

func (s *Selector) String() string { return s.Path.String() }

// BinaryOp is an arithmetic operator.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpDiv
	OpMul
	OpPow
)

// String returns the operator symbol.
func (op BinaryOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpDiv:
		return "/"
	case OpMul:
		return "*"
	case OpPow:
		return "^"
	default:
		return "?"
	}
}

// TermExpr wraps a leaf.
type TermExpr struct {
	Term Term
}

// BinaryExpr applies a binary operator.
type BinaryExpr struct {
	Left  Expr
	Op    BinaryOp
	Right Expr
}

// UnaryExpr applies a unary function.
type UnaryExpr struct {
	Func    UnaryFunction
	Operand Expr
}

func (*TermExpr) isExpr()   {}
func (*BinaryExpr) isExpr() {}
func (*UnaryExpr) isExpr()  {}

func (e *TermExpr) String() string { return e.Term.String() }

// String renders the node fully parenthesised, e.g. "(7 + (5 * 9))".
func (e *BinaryExpr) String() string {
	return "(" + e.Left.String() + " " + e.Op.String() + " " + e.Right.String() + ")"
}

func (e *UnaryExpr) String() string {
	arg := e.Operand.String()
	if _, ok := e.Operand.(*BinaryExpr); ok {
		arg = arg[1 : len(arg)-1]
	}
	return e.Func.String() + "(" + arg + ")"
}

// formatFloat renders f in a float surface form, so "4500." rather than
// "4500", which would read back as an integer.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return s
	}
	if !strings.ContainsAny(s, ".e") {
		s += "."
	}
	return s
}

// quote renders s as a string literal using the escapes the grammar reads.
func quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch ch := s[i]; ch {
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		default:
			sb.WriteByte(ch)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// CompareNum orders numeric literals: PosInt before Int before Float, then
// by value. NaN equals NaN and sorts after every other float.
func CompareNum(a, b Num) int {
	if ra, rb := numRank(a), numRank(b); ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch x := a.(type) {
	case PosInt:
		return cmp.Compare(x, b.(PosInt))
	case Int:
		return cmp.Compare(x, b.(Int))
	case Float:
		return compareFloats(float64(x), float64(b.(Float)))
	default:
		panic("formula: unknown numeric literal kind")
	}
}

// CompareValue orders literals: Bool, Str, Num, Null, then by value within
// a kind (false before true).
func CompareValue(a, b Value) int {
	if ra, rb := valueRank(a), valueRank(b); ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch x := a.(type) {
	case Bool:
		y := b.(Bool)
		switch {
		case x == y:
			return 0
		case !bool(x):
			return -1
		}
		return 1
	case Str:
		return strings.Compare(string(x), string(b.(Str)))
	case Num:
		return CompareNum(x, b.(Num))
	case Null:
		return 0
	default:
		panic("formula: unknown value kind")
	}
}

func numRank(n Num) int {
	switch n.(type) {
	case PosInt:
		return 0
	case Int:
		return 1
	case Float:
		return 2
	default:
		panic("formula: unknown numeric literal kind")
	}
}

func valueRank(v Value) int {
	switch v.(type) {
	case Bool:
		return 0
	case Str:
		return 1
	case Num:
		return 2
	case Null:
		return 3
	default:
		panic("formula: unknown value kind")
	}
}

func compareFloats(a, b float64) int {
	an, bn := math.IsNaN(a), math.IsNaN(b)
	switch {
	case an && bn:
		return 0
	case an:
		return 1
	case bn:
		return -1
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
