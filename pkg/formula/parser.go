package formula

import (
	"github.com/lemonberrylabs/record-formula/pkg/selector"
)

// MaxFormulaLength is the maximum allowed length in bytes of formula text
// given to ParseExpr or ParseTerm.
const MaxFormulaLength = 4096

// MaxDepth is the maximum nesting of parentheses, calls and exponent chains.
const MaxDepth = 200

// parser is a recursive descent parser over scanner lexemes.
type parser struct {
	rule    Rule
	input   string
	lexemes []lexeme
	pos     int
	depth   int
}

// ParseExpr parses a complete formula:
//
//	expr := additive
//	additive := multiplicative (('+' | '-') multiplicative)*
//	multiplicative := power (('*' | '/') power)*
//	power := operand ('^' power)?
//
// '^' is right-associative, the other operators are left-associative. The
// whole input must be consumed.
func ParseExpr(text string) (Expr, error) {
	p, err := newParser(RuleExpr, text)
	if err != nil {
		return nil, err
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectEnd(); err != nil {
		return nil, err
	}
	return e, nil
}

// ParseTerm parses a single operand: a literal, a selector, a function or
// distribution call, or a parenthesised expression. Binary operators are
// only accepted inside parentheses or call arguments.
func ParseTerm(text string) (Expr, error) {
	p, err := newParser(RuleTerm, text)
	if err != nil {
		return nil, err
	}
	e, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	if err := p.expectEnd(); err != nil {
		return nil, err
	}
	return e, nil
}

func newParser(rule Rule, text string) (*parser, error) {
	if len(text) > MaxFormulaLength {
		return nil, newSyntaxError(rule, text, MaxFormulaLength, "formula exceeds maximum length of %d bytes", MaxFormulaLength)
	}
	s := &scanner{rule: rule, input: text}
	lexemes, err := s.scan()
	if err != nil {
		return nil, err
	}
	return &parser{rule: rule, input: text, lexemes: lexemes}, nil
}

// current returns the current lexeme.
func (p *parser) current() lexeme {
	return p.lexemes[p.pos]
}

// peek returns the lexeme after the current one.
func (p *parser) peek() lexeme {
	if p.pos+1 < len(p.lexemes) {
		return p.lexemes[p.pos+1]
	}
	return p.lexemes[len(p.lexemes)-1]
}

// advance moves past the current lexeme and returns it. It never moves
// past the final lexEOF.
func (p *parser) advance() lexeme {
	l := p.lexemes[p.pos]
	if p.pos < len(p.lexemes)-1 {
		p.pos++
	}
	return l
}

// expect consumes a lexeme of the given kind or fails.
func (p *parser) expect(kind lexKind, what string) (lexeme, error) {
	l := p.current()
	if l.kind != kind {
		return lexeme{}, p.errorf(l.pos, "expected %s, got %s", what, l.describe())
	}
	return p.advance(), nil
}

func (p *parser) expectEnd() error {
	if l := p.current(); l.kind != lexEOF {
		return p.errorf(l.pos, "unexpected %s after complete %s", l.describe(), p.rule)
	}
	return nil
}

func (p *parser) errorf(pos int, format string, args ...any) error {
	return newSyntaxError(p.rule, p.input, pos, format, args...)
}

// enter tracks one level of nesting and fails past MaxDepth.
func (p *parser) enter() error {
	p.depth++
	if p.depth > MaxDepth {
		return p.errorf(p.current().pos, "formula nests deeper than %d levels", MaxDepth)
	}
	return nil
}

func (p *parser) leave() {
	p.depth--
}

func (p *parser) parseExpr() (Expr, error) {
	return p.parseAdditive()
}

func (p *parser) parseAdditive() (Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		var op BinaryOp
		switch p.current().kind {
		case lexPlus:
			op = OpAdd
		case lexMinus:
			op = OpSub
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Op: op, Right: right}
	}
}

func (p *parser) parseMultiplicative() (Expr, error) {
	left, err := p.parsePower()
	if err != nil {
		return nil, err
	}
	for {
		var op BinaryOp
		switch p.current().kind {
		case lexStar:
			op = OpMul
		case lexSlash:
			op = OpDiv
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parsePower()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Op: op, Right: right}
	}
}

func (p *parser) parsePower() (Expr, error) {
	base, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	if p.current().kind != lexCaret {
		return base, nil
	}
	p.advance()
	if err := p.enter(); err != nil {
		return nil, err
	}
	exp, err := p.parsePower()
	p.leave()
	if err != nil {
		return nil, err
	}
	return &BinaryExpr{Left: base, Op: OpPow, Right: exp}, nil
}

// parseOperand parses the tightest-binding forms.
func (p *parser) parseOperand() (Expr, error) {
	l := p.current()
	switch l.kind {
	case lexLParen:
		p.advance()
		if err := p.enter(); err != nil {
			return nil, err
		}
		e, err := p.parseExpr()
		p.leave()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexRParen, `")"`); err != nil {
			return nil, err
		}
		return e, nil

	case lexMinus, lexInteger, lexFloat:
		n, err := p.parseNumber()
		if err != nil {
			return nil, err
		}
		return &TermExpr{Term: n}, nil

	case lexString:
		p.advance()
		return &TermExpr{Term: Str(l.str)}, nil

	case lexIdent:
		return p.parseIdentifier()

	case lexEOF:
		return nil, p.errorf(l.pos, "unexpected end of input, expected an operand")

	default:
		return nil, p.errorf(l.pos, "unexpected %s, expected an operand", l.describe())
	}
}

// parseNumber parses a numeric literal. A '-' directly followed by an
// integer is its sign; floats cannot be signed.
func (p *parser) parseNumber() (Num, error) {
	l := p.current()
	switch l.kind {
	case lexInteger:
		p.advance()
		u, err := posIntValue(p.rule, p.input, l.pos, l.text)
		if err != nil {
			return nil, err
		}
		return PosInt(u), nil

	case lexFloat:
		p.advance()
		f, err := floatValue(p.rule, p.input, l.pos, l.text)
		if err != nil {
			return nil, err
		}
		return Float(f), nil

	case lexMinus:
		next := p.peek()
		if next.pos != l.end {
			return nil, p.errorf(l.pos, `unexpected "-", a sign must be followed directly by an integer`)
		}
		switch next.kind {
		case lexInteger:
			p.advance()
			p.advance()
			i, err := intValue(p.rule, p.input, l.pos, "-"+next.text)
			if err != nil {
				return nil, err
			}
			return Int(i), nil
		case lexFloat:
			return nil, p.errorf(l.pos, "float literal %s cannot carry a sign", next.text)
		}
		return nil, p.errorf(l.pos, `unexpected "-", a sign must be followed directly by an integer`)
	}
	return nil, p.errorf(l.pos, "expected a numeric literal, got %s", l.describe())
}

// parseIdentifier handles keywords, selectors and calls.
func (p *parser) parseIdentifier() (Expr, error) {
	l := p.current()
	switch l.text {
	case "true":
		p.advance()
		return &TermExpr{Term: Bool(true)}, nil
	case "false":
		p.advance()
		return &TermExpr{Term: Bool(false)}, nil
	case "null":
		p.advance()
		return &TermExpr{Term: Null{}}, nil
	}

	next := p.peek()
	if next.kind == lexLParen {
		if fn, ok := LookupUnaryFunction(l.text); ok {
			return p.parseUnaryCall(fn)
		}
		if IsDistribution(l.text) {
			g, err := p.parseDistribution()
			if err != nil {
				return nil, err
			}
			return &TermExpr{Term: g}, nil
		}
		return nil, p.errorf(l.pos, "unknown function %q", l.text)
	}

	if l.text == selector.Root {
		sel, err := p.parseSelector()
		if err != nil {
			return nil, err
		}
		return &TermExpr{Term: sel}, nil
	}
	return nil, p.errorf(l.pos, "unknown identifier %q", l.text)
}

// parseSelector parses d followed by .field and [index] segments. Segments
// are written without surrounding whitespace.
func (p *parser) parseSelector() (*Selector, error) {
	root := p.advance()
	end := root.end

	var segments []selector.Segment
	for {
		l := p.current()
		if l.pos != end {
			break
		}
		if l.kind != lexDot && l.kind != lexLBracket {
			break
		}
		p.advance()

		switch l.kind {
		case lexDot:
			name := p.current()
			if name.kind != lexIdent || name.pos != l.end {
				return nil, p.errorf(name.pos, "expected a field name after \".\", got %s", name.describe())
			}
			p.advance()
			segments = append(segments, selector.Identifier(name.text))
			end = name.end

		case lexLBracket:
			idx, err := p.expect(lexInteger, "an array index")
			if err != nil {
				return nil, err
			}
			i, err := posIntValue(p.rule, p.input, idx.pos, idx.text)
			if err != nil {
				return nil, err
			}
			closing, err := p.expect(lexRBracket, `"]"`)
			if err != nil {
				return nil, err
			}
			segments = append(segments, selector.Index(i))
			end = closing.end
		}
	}

	if len(segments) == 0 {
		return nil, p.errorf(root.pos, "selector %q needs at least one field or index", selector.Root)
	}
	path, err := selector.New(segments...)
	if err != nil {
		return nil, p.errorf(root.pos, "%v", err)
	}
	return &Selector{Path: path}, nil
}

// parseUnaryCall parses name(expr).
func (p *parser) parseUnaryCall(fn UnaryFunction) (Expr, error) {
	p.advance()
	p.advance()
	if err := p.enter(); err != nil {
		return nil, err
	}
	arg, err := p.parseExpr()
	p.leave()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexRParen, `")" closing `+fn.String()); err != nil {
		return nil, err
	}
	return &UnaryExpr{Func: fn, Operand: arg}, nil
}

// parseDistribution parses name(key = value, ...) and binds the arguments
// to the generator's parameters by name.
func (p *parser) parseDistribution() (ProbGenerator, error) {
	name := p.advance()
	p.advance()
	g, bindings, _ := newGenerator(name.text)

	var args []namedArg
	if p.current().kind != lexRParen {
		for {
			key, err := p.expect(lexIdent, "a parameter name")
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexEq, `"=" after parameter `+key.text); err != nil {
				return nil, err
			}
			value, err := p.parseNumber()
			if err != nil {
				return nil, err
			}
			args = append(args, namedArg{name: key.text, value: value, pos: key.pos})

			if p.current().kind != lexComma {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(lexRParen, `")" closing `+name.text); err != nil {
		return nil, err
	}

	if aerr := bindArgs(name.text, name.pos, args, bindings); aerr != nil {
		return nil, p.errorf(aerr.pos, "%s", aerr.msg)
	}
	return g, nil
}
