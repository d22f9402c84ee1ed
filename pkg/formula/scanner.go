package formula

import (
	"strings"
	"unicode/utf8"
)

// lexKind is the kind of a lexeme seen by the grammar engine.
type lexKind int

const (
	lexEOF lexKind = iota
	lexIdent
	lexInteger
	lexFloat
	lexString
	lexLParen
	lexRParen
	lexLBracket
	lexRBracket
	lexDot
	lexComma
	lexEq
	lexPlus
	lexMinus
	lexStar
	lexSlash
	lexCaret
)

// lexeme is one unit of grammar input. text is the raw source slice; str
// holds the unescaped contents of a string literal.
type lexeme struct {
	kind lexKind
	text string
	str  string
	pos  int
	end  int
}

// describe names the lexeme for error messages.
func (l lexeme) describe() string {
	if l.kind == lexEOF {
		return "end of input"
	}
	return "\"" + l.text + "\""
}

var punctuation = map[byte]lexKind{
	'(': lexLParen,
	')': lexRParen,
	'[': lexLBracket,
	']': lexRBracket,
	',': lexComma,
	'=': lexEq,
	'+': lexPlus,
	'-': lexMinus,
	'*': lexStar,
	'/': lexSlash,
	'^': lexCaret,
}

// scanner splits formula text into lexemes for the grammar engine. Unlike
// Tokenize it is strict: anything it cannot classify is a syntax error.
type scanner struct {
	rule  Rule
	input string
	pos   int
}

// scan returns every lexeme of the input, terminated by a lexEOF.
func (s *scanner) scan() ([]lexeme, error) {
	var out []lexeme
	for {
		l, err := s.next()
		if err != nil {
			return nil, err
		}
		out = append(out, l)
		if l.kind == lexEOF {
			return out, nil
		}
	}
}

func (s *scanner) next() (lexeme, error) {
	s.pos = skipSpace(s.input, s.pos)
	if s.pos >= len(s.input) {
		return lexeme{kind: lexEOF, pos: s.pos, end: s.pos}, nil
	}

	ch := s.input[s.pos]
	switch {
	case ch == '"':
		return s.readString()
	case ch == '.' && s.afterMember():
		return s.memberDot()
	case isDigit(ch), ch == '.' && s.pos+1 < len(s.input) && isDigit(s.input[s.pos+1]):
		return s.readNumber()
	case ch == '.':
		return s.emit(lexDot, 1), nil
	case isIdentStart(ch):
		return s.readIdentifier(), nil
	}
	if kind, ok := punctuation[ch]; ok {
		return s.emit(kind, 1), nil
	}

	r, _ := utf8.DecodeRuneInString(s.input[s.pos:])
	return lexeme{}, newSyntaxError(s.rule, s.input, s.pos, "unexpected character %q", r)
}

// afterMember reports whether the current position directly follows an
// identifier or a closing bracket.
func (s *scanner) afterMember() bool {
	if s.pos == 0 {
		return false
	}
	prev := s.input[s.pos-1]
	return isIdentPart(prev) || prev == ']'
}

// memberDot reads a field access dot. Digits after it are a bad field name,
// not a float like ".5".
func (s *scanner) memberDot() (lexeme, error) {
	next := s.pos + 1
	if next < len(s.input) && isDigit(s.input[next]) {
		n := next
		for n < len(s.input) && isIdentPart(s.input[n]) {
			n++
		}
		return lexeme{}, newSyntaxError(s.rule, s.input, next, "expected a field name after \".\", got %q", s.input[next:n])
	}
	return s.emit(lexDot, 1), nil
}

func (s *scanner) emit(kind lexKind, n int) lexeme {
	l := lexeme{kind: kind, text: s.input[s.pos : s.pos+n], pos: s.pos, end: s.pos + n}
	s.pos += n
	return l
}

// readString reads a double-quoted string literal. Unknown escapes keep
// their backslash.
func (s *scanner) readString() (lexeme, error) {
	start := s.pos
	s.pos++

	var sb strings.Builder
	for s.pos < len(s.input) {
		ch := s.input[s.pos]
		if ch == '\\' && s.pos+1 < len(s.input) {
			s.pos++
			switch esc := s.input[s.pos]; esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			default:
				sb.WriteByte('\\')
				sb.WriteByte(esc)
			}
			s.pos++
			continue
		}
		if ch == '"' {
			s.pos++
			return lexeme{kind: lexString, text: s.input[start:s.pos], str: sb.String(), pos: start, end: s.pos}, nil
		}
		sb.WriteByte(ch)
		s.pos++
	}
	return lexeme{}, newSyntaxError(s.rule, s.input, start, "unterminated string literal")
}

// readNumber reads a float or an unsigned digit run. Signs are separate
// lexemes; the parser decides whether a '-' is a sign.
func (s *scanner) readNumber() (lexeme, error) {
	start := s.pos
	rest := s.input[start:]

	kind := lexFloat
	lit := matchNumeric(floatPattern, rest)
	if lit == "" {
		kind = lexInteger
		lit = matchNumeric(digitRunPattern, rest)
	}
	end := start + len(lit)
	if lit == "" || (end < len(s.input) && trailsNumber(s.input[end])) {
		n := end
		for n < len(s.input) && trailsNumber(s.input[n]) {
			n++
		}
		return lexeme{}, newSyntaxError(s.rule, s.input, start, "malformed numeric literal %q", s.input[start:max(n, start+1)])
	}
	s.pos = end
	return lexeme{kind: kind, text: lit, pos: start, end: end}, nil
}

// trailsNumber reports whether ch may not directly follow a numeric literal.
func trailsNumber(ch byte) bool {
	return ch == '.' || isIdentPart(ch)
}

func (s *scanner) readIdentifier() lexeme {
	start := s.pos
	for s.pos < len(s.input) && isIdentPart(s.input[s.pos]) {
		s.pos++
	}
	return lexeme{kind: lexIdent, text: s.input[start:s.pos], pos: start, end: s.pos}
}
