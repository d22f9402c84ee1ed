package formula

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// delimiters are the single-character token classes, in priority order.
var delimiters = []struct {
	ch  byte
	typ TokenType
}{
	{'(', TokenLParen},
	{')', TokenRParen},
	{'+', TokenAdd},
	{'-', TokenSub},
	{'/', TokenDiv},
	{'*', TokenMul},
	{'^', TokenPow},
	{'=', TokenEq},
}

// stringStops are the characters that end a string token besides whitespace.
const stringStops = "()+-/*^"

// Tokenize splits formula text into a flat token sequence.
//
// Tokenize never fails. Token classes are tried in a fixed order (the
// single-character delimiters, float, int, then a fallback string run) and
// the first one that matches wins. Floats too large for float64 become ±Inf. Where no class matches, one character is
// dropped and scanning resumes, so malformed input loses characters rather
// than producing an error.
func Tokenize(text string) []Token {
	var tokens []Token
	pos := 0
	for pos < len(text) {
		tok, n, ok := nextToken(text, pos)
		if !ok {
			_, size := utf8.DecodeRuneInString(text[pos:])
			pos += size
			continue
		}
		tokens = append(tokens, tok)
		pos += n
	}
	return tokens
}

// nextToken classifies the token at text[pos:] and returns it with the
// number of bytes it consumed.
func nextToken(text string, pos int) (Token, int, bool) {
	rest := text[pos:]

	for _, d := range delimiters {
		if tok, n, ok := delimited(rest, pos, d.ch, d.typ); ok {
			return tok, n, true
		}
	}

	// A float literal out of range keeps the ±Inf that ParseFloat returns.
	if lit := matchNumeric(floatPattern, rest); lit != "" {
		f, _ := strconv.ParseFloat(stripSeparators(lit), 64)
		return Token{Type: TokenFloat, Value: lit, FloatVal: f, Pos: pos}, len(lit), true
	}

	if lit := matchNumeric(digitRunPattern, rest); lit != "" {
		if i, err := strconv.ParseInt(stripSeparators(lit), 10, 64); err == nil {
			return Token{Type: TokenInt, Value: lit, IntVal: i, Pos: pos}, len(lit), true
		}
	}

	if n := stringRun(rest); n > 0 {
		lit := rest[:n]
		return Token{Type: TokenString, Value: lit, StrVal: lit, Pos: pos}, n, true
	}

	return Token{}, 0, false
}

// delimited matches ch surrounded by optional whitespace.
func delimited(rest string, pos int, ch byte, typ TokenType) (Token, int, bool) {
	i := skipSpace(rest, 0)
	if i >= len(rest) || rest[i] != ch {
		return Token{}, 0, false
	}
	end := skipSpace(rest, i+1)
	return Token{Type: typ, Value: string(ch), Pos: pos + i}, end, true
}

// stringRun returns the length of the run of characters at the start of s
// that are neither whitespace nor delimiters.
func stringRun(s string) int {
	i := 0
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if unicode.IsSpace(r) || (r < utf8.RuneSelf && strings.IndexByte(stringStops, byte(r)) >= 0) {
			break
		}
		i += size
	}
	return i
}

func skipSpace(s string, i int) int {
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !unicode.IsSpace(r) {
			break
		}
		i += size
	}
	return i
}
