package formula

import (
	"errors"
	"strconv"
	"strings"
	"unicode"

	"github.com/dlclark/regexp2"
)

// ParseFloat parses a float literal in one of its three surface forms:
// ".42" (optionally with an exponent), "45e2" / "42.5e1" (exponent
// required), or "42." / "42.42".
func ParseFloat(text string) (float64, error) {
	lit, off, err := wholeLiteral(RuleFloat, text, floatPattern, "float literal")
	if err != nil {
		return 0, err
	}
	return floatValue(RuleFloat, text, off, lit)
}

// ParseInt parses a signed integer literal: an optional '-' and a digit
// sequence that is not the integral part of a float.
func ParseInt(text string) (int64, error) {
	lit, off, err := wholeLiteral(RuleInt, text, intPattern, "integer literal")
	if err != nil {
		return 0, err
	}
	return intValue(RuleInt, text, off, lit)
}

// ParsePosInt parses an unsigned integer literal. Values above the uint64
// range fail rather than wrap.
func ParsePosInt(text string) (uint64, error) {
	lit, off, err := wholeLiteral(RulePosInt, text, posIntPattern, "unsigned integer literal")
	if err != nil {
		return 0, err
	}
	return posIntValue(RulePosInt, text, off, lit)
}

// ParseNum parses and classifies a numeric literal. Float forms are tried
// first, then signed integers (only when a '-' is written), then unsigned
// integers, so "345e-3" is a Float, "-345" an Int and "4564345" a PosInt.
func ParseNum(text string) (Num, error) {
	trimmed, off := trimSpace(text)

	if lit := matchNumeric(floatPattern, trimmed); lit == trimmed && lit != "" {
		f, err := floatValue(RuleNum, text, off, lit)
		if err != nil {
			return nil, err
		}
		return Float(f), nil
	}

	if strings.HasPrefix(trimmed, "-") {
		lit, off, err := wholeLiteral(RuleNum, text, intPattern, "numeric literal")
		if err != nil {
			return nil, err
		}
		i, err := intValue(RuleNum, text, off, lit)
		if err != nil {
			return nil, err
		}
		return Int(i), nil
	}

	lit, off, err := wholeLiteral(RuleNum, text, posIntPattern, "numeric literal")
	if err != nil {
		return nil, err
	}
	u, err := posIntValue(RuleNum, text, off, lit)
	if err != nil {
		return nil, err
	}
	return PosInt(u), nil
}

// wholeLiteral matches re against text without its surrounding whitespace
// and requires the match to cover all of it. It returns the literal and its
// byte offset in text.
func wholeLiteral(rule Rule, text string, re *regexp2.Regexp, what string) (string, int, error) {
	trimmed, off := trimSpace(text)
	if trimmed == "" {
		return "", 0, newSyntaxError(rule, text, off, "expected %s, got end of input", what)
	}
	lit := matchNumeric(re, trimmed)
	if lit == "" {
		return "", 0, newSyntaxError(rule, text, off, "expected %s at %q", what, trimmed)
	}
	if len(lit) != len(trimmed) {
		return "", 0, newSyntaxError(rule, text, off+len(lit), "unexpected %q after %s", trimmed[len(lit):], what)
	}
	return lit, off, nil
}

func floatValue(rule Rule, text string, pos int, lit string) (float64, error) {
	f, err := strconv.ParseFloat(stripSeparators(lit), 64)
	if err != nil {
		return 0, newSyntaxError(rule, text, pos, "float literal %s is out of range", lit)
	}
	return f, nil
}

func intValue(rule Rule, text string, pos int, lit string) (int64, error) {
	i, err := strconv.ParseInt(stripSeparators(lit), 10, 64)
	if err != nil {
		return 0, newSyntaxError(rule, text, pos, "integer literal %s %s", lit, rangeReason(err))
	}
	return i, nil
}

func posIntValue(rule Rule, text string, pos int, lit string) (uint64, error) {
	u, err := strconv.ParseUint(stripSeparators(lit), 10, 64)
	if err != nil {
		return 0, newSyntaxError(rule, text, pos, "unsigned integer literal %s %s", lit, rangeReason(err))
	}
	return u, nil
}

func rangeReason(err error) string {
	if errors.Is(err, strconv.ErrRange) {
		return "is out of range"
	}
	return "is malformed"
}

// trimSpace trims surrounding whitespace and returns the offset of the
// first kept byte.
func trimSpace(text string) (string, int) {
	trimmed := strings.TrimLeftFunc(text, unicode.IsSpace)
	off := len(text) - len(trimmed)
	return strings.TrimRightFunc(trimmed, unicode.IsSpace), off
}
