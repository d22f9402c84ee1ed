package formula

import (
	"strings"

	"github.com/dlclark/regexp2"
)

// digits is a digit sequence with optional underscore runs between digits.
// Underscores are never leading or trailing.
const digits = `[0-9](?:_*[0-9])*`

const exponent = `[eE][+-]?` + digits

var (
	// floatPattern lists the float surface forms in priority order:
	// .42 / .42e-1, then 45e2 / 42.5e1, then 42. / 42.42.
	floatPattern = regexp2.MustCompile(
		`^(?:\.`+digits+`(?:`+exponent+`)?`+
			`|`+digits+`(?:\.`+digits+`)?`+exponent+
			`|`+digits+`\.(?:`+digits+`)?)`,
		regexp2.None,
	)

	// intPattern is a signed integer that is not the start of a float.
	intPattern = regexp2.MustCompile(`^-?`+digits+`(?![0-9_.eE])`, regexp2.None)

	// posIntPattern is an unsigned integer that is not the start of a float.
	posIntPattern = regexp2.MustCompile(`^`+digits+`(?![0-9_.eE])`, regexp2.None)

	// digitRunPattern is the tokenizer's integer class: a bare digit run.
	digitRunPattern = regexp2.MustCompile(`^`+digits, regexp2.None)
)

// numericChars is every character any numeric pattern can consume.
const numericChars = "0123456789_.eE+-"

// numericWindow returns the longest prefix of s made of numeric characters.
// Numeric patterns never match past it, and their lookaheads behave the
// same at the end of the window as on the character that follows it, so
// matching against the window keeps scanning linear in the input length.
func numericWindow(s string) string {
	i := 0
	for i < len(s) && strings.IndexByte(numericChars, s[i]) >= 0 {
		i++
	}
	return s[:i]
}

// matchPrefix returns the text re matches at the start of s, or "".
func matchPrefix(re *regexp2.Regexp, s string) string {
	if s == "" {
		return ""
	}
	m, err := re.FindStringMatch(s)
	if err != nil || m == nil {
		return ""
	}
	return m.String()
}

// matchNumeric matches a numeric pattern at the start of s.
func matchNumeric(re *regexp2.Regexp, s string) string {
	return matchPrefix(re, numericWindow(s))
}

// stripSeparators removes digit separators before numeric conversion.
func stripSeparators(lit string) string {
	return strings.ReplaceAll(lit, "_", "")
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
