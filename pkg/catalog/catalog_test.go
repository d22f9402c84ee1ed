package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lemonberrylabs/record-formula/pkg/formula"
)

func TestParseFlatCatalog(t *testing.T) {
	src := `
ratio: d.TOTALVALUE / d.BUILDINGVALUE
noisy:
  formula: d.TOTALVALUE + rbern(seed=159, prob=0.5)
  description: value with noise
scaled: "abs(d.x) * 2"
`
	cat, err := Parse([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, []string{"ratio", "noisy", "scaled"}, cat.Names())

	noisy, ok := cat.Lookup("noisy")
	require.True(t, ok)
	assert.Equal(t, "value with noise", noisy.Description)
	assert.Equal(t, "(d.TOTALVALUE + rbern(seed=159, prob=0.5))", noisy.Expr.String())
	assert.Equal(t, 3, noisy.Line)
	assert.Equal(t, 1, noisy.Column)

	_, ok = cat.Lookup("missing")
	assert.False(t, ok)
}

func TestParseNestedCatalog(t *testing.T) {
	src := `
version: 1
formulas:
  a: 7 + 5 * 9
  b: 2 ^ 3 ^ 2
`
	cat, err := Parse([]byte(src))
	require.NoError(t, err)
	require.Len(t, cat.Entries, 2)
	assert.Equal(t, "(7 + (5 * 9))", cat.Entries[0].Expr.String())
	assert.Equal(t, "(2 ^ (3 ^ 2))", cat.Entries[1].Expr.String())
}

func TestParseJSONCatalog(t *testing.T) {
	cat, err := Parse([]byte(`{"formulas": {"x": "d.a - -1", "y": "sqrt(d.b)"}}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, cat.Names())
}

func TestParseCollectsErrors(t *testing.T) {
	src := `
good: d.x + 1
broken: (d.X + ) / false
"1bad": d.y
good: d.z
empty:
nested: [1, 2]
extra:
  formula: d.x
  color: red
`
	cat, err := Parse([]byte(src))
	require.Error(t, err)
	require.NotNil(t, cat)
	assert.Equal(t, []string{"good"}, cat.Names())

	var el *ErrorList
	require.True(t, errors.As(err, &el))
	require.Equal(t, 6, el.Count())

	formulaErrs := el.ByType(ErrorTypeFormula)
	require.Len(t, formulaErrs, 1)
	assert.Equal(t, "broken", formulaErrs[0].Name)
	assert.Equal(t, 3, formulaErrs[0].Line)
	assert.ErrorIs(t, err, formula.ErrSyntax)

	var se *formula.SyntaxError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 7, se.Pos)

	assert.Len(t, el.ByType(ErrorTypeStructural), 5)
	assert.Contains(t, err.Error(), "found 6 errors")
	assert.Contains(t, err.Error(), "duplicate formula name, first defined on line 2")
	assert.Contains(t, err.Error(), `invalid formula name "1bad"`)
}

func TestParseDocumentErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantTyp ErrorType
		wantMsg string
	}{
		{"empty", "", ErrorTypeStructural, "empty catalog"},
		{"not a mapping", "- a\n- b\n", ErrorTypeStructural, "must be a mapping"},
		{"bad formulas section", "formulas: [1]\n", ErrorTypeStructural, `"formulas" must be a mapping`},
		{"invalid yaml", "a: [1, 2\n", ErrorTypeSyntax, "invalid YAML"},
		{"too large", "a: " + strings.Repeat("1", MaxSourceSize), ErrorTypeStructural, "exceeds maximum"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, err := Parse([]byte(tt.src))
			assert.Nil(t, cat)

			var el *ErrorList
			require.True(t, errors.As(err, &el))
			require.Equal(t, 1, el.Count())
			assert.Equal(t, tt.wantTyp, el.Errors[0].Type)
			assert.Contains(t, el.Errors[0].Message, tt.wantMsg)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "formulas.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a: 1 +\n"), 0o644))

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), path+":1:1: [formula] a: "), err.Error())

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	var el *ErrorList
	require.True(t, errors.As(err, &el))
	assert.Equal(t, ErrorTypeIO, el.Errors[0].Type)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidName(t *testing.T) {
	for _, name := range []string{"a", "ratio", "total_value", "v-2", "A9"} {
		assert.True(t, ValidName(name), name)
	}
	for _, name := range []string{"", "1a", "_a", "a b", "a.b", "é"} {
		assert.False(t, ValidName(name), name)
	}
}
