package formula

import (
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePosInt(t *testing.T) {
	tests := []struct {
		input string
		want  uint64
	}{
		{"0", 0},
		{"42", 42},
		{" 42 ", 42},
		{"1_000", 1000},
		{"1__000", 1000},
		{"18446744073709551615", math.MaxUint64},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePosInt(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePosIntRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 9, 10, 255, 65535, 1 << 32, math.MaxInt64, math.MaxInt64 + 1, math.MaxUint64 - 1, math.MaxUint64}
	for _, v := range values {
		got, err := ParsePosInt(strconv.FormatUint(v, 10))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestParsePosIntErrors(t *testing.T) {
	for _, input := range []string{
		"",
		"18446744073709551616",
		"99999999999999999999999",
		"44858---00000",
		"-1",
		"+1",
		"4.5",
		"45e2",
		"1_",
		"_1",
		"12abc",
	} {
		t.Run(input, func(t *testing.T) {
			_, err := ParsePosInt(input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSyntax))

			var se *SyntaxError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, RulePosInt, se.Rule)
		})
	}
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"-10", -10},
		{"10", 10},
		{"-0", 0},
		{"-1_000", -1000},
		{"-9223372036854775808", math.MinInt64},
		{"9223372036854775807", math.MaxInt64},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseInt(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseIntErrors(t *testing.T) {
	for _, input := range []string{
		"-10.0",
		"--10.4",
		"-",
		"9223372036854775808",
		"-9223372036854775809",
		"-1e5",
		"- 1",
	} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseInt(input)
			assert.ErrorIs(t, err, ErrSyntax)
		})
	}
}

func TestParseFloat(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"4.5", 4.5},
		{"45e2", 4500},
		{"4676e-2", 46.76},
		{"42.5e1", 425},
		{"4E+1", 40},
		{".42", 0.42},
		{".5e1", 5},
		{"42.", 42},
		{"42.42", 42.42},
		{"1_000.5", 1000.5},
		{" 10.0 ", 10},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFloat(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFloatErrors(t *testing.T) {
	for _, input := range []string{"", "42", "-1.5", "1e999", "4.5.6", "e5", ".", "4e"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseFloat(input)
			assert.ErrorIs(t, err, ErrSyntax)
		})
	}
}

func TestParseIntAcceptsSignedDigits(t *testing.T) {
	for _, digits := range []string{"0", "7", "345", "1_2_3"} {
		_, err := ParseInt("-" + digits)
		assert.NoError(t, err, digits)

		_, err = ParseInt("-" + digits + ".5")
		assert.Error(t, err, digits)

		_, err = ParseFloat(digits + ".5")
		assert.NoError(t, err, digits)
	}
}

func TestParseNum(t *testing.T) {
	tests := []struct {
		input string
		want  Num
	}{
		{"345e-3", Float(0.345)},
		{"4.5", Float(4.5)},
		{"42.", Float(42)},
		{"-345", Int(-345)},
		{"-0", Int(0)},
		{"4564345", PosInt(4564345)},
		{"18446744073709551615", PosInt(math.MaxUint64)},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseNum(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseNumErrors(t *testing.T) {
	for _, input := range []string{"-345-", "-0.5", "abc", "", "1e999", "18446744073709551616"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseNum(input)
			var se *SyntaxError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, RuleNum, se.Rule)
		})
	}
}

func TestSyntaxErrorPosition(t *testing.T) {
	_, err := ParsePosInt("  12x")
	var se *SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 4, se.Pos)
	assert.Equal(t, 5, se.Column())
	assert.Equal(t, "x", se.Near())
	assert.Contains(t, se.Error(), "syntax error in posint at column 5")
}
