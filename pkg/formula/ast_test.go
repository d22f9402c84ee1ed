package formula

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueString(t *testing.T) {
	tests := []struct {
		value Value
		want  string
	}{
		{PosInt(42), "42"},
		{Int(-7), "-7"},
		{Int(0), "-0"},
		{Float(4500), "4500."},
		{Float(0.25), "0.25"},
		{Float(1e21), "1e+21"},
		{Bool(true), "true"},
		{Str("a\nb\"c\\"), `"a\nb\"c\\"`},
		{Null{}, "null"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.value.String())
		})
	}
}

func TestCompareNum(t *testing.T) {
	nan := Float(math.NaN())
	tests := []struct {
		name string
		a, b Num
		want int
	}{
		{"posint before int", PosInt(100), Int(-5), -1},
		{"int before float", Int(5), Float(-1), -1},
		{"float after posint", Float(0), PosInt(1), 1},
		{"posint by value", PosInt(2), PosInt(10), -1},
		{"int by value", Int(-10), Int(-2), -1},
		{"float by value", Float(2.5), Float(2.5), 0},
		{"nan equals nan", nan, nan, 0},
		{"nan after infinity", nan, Float(math.Inf(1)), 1},
		{"float before nan", Float(-1), nan, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareNum(tt.a, tt.b))
		})
	}
}

func TestCompareValueSortsKinds(t *testing.T) {
	values := []Value{
		Null{},
		Float(1.5),
		Str("b"),
		Bool(true),
		PosInt(3),
		Str("a"),
		Bool(false),
		Int(-1),
	}
	sort.Slice(values, func(i, j int) bool { return CompareValue(values[i], values[j]) < 0 })

	assert.Equal(t, []Value{
		Bool(false),
		Bool(true),
		Str("a"),
		Str("b"),
		PosInt(3),
		Int(-1),
		Float(1.5),
		Null{},
	}, values)
}

func TestEncode(t *testing.T) {
	e, err := ParseExpr(`abs(d.items[0] - -2) * rbern(prob=0.5, seed=1) + "x"`)
	require.NoError(t, err)

	got := Encode(e)
	assert.Equal(t, map[string]any{
		"kind": "op",
		"op":   "+",
		"left": map[string]any{
			"kind": "op",
			"op":   "*",
			"left": map[string]any{
				"kind": "function",
				"name": "abs",
				"operand": map[string]any{
					"kind": "op",
					"op":   "-",
					"left": map[string]any{
						"kind":     "selector",
						"path":     "d.items[0]",
						"segments": []any{"items", uint64(0)},
					},
					"right": map[string]any{"kind": "value", "type": "int", "value": int64(-2)},
				},
			},
			"right": map[string]any{
				"kind": "distribution",
				"name": "rbern",
				"params": []map[string]any{
					{"name": "seed", "value": uint64(1)},
					{"name": "prob", "value": 0.5},
				},
			},
		},
		"right": map[string]any{"kind": "value", "type": "string", "value": "x"},
	}, got)
}

func TestEncodeLiterals(t *testing.T) {
	tests := []struct {
		input    string
		wantType string
		want     any
	}{
		{"12", "posint", uint64(12)},
		{"-12", "int", int64(-12)},
		{"1.5", "float", 1.5},
		{"true", "bool", true},
		{"null", "null", nil},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			e, err := ParseTerm(tt.input)
			require.NoError(t, err)
			got := Encode(e)
			assert.Equal(t, "value", got["kind"])
			assert.Equal(t, tt.wantType, got["type"])
			assert.Equal(t, tt.want, got["value"])
		})
	}
}

func TestEncodeTokens(t *testing.T) {
	got := EncodeTokens(Tokenize("x * 2.5 + 3"))
	require.Len(t, got, 5)
	assert.Equal(t, map[string]any{"type": "STRING", "value": "x", "pos": 0}, got[0])
	assert.Equal(t, map[string]any{"type": "MUL", "value": "*", "pos": 2}, got[1])
	assert.Equal(t, map[string]any{"type": "FLOAT", "value": "2.5", "pos": 4, "float": 2.5}, got[2])
	assert.Equal(t, map[string]any{"type": "INT", "value": "3", "pos": 10, "int": int64(3)}, got[4])

	got = EncodeTokens(Tokenize("1e999"))
	require.Len(t, got, 1)
	assert.Equal(t, "+Inf", got[0]["float"])
}
