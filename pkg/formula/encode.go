package formula

import (
	"fmt"
	"math"
)

// Encode describes an expression tree as nested maps that marshal cleanly to
// JSON or YAML. Every node carries a "kind": value, selector, distribution,
// op or function.
func Encode(e Expr) map[string]any {
	switch n := e.(type) {
	case *TermExpr:
		return encodeTerm(n.Term)
	case *BinaryExpr:
		return map[string]any{
			"kind":  "op",
			"op":    n.Op.String(),
			"left":  Encode(n.Left),
			"right": Encode(n.Right),
		}
	case *UnaryExpr:
		return map[string]any{
			"kind":    "function",
			"name":    n.Func.String(),
			"operand": Encode(n.Operand),
		}
	default:
		panic(fmt.Sprintf("formula: unknown expression node %T", e))
	}
}

func encodeTerm(t Term) map[string]any {
	switch v := t.(type) {
	case *Selector:
		segments := make([]any, len(v.Path))
		for i, s := range v.Path {
			if s.IsIndex() {
				segments[i] = s.Position()
			} else {
				segments[i] = s.Name()
			}
		}
		return map[string]any{
			"kind":     "selector",
			"path":     v.Path.String(),
			"segments": segments,
		}
	case ProbGenerator:
		params := make([]map[string]any, 0, len(v.Params()))
		for _, p := range v.Params() {
			params = append(params, map[string]any{"name": p.Name, "value": encodeValue(p.Value)["value"]})
		}
		return map[string]any{
			"kind":   "distribution",
			"name":   v.Distribution(),
			"params": params,
		}
	case Value:
		return encodeValue(v)
	default:
		panic(fmt.Sprintf("formula: unknown term %T", t))
	}
}

func encodeValue(v Value) map[string]any {
	m := map[string]any{"kind": "value"}
	switch x := v.(type) {
	case PosInt:
		m["type"], m["value"] = "posint", uint64(x)
	case Int:
		m["type"], m["value"] = "int", int64(x)
	case Float:
		m["type"], m["value"] = "float", float64(x)
	case Bool:
		m["type"], m["value"] = "bool", bool(x)
	case Str:
		m["type"], m["value"] = "string", string(x)
	case Null:
		m["type"], m["value"] = "null", nil
	default:
		panic(fmt.Sprintf("formula: unknown value %T", v))
	}
	return m
}

// EncodeTokens describes a token sequence for JSON or YAML output.
func EncodeTokens(tokens []Token) []map[string]any {
	out := make([]map[string]any, len(tokens))
	for i, t := range tokens {
		m := map[string]any{
			"type":  t.Type.String(),
			"value": t.Value,
			"pos":   t.Pos,
		}
		switch t.Type {
		case TokenInt:
			m["int"] = t.IntVal
		case TokenFloat:
			// JSON has no infinities.
			if math.IsInf(t.FloatVal, 0) {
				m["float"] = formatFloat(t.FloatVal)
			} else {
				m["float"] = t.FloatVal
			}
		}
		out[i] = m
	}
	return out
}
