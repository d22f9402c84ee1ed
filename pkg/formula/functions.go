package formula

// UnaryFunction is a single-argument function from the closed formula
// vocabulary.
type UnaryFunction int

const (
	FnAbs UnaryFunction = iota
	FnSqrt
	FnCeil
	FnCeiling
	FnFloor
	FnTrunc
	FnCos
	FnSin
	FnTan
	FnACos
	FnASin
	FnATan
	FnCosh
	FnSinh
	FnTanh
	FnACosh
	FnASinh
	FnATanh
	FnLog
	FnLog10
	FnExp
	FnToUpper
	FnToLower
	FnCapitalize
	FnToString
	FnIsFloat
	FnIsFloatNaN
	FnIsNull
	FnToFloat
	FnToInt
)

// UnaryFunctions returns every function of the vocabulary in declaration
// order.
func UnaryFunctions() []UnaryFunction {
	fns := make([]UnaryFunction, 0, FnToInt+1)
	for f := FnAbs; f <= FnToInt; f++ {
		fns = append(fns, f)
	}
	return fns
}

// String returns the name the function is called by in formula text.
func (f UnaryFunction) String() string {
	switch f {
	case FnAbs:
		return "abs"
	case FnSqrt:
		return "sqrt"
	case FnCeil:
		return "ceil"
	case FnCeiling:
		return "ceiling"
	case FnFloor:
		return "floor"
	case FnTrunc:
		return "trunc"
	case FnCos:
		return "cos"
	case FnSin:
		return "sin"
	case FnTan:
		return "tan"
	case FnACos:
		return "acos"
	case FnASin:
		return "asin"
	case FnATan:
		return "atan"
	case FnCosh:
		return "cosh"
	case FnSinh:
		return "sinh"
	case FnTanh:
		return "tanh"
	case FnACosh:
		return "acosh"
	case FnASinh:
		return "asinh"
	case FnATanh:
		return "atanh"
	case FnLog:
		return "log"
	case FnLog10:
		return "log10"
	case FnExp:
		return "exp"
	case FnToUpper:
		return "toupper"
	case FnToLower:
		return "tolower"
	case FnCapitalize:
		return "capitalize"
	case FnToString:
		return "tostring"
	case FnIsFloat:
		return "isfloat"
	case FnIsFloatNaN:
		return "isfloatnan"
	case FnIsNull:
		return "isnull"
	case FnToFloat:
		return "tofloat"
	case FnToInt:
		return "toint"
	default:
		return "unknown"
	}
}

// LookupUnaryFunction maps a function name to its vocabulary entry. Names
// are case-sensitive and there are no aliases beyond the listed spellings.
func LookupUnaryFunction(name string) (UnaryFunction, bool) {
	switch name {
	case "abs":
		return FnAbs, true
	case "sqrt":
		return FnSqrt, true
	case "ceil":
		return FnCeil, true
	case "ceiling":
		return FnCeiling, true
	case "floor":
		return FnFloor, true
	case "trunc":
		return FnTrunc, true
	case "cos":
		return FnCos, true
	case "sin":
		return FnSin, true
	case "tan":
		return FnTan, true
	case "acos":
		return FnACos, true
	case "asin":
		return FnASin, true
	case "atan":
		return FnATan, true
	case "cosh":
		return FnCosh, true
	case "sinh":
		return FnSinh, true
	case "tanh":
		return FnTanh, true
	case "acosh":
		return FnACosh, true
	case "asinh":
		return FnASinh, true
	case "atanh":
		return FnATanh, true
	case "log":
		return FnLog, true
	case "log10":
		return FnLog10, true
	case "exp":
		return FnExp, true
	case "toupper":
		return FnToUpper, true
	case "tolower":
		return FnToLower, true
	case "capitalize":
		return FnCapitalize, true
	case "tostring":
		return FnToString, true
	case "isfloat":
		return FnIsFloat, true
	case "isfloatnan":
		return FnIsFloatNaN, true
	case "isnull":
		return FnIsNull, true
	case "tofloat":
		return FnToFloat, true
	case "toint":
		return FnToInt, true
	}
	return 0, false
}
