package formula

import (
	"fmt"
	"strings"
)

// ProbGenerator is a random-variate specification written as a distribution
// call, e.g. rbern(seed=159, prob=0.5). The parser only records the
// parameters; drawing values is up to the evaluator.
type ProbGenerator interface {
	Term
	// Distribution returns the call name, e.g. "rbern".
	Distribution() string
	// Params returns the named parameters in canonical order, seed first.
	Params() []Param
	isProbGenerator()
}

// Param is one named numeric argument of a distribution call.
type Param struct {
	Name  string
	Value Num
}

type generator struct{}

func (generator) isTerm()          {}
func (generator) isProbGenerator() {}

// RBern is a Bernoulli draw with success probability Prob.
type RBern struct {
	generator
	Seed uint64
	Prob float64
}

// RBeta is a beta draw with shape parameters Shape1 and Shape2.
type RBeta struct {
	generator
	Seed   uint64
	Shape1 float64
	Shape2 float64
}

// RBinom is a binomial draw of Size trials with success probability Prob.
type RBinom struct {
	generator
	Seed uint64
	Size uint64
	Prob float64
}

// RCauchy is a Cauchy draw with the given Scale.
type RCauchy struct {
	generator
	Seed  uint64
	Scale uint64
}

// RChiSq is a chi-squared draw with DF degrees of freedom.
type RChiSq struct {
	generator
	Seed uint64
	DF   uint64
}

// RF is an F draw with DF1 and DF2 degrees of freedom.
type RF struct {
	generator
	Seed uint64
	DF1  uint64
	DF2  uint64
}

// RGamma is a gamma draw with the given Shape.
type RGamma struct {
	generator
	Seed  uint64
	Shape uint64
}

// RGeom is a geometric draw with success probability Prob.
type RGeom struct {
	generator
	Seed uint64
	Prob float64
}

// RHyper is a hypergeometric draw: M white and N black balls, K drawn.
type RHyper struct {
	generator
	Seed uint64
	M    uint64
	N    uint64
	K    uint64
}

// RLNorm is a standard log-normal draw.
type RLNorm struct {
	generator
	Seed uint64
}

// RLogis is a standard logistic draw.
type RLogis struct {
	generator
	Seed uint64
}

// RNBinom is a negative binomial draw with Size successes and probability Prob.
type RNBinom struct {
	generator
	Seed uint64
	Size uint64
	Prob float64
}

// RNorm is a standard normal draw.
type RNorm struct {
	generator
	Seed uint64
}

// RPois is a Poisson draw with mean Lambda.
type RPois struct {
	generator
	Seed   uint64
	Lambda uint64
}

func (*RBern) Distribution() string   { return "rbern" }
func (*RBeta) Distribution() string   { return "rbeta" }
func (*RBinom) Distribution() string  { return "rbinom" }
func (*RCauchy) Distribution() string { return "rcauchy" }
func (*RChiSq) Distribution() string  { return "rchisq" }
func (*RF) Distribution() string      { return "rf" }
func (*RGamma) Distribution() string  { return "rgamma" }
func (*RGeom) Distribution() string   { return "rgeom" }
func (*RHyper) Distribution() string  { return "rhyper" }
func (*RLNorm) Distribution() string  { return "rlnorm" }
func (*RLogis) Distribution() string  { return "rlogis" }
func (*RNBinom) Distribution() string { return "rnbinom" }
func (*RNorm) Distribution() string   { return "rnorm" }
func (*RPois) Distribution() string   { return "rpois" }

func (g *RBern) Params() []Param {
	return []Param{seedParam(g.Seed), {"prob", Float(g.Prob)}}
}

func (g *RBeta) Params() []Param {
	return []Param{seedParam(g.Seed), {"shape1", Float(g.Shape1)}, {"shape2", Float(g.Shape2)}}
}

func (g *RBinom) Params() []Param {
	return []Param{seedParam(g.Seed), {"size", PosInt(g.Size)}, {"prob", Float(g.Prob)}}
}

func (g *RCauchy) Params() []Param {
	return []Param{seedParam(g.Seed), {"scale", PosInt(g.Scale)}}
}

func (g *RChiSq) Params() []Param {
	return []Param{seedParam(g.Seed), {"df", PosInt(g.DF)}}
}

func (g *RF) Params() []Param {
	return []Param{seedParam(g.Seed), {"df1", PosInt(g.DF1)}, {"df2", PosInt(g.DF2)}}
}

func (g *RGamma) Params() []Param {
	return []Param{seedParam(g.Seed), {"shape", PosInt(g.Shape)}}
}

func (g *RGeom) Params() []Param {
	return []Param{seedParam(g.Seed), {"prob", Float(g.Prob)}}
}

func (g *RHyper) Params() []Param {
	return []Param{seedParam(g.Seed), {"m", PosInt(g.M)}, {"n", PosInt(g.N)}, {"k", PosInt(g.K)}}
}

func (g *RLNorm) Params() []Param { return []Param{seedParam(g.Seed)} }

func (g *RLogis) Params() []Param { return []Param{seedParam(g.Seed)} }

func (g *RNBinom) Params() []Param {
	return []Param{seedParam(g.Seed), {"size", PosInt(g.Size)}, {"prob", Float(g.Prob)}}
}

func (g *RNorm) Params() []Param { return []Param{seedParam(g.Seed)} }

func (g *RPois) Params() []Param {
	return []Param{seedParam(g.Seed), {"lambda", PosInt(g.Lambda)}}
}

func (g *RBern) String() string   { return formatCall(g) }
func (g *RBeta) String() string   { return formatCall(g) }
func (g *RBinom) String() string  { return formatCall(g) }
func (g *RCauchy) String() string { return formatCall(g) }
func (g *RChiSq) String() string  { return formatCall(g) }
func (g *RF) String() string      { return formatCall(g) }
func (g *RGamma) String() string  { return formatCall(g) }
func (g *RGeom) String() string   { return formatCall(g) }
func (g *RHyper) String() string  { return formatCall(g) }
func (g *RLNorm) String() string  { return formatCall(g) }
func (g *RLogis) String() string  { return formatCall(g) }
func (g *RNBinom) String() string { return formatCall(g) }
func (g *RNorm) String() string   { return formatCall(g) }
func (g *RPois) String() string   { return formatCall(g) }

func seedParam(seed uint64) Param {
	return Param{Name: "seed", Value: PosInt(seed)}
}

func formatCall(g ProbGenerator) string {
	params := g.Params()
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.Name + "=" + p.Value.String()
	}
	return g.Distribution() + "(" + strings.Join(parts, ", ") + ")"
}

// paramKind is the literal kind a distribution parameter accepts.
type paramKind int

const (
	uintParam  paramKind = iota // PosInt literal
	floatParam                  // Float literal
)

func (k paramKind) String() string {
	if k == floatParam {
		return "a float"
	}
	return "an unsigned integer"
}

// binding ties a parameter name to the field it fills.
type binding struct {
	name     string
	kind     paramKind
	uintDst  *uint64
	floatDst *float64
}

func bindUint(name string, dst *uint64) binding {
	return binding{name: name, kind: uintParam, uintDst: dst}
}

func bindFloat(name string, dst *float64) binding {
	return binding{name: name, kind: floatParam, floatDst: dst}
}

// newGenerator returns an empty generator for a distribution name together
// with the bindings that fill it. ok is false for unknown names.
func newGenerator(name string) (g ProbGenerator, bindings []binding, ok bool) {
	switch name {
	case "rbern":
		x := &RBern{}
		return x, []binding{bindUint("seed", &x.Seed), bindFloat("prob", &x.Prob)}, true
	case "rbeta":
		x := &RBeta{}
		return x, []binding{bindUint("seed", &x.Seed), bindFloat("shape1", &x.Shape1), bindFloat("shape2", &x.Shape2)}, true
	case "rbinom":
		x := &RBinom{}
		return x, []binding{bindUint("seed", &x.Seed), bindUint("size", &x.Size), bindFloat("prob", &x.Prob)}, true
	case "rcauchy":
		x := &RCauchy{}
		return x, []binding{bindUint("seed", &x.Seed), bindUint("scale", &x.Scale)}, true
	case "rchisq":
		x := &RChiSq{}
		return x, []binding{bindUint("seed", &x.Seed), bindUint("df", &x.DF)}, true
	case "rf":
		x := &RF{}
		return x, []binding{bindUint("seed", &x.Seed), bindUint("df1", &x.DF1), bindUint("df2", &x.DF2)}, true
	case "rgamma":
		x := &RGamma{}
		return x, []binding{bindUint("seed", &x.Seed), bindUint("shape", &x.Shape)}, true
	case "rgeom":
		x := &RGeom{}
		return x, []binding{bindUint("seed", &x.Seed), bindFloat("prob", &x.Prob)}, true
	case "rhyper":
		x := &RHyper{}
		return x, []binding{bindUint("seed", &x.Seed), bindUint("m", &x.M), bindUint("n", &x.N), bindUint("k", &x.K)}, true
	case "rlnorm":
		x := &RLNorm{}
		return x, []binding{bindUint("seed", &x.Seed)}, true
	case "rlogis":
		x := &RLogis{}
		return x, []binding{bindUint("seed", &x.Seed)}, true
	case "rnbinom":
		x := &RNBinom{}
		return x, []binding{bindUint("seed", &x.Seed), bindUint("size", &x.Size), bindFloat("prob", &x.Prob)}, true
	case "rnorm":
		x := &RNorm{}
		return x, []binding{bindUint("seed", &x.Seed)}, true
	case "rpois":
		x := &RPois{}
		return x, []binding{bindUint("seed", &x.Seed), bindUint("lambda", &x.Lambda)}, true
	}
	return nil, nil, false
}

// IsDistribution reports whether name is a known distribution call.
func IsDistribution(name string) bool {
	_, _, ok := newGenerator(name)
	return ok
}

// Distributions returns every distribution call name.
func Distributions() []string {
	return []string{
		"rbern", "rbeta", "rbinom", "rcauchy", "rchisq", "rf", "rgamma",
		"rgeom", "rhyper", "rlnorm", "rlogis", "rnbinom", "rnorm", "rpois",
	}
}

// namedArg is one key = value pair as written in a call.
type namedArg struct {
	name  string
	value Num
	pos   int
}

// argError is a binding failure at a byte offset of the formula.
type argError struct {
	pos int
	msg string
}

// bindArgs fills the generator fields from the call arguments. Arguments
// are matched by name; order is irrelevant.
func bindArgs(dist string, callPos int, args []namedArg, bindings []binding) *argError {
	known := make(map[string]bool, len(bindings))
	for _, b := range bindings {
		known[b.name] = true
	}

	given := make(map[string]namedArg, len(args))
	for _, a := range args {
		if !known[a.name] {
			return &argError{a.pos, fmt.Sprintf("%s has no parameter %q", dist, a.name)}
		}
		if _, dup := given[a.name]; dup {
			return &argError{a.pos, fmt.Sprintf("parameter %q given more than once", a.name)}
		}
		given[a.name] = a
	}

	for _, b := range bindings {
		a, ok := given[b.name]
		if !ok {
			return &argError{callPos, fmt.Sprintf("%s is missing required parameter %q", dist, b.name)}
		}
		switch b.kind {
		case uintParam:
			v, ok := a.value.(PosInt)
			if !ok {
				return &argError{a.pos, kindMismatch(b, a.value)}
			}
			*b.uintDst = uint64(v)
		case floatParam:
			v, ok := a.value.(Float)
			if !ok {
				return &argError{a.pos, kindMismatch(b, a.value)}
			}
			*b.floatDst = float64(v)
		}
	}
	return nil
}

func kindMismatch(b binding, got Num) string {
	return fmt.Sprintf("parameter %q expects %s, got %s", b.name, b.kind, got)
}
