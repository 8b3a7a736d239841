package expr

import "fmt"

// Expr is a node of the compiled expression tree. The set of
// implementations is closed.
type Expr interface {
	expr()
}

// FractalKind distinguishes the fractal combiners sharing the Fractal fields.
type FractalKind int

const (
	FractalBasicMulti FractalKind = iota
	FractalBillow
	FractalFbm
	FractalHybridMulti
)

func (k FractalKind) String() string {
	switch k {
	case FractalBasicMulti:
		return "basic-multi"
	case FractalBillow:
		return "billow"
	case FractalFbm:
		return "fbm"
	case FractalHybridMulti:
		return "hybrid-multi"
	default:
		return fmt.Sprintf("FractalKind(%d)", int(k))
	}
}

// FractalKinds lists every fractal kind in declaration order.
var FractalKinds = []FractalKind{FractalBasicMulti, FractalBillow, FractalFbm, FractalHybridMulti}

// CombineOp is the operator of a two-source combiner.
type CombineOp int

const (
	CombineAdd CombineOp = iota
	CombineMax
	CombineMin
	CombineMultiply
	CombinePower
)

func (op CombineOp) String() string {
	switch op {
	case CombineAdd:
		return "add"
	case CombineMax:
		return "max"
	case CombineMin:
		return "min"
	case CombineMultiply:
		return "multiply"
	case CombinePower:
		return "power"
	default:
		return fmt.Sprintf("CombineOp(%d)", int(op))
	}
}

// CombineOps lists every combiner in declaration order.
var CombineOps = []CombineOp{CombineAdd, CombineMax, CombineMin, CombineMultiply, CombinePower}

// UnaryOp is the operator of a single-source modifier.
type UnaryOp int

const (
	UnaryAbs UnaryOp = iota
	UnaryNegate
)

func (op UnaryOp) String() string {
	switch op {
	case UnaryAbs:
		return "abs"
	case UnaryNegate:
		return "negate"
	default:
		return fmt.Sprintf("UnaryOp(%d)", int(op))
	}
}

// UnaryOps lists every unary modifier in declaration order.
var UnaryOps = []UnaryOp{UnaryAbs, UnaryNegate}

// TransformOp is the point transform applied before sampling the source.
type TransformOp int

const (
	TransformRotate TransformOp = iota
	TransformScale
	TransformTranslate
)

func (op TransformOp) String() string {
	switch op {
	case TransformRotate:
		return "rotate"
	case TransformScale:
		return "scale"
	case TransformTranslate:
		return "translate"
	default:
		return fmt.Sprintf("TransformOp(%d)", int(op))
	}
}

// TransformOps lists every transform in declaration order.
var TransformOps = []TransformOp{TransformRotate, TransformScale, TransformTranslate}

// Constant is a scalar value used as a noise source.
type Constant struct {
	Value Variable[float64]
}

// Generator is a seeded basis noise.
type Generator struct {
	Basis SourceType
	Seed  Variable[uint32]
}

// Fractal is a multi-octave combination of a basis noise.
type Fractal struct {
	Kind        FractalKind
	Basis       SourceType
	Seed        Variable[uint32]
	Octaves     Variable[uint32]
	Frequency   Variable[float64]
	Lacunarity  Variable[float64]
	Persistence Variable[float64]
}

// RidgedMulti is a ridged multifractal.
type RidgedMulti struct {
	Basis       SourceType
	Seed        Variable[uint32]
	Octaves     Variable[uint32]
	Frequency   Variable[float64]
	Lacunarity  Variable[float64]
	Persistence Variable[float64]
	Attenuation Variable[float64]
}

// Combine merges two sources with Op.
type Combine struct {
	Op      CombineOp
	Sources [2]Expr
}

// Unary modifies one source.
type Unary struct {
	Op     UnaryOp
	Source Expr
}

// Transform moves the sample point before evaluating Source.
type Transform struct {
	Op     TransformOp
	Source Expr
	Axes   [4]Variable[float64]
}

// Blend interpolates between Sources weighted by Control.
type Blend struct {
	Sources [2]Expr
	Control Expr
}

// Select chooses between Sources depending on where Control falls relative
// to the bounds.
type Select struct {
	Sources    [2]Expr
	Control    Expr
	LowerBound Variable[float64]
	UpperBound Variable[float64]
	Falloff    Variable[float64]
}

// Clamp limits Source to the bounds.
type Clamp struct {
	Source     Expr
	LowerBound Variable[float64]
	UpperBound Variable[float64]
}

// ScaleBias computes Source*Scale + Bias.
type ScaleBias struct {
	Source Expr
	Scale  Variable[float64]
	Bias   Variable[float64]
}

// Exponent raises the normalized Source to Exponent.
type Exponent struct {
	Source   Expr
	Exponent Variable[float64]
}

// ControlPoint maps an input value to an output value on a Curve.
type ControlPoint struct {
	Input  Variable[float64]
	Output Variable[float64]
}

// Curve remaps Source through a spline of control points.
type Curve struct {
	Source        Expr
	ControlPoints []ControlPoint
}

// Terrace remaps Source into terraces at the control points.
type Terrace struct {
	Source        Expr
	Inverted      bool
	ControlPoints []Variable[float64]
}

// Displace offsets the sample point by the four axis sources.
type Displace struct {
	Source Expr
	Axes   [4]Expr
}

// Checkerboard is a unit checkerboard pattern.
type Checkerboard struct {
	Size Variable[uint32]
}

// Cylinders is a set of concentric cylinders.
type Cylinders struct {
	Frequency Variable[float64]
}

// Worley is cellular noise.
type Worley struct {
	Seed      Variable[uint32]
	Frequency Variable[float64]
	Distance  DistanceFunction
	Return    ReturnType
}

// Turbulence randomly displaces Source using a basis noise.
type Turbulence struct {
	Source    Expr
	Basis     SourceType
	Seed      Variable[uint32]
	Frequency Variable[float64]
	Power     Variable[float64]
	Roughness Variable[uint32]
}

func (Constant) expr()     {}
func (Generator) expr()    {}
func (Fractal) expr()      {}
func (RidgedMulti) expr()  {}
func (Combine) expr()      {}
func (Unary) expr()        {}
func (Transform) expr()    {}
func (Blend) expr()        {}
func (Select) expr()       {}
func (Clamp) expr()        {}
func (ScaleBias) expr()    {}
func (Exponent) expr()     {}
func (Curve) expr()        {}
func (Terrace) expr()      {}
func (Displace) expr()     {}
func (Checkerboard) expr() {}
func (Cylinders) expr()    {}
func (Worley) expr()       {}
func (Turbulence) expr()   {}

// Children returns the noise sub-expressions of e in field order.
func Children(e Expr) []Expr {
	switch e := e.(type) {
	case Combine:
		return e.Sources[:]
	case Unary:
		return []Expr{e.Source}
	case Transform:
		return []Expr{e.Source}
	case Blend:
		return []Expr{e.Sources[0], e.Sources[1], e.Control}
	case Select:
		return []Expr{e.Sources[0], e.Sources[1], e.Control}
	case Clamp:
		return []Expr{e.Source}
	case ScaleBias:
		return []Expr{e.Source}
	case Exponent:
		return []Expr{e.Source}
	case Curve:
		return []Expr{e.Source}
	case Terrace:
		return []Expr{e.Source}
	case Displace:
		return []Expr{e.Source, e.Axes[0], e.Axes[1], e.Axes[2], e.Axes[3]}
	case Turbulence:
		return []Expr{e.Source}
	}
	return nil
}

// Walk visits e and its sub-expressions depth-first. Returning false from fn
// skips the children of the current expression.
func Walk(e Expr, fn func(Expr) bool) {
	if !fn(e) {
		return
	}
	for _, child := range Children(e) {
		Walk(child, fn)
	}
}
