package expr

import (
	"fmt"
	"math"
)

// Number is the set of scalar types a value slot can hold.
type Number interface {
	float64 | uint32
}

// OpType is the operator of an arithmetic operation node.
type OpType int

const (
	OpAdd OpType = iota
	OpDivide
	OpMultiply
	OpSubtract
)

func (op OpType) String() string {
	switch op {
	case OpAdd:
		return "add"
	case OpDivide:
		return "divide"
	case OpMultiply:
		return "multiply"
	case OpSubtract:
		return "subtract"
	default:
		return fmt.Sprintf("OpType(%d)", int(op))
	}
}

// F64 applies op to floating-point operands. Division by zero yields 0.
func (op OpType) F64(lhs, rhs float64) float64 {
	switch op {
	case OpAdd:
		return lhs + rhs
	case OpDivide:
		if rhs == 0 {
			return 0
		}
		return lhs / rhs
	case OpMultiply:
		return lhs * rhs
	case OpSubtract:
		return lhs - rhs
	}
	panic(fmt.Sprintf("expr: unknown operator %d", int(op)))
}

// U32 applies op to unsigned operands with overflow checking. Overflow,
// underflow and division by zero all yield 0.
func (op OpType) U32(lhs, rhs uint32) uint32 {
	switch op {
	case OpAdd:
		sum := uint64(lhs) + uint64(rhs)
		if sum > math.MaxUint32 {
			return 0
		}
		return uint32(sum)
	case OpDivide:
		if rhs == 0 {
			return 0
		}
		return lhs / rhs
	case OpMultiply:
		product := uint64(lhs) * uint64(rhs)
		if product > math.MaxUint32 {
			return 0
		}
		return uint32(product)
	case OpSubtract:
		if rhs > lhs {
			return 0
		}
		return lhs - rhs
	}
	panic(fmt.Sprintf("expr: unknown operator %d", int(op)))
}

// Apply dispatches to F64 or U32 depending on T.
func Apply[T Number](op OpType, lhs, rhs T) T {
	switch l := any(lhs).(type) {
	case float64:
		return any(op.F64(l, any(rhs).(float64))).(T)
	case uint32:
		return any(op.U32(l, any(rhs).(uint32))).(T)
	}
	panic("expr: unreachable number type")
}

// OpTypes lists every operator in declaration order.
var OpTypes = []OpType{OpAdd, OpDivide, OpMultiply, OpSubtract}

// SourceType selects the basis noise of generators, fractals and turbulence.
type SourceType int

const (
	SourcePerlin SourceType = iota
	SourceOpenSimplex
	SourcePerlinSurflet
	SourceSimplex
	SourceSuperSimplex
	SourceValue
)

func (s SourceType) String() string {
	switch s {
	case SourcePerlin:
		return "perlin"
	case SourceOpenSimplex:
		return "open-simplex"
	case SourcePerlinSurflet:
		return "perlin-surflet"
	case SourceSimplex:
		return "simplex"
	case SourceSuperSimplex:
		return "super-simplex"
	case SourceValue:
		return "value"
	default:
		return fmt.Sprintf("SourceType(%d)", int(s))
	}
}

// SourceTypes lists every basis in declaration order.
var SourceTypes = []SourceType{
	SourcePerlin, SourceOpenSimplex, SourcePerlinSurflet,
	SourceSimplex, SourceSuperSimplex, SourceValue,
}

// DistanceFunction is the metric used by Worley noise.
type DistanceFunction int

const (
	DistanceEuclidean DistanceFunction = iota
	DistanceEuclideanSquared
	DistanceManhattan
	DistanceChebyshev
)

func (d DistanceFunction) String() string {
	switch d {
	case DistanceEuclidean:
		return "euclidean"
	case DistanceEuclideanSquared:
		return "euclidean-squared"
	case DistanceManhattan:
		return "manhattan"
	case DistanceChebyshev:
		return "chebyshev"
	default:
		return fmt.Sprintf("DistanceFunction(%d)", int(d))
	}
}

// DistanceFunctions lists every metric in declaration order.
var DistanceFunctions = []DistanceFunction{
	DistanceEuclidean, DistanceEuclideanSquared, DistanceManhattan, DistanceChebyshev,
}

// ReturnType selects what a Worley cell returns.
type ReturnType int

const (
	ReturnValue ReturnType = iota
	ReturnDistance
)

func (r ReturnType) String() string {
	switch r {
	case ReturnValue:
		return "value"
	case ReturnDistance:
		return "distance"
	default:
		return fmt.Sprintf("ReturnType(%d)", int(r))
	}
}

// ReturnTypes lists every return type in declaration order.
var ReturnTypes = []ReturnType{ReturnValue, ReturnDistance}

// Parse looks up an enum value by its String form. It is used by the script
// front end and works for any of the enums above.
func Parse[E fmt.Stringer](name string, values []E) (E, bool) {
	for _, v := range values {
		if v.String() == name {
			return v, true
		}
	}
	var zero E
	return zero, false
}
