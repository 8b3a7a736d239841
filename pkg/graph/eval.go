package graph

import (
	"fmt"

	"github.com/chazu/noisegraph/pkg/expr"
)

// Eval computes the value of a constant or concrete operation node of type
// T. Any other node is a precondition violation.
func Eval[T expr.Number](r Reader, id NodeID) T {
	n := r.Node(id)
	switch d := n.Data.(type) {
	case *ConstantData[T]:
		return d.Value
	case *OperationData[T]:
		return expr.Apply(d.Op, Resolve(r, d.Inputs[0]), Resolve(r, d.Inputs[1]))
	}
	var zero T
	panic(fmt.Sprintf("graph: node %d (%s) does not produce %T", id, n.Kind, zero))
}

// Resolve returns the literal of v, or evaluates the node it references.
func Resolve[T expr.Number](r Reader, v NodeValue[T]) T {
	if id, ok := v.NodeIndex(); ok {
		return Eval[T](r, id)
	}
	return v.Value
}

// EvalF64 evaluates an F64 constant or F64 operation.
func EvalF64(r Reader, id NodeID) float64 { return Eval[float64](r, id) }

// EvalU32 evaluates a U32 constant or U32 operation.
func EvalU32(r Reader, id NodeID) uint32 { return Eval[uint32](r, id) }
