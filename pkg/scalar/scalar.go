// Package scalar computes the inline value readout shown on constant and
// arithmetic nodes.
package scalar

import (
	"strconv"

	"github.com/chazu/noisegraph/pkg/graph"
)

// Type is the numeric type of a readout.
type Type int

const (
	TypeF64 Type = iota
	TypeU32
)

func (t Type) String() string {
	if t == TypeU32 {
		return "u32"
	}
	return "f64"
}

// Readout is the value of one node. Only the field matching Type is set.
type Readout struct {
	Type Type
	F64  float64
	U32  uint32
}

// String formats the value for display next to the node.
func (r Readout) String() string {
	if r.Type == TypeU32 {
		return strconv.FormatUint(uint64(r.U32), 10)
	}
	return strconv.FormatFloat(r.F64, 'g', -1, 64)
}

// Evaluate returns the readout of an f64 or u32 constant or concrete
// operation. ok is false for every other node, including operations whose
// type is not resolved yet.
func Evaluate(r graph.Reader, id graph.NodeID) (readout Readout, ok bool) {
	switch r.Node(id).Kind {
	case graph.NodeF64, graph.NodeF64Operation:
		return Readout{Type: TypeF64, F64: F64(r, id)}, true
	case graph.NodeU32, graph.NodeU32Operation:
		return Readout{Type: TypeU32, U32: U32(r, id)}, true
	}
	return Readout{}, false
}

// F64 evaluates an f64 constant or operation.
func F64(r graph.Reader, id graph.NodeID) float64 { return graph.EvalF64(r, id) }

// U32 evaluates a u32 constant or operation.
func U32(r graph.Reader, id graph.NodeID) uint32 { return graph.EvalU32(r, id) }
