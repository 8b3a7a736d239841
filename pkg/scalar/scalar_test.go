package scalar

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/noisegraph/pkg/expr"
	"github.com/chazu/noisegraph/pkg/graph"
)

func TestEvaluate(t *testing.T) {
	g := graph.NewGraph()
	ten := g.Add(graph.NewF64("ten", 10))
	div := g.Add(graph.NewF64Operation(expr.OpDivide, graph.Reference[float64](ten), graph.Literal(0.0)))
	ceiling := g.Add(graph.NewU32("max", math.MaxUint32))
	add := g.Add(graph.NewU32Operation(expr.OpAdd, graph.Reference[uint32](ceiling), graph.Literal[uint32](1)))
	mul := g.Add(graph.NewU32Operation(expr.OpMultiply, graph.Literal[uint32](6), graph.Literal[uint32](7)))
	generic := g.Add(graph.New(graph.NodeOperation))
	perlin := g.Add(graph.New(graph.NodePerlin))

	tests := []struct {
		name string
		id   graph.NodeID
		want Readout
		ok   bool
		text string
	}{
		{"f64 constant", ten, Readout{Type: TypeF64, F64: 10}, true, "10"},
		{"f64 divide by zero", div, Readout{Type: TypeF64, F64: 0}, true, "0"},
		{"u32 constant", ceiling, Readout{Type: TypeU32, U32: math.MaxUint32}, true, "4294967295"},
		{"u32 add overflow", add, Readout{Type: TypeU32, U32: 0}, true, "0"},
		{"u32 multiply", mul, Readout{Type: TypeU32, U32: 42}, true, "42"},
		{"unresolved operation", generic, Readout{}, false, ""},
		{"noise node", perlin, Readout{}, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Evaluate(g, tt.id)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
			if ok {
				assert.Equal(t, tt.text, got.String())
			}
		})
	}
}

func TestReadoutString(t *testing.T) {
	assert.Equal(t, "0.5", Readout{Type: TypeF64, F64: 0.5}.String())
	assert.Equal(t, "-1.25", Readout{Type: TypeF64, F64: -1.25}.String())
	assert.Equal(t, "7", Readout{Type: TypeU32, U32: 7}.String())
	assert.Equal(t, "u32", TypeU32.String())
}

func TestConvenienceWrappers(t *testing.T) {
	g := graph.NewGraph()
	a := g.Add(graph.NewF64("a", 1.5))
	b := g.Add(graph.NewF64Operation(expr.OpSubtract, graph.Reference[float64](a), graph.Literal(4.0)))
	assert.Equal(t, -2.5, F64(g, b))
	assert.Panics(t, func() { U32(g, b) })
}
