// Package compile lowers a node of the editable graph into an immutable
// expression tree for the noise evaluator. Compilation is read-only, total
// on well-formed graphs and uncached: every call walks the reachable
// subgraph again.
package compile

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/chazu/noisegraph/pkg/expr"
	"github.com/chazu/noisegraph/pkg/graph"
)

// Compile lowers node id and its transitive dependencies. Disconnected noise
// inputs become constant fields. Compiling a node that cannot be a noise
// source (a control point, a u32 value or an unresolved operation) panics.
func Compile(r graph.Reader, id graph.NodeID) expr.Expr {
	c := compiler{r: r}
	return c.noise(id)
}

type compiler struct {
	r graph.Reader
}

// disconnected returns the constant substituted for an unconnected combiner
// operand.
func disconnected(k graph.NodeKind) float64 {
	switch k {
	case graph.NodeMax, graph.NodeMultiply, graph.NodePower:
		return 1
	case graph.NodeMin:
		return -1
	}
	return 0
}

func constant(v float64) expr.Expr {
	return expr.Constant{Value: expr.Anonymous[float64]{Value: v}}
}

// input lowers an optional noise input, falling back to a constant field.
func (c compiler) input(in graph.Input, fallback float64) expr.Expr {
	id, ok := in.Get()
	if !ok {
		return constant(fallback)
	}
	return c.noise(id)
}

func (c compiler) source(in graph.Input) expr.Expr {
	return c.input(in, 0)
}

func (c compiler) f64(v graph.NodeValue[float64]) expr.Variable[float64] {
	return variable(c.r, v)
}

func (c compiler) u32(v graph.NodeValue[uint32]) expr.Variable[uint32] {
	return variable(c.r, v)
}

func (c compiler) noise(id graph.NodeID) expr.Expr {
	n := c.r.Node(id)
	switch d := n.Data.(type) {
	case *graph.GeneratorData:
		basis, ok := n.Kind.Basis()
		if !ok {
			break
		}
		return expr.Generator{Basis: basis, Seed: c.u32(d.Seed)}

	case *graph.FractalData:
		kind, ok := n.Kind.FractalKind()
		if !ok {
			break
		}
		return expr.Fractal{
			Kind:        kind,
			Basis:       d.Basis,
			Seed:        c.u32(d.Seed),
			Octaves:     c.u32(d.Octaves),
			Frequency:   c.f64(d.Frequency),
			Lacunarity:  c.f64(d.Lacunarity),
			Persistence: c.f64(d.Persistence),
		}

	case *graph.RigidFractalData:
		return expr.RidgedMulti{
			Basis:       d.Basis,
			Seed:        c.u32(d.Seed),
			Octaves:     c.u32(d.Octaves),
			Frequency:   c.f64(d.Frequency),
			Lacunarity:  c.f64(d.Lacunarity),
			Persistence: c.f64(d.Persistence),
			Attenuation: c.f64(d.Attenuation),
		}

	case *graph.CombinerData:
		op, ok := n.Kind.CombineOp()
		if !ok {
			break
		}
		fallback := disconnected(n.Kind)
		return expr.Combine{
			Op: op,
			Sources: [2]expr.Expr{
				c.input(d.Inputs[0], fallback),
				c.input(d.Inputs[1], fallback),
			},
		}

	case *graph.UnaryData:
		op, ok := n.Kind.UnaryOp()
		if !ok {
			break
		}
		return expr.Unary{Op: op, Source: c.source(d.Input)}

	case *graph.TransformData:
		op, ok := n.Kind.TransformOp()
		if !ok {
			break
		}
		t := expr.Transform{Op: op, Source: c.source(d.Input)}
		for i, a := range d.Axes {
			t.Axes[i] = c.f64(a)
		}
		return t

	case *graph.BlendData:
		return expr.Blend{
			Sources: [2]expr.Expr{c.source(d.Inputs[0]), c.source(d.Inputs[1])},
			Control: c.source(d.Control),
		}

	case *graph.SelectData:
		return expr.Select{
			Sources:    [2]expr.Expr{c.source(d.Inputs[0]), c.source(d.Inputs[1])},
			Control:    c.source(d.Control),
			LowerBound: c.f64(d.LowerBound),
			UpperBound: c.f64(d.UpperBound),
			Falloff:    c.f64(d.Falloff),
		}

	case *graph.ClampData:
		return expr.Clamp{
			Source:     c.source(d.Input),
			LowerBound: c.f64(d.LowerBound),
			UpperBound: c.f64(d.UpperBound),
		}

	case *graph.ScaleBiasData:
		return expr.ScaleBias{
			Source: c.source(d.Input),
			Scale:  c.f64(d.Scale),
			Bias:   c.f64(d.Bias),
		}

	case *graph.ExponentData:
		return expr.Exponent{Source: c.source(d.Input), Exponent: c.f64(d.Exponent)}

	case *graph.CurveData:
		return expr.Curve{
			Source: c.source(d.Input),
			ControlPoints: lo.FilterMap(d.ControlPoints, func(in graph.Input, _ int) (expr.ControlPoint, bool) {
				id, ok := in.Get()
				if !ok {
					return expr.ControlPoint{}, false
				}
				return c.controlPoint(id), true
			}),
		}

	case *graph.TerraceData:
		return expr.Terrace{
			Source:   c.source(d.Input),
			Inverted: d.Inverted,
			ControlPoints: lo.FilterMap(d.ControlPoints, func(in graph.Input, _ int) (expr.Variable[float64], bool) {
				id, ok := in.Get()
				if !ok {
					return nil, false
				}
				return c.f64(graph.Reference[float64](id)), true
			}),
		}

	case *graph.DisplaceData:
		dp := expr.Displace{Source: c.source(d.Input)}
		for i, a := range d.Axes {
			dp.Axes[i] = c.source(a)
		}
		return dp

	case *graph.CheckerboardData:
		return expr.Checkerboard{Size: c.u32(d.Size)}

	case *graph.CylindersData:
		return expr.Cylinders{Frequency: c.f64(d.Frequency)}

	case *graph.WorleyData:
		return expr.Worley{
			Seed:      c.u32(d.Seed),
			Frequency: c.f64(d.Frequency),
			Distance:  d.Distance,
			Return:    d.Return,
		}

	case *graph.TurbulenceData:
		return expr.Turbulence{
			Source:    c.source(d.Input),
			Basis:     d.Basis,
			Seed:      c.u32(d.Seed),
			Frequency: c.f64(d.Frequency),
			Power:     c.f64(d.Power),
			Roughness: c.u32(d.Roughness),
		}

	case *graph.ConstantData[float64], *graph.OperationData[float64]:
		return expr.Constant{Value: c.f64(graph.Reference[float64](id))}
	}
	panic(fmt.Sprintf("compile: node %d (%s) is not a noise source", id, n.Kind))
}

func (c compiler) controlPoint(id graph.NodeID) expr.ControlPoint {
	n := c.r.Node(id)
	d, ok := n.AsControlPoint()
	if !ok {
		panic(fmt.Sprintf("compile: node %d (%s) is not a control point", id, n.Kind))
	}
	return expr.ControlPoint{Input: c.f64(d.InputValue), Output: c.f64(d.OutputValue)}
}

// variable lowers a value slot. A literal is anonymous; a reference to a
// constant is named after it, even when the name is empty; a reference to an
// operation nests.
func variable[T expr.Number](r graph.Reader, v graph.NodeValue[T]) expr.Variable[T] {
	id, ok := v.NodeIndex()
	if !ok {
		return expr.Anonymous[T]{Value: v.Value}
	}
	n := r.Node(id)
	switch d := n.Data.(type) {
	case *graph.ConstantData[T]:
		return expr.Named[T]{Name: d.Name, Value: d.Value}
	case *graph.OperationData[T]:
		return expr.Operation[T]{
			Op:       d.Op,
			Operands: [2]expr.Variable[T]{variable(r, d.Inputs[0]), variable(r, d.Inputs[1])},
		}
	}
	var zero T
	panic(fmt.Sprintf("compile: node %d (%s) does not produce %T", id, n.Kind, zero))
}
