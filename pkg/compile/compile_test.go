package compile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/noisegraph/pkg/expr"
	"github.com/chazu/noisegraph/pkg/graph"
)

func zero() expr.Expr {
	return expr.Constant{Value: expr.Anonymous[float64]{Value: 0}}
}

func TestCompileDisconnectedBlend(t *testing.T) {
	g := graph.NewGraph()
	id := g.Add(graph.New(graph.NodeBlend))

	got := Compile(g, id)
	assert.Equal(t, expr.Blend{
		Sources: [2]expr.Expr{zero(), zero()},
		Control: zero(),
	}, got)
}

func TestCompileDisconnectedCombinerOperands(t *testing.T) {
	tests := []struct {
		kind graph.NodeKind
		want float64
	}{
		{graph.NodeAdd, 0},
		{graph.NodeMax, 1},
		{graph.NodeMin, -1},
		{graph.NodeMultiply, 1},
		{graph.NodePower, 1},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			g := graph.NewGraph()
			id := g.Add(graph.New(tt.kind))
			c, ok := Compile(g, id).(expr.Combine)
			require.True(t, ok)
			want, _ := tt.kind.CombineOp()
			assert.Equal(t, want, c.Op)
			for _, s := range c.Sources {
				assert.Equal(t, expr.Constant{Value: expr.Anonymous[float64]{Value: tt.want}}, s)
			}
		})
	}
}

func TestCompileEveryNoiseKind(t *testing.T) {
	for _, k := range graph.NodeKinds {
		if !k.ProducesNoise() {
			continue
		}
		t.Run(k.String(), func(t *testing.T) {
			g := graph.NewGraph()
			id := g.Add(graph.New(k))
			assert.NotPanics(t, func() { Compile(g, id) })
		})
	}
}

func TestCompileRejectsNonNoise(t *testing.T) {
	for _, k := range []graph.NodeKind{
		graph.NodeControlPoint, graph.NodeU32, graph.NodeU32Operation, graph.NodeOperation,
	} {
		t.Run(k.String(), func(t *testing.T) {
			g := graph.NewGraph()
			id := g.Add(graph.New(k))
			assert.Panics(t, func() { Compile(g, id) })
		})
	}
}

func TestCompileNamedAndNestedValues(t *testing.T) {
	g := graph.NewGraph()
	base := g.Add(graph.NewF64("base", 1.5))
	seed := g.Add(graph.NewU32("seed", 42))
	freq := g.Add(graph.NewF64Operation(expr.OpMultiply,
		graph.Reference[float64](base), graph.Literal(2.0)))

	fbm := graph.New(graph.NodeFbm)
	f, _ := fbm.AsFractal()
	f.Seed = graph.Reference[uint32](seed)
	f.Frequency = graph.Reference[float64](freq)
	f.Persistence = graph.Reference[float64](base)
	id := g.Add(fbm)

	got, ok := Compile(g, id).(expr.Fractal)
	require.True(t, ok)
	assert.Equal(t, expr.FractalFbm, got.Kind)
	assert.Equal(t, expr.Named[uint32]{Name: "seed", Value: 42}, got.Seed)
	assert.Equal(t, expr.Anonymous[uint32]{Value: graph.DefaultOctaves}, got.Octaves)
	assert.Equal(t, expr.Operation[float64]{
		Op: expr.OpMultiply,
		Operands: [2]expr.Variable[float64]{
			expr.Named[float64]{Name: "base", Value: 1.5},
			expr.Anonymous[float64]{Value: 2},
		},
	}, got.Frequency)
	assert.Equal(t, 3.0, got.Frequency.Eval())
	assert.Equal(t, expr.Named[float64]{Name: "base", Value: 1.5}, got.Persistence)
}

// countNamed counts named leaves across every variable of the tree.
func countNamed(e expr.Expr) int {
	count := 0
	f64 := func(v expr.Variable[float64]) {
		expr.WalkVariable(v, func(v expr.Variable[float64]) {
			if _, ok := v.(expr.Named[float64]); ok {
				count++
			}
		})
	}
	expr.Walk(e, func(e expr.Expr) bool {
		switch e := e.(type) {
		case expr.Constant:
			f64(e.Value)
		case expr.ScaleBias:
			f64(e.Scale)
			f64(e.Bias)
		case expr.Clamp:
			f64(e.LowerBound)
			f64(e.UpperBound)
		}
		return true
	})
	return count
}

func TestCompileNamedLeafCount(t *testing.T) {
	g := graph.NewGraph()
	lo := g.Add(graph.NewF64("lo", -0.5))
	hi := g.Add(graph.NewF64("hi", 0.5))
	scale := g.Add(graph.NewF64("scale", 2))
	perlin := g.Add(graph.New(graph.NodePerlin))

	clamp := graph.New(graph.NodeClamp)
	cd, _ := clamp.AsClamp()
	cd.Input = graph.Connect(perlin)
	cd.LowerBound = graph.Reference[float64](lo)
	cd.UpperBound = graph.Reference[float64](hi)
	clampID := g.Add(clamp)

	sb := graph.New(graph.NodeScaleBias)
	sd, _ := sb.AsScaleBias()
	sd.Input = graph.Connect(clampID)
	sd.Scale = graph.Reference[float64](scale)
	id := g.Add(sb)

	assert.Equal(t, 3, countNamed(Compile(g, id)))
}

// valueLeaves counts the Named and Operation leaves of v, nested ones
// included.
func valueLeaves[T expr.Number](v expr.Variable[T]) int {
	count := 0
	expr.WalkVariable(v, func(v expr.Variable[T]) {
		switch v.(type) {
		case expr.Named[T], expr.Operation[T]:
			count++
		}
	})
	return count
}

func TestCompileValueLeafCount(t *testing.T) {
	g := graph.NewGraph()
	base := g.Add(graph.NewF64("base", 1.5))
	twice := g.Add(graph.NewF64("twice", 2))
	freq := g.Add(graph.NewF64Operation(expr.OpMultiply,
		graph.Reference[float64](base), graph.Reference[float64](twice)))
	seed := g.Add(graph.NewU32("seed", 7))
	next := g.Add(graph.NewU32Operation(expr.OpAdd,
		graph.Reference[uint32](seed), graph.Literal[uint32](1)))

	f := graph.New(graph.NodeFbm)
	fd := graph.MustPayload[*graph.FractalData](f)
	fd.Frequency = graph.Reference[float64](freq)
	fd.Seed = graph.Reference[uint32](next)
	id := g.Add(f)

	got, ok := Compile(g, id).(expr.Fractal)
	require.True(t, ok)
	leaves := valueLeaves(got.Seed) + valueLeaves(got.Octaves) +
		valueLeaves(got.Frequency) + valueLeaves(got.Lacunarity) + valueLeaves(got.Persistence)
	// base, twice, seed and the two operations; the literal 1 and the
	// default parameters are anonymous.
	assert.Equal(t, 5, leaves)
}

func TestCompileIdempotent(t *testing.T) {
	g := graph.NewGraph()
	p := g.Add(graph.New(graph.NodePerlin))
	w := g.Add(graph.New(graph.NodeWorley))
	sel := graph.New(graph.NodeSelect)
	sd, _ := sel.AsSelect()
	sd.Inputs = [2]graph.Input{graph.Connect(p), graph.Connect(w)}
	sd.Control = graph.Connect(p)
	id := g.Add(sel)

	assert.Equal(t, Compile(g, id), Compile(g, id))
}

func TestCompileCurveSkipsDisconnected(t *testing.T) {
	g := graph.NewGraph()
	k := g.Add(graph.NewF64("k", 0.25))
	cp := graph.New(graph.NodeControlPoint)
	cpd, _ := cp.AsControlPoint()
	cpd.InputValue = graph.Literal(-1.0)
	cpd.OutputValue = graph.Reference[float64](k)
	cpID := g.Add(cp)

	curve := graph.New(graph.NodeCurve)
	cd, _ := curve.AsCurve()
	cd.ControlPoints = []graph.Input{graph.Connect(cpID), {}, graph.Connect(cpID)}
	id := g.Add(curve)

	got, ok := Compile(g, id).(expr.Curve)
	require.True(t, ok)
	want := expr.ControlPoint{
		Input:  expr.Anonymous[float64]{Value: -1},
		Output: expr.Named[float64]{Name: "k", Value: 0.25},
	}
	assert.Equal(t, []expr.ControlPoint{want, want}, got.ControlPoints)

	terrace := graph.New(graph.NodeTerrace)
	td, _ := terrace.AsTerrace()
	td.Inverted = true
	td.ControlPoints = []graph.Input{{}, graph.Connect(k)}
	tid := g.Add(terrace)

	tgot, ok := Compile(g, tid).(expr.Terrace)
	require.True(t, ok)
	assert.True(t, tgot.Inverted)
	assert.Equal(t, []expr.Variable[float64]{expr.Named[float64]{Name: "k", Value: 0.25}}, tgot.ControlPoints)
}

func TestCompileCurveRejectsNonControlPoint(t *testing.T) {
	g := graph.NewGraph()
	k := g.Add(graph.NewF64("k", 1))
	curve := graph.New(graph.NodeCurve)
	cd, _ := curve.AsCurve()
	cd.ControlPoints = []graph.Input{graph.Connect(k)}
	id := g.Add(curve)
	assert.PanicsWithValue(t, "compile: node 0 (f64) is not a control point", func() { Compile(g, id) })
}

func TestCompileValueAsSource(t *testing.T) {
	g := graph.NewGraph()
	c := g.Add(graph.NewF64("level", 0.75))
	op := g.Add(graph.NewF64Operation(expr.OpAdd, graph.Reference[float64](c), graph.Literal(1.0)))

	assert.Equal(t, expr.Constant{Value: expr.Named[float64]{Name: "level", Value: 0.75}}, Compile(g, c))
	got, ok := Compile(g, op).(expr.Constant)
	require.True(t, ok)
	assert.Equal(t, 1.75, got.Value.Eval())
}

func TestCompileUnnamedConstantStaysNamed(t *testing.T) {
	g := graph.NewGraph()
	seed := g.Add(graph.NewU32("", 9))
	freq := g.Add(graph.NewF64("", 3))

	f := graph.New(graph.NodeFbm)
	graph.MustPayload[*graph.FractalData](f).Seed = graph.Reference[uint32](seed)
	fractal, ok := Compile(g, g.Add(f)).(expr.Fractal)
	require.True(t, ok)
	assert.Equal(t, expr.Named[uint32]{Name: "", Value: 9}, fractal.Seed)

	cyl := graph.New(graph.NodeCylinders)
	graph.MustPayload[*graph.CylindersData](cyl).Frequency = graph.Reference[float64](freq)
	cylinders, ok := Compile(g, g.Add(cyl)).(expr.Cylinders)
	require.True(t, ok)
	assert.Equal(t, expr.Named[float64]{Name: "", Value: 3}, cylinders.Frequency)
}

func TestCompileDisplaceAndTransform(t *testing.T) {
	g := graph.NewGraph()
	p := g.Add(graph.New(graph.NodePerlin))
	disp := graph.New(graph.NodeDisplace)
	dd, _ := disp.AsDisplace()
	dd.Input = graph.Connect(p)
	dd.Axes[1] = graph.Connect(p)
	dID := g.Add(disp)

	rot := graph.New(graph.NodeRotatePoint)
	rd, _ := rot.AsTransform()
	rd.Input = graph.Connect(dID)
	rd.Axes[2] = graph.Literal(90.0)
	id := g.Add(rot)

	got, ok := Compile(g, id).(expr.Transform)
	require.True(t, ok)
	assert.Equal(t, expr.TransformRotate, got.Op)
	assert.Equal(t, 90.0, got.Axes[2].Eval())
	d, ok := got.Source.(expr.Displace)
	require.True(t, ok)
	perlin := expr.Generator{Basis: expr.SourcePerlin, Seed: expr.Anonymous[uint32]{}}
	assert.Equal(t, perlin, d.Source)
	assert.Equal(t, zero(), d.Axes[0])
	assert.Equal(t, perlin, d.Axes[1])
}
