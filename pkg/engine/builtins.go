package engine

import (
	"fmt"
	"strings"

	"github.com/go-logr/logr"
	zygo "github.com/glycerine/zygomys/zygo"
	"go.uber.org/multierr"

	"github.com/chazu/noisegraph/pkg/expr"
	"github.com/chazu/noisegraph/pkg/graph"
	"github.com/chazu/noisegraph/pkg/propagate"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpNode wraps a graph.NodeID so it can be passed between builtins. The
// kind is not cached: propagation may rewrite it after the node is built.
type sexpNode struct {
	id graph.NodeID
}

func (n *sexpNode) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(node %d)", n.id)
}
func (n *sexpNode) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Graph builder
// ---------------------------------------------------------------------------

// builder owns the graph a script populates and the propagator that keeps
// its operation nodes consistent while edges are added.
type builder struct {
	g   *graph.Graph
	p   *propagate.Propagator
	log logr.Logger

	// failure is the builtin call that stopped the script, if any.
	failure *builtinFailure
}

// builtinFailure keeps the individual problems a builtin collected.
// zygomys only carries the flattened message.
type builtinFailure struct {
	name string
	errs []error
}

func (b *builder) add(n *graph.Node) *sexpNode {
	id := b.g.Add(n)
	b.log.V(2).Info("added node", "id", id, "kind", n.Kind)
	return &sexpNode{id: id}
}

func (b *builder) node(s zygo.Sexp) (graph.NodeID, *graph.Node, error) {
	ref, ok := s.(*sexpNode)
	if !ok {
		return 0, nil, fmt.Errorf("expected node, got %s", describe(s))
	}
	return ref.id, b.g.Node(ref.id), nil
}

// input binds a noise input. nil leaves it disconnected. An unresolved
// operation is pinned to f64 before it is connected.
func (b *builder) input(s zygo.Sexp) (graph.Input, error) {
	if isNull(s) {
		return graph.Input{}, nil
	}
	id, n, err := b.node(s)
	if err != nil {
		return graph.Input{}, err
	}
	if n.Kind == graph.NodeOperation {
		b.p.Promote(id, propagate.F64)
	}
	if !graph.SlotNoise.Accepts(n.Kind) {
		return graph.Input{}, fmt.Errorf("%s node %d does not produce noise", n.Kind, id)
	}
	return graph.Connect(id), nil
}

func (b *builder) inputs(args []zygo.Sexp, dst []graph.Input) error {
	var err error
	for i := range dst {
		var in graph.Input
		if i < len(args) {
			var e error
			in, e = b.input(args[i])
			err = multierr.Append(err, e)
		}
		dst[i] = in
	}
	return err
}

// typeOf returns the propagation descriptor of T.
func typeOf[T expr.Number]() propagate.TypeKind {
	var zero T
	if _, ok := any(zero).(uint32); ok {
		return propagate.U32
	}
	return propagate.F64
}

func literal[T expr.Number](s zygo.Sexp) (T, error) {
	var zero T
	switch any(zero).(type) {
	case uint32:
		v, err := toUint32(s)
		return T(v), err
	default:
		v, err := toFloat64(s)
		return T(v), err
	}
}

// bindValue stores s into a typed value slot. A number becomes a literal;
// a node must produce T. An unresolved operation is promoted to T first,
// which is the one propagation walk this edge triggers.
func bindValue[T expr.Number](b *builder, slot *graph.NodeValue[T], s zygo.Sexp) error {
	if _, ok := s.(*sexpNode); !ok {
		v, err := literal[T](s)
		if err != nil {
			return err
		}
		*slot = graph.Literal(v)
		return nil
	}
	t := typeOf[T]()
	id, n, _ := b.node(s)
	switch {
	case n.Kind == graph.NodeOperation:
		b.p.Promote(id, t)
	case !t.Slot().Accepts(n.Kind):
		return fmt.Errorf("expected %s value, got %s node %d", t, n.Kind, id)
	}
	*slot = graph.Reference[T](id)
	return nil
}

// kwValue binds keyword key into slot when it was given.
func kwValue[T expr.Number](b *builder, pa kwArgs, key string, slot *graph.NodeValue[T]) error {
	v, ok := pa.kw[key]
	if !ok {
		return nil
	}
	if err := bindValue(b, slot, v); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

func kwEnum[E fmt.Stringer](pa kwArgs, key string, values []E, dst *E) error {
	v, ok := pa.kw[key]
	if !ok {
		return nil
	}
	e, err := toEnum(v, values)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = e
	return nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

type builtinFunc func(pa kwArgs) (zygo.Sexp, error)

// define registers fn under name. Kebab-case names are registered in the
// snake_case form preprocessSource produces. keys lists the keyword
// arguments fn understands.
func (b *builder) define(env *zygo.Zlisp, name string, keys []string, fn builtinFunc) {
	env.AddFunction(strings.ReplaceAll(name, "-", "_"),
		func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
			res, err := fn(parseArgs(args, keys))
			if err != nil {
				b.failure = &builtinFailure{name: name, errs: multierr.Errors(err)}
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			return res, nil
		})
}

var (
	fractalKeys    = []string{"basis", "seed", "octaves", "frequency", "lacunarity", "persistence"}
	ridgedKeys     = append(fractalKeys[:len(fractalKeys):len(fractalKeys)], "attenuation")
	axisKeys       = []string{"x", "y", "z", "w"}
	boundKeys      = []string{"lower-bound", "upper-bound"}
	selectKeys     = append(boundKeys[:len(boundKeys):len(boundKeys)], "falloff")
	turbulenceKeys = []string{"basis", "seed", "frequency", "power", "roughness"}
	previewKeys    = []string{"scale", "x", "y"}
)

// registerBuiltins installs the graph-building builtins into a zygomys
// environment. Every node builtin returns a node reference that other
// builtins accept as an input or value.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, b *builder) {

	// (generator :perlin :seed 3)
	b.define(env, "generator", []string{"seed"}, func(pa kwArgs) (zygo.Sexp, error) {
		if err := pa.require(1, "(generator :basis ...)"); err != nil {
			return nil, err
		}
		basis, err := toEnum(pa.arg(0), expr.SourceTypes)
		if err != nil {
			return nil, err
		}
		n := graph.New(graph.GeneratorKind(basis))
		d := graph.MustPayload[*graph.GeneratorData](n)
		if err := kwValue(b, pa, "seed", &d.Seed); err != nil {
			return nil, err
		}
		return b.add(n), nil
	})

	// (fractal :fbm :basis :simplex :octaves 4 :frequency freq)
	b.define(env, "fractal", fractalKeys, func(pa kwArgs) (zygo.Sexp, error) {
		if err := pa.require(1, "(fractal :kind ...)"); err != nil {
			return nil, err
		}
		kind, err := toEnum(pa.arg(0), expr.FractalKinds)
		if err != nil {
			return nil, err
		}
		n := graph.New(graph.FractalNodeKind(kind))
		if err := fractalParams(b, pa, graph.MustPayload[*graph.FractalData](n)); err != nil {
			return nil, err
		}
		return b.add(n), nil
	})

	// (ridged-multi :seed 2 :attenuation 1.5)
	b.define(env, "ridged-multi", ridgedKeys, func(pa kwArgs) (zygo.Sexp, error) {
		n := graph.New(graph.NodeRidgedMulti)
		d := graph.MustPayload[*graph.RigidFractalData](n)
		err := multierr.Append(
			fractalParams(b, pa, &d.FractalData),
			kwValue(b, pa, "attenuation", &d.Attenuation))
		if err != nil {
			return nil, err
		}
		return b.add(n), nil
	})

	// (combine :add a b)
	b.define(env, "combine", nil, func(pa kwArgs) (zygo.Sexp, error) {
		if err := pa.require(1, "(combine :op a b)"); err != nil {
			return nil, err
		}
		op, err := toEnum(pa.arg(0), expr.CombineOps)
		if err != nil {
			return nil, err
		}
		n := graph.New(graph.CombinerKind(op))
		d := graph.MustPayload[*graph.CombinerData](n)
		if err := b.inputs(pa.rest(1), d.Inputs[:]); err != nil {
			return nil, err
		}
		return b.add(n), nil
	})

	// (unary :abs src)
	b.define(env, "unary", nil, func(pa kwArgs) (zygo.Sexp, error) {
		if err := pa.require(1, "(unary :op src)"); err != nil {
			return nil, err
		}
		op, err := toEnum(pa.arg(0), expr.UnaryOps)
		if err != nil {
			return nil, err
		}
		n := graph.New(graph.UnaryKind(op))
		d := graph.MustPayload[*graph.UnaryData](n)
		if d.Input, err = b.input(pa.arg(1)); err != nil {
			return nil, err
		}
		return b.add(n), nil
	})

	// (transform :rotate src :z 90)
	b.define(env, "transform", axisKeys, func(pa kwArgs) (zygo.Sexp, error) {
		if err := pa.require(1, "(transform :op src)"); err != nil {
			return nil, err
		}
		op, err := toEnum(pa.arg(0), expr.TransformOps)
		if err != nil {
			return nil, err
		}
		n := graph.New(graph.TransformKind(op))
		d := graph.MustPayload[*graph.TransformData](n)
		d.Input, err = b.input(pa.arg(1))
		for i, key := range axisKeys {
			err = multierr.Append(err, kwValue(b, pa, key, &d.Axes[i]))
		}
		if err != nil {
			return nil, err
		}
		return b.add(n), nil
	})

	// (blend a b control)
	b.define(env, "blend", nil, func(pa kwArgs) (zygo.Sexp, error) {
		n := graph.New(graph.NodeBlend)
		d := graph.MustPayload[*graph.BlendData](n)
		var in [3]graph.Input
		if err := b.inputs(pa.positional, in[:]); err != nil {
			return nil, err
		}
		d.Inputs = [2]graph.Input{in[0], in[1]}
		d.Control = in[2]
		return b.add(n), nil
	})

	// (select a b control :lower-bound 0 :upper-bound 0.5 :falloff 0.1)
	b.define(env, "select", selectKeys, func(pa kwArgs) (zygo.Sexp, error) {
		n := graph.New(graph.NodeSelect)
		d := graph.MustPayload[*graph.SelectData](n)
		var in [3]graph.Input
		err := b.inputs(pa.positional, in[:])
		d.Inputs = [2]graph.Input{in[0], in[1]}
		d.Control = in[2]
		err = multierr.Combine(err,
			kwValue(b, pa, "lower-bound", &d.LowerBound),
			kwValue(b, pa, "upper-bound", &d.UpperBound),
			kwValue(b, pa, "falloff", &d.Falloff))
		if err != nil {
			return nil, err
		}
		return b.add(n), nil
	})

	// (clamp src :lower-bound -0.5 :upper-bound 0.5)
	b.define(env, "clamp", boundKeys, func(pa kwArgs) (zygo.Sexp, error) {
		n := graph.New(graph.NodeClamp)
		d := graph.MustPayload[*graph.ClampData](n)
		var err error
		d.Input, err = b.input(pa.arg(0))
		err = multierr.Combine(err,
			kwValue(b, pa, "lower-bound", &d.LowerBound),
			kwValue(b, pa, "upper-bound", &d.UpperBound))
		if err != nil {
			return nil, err
		}
		return b.add(n), nil
	})

	// (scale-bias src :scale 0.5 :bias 0.5)
	b.define(env, "scale-bias", []string{"scale", "bias"}, func(pa kwArgs) (zygo.Sexp, error) {
		n := graph.New(graph.NodeScaleBias)
		d := graph.MustPayload[*graph.ScaleBiasData](n)
		var err error
		d.Input, err = b.input(pa.arg(0))
		err = multierr.Combine(err,
			kwValue(b, pa, "scale", &d.Scale),
			kwValue(b, pa, "bias", &d.Bias))
		if err != nil {
			return nil, err
		}
		return b.add(n), nil
	})

	// (exponent src :exponent 2)
	b.define(env, "exponent", []string{"exponent"}, func(pa kwArgs) (zygo.Sexp, error) {
		n := graph.New(graph.NodeExponent)
		d := graph.MustPayload[*graph.ExponentData](n)
		var err error
		d.Input, err = b.input(pa.arg(0))
		err = multierr.Append(err, kwValue(b, pa, "exponent", &d.Exponent))
		if err != nil {
			return nil, err
		}
		return b.add(n), nil
	})

	// (control-point -1.0 out)
	b.define(env, "control-point", nil, func(pa kwArgs) (zygo.Sexp, error) {
		if err := pa.require(2, "(control-point input output)"); err != nil {
			return nil, err
		}
		n := graph.New(graph.NodeControlPoint)
		d := graph.MustPayload[*graph.ControlPointData](n)
		err := multierr.Append(
			bindValue(b, &d.InputValue, pa.arg(0)),
			bindValue(b, &d.OutputValue, pa.arg(1)))
		if err != nil {
			return nil, err
		}
		return b.add(n), nil
	})

	// (curve src cp1 cp2 cp3 cp4)
	b.define(env, "curve", nil, func(pa kwArgs) (zygo.Sexp, error) {
		n := graph.New(graph.NodeCurve)
		d := graph.MustPayload[*graph.CurveData](n)
		var err error
		d.Input, err = b.input(pa.arg(0))
		for i, s := range pa.rest(1) {
			var in graph.Input
			if !isNull(s) {
				id, cp, e := b.node(s)
				switch {
				case e != nil:
					err = multierr.Append(err, fmt.Errorf("control point %d: %w", i, e))
				case cp.Kind != graph.NodeControlPoint:
					err = multierr.Append(err, fmt.Errorf("control point %d: got %s node %d", i, cp.Kind, id))
				default:
					in = graph.Connect(id)
				}
			}
			d.ControlPoints = append(d.ControlPoints, in)
		}
		if err != nil {
			return nil, err
		}
		return b.add(n), nil
	})

	// (terrace src v1 v2 v3 :inverted true)
	b.define(env, "terrace", []string{"inverted"}, func(pa kwArgs) (zygo.Sexp, error) {
		n := graph.New(graph.NodeTerrace)
		d := graph.MustPayload[*graph.TerraceData](n)
		var err error
		d.Input, err = b.input(pa.arg(0))
		if v, ok := pa.kw["inverted"]; ok {
			inv, e := toBool(v)
			err = multierr.Append(err, e)
			d.Inverted = inv
		}
		for i, s := range pa.rest(1) {
			var in graph.Input
			if !isNull(s) {
				if _, ok := s.(*sexpNode); !ok {
					err = multierr.Append(err, fmt.Errorf("control point %d: expected f64 node, got %s", i, describe(s)))
				} else {
					var slot graph.NodeValue[float64]
					if e := bindValue(b, &slot, s); e != nil {
						err = multierr.Append(err, fmt.Errorf("control point %d: %w", i, e))
					}
					in = slot.Ref
				}
			}
			d.ControlPoints = append(d.ControlPoints, in)
		}
		if err != nil {
			return nil, err
		}
		return b.add(n), nil
	})

	// (displace src x y z w)
	b.define(env, "displace", nil, func(pa kwArgs) (zygo.Sexp, error) {
		n := graph.New(graph.NodeDisplace)
		d := graph.MustPayload[*graph.DisplaceData](n)
		var err error
		d.Input, err = b.input(pa.arg(0))
		err = multierr.Append(err, b.inputs(pa.rest(1), d.Axes[:]))
		if err != nil {
			return nil, err
		}
		return b.add(n), nil
	})

	// (checkerboard :size 2)
	b.define(env, "checkerboard", []string{"size"}, func(pa kwArgs) (zygo.Sexp, error) {
		n := graph.New(graph.NodeCheckerboard)
		d := graph.MustPayload[*graph.CheckerboardData](n)
		if err := kwValue(b, pa, "size", &d.Size); err != nil {
			return nil, err
		}
		return b.add(n), nil
	})

	// (cylinders :frequency 2)
	b.define(env, "cylinders", []string{"frequency"}, func(pa kwArgs) (zygo.Sexp, error) {
		n := graph.New(graph.NodeCylinders)
		d := graph.MustPayload[*graph.CylindersData](n)
		if err := kwValue(b, pa, "frequency", &d.Frequency); err != nil {
			return nil, err
		}
		return b.add(n), nil
	})

	// (worley :seed 1 :frequency 2 :distance :manhattan :return :distance)
	b.define(env, "worley", []string{"seed", "frequency", "distance", "return"}, func(pa kwArgs) (zygo.Sexp, error) {
		n := graph.New(graph.NodeWorley)
		d := graph.MustPayload[*graph.WorleyData](n)
		err := multierr.Combine(
			kwValue(b, pa, "seed", &d.Seed),
			kwValue(b, pa, "frequency", &d.Frequency),
			kwEnum(pa, "distance", expr.DistanceFunctions, &d.Distance),
			kwEnum(pa, "return", expr.ReturnTypes, &d.Return))
		if err != nil {
			return nil, err
		}
		return b.add(n), nil
	})

	// (turbulence src :basis :perlin :power 0.5 :roughness 4)
	b.define(env, "turbulence", turbulenceKeys, func(pa kwArgs) (zygo.Sexp, error) {
		n := graph.New(graph.NodeTurbulence)
		d := graph.MustPayload[*graph.TurbulenceData](n)
		var err error
		d.Input, err = b.input(pa.arg(0))
		err = multierr.Combine(err,
			kwEnum(pa, "basis", expr.SourceTypes, &d.Basis),
			kwValue(b, pa, "seed", &d.Seed),
			kwValue(b, pa, "frequency", &d.Frequency),
			kwValue(b, pa, "power", &d.Power),
			kwValue(b, pa, "roughness", &d.Roughness))
		if err != nil {
			return nil, err
		}
		return b.add(n), nil
	})

	// (f64 "height" 1.5), (u32 "seed" 7)
	b.define(env, "f64", nil, constantBuiltin[float64](b, graph.NodeF64))
	b.define(env, "u32", nil, constantBuiltin[uint32](b, graph.NodeU32))

	// (op :add a b) creates an operation whose type is fixed by its edges.
	b.define(env, "op", nil, func(pa kwArgs) (zygo.Sexp, error) {
		if err := pa.require(1, "(op :op lhs rhs)"); err != nil {
			return nil, err
		}
		op, err := toEnum(pa.arg(0), expr.OpTypes)
		if err != nil {
			return nil, err
		}
		ref := b.add(graph.NewOperation(op, graph.Input{}, graph.Input{}))
		for i, s := range pa.rest(1) {
			if i > 1 {
				return nil, fmt.Errorf("expected at most 2 operands, got %d", len(pa.rest(1)))
			}
			if err := b.operand(ref.id, i, s); err != nil {
				return nil, fmt.Errorf("operand %d: %w", i, err)
			}
		}
		return ref, nil
	})

	// (f64-op :divide a 2.0), (u32-op :add seed 1)
	b.define(env, "f64-op", nil, typedOpBuiltin[float64](b, graph.NewF64Operation))
	b.define(env, "u32-op", nil, typedOpBuiltin[uint32](b, graph.NewU32Operation))

	// (preview src :scale 8 :x 0 :y 0)
	b.define(env, "preview", previewKeys, func(pa kwArgs) (zygo.Sexp, error) {
		if err := pa.require(1, "(preview node)"); err != nil {
			return nil, err
		}
		id, n, err := b.node(pa.arg(0))
		if err != nil {
			return nil, err
		}
		im, ok := n.Image()
		if !ok {
			return nil, fmt.Errorf("%s node %d has no preview", n.Kind, id)
		}
		fields := map[string]*float64{"scale": &im.Scale, "x": &im.X, "y": &im.Y}
		for _, key := range previewKeys {
			v, ok := pa.kw[key]
			if !ok {
				continue
			}
			f, e := toFloat64(v)
			if e != nil {
				err = multierr.Append(err, fmt.Errorf("%s: %w", key, e))
				continue
			}
			*fields[key] = f
		}
		if err != nil {
			return nil, err
		}
		b.g.Invalidate(id)
		b.g.AddRoot(id)
		return pa.arg(0), nil
	})
}

func fractalParams(b *builder, pa kwArgs, d *graph.FractalData) error {
	return multierr.Combine(
		kwEnum(pa, "basis", expr.SourceTypes, &d.Basis),
		kwValue(b, pa, "seed", &d.Seed),
		kwValue(b, pa, "octaves", &d.Octaves),
		kwValue(b, pa, "frequency", &d.Frequency),
		kwValue(b, pa, "lacunarity", &d.Lacunarity),
		kwValue(b, pa, "persistence", &d.Persistence))
}

func constantBuiltin[T expr.Number](b *builder, kind graph.NodeKind) builtinFunc {
	return func(pa kwArgs) (zygo.Sexp, error) {
		if err := pa.require(2, fmt.Sprintf("(%s \"name\" value)", kind)); err != nil {
			return nil, err
		}
		name, err := toString(pa.arg(0))
		if err != nil {
			return nil, fmt.Errorf("name: %w", err)
		}
		v, err := literal[T](pa.arg(1))
		if err != nil {
			return nil, fmt.Errorf("value: %w", err)
		}
		return b.add(&graph.Node{Kind: kind, Data: &graph.ConstantData[T]{Name: name, Value: v}}), nil
	}
}

func typedOpBuiltin[T expr.Number](b *builder, ctor func(expr.OpType, graph.NodeValue[T], graph.NodeValue[T]) *graph.Node) builtinFunc {
	return func(pa kwArgs) (zygo.Sexp, error) {
		if err := pa.require(1, "(op-type :op lhs rhs)"); err != nil {
			return nil, err
		}
		op, err := toEnum(pa.arg(0), expr.OpTypes)
		if err != nil {
			return nil, err
		}
		operands := pa.rest(1)
		if len(operands) > 2 {
			return nil, fmt.Errorf("expected at most 2 operands, got %d", len(operands))
		}
		var in [2]graph.NodeValue[T]
		for i, s := range operands {
			if e := bindValue(b, &in[i], s); e != nil {
				err = multierr.Append(err, fmt.Errorf("operand %d: %w", i, e))
			}
		}
		if err != nil {
			return nil, err
		}
		return b.add(ctor(op, in[0], in[1])), nil
	}
}

// operand binds argument s into slot i of the operation id. While the
// operation is unresolved it only accepts other unresolved operations; a
// typed operand first promotes the operation's component to that type.
func (b *builder) operand(id graph.NodeID, i int, s zygo.Sexp) error {
	if isNull(s) {
		return nil
	}
	self := b.g.Node(id)
	if self.Kind == graph.NodeOperation {
		ref, ok := s.(*sexpNode)
		if !ok {
			return fmt.Errorf("a literal operand needs a typed operation, use f64-op or u32-op")
		}
		target := b.g.Node(ref.id)
		switch {
		case target.Kind == graph.NodeOperation:
			graph.MustPayload[*graph.OperationData[graph.Generic]](self).Inputs[i].Ref = graph.Connect(ref.id)
			return nil
		case propagate.F64.Slot().Accepts(target.Kind):
			b.p.Promote(id, propagate.F64)
		case propagate.U32.Slot().Accepts(target.Kind):
			b.p.Promote(id, propagate.U32)
		default:
			return fmt.Errorf("expected a value node, got %s node %d", target.Kind, ref.id)
		}
	}
	switch d := self.Data.(type) {
	case *graph.OperationData[float64]:
		return bindValue(b, &d.Inputs[i], s)
	case *graph.OperationData[uint32]:
		return bindValue(b, &d.Inputs[i], s)
	}
	return fmt.Errorf("node %d is %s, not an operation", id, self.Kind)
}
