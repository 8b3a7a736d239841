// Package export renders compiled noise expressions as script source. The
// output evaluates back, through the engine, to a graph that compiles to the
// same expression.
package export

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/samber/lo"

	"github.com/chazu/noisegraph/pkg/expr"
)

const indent = "  "

// reserved holds symbols a binding must not shadow: the graph builtins in
// the form the engine registers them, and the zygomys special forms.
var reserved = lo.Associate([]string{
	"generator", "fractal", "ridged_multi", "combine", "unary", "transform",
	"blend", "select", "clamp", "scale_bias", "exponent", "curve",
	"control_point", "terrace", "displace", "checkerboard", "cylinders",
	"worley", "turbulence", "f64", "u32", "op", "f64_op", "u32_op", "preview",
	"def", "defn", "fn", "let", "if", "cond", "for", "range", "set", "quote",
	"begin", "and", "or", "nil", "true", "false", "break", "continue", "return",
}, func(s string) (string, struct{}) { return s, struct{}{} })

// Script renders e as a script whose last form previews it. Named values
// become top-level bindings, each emitted once and referenced by identifier.
func Script(e expr.Expr) string {
	w := &writer{
		idents: make(map[binding]string),
		taken:  make(map[string]struct{}),
	}
	var body strings.Builder
	body.WriteString("(preview ")
	w.expr(&body, e, 0)
	body.WriteString(")\n")

	if w.defs.Len() == 0 {
		return body.String()
	}
	return w.defs.String() + "\n" + body.String()
}

// binding identifies one named value. Two constants that share a name but
// not a value get separate identifiers.
type binding struct {
	typ, name, value string
}

type writer struct {
	defs   strings.Builder
	idents map[binding]string
	taken  map[string]struct{}
}

func (w *writer) expr(b *strings.Builder, e expr.Expr, depth int) {
	switch e := e.(type) {
	case expr.Constant:
		b.WriteString(w.f64Node(e.Value))

	case expr.Generator:
		fmt.Fprintf(b, "(generator :%s :seed %s)", e.Basis, u32(w, e.Seed))

	case expr.Fractal:
		fmt.Fprintf(b, "(fractal :%s :basis :%s :seed %s :octaves %s :frequency %s :lacunarity %s :persistence %s)",
			e.Kind, e.Basis, u32(w, e.Seed), u32(w, e.Octaves),
			f64(w, e.Frequency), f64(w, e.Lacunarity), f64(w, e.Persistence))

	case expr.RidgedMulti:
		fmt.Fprintf(b, "(ridged-multi :basis :%s :seed %s :octaves %s :frequency %s :lacunarity %s :persistence %s :attenuation %s)",
			e.Basis, u32(w, e.Seed), u32(w, e.Octaves),
			f64(w, e.Frequency), f64(w, e.Lacunarity), f64(w, e.Persistence), f64(w, e.Attenuation))

	case expr.Combine:
		fmt.Fprintf(b, "(combine :%s", e.Op)
		w.children(b, depth, disconnected(e.Op), e.Sources[:]...)
		b.WriteString(")")

	case expr.Unary:
		fmt.Fprintf(b, "(unary :%s", e.Op)
		w.children(b, depth, 0, e.Source)
		b.WriteString(")")

	case expr.Transform:
		fmt.Fprintf(b, "(transform :%s", e.Op)
		w.children(b, depth, 0, e.Source)
		fmt.Fprintf(b, " :x %s :y %s :z %s :w %s)",
			f64(w, e.Axes[0]), f64(w, e.Axes[1]), f64(w, e.Axes[2]), f64(w, e.Axes[3]))

	case expr.Blend:
		b.WriteString("(blend")
		w.children(b, depth, 0, e.Sources[0], e.Sources[1], e.Control)
		b.WriteString(")")

	case expr.Select:
		b.WriteString("(select")
		w.children(b, depth, 0, e.Sources[0], e.Sources[1], e.Control)
		fmt.Fprintf(b, " :lower-bound %s :upper-bound %s :falloff %s)",
			f64(w, e.LowerBound), f64(w, e.UpperBound), f64(w, e.Falloff))

	case expr.Clamp:
		b.WriteString("(clamp")
		w.children(b, depth, 0, e.Source)
		fmt.Fprintf(b, " :lower-bound %s :upper-bound %s)", f64(w, e.LowerBound), f64(w, e.UpperBound))

	case expr.ScaleBias:
		b.WriteString("(scale-bias")
		w.children(b, depth, 0, e.Source)
		fmt.Fprintf(b, " :scale %s :bias %s)", f64(w, e.Scale), f64(w, e.Bias))

	case expr.Exponent:
		b.WriteString("(exponent")
		w.children(b, depth, 0, e.Source)
		fmt.Fprintf(b, " :exponent %s)", f64(w, e.Exponent))

	case expr.Curve:
		b.WriteString("(curve")
		w.children(b, depth, 0, e.Source)
		for _, cp := range e.ControlPoints {
			fmt.Fprintf(b, "\n%s(control-point %s %s)",
				strings.Repeat(indent, depth+1), f64(w, cp.Input), f64(w, cp.Output))
		}
		b.WriteString(")")

	case expr.Terrace:
		b.WriteString("(terrace")
		w.children(b, depth, 0, e.Source)
		for _, v := range e.ControlPoints {
			b.WriteString(" ")
			b.WriteString(w.f64Node(v))
		}
		if e.Inverted {
			b.WriteString(" :inverted true")
		}
		b.WriteString(")")

	case expr.Displace:
		b.WriteString("(displace")
		w.children(b, depth, 0, e.Source, e.Axes[0], e.Axes[1], e.Axes[2], e.Axes[3])
		b.WriteString(")")

	case expr.Checkerboard:
		fmt.Fprintf(b, "(checkerboard :size %s)", u32(w, e.Size))

	case expr.Cylinders:
		fmt.Fprintf(b, "(cylinders :frequency %s)", f64(w, e.Frequency))

	case expr.Worley:
		fmt.Fprintf(b, "(worley :seed %s :frequency %s :distance :%s :return :%s)",
			u32(w, e.Seed), f64(w, e.Frequency), e.Distance, e.Return)

	case expr.Turbulence:
		b.WriteString("(turbulence")
		w.children(b, depth, 0, e.Source)
		fmt.Fprintf(b, " :basis :%s :seed %s :frequency %s :power %s :roughness %s)",
			e.Basis, u32(w, e.Seed), f64(w, e.Frequency), f64(w, e.Power), u32(w, e.Roughness))

	default:
		panic(fmt.Sprintf("export: unknown expression %T", e))
	}
}

// children writes each sub-expression on its own line, one level deeper. An
// anonymous constant equal to fallback is what the compiler substitutes for
// a disconnected input, so it is written as nil.
func (w *writer) children(b *strings.Builder, depth int, fallback float64, es ...expr.Expr) {
	for _, e := range es {
		b.WriteString("\n")
		b.WriteString(strings.Repeat(indent, depth+1))
		if isFallback(e, fallback) {
			b.WriteString("nil")
			continue
		}
		w.expr(b, e, depth+1)
	}
}

func isFallback(e expr.Expr, fallback float64) bool {
	c, ok := e.(expr.Constant)
	if !ok {
		return false
	}
	a, ok := c.Value.(expr.Anonymous[float64])
	return ok && a.Value == fallback
}

// disconnected mirrors the compiler's constant for an unconnected combiner
// operand.
func disconnected(op expr.CombineOp) float64 {
	switch op {
	case expr.CombineMax, expr.CombineMultiply, expr.CombinePower:
		return 1
	case expr.CombineMin:
		return -1
	}
	return 0
}

// f64Node renders v where the engine expects a node rather than a number:
// a noise source or a terrace control point. Anything but a disconnected
// input gets an unnamed constant node.
func (w *writer) f64Node(v expr.Variable[float64]) string {
	if a, ok := v.(expr.Anonymous[float64]); ok {
		return fmt.Sprintf(`(f64 "" %s)`, FormatF64(a.Value))
	}
	return f64(w, v)
}

func f64(w *writer, v expr.Variable[float64]) string { return variable(w, "f64", v, FormatF64) }
func u32(w *writer, v expr.Variable[uint32]) string  { return variable(w, "u32", v, FormatU32) }

func variable[T expr.Number](w *writer, typ string, v expr.Variable[T], format func(T) string) string {
	switch v := v.(type) {
	case expr.Anonymous[T]:
		return format(v.Value)
	case expr.Named[T]:
		return w.bind(binding{typ: typ, name: v.Name, value: format(v.Value)})
	case expr.Operation[T]:
		return fmt.Sprintf("(%s-op :%s %s %s)", typ, v.Op,
			variable(w, typ, v.Operands[0], format),
			variable(w, typ, v.Operands[1], format))
	}
	panic(fmt.Sprintf("export: unknown variable %T", v))
}

// bind returns the identifier of k, emitting its definition the first time.
func (w *writer) bind(k binding) string {
	if id, ok := w.idents[k]; ok {
		return id
	}
	id := w.ident(k.name)
	w.idents[k] = id
	fmt.Fprintf(&w.defs, "(def %s (%s %s %s))\n", id, k.typ, strconv.Quote(k.name), k.value)
	return id
}

// ident derives an unused identifier from a constant name.
func (w *writer) ident(name string) string {
	base := strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return r
		}
		return '_'
	}, name)
	base = strings.Trim(base, "_")
	if base == "" || unicode.IsDigit(rune(base[0])) {
		base = "v_" + base
	}
	if _, ok := reserved[base]; ok {
		base += "_value"
	}
	id := base
	for i := 2; ; i++ {
		if _, ok := w.taken[id]; !ok {
			break
		}
		id = base + "_" + strconv.Itoa(i)
	}
	w.taken[id] = struct{}{}
	return id
}

// FormatF64 renders v as a float literal. Integral values keep a trailing
// ".0" so the reader does not take them for integers.
func FormatF64(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}

// FormatU32 renders v as an integer literal.
func FormatU32(v uint32) string {
	return strconv.FormatUint(uint64(v), 10)
}
