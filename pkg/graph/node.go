package graph

import (
	"fmt"

	"github.com/chazu/noisegraph/pkg/expr"
)

// NodeKind enumerates the kinds of nodes in the noise graph.
type NodeKind int

const (
	NodeAbs NodeKind = iota
	NodeAdd
	NodeBasicMulti
	NodeBillow
	NodeBlend
	NodeCheckerboard
	NodeClamp
	NodeControlPoint
	NodeCurve
	NodeCylinders
	NodeDisplace
	NodeExponent
	NodeF64
	NodeF64Operation
	NodeFbm
	NodeHybridMulti
	NodeMax
	NodeMin
	NodeMultiply
	NodeNegate
	NodeOpenSimplex
	NodeOperation // arithmetic whose operand type is not yet resolved
	NodePerlin
	NodePerlinSurflet
	NodePower
	NodeRidgedMulti
	NodeRotatePoint
	NodeScaleBias
	NodeScalePoint
	NodeSelect
	NodeSimplex
	NodeSuperSimplex
	NodeTerrace
	NodeTranslatePoint
	NodeTurbulence
	NodeU32
	NodeU32Operation
	NodeValueNoise
	NodeWorley

	nodeKindCount
)

var nodeKindNames = [nodeKindCount]string{
	NodeAbs:            "abs",
	NodeAdd:            "add",
	NodeBasicMulti:     "basic-multi",
	NodeBillow:         "billow",
	NodeBlend:          "blend",
	NodeCheckerboard:   "checkerboard",
	NodeClamp:          "clamp",
	NodeControlPoint:   "control-point",
	NodeCurve:          "curve",
	NodeCylinders:      "cylinders",
	NodeDisplace:       "displace",
	NodeExponent:       "exponent",
	NodeF64:            "f64",
	NodeF64Operation:   "f64-operation",
	NodeFbm:            "fbm",
	NodeHybridMulti:    "hybrid-multi",
	NodeMax:            "max",
	NodeMin:            "min",
	NodeMultiply:       "multiply",
	NodeNegate:         "negate",
	NodeOpenSimplex:    "open-simplex",
	NodeOperation:      "operation",
	NodePerlin:         "perlin",
	NodePerlinSurflet:  "perlin-surflet",
	NodePower:          "power",
	NodeRidgedMulti:    "ridged-multi",
	NodeRotatePoint:    "rotate-point",
	NodeScaleBias:      "scale-bias",
	NodeScalePoint:     "scale-point",
	NodeSelect:         "select",
	NodeSimplex:        "simplex",
	NodeSuperSimplex:   "super-simplex",
	NodeTerrace:        "terrace",
	NodeTranslatePoint: "translate-point",
	NodeTurbulence:     "turbulence",
	NodeU32:            "u32",
	NodeU32Operation:   "u32-operation",
	NodeValueNoise:     "value",
	NodeWorley:         "worley",
}

func (k NodeKind) String() string {
	if k >= 0 && k < nodeKindCount {
		return nodeKindNames[k]
	}
	return fmt.Sprintf("NodeKind(%d)", int(k))
}

// NodeKinds lists every node kind in declaration order.
var NodeKinds = func() []NodeKind {
	kinds := make([]NodeKind, nodeKindCount)
	for i := range kinds {
		kinds[i] = NodeKind(i)
	}
	return kinds
}()

// Category tables. The script front end and the compiler translate between
// node kinds and expression tags through these.
var (
	generatorBasis = map[NodeKind]expr.SourceType{
		NodeOpenSimplex:   expr.SourceOpenSimplex,
		NodePerlin:        expr.SourcePerlin,
		NodePerlinSurflet: expr.SourcePerlinSurflet,
		NodeSimplex:       expr.SourceSimplex,
		NodeSuperSimplex:  expr.SourceSuperSimplex,
		NodeValueNoise:    expr.SourceValue,
	}
	fractalKinds = map[NodeKind]expr.FractalKind{
		NodeBasicMulti:  expr.FractalBasicMulti,
		NodeBillow:      expr.FractalBillow,
		NodeFbm:         expr.FractalFbm,
		NodeHybridMulti: expr.FractalHybridMulti,
	}
	combineOps = map[NodeKind]expr.CombineOp{
		NodeAdd:      expr.CombineAdd,
		NodeMax:      expr.CombineMax,
		NodeMin:      expr.CombineMin,
		NodeMultiply: expr.CombineMultiply,
		NodePower:    expr.CombinePower,
	}
	unaryOps = map[NodeKind]expr.UnaryOp{
		NodeAbs:    expr.UnaryAbs,
		NodeNegate: expr.UnaryNegate,
	}
	transformOps = map[NodeKind]expr.TransformOp{
		NodeRotatePoint:    expr.TransformRotate,
		NodeScalePoint:     expr.TransformScale,
		NodeTranslatePoint: expr.TransformTranslate,
	}
)

// Basis returns the source type of a generator kind.
func (k NodeKind) Basis() (expr.SourceType, bool) {
	s, ok := generatorBasis[k]
	return s, ok
}

// FractalKind returns the fractal tag of a fractal kind.
func (k NodeKind) FractalKind() (expr.FractalKind, bool) {
	f, ok := fractalKinds[k]
	return f, ok
}

// CombineOp returns the combiner tag of a combiner kind.
func (k NodeKind) CombineOp() (expr.CombineOp, bool) {
	op, ok := combineOps[k]
	return op, ok
}

// UnaryOp returns the modifier tag of a unary kind.
func (k NodeKind) UnaryOp() (expr.UnaryOp, bool) {
	op, ok := unaryOps[k]
	return op, ok
}

// TransformOp returns the transform tag of a transform kind.
func (k NodeKind) TransformOp() (expr.TransformOp, bool) {
	op, ok := transformOps[k]
	return op, ok
}

// GeneratorKind is the inverse of NodeKind.Basis.
func GeneratorKind(s expr.SourceType) NodeKind { return kindOf(generatorBasis, s) }

// FractalNodeKind is the inverse of NodeKind.FractalKind.
func FractalNodeKind(f expr.FractalKind) NodeKind { return kindOf(fractalKinds, f) }

// CombinerKind is the inverse of NodeKind.CombineOp.
func CombinerKind(op expr.CombineOp) NodeKind { return kindOf(combineOps, op) }

// UnaryKind is the inverse of NodeKind.UnaryOp.
func UnaryKind(op expr.UnaryOp) NodeKind { return kindOf(unaryOps, op) }

// TransformKind is the inverse of NodeKind.TransformOp.
func TransformKind(op expr.TransformOp) NodeKind { return kindOf(transformOps, op) }

func kindOf[E comparable](table map[NodeKind]E, tag E) NodeKind {
	for k, v := range table {
		if v == tag {
			return k
		}
	}
	panic(fmt.Sprintf("graph: no node kind for %v", tag))
}

// Node is the fundamental element of the noise graph.
type Node struct {
	Kind NodeKind `json:"kind"`
	Data NodeData `json:"data"`
}

// NodeData is the interface for kind-specific node payloads.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}

// Image returns the preview viewport of a noise-producing node.
func (n *Node) Image() (*Image, bool) {
	if im, ok := n.Data.(interface{ image() *Image }); ok {
		return im.image(), true
	}
	return nil, false
}

// HasImage reports whether the node renders a preview.
func (n *Node) HasImage() bool {
	_, ok := n.Image()
	return ok
}

// New returns a node of the given kind with default parameters and all
// inputs disconnected.
func New(kind NodeKind) *Node {
	var data NodeData
	switch kind {
	case NodeOpenSimplex, NodePerlin, NodePerlinSurflet, NodeSimplex, NodeSuperSimplex, NodeValueNoise:
		data = &GeneratorData{Image: DefaultImage()}
	case NodeBasicMulti, NodeBillow, NodeFbm, NodeHybridMulti:
		data = DefaultFractal()
	case NodeRidgedMulti:
		data = DefaultRigidFractal()
	case NodeAdd, NodeMax, NodeMin, NodeMultiply, NodePower:
		data = &CombinerData{Image: DefaultImage()}
	case NodeAbs, NodeNegate:
		data = &UnaryData{Image: DefaultImage()}
	case NodeRotatePoint, NodeTranslatePoint:
		data = NewTransform(0)
	case NodeScalePoint:
		data = NewTransform(1)
	case NodeBlend:
		data = &BlendData{Image: DefaultImage()}
	case NodeSelect:
		data = DefaultSelect()
	case NodeClamp:
		data = &ClampData{Image: DefaultImage()}
	case NodeScaleBias:
		data = &ScaleBiasData{Image: DefaultImage()}
	case NodeExponent:
		data = &ExponentData{Image: DefaultImage(), Exponent: Literal(1.0)}
	case NodeCurve:
		data = &CurveData{Image: DefaultImage()}
	case NodeTerrace:
		data = &TerraceData{Image: DefaultImage()}
	case NodeControlPoint:
		data = &ControlPointData{}
	case NodeDisplace:
		data = &DisplaceData{Image: DefaultImage()}
	case NodeCheckerboard:
		data = &CheckerboardData{Image: DefaultImage()}
	case NodeCylinders:
		data = &CylindersData{Image: DefaultImage(), Frequency: Literal(DefaultCylindersFrequency)}
	case NodeWorley:
		data = DefaultWorley()
	case NodeTurbulence:
		data = DefaultTurbulence()
	case NodeF64:
		data = &ConstantData[float64]{Name: DefaultConstantName}
	case NodeU32:
		data = &ConstantData[uint32]{Name: DefaultConstantName}
	case NodeOperation:
		data = &OperationData[Generic]{}
	case NodeF64Operation:
		data = &OperationData[float64]{}
	case NodeU32Operation:
		data = &OperationData[uint32]{}
	default:
		panic(fmt.Sprintf("graph: unknown node kind %d", int(kind)))
	}
	return &Node{Kind: kind, Data: data}
}

// NewF64 returns a named f64 constant.
func NewF64(name string, value float64) *Node {
	return &Node{Kind: NodeF64, Data: &ConstantData[float64]{Name: name, Value: value}}
}

// NewU32 returns a named u32 constant.
func NewU32(name string, value uint32) *Node {
	return &Node{Kind: NodeU32, Data: &ConstantData[uint32]{Name: name, Value: value}}
}

// NewOperation returns an unresolved operation. Its inputs may only
// reference other unresolved operations.
func NewOperation(op expr.OpType, lhs, rhs Input) *Node {
	return &Node{Kind: NodeOperation, Data: &OperationData[Generic]{
		Op:     op,
		Inputs: [2]NodeValue[Generic]{{Ref: lhs}, {Ref: rhs}},
	}}
}

// NewF64Operation returns an operation committed to f64.
func NewF64Operation(op expr.OpType, lhs, rhs NodeValue[float64]) *Node {
	return &Node{Kind: NodeF64Operation, Data: &OperationData[float64]{
		Op:     op,
		Inputs: [2]NodeValue[float64]{lhs, rhs},
	}}
}

// NewU32Operation returns an operation committed to u32.
func NewU32Operation(op expr.OpType, lhs, rhs NodeValue[uint32]) *Node {
	return &Node{Kind: NodeU32Operation, Data: &OperationData[uint32]{
		Op:     op,
		Inputs: [2]NodeValue[uint32]{lhs, rhs},
	}}
}
