package graph

import "fmt"

// SlotType is what a parameter slot accepts when it is connected.
type SlotType int

const (
	SlotNoise        SlotType = iota // any noise-producing node
	SlotF64                          // F64 constant or F64 operation
	SlotU32                          // U32 constant or U32 operation
	SlotGeneric                      // unresolved operation
	SlotControlPoint                 // ControlPoint node
)

func (t SlotType) String() string {
	switch t {
	case SlotNoise:
		return "noise"
	case SlotF64:
		return "f64"
	case SlotU32:
		return "u32"
	case SlotGeneric:
		return "generic"
	case SlotControlPoint:
		return "control-point"
	default:
		return fmt.Sprintf("SlotType(%d)", int(t))
	}
}

// Accepts reports whether a node of kind k may be connected to a slot of
// type t.
func (t SlotType) Accepts(k NodeKind) bool {
	switch t {
	case SlotNoise:
		return k.ProducesNoise()
	case SlotF64:
		return k == NodeF64 || k == NodeF64Operation
	case SlotU32:
		return k == NodeU32 || k == NodeU32Operation
	case SlotGeneric:
		return k == NodeOperation
	case SlotControlPoint:
		return k == NodeControlPoint
	}
	return false
}

// ProducesNoise reports whether k can be compiled as a noise source.
// F64 constants and F64 operations count: they compile to a constant field.
func (k NodeKind) ProducesNoise() bool {
	switch k {
	case NodeControlPoint, NodeU32, NodeU32Operation, NodeOperation:
		return false
	}
	return k >= 0 && k < nodeKindCount
}

// Slot is one parameter position of a node.
type Slot struct {
	Name  string
	Type  SlotType
	Input Input
}

// AppendSlots appends every parameter slot of n, connected or not, in field
// order.
func (n *Node) AppendSlots(dst []Slot) []Slot {
	switch d := n.Data.(type) {
	case *GeneratorData:
		dst = append(dst, u32Slot("seed", d.Seed))
	case *FractalData:
		dst = appendFractalSlots(dst, d)
	case *RigidFractalData:
		dst = appendFractalSlots(dst, &d.FractalData)
		dst = append(dst, f64Slot("attenuation", d.Attenuation))
	case *CheckerboardData:
		dst = append(dst, u32Slot("size", d.Size))
	case *CylindersData:
		dst = append(dst, f64Slot("frequency", d.Frequency))
	case *WorleyData:
		dst = append(dst, u32Slot("seed", d.Seed), f64Slot("frequency", d.Frequency))
	case *CombinerData:
		dst = append(dst, noiseSlot("source-a", d.Inputs[0]), noiseSlot("source-b", d.Inputs[1]))
	case *UnaryData:
		dst = append(dst, noiseSlot("source", d.Input))
	case *TransformData:
		dst = append(dst, noiseSlot("source", d.Input))
		for i, a := range d.Axes {
			dst = append(dst, f64Slot(axisNames[i], a))
		}
	case *BlendData:
		dst = append(dst,
			noiseSlot("source-a", d.Inputs[0]),
			noiseSlot("source-b", d.Inputs[1]),
			noiseSlot("control", d.Control))
	case *SelectData:
		dst = append(dst,
			noiseSlot("source-a", d.Inputs[0]),
			noiseSlot("source-b", d.Inputs[1]),
			noiseSlot("control", d.Control),
			f64Slot("lower-bound", d.LowerBound),
			f64Slot("upper-bound", d.UpperBound),
			f64Slot("falloff", d.Falloff))
	case *ClampData:
		dst = append(dst,
			noiseSlot("source", d.Input),
			f64Slot("lower-bound", d.LowerBound),
			f64Slot("upper-bound", d.UpperBound))
	case *ScaleBiasData:
		dst = append(dst, noiseSlot("source", d.Input), f64Slot("scale", d.Scale), f64Slot("bias", d.Bias))
	case *ExponentData:
		dst = append(dst, noiseSlot("source", d.Input), f64Slot("exponent", d.Exponent))
	case *CurveData:
		dst = append(dst, noiseSlot("source", d.Input))
		for _, cp := range d.ControlPoints {
			dst = append(dst, Slot{Name: "control-point", Type: SlotControlPoint, Input: cp})
		}
	case *TerraceData:
		dst = append(dst, noiseSlot("source", d.Input))
		for _, cp := range d.ControlPoints {
			dst = append(dst, Slot{Name: "control-point", Type: SlotF64, Input: cp})
		}
	case *ControlPointData:
		dst = append(dst, f64Slot("input", d.InputValue), f64Slot("output", d.OutputValue))
	case *DisplaceData:
		dst = append(dst, noiseSlot("source", d.Input))
		for i, a := range d.Axes {
			dst = append(dst, noiseSlot(axisNames[i], a))
		}
	case *TurbulenceData:
		dst = append(dst,
			noiseSlot("source", d.Input),
			u32Slot("seed", d.Seed),
			f64Slot("frequency", d.Frequency),
			f64Slot("power", d.Power),
			u32Slot("roughness", d.Roughness))
	case *ConstantData[float64], *ConstantData[uint32]:
	case *OperationData[Generic]:
		dst = append(dst,
			Slot{Name: "lhs", Type: SlotGeneric, Input: d.Inputs[0].Ref},
			Slot{Name: "rhs", Type: SlotGeneric, Input: d.Inputs[1].Ref})
	case *OperationData[float64]:
		dst = append(dst, f64Slot("lhs", d.Inputs[0]), f64Slot("rhs", d.Inputs[1]))
	case *OperationData[uint32]:
		dst = append(dst, u32Slot("lhs", d.Inputs[0]), u32Slot("rhs", d.Inputs[1]))
	default:
		panic(fmt.Sprintf("graph: unknown payload %T", n.Data))
	}
	return dst
}

var axisNames = [4]string{"x", "y", "z", "w"}

func appendFractalSlots(dst []Slot, d *FractalData) []Slot {
	return append(dst,
		u32Slot("seed", d.Seed),
		u32Slot("octaves", d.Octaves),
		f64Slot("frequency", d.Frequency),
		f64Slot("lacunarity", d.Lacunarity),
		f64Slot("persistence", d.Persistence))
}

func noiseSlot(name string, in Input) Slot {
	return Slot{Name: name, Type: SlotNoise, Input: in}
}

func f64Slot(name string, v NodeValue[float64]) Slot {
	return Slot{Name: name, Type: SlotF64, Input: v.Ref}
}

func u32Slot(name string, v NodeValue[uint32]) Slot {
	return Slot{Name: name, Type: SlotU32, Input: v.Ref}
}

// AppendReferences appends the id of every node n is connected to. A node
// referenced from several slots appears once per slot.
func (n *Node) AppendReferences(dst []NodeID) []NodeID {
	var buf [16]Slot
	for _, s := range n.AppendSlots(buf[:0]) {
		if id, ok := s.Input.Get(); ok {
			dst = append(dst, id)
		}
	}
	return dst
}

// References reports whether n is connected to target through any slot.
func (n *Node) References(target NodeID) bool {
	var buf [16]Slot
	for _, s := range n.AppendSlots(buf[:0]) {
		if id, ok := s.Input.Get(); ok && id == target {
			return true
		}
	}
	return false
}
