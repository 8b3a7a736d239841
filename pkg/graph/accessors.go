package graph

import "fmt"

// Payload narrows n.Data to P. ok is false when the node holds a different
// payload; that is a normal answer, not an error.
func Payload[P NodeData](n *Node) (P, bool) {
	p, ok := n.Data.(P)
	return p, ok
}

// MustPayload is Payload for callers that have already checked the kind.
func MustPayload[P NodeData](n *Node) P {
	p, ok := Payload[P](n)
	if !ok {
		var want P
		panic(fmt.Sprintf("graph: %s node has %T payload, want %T", n.Kind, n.Data, want))
	}
	return p
}

func (n *Node) AsGenerator() (*GeneratorData, bool)       { return Payload[*GeneratorData](n) }
func (n *Node) AsFractal() (*FractalData, bool)           { return Payload[*FractalData](n) }
func (n *Node) AsRigidFractal() (*RigidFractalData, bool) { return Payload[*RigidFractalData](n) }
func (n *Node) AsCheckerboard() (*CheckerboardData, bool) { return Payload[*CheckerboardData](n) }
func (n *Node) AsCylinders() (*CylindersData, bool)       { return Payload[*CylindersData](n) }
func (n *Node) AsWorley() (*WorleyData, bool)             { return Payload[*WorleyData](n) }
func (n *Node) AsCombiner() (*CombinerData, bool)         { return Payload[*CombinerData](n) }
func (n *Node) AsUnary() (*UnaryData, bool)               { return Payload[*UnaryData](n) }
func (n *Node) AsTransform() (*TransformData, bool)       { return Payload[*TransformData](n) }
func (n *Node) AsBlend() (*BlendData, bool)               { return Payload[*BlendData](n) }
func (n *Node) AsSelect() (*SelectData, bool)             { return Payload[*SelectData](n) }
func (n *Node) AsClamp() (*ClampData, bool)               { return Payload[*ClampData](n) }
func (n *Node) AsScaleBias() (*ScaleBiasData, bool)       { return Payload[*ScaleBiasData](n) }
func (n *Node) AsExponent() (*ExponentData, bool)         { return Payload[*ExponentData](n) }
func (n *Node) AsCurve() (*CurveData, bool)               { return Payload[*CurveData](n) }
func (n *Node) AsTerrace() (*TerraceData, bool)           { return Payload[*TerraceData](n) }
func (n *Node) AsControlPoint() (*ControlPointData, bool) { return Payload[*ControlPointData](n) }
func (n *Node) AsDisplace() (*DisplaceData, bool)         { return Payload[*DisplaceData](n) }
func (n *Node) AsTurbulence() (*TurbulenceData, bool)     { return Payload[*TurbulenceData](n) }

func (n *Node) AsF64() (*ConstantData[float64], bool) { return Payload[*ConstantData[float64]](n) }
func (n *Node) AsU32() (*ConstantData[uint32], bool)  { return Payload[*ConstantData[uint32]](n) }

// AsOperation narrows to an operation whose type is not resolved yet.
func (n *Node) AsOperation() (*OperationData[Generic], bool) {
	return Payload[*OperationData[Generic]](n)
}

func (n *Node) AsF64Operation() (*OperationData[float64], bool) {
	return Payload[*OperationData[float64]](n)
}

func (n *Node) AsU32Operation() (*OperationData[uint32], bool) {
	return Payload[*OperationData[uint32]](n)
}
