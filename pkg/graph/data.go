package graph

import (
	"math"

	"github.com/chazu/noisegraph/pkg/expr"
)

// Parameter defaults for freshly created nodes.
const (
	DefaultOctaves            = 6
	DefaultFrequency          = 2.0
	DefaultLacunarity         = math.Pi * 2 / 3
	DefaultPersistence        = 0.5
	DefaultRidgedFrequency    = 1.0
	DefaultRidgedPersistence  = 1.0
	DefaultAttenuation        = 2.0
	DefaultCylindersFrequency = 1.0
	DefaultWorleyFrequency    = 1.0
	DefaultTurbulencePower    = 1.0
	DefaultTurbulenceFreq     = 1.0
	DefaultRoughness          = 3
	DefaultConstantName       = "name"
)

// ---------------------------------------------------------------------------
// Generators
// ---------------------------------------------------------------------------

// GeneratorData is a seeded basis noise. The basis is implied by the kind.
type GeneratorData struct {
	Image
	Seed NodeValue[uint32] `json:"seed"`
}

// FractalData holds the parameters shared by the multi-octave generators.
type FractalData struct {
	Image
	Basis       expr.SourceType    `json:"basis"`
	Seed        NodeValue[uint32]  `json:"seed"`
	Octaves     NodeValue[uint32]  `json:"octaves"`
	Frequency   NodeValue[float64] `json:"frequency"`
	Lacunarity  NodeValue[float64] `json:"lacunarity"`
	Persistence NodeValue[float64] `json:"persistence"`
}

// DefaultFractal returns fractal parameters with their initial values.
func DefaultFractal() *FractalData {
	return &FractalData{
		Image:       DefaultImage(),
		Basis:       expr.SourcePerlin,
		Octaves:     Literal[uint32](DefaultOctaves),
		Frequency:   Literal(DefaultFrequency),
		Lacunarity:  Literal(DefaultLacunarity),
		Persistence: Literal(DefaultPersistence),
	}
}

// RigidFractalData is FractalData plus the ridge attenuation.
type RigidFractalData struct {
	FractalData
	Attenuation NodeValue[float64] `json:"attenuation"`
}

// DefaultRigidFractal returns ridged multifractal parameters with their
// initial values.
func DefaultRigidFractal() *RigidFractalData {
	f := DefaultFractal()
	f.Frequency = Literal(DefaultRidgedFrequency)
	f.Persistence = Literal(DefaultRidgedPersistence)
	return &RigidFractalData{
		FractalData: *f,
		Attenuation: Literal(DefaultAttenuation),
	}
}

// CheckerboardData is a checkerboard of 2^Size unit cells.
type CheckerboardData struct {
	Image
	Size NodeValue[uint32] `json:"size"`
}

// CylindersData is a set of concentric cylinders.
type CylindersData struct {
	Image
	Frequency NodeValue[float64] `json:"frequency"`
}

// WorleyData is cellular noise.
type WorleyData struct {
	Image
	Seed      NodeValue[uint32]     `json:"seed"`
	Frequency NodeValue[float64]    `json:"frequency"`
	Distance  expr.DistanceFunction `json:"distance"`
	Return    expr.ReturnType       `json:"return"`
}

// DefaultWorley returns Worley parameters with their initial values.
func DefaultWorley() *WorleyData {
	return &WorleyData{
		Image:     DefaultImage(),
		Frequency: Literal(DefaultWorleyFrequency),
		Distance:  expr.DistanceEuclidean,
		Return:    expr.ReturnValue,
	}
}

// ---------------------------------------------------------------------------
// Combiners and modifiers
// ---------------------------------------------------------------------------

// CombinerData merges two noise inputs. The operator is implied by the kind.
type CombinerData struct {
	Image
	Inputs [2]Input `json:"inputs"`
}

// UnaryData modifies a single noise input.
type UnaryData struct {
	Image
	Input Input `json:"input"`
}

// TransformData moves the sample point before evaluating Input.
type TransformData struct {
	Image
	Input Input                 `json:"input"`
	Axes  [4]NodeValue[float64] `json:"axes"`
}

// NewTransform returns a transform with every axis set to v.
func NewTransform(v float64) *TransformData {
	t := &TransformData{Image: DefaultImage()}
	for i := range t.Axes {
		t.Axes[i] = Literal(v)
	}
	return t
}

// BlendData interpolates between two inputs weighted by Control.
type BlendData struct {
	Image
	Inputs  [2]Input `json:"inputs"`
	Control Input    `json:"control"`
}

// SelectData picks between two inputs depending on Control.
type SelectData struct {
	Image
	Inputs     [2]Input           `json:"inputs"`
	Control    Input              `json:"control"`
	LowerBound NodeValue[float64] `json:"lower_bound"`
	UpperBound NodeValue[float64] `json:"upper_bound"`
	Falloff    NodeValue[float64] `json:"falloff"`
}

// DefaultSelect returns select parameters with bounds 0..1 and no falloff.
func DefaultSelect() *SelectData {
	return &SelectData{
		Image:      DefaultImage(),
		UpperBound: Literal(1.0),
	}
}

// ClampData limits Input to the bounds.
type ClampData struct {
	Image
	Input      Input              `json:"input"`
	LowerBound NodeValue[float64] `json:"lower_bound"`
	UpperBound NodeValue[float64] `json:"upper_bound"`
}

// ScaleBiasData computes Input*Scale + Bias.
type ScaleBiasData struct {
	Image
	Input Input              `json:"input"`
	Scale NodeValue[float64] `json:"scale"`
	Bias  NodeValue[float64] `json:"bias"`
}

// ExponentData raises Input to Exponent.
type ExponentData struct {
	Image
	Input    Input              `json:"input"`
	Exponent NodeValue[float64] `json:"exponent"`
}

// CurveData remaps Input through the referenced ControlPoint nodes, in order.
type CurveData struct {
	Image
	Input         Input   `json:"input"`
	ControlPoints []Input `json:"control_points"`
}

// TerraceData remaps Input into terraces at the referenced f64 values.
type TerraceData struct {
	Image
	Input         Input   `json:"input"`
	Inverted      bool    `json:"inverted"`
	ControlPoints []Input `json:"control_points"`
}

// ControlPointData is one point of a Curve. It has no preview.
type ControlPointData struct {
	InputValue  NodeValue[float64] `json:"input_value"`
	OutputValue NodeValue[float64] `json:"output_value"`
}

// DisplaceData offsets the sample point of Input by four axis sources.
type DisplaceData struct {
	Image
	Input Input    `json:"input"`
	Axes  [4]Input `json:"axes"`
}

// TurbulenceData randomly displaces Input.
type TurbulenceData struct {
	Image
	Input     Input              `json:"input"`
	Basis     expr.SourceType    `json:"basis"`
	Seed      NodeValue[uint32]  `json:"seed"`
	Frequency NodeValue[float64] `json:"frequency"`
	Power     NodeValue[float64] `json:"power"`
	Roughness NodeValue[uint32]  `json:"roughness"`
}

// DefaultTurbulence returns turbulence parameters with their initial values.
func DefaultTurbulence() *TurbulenceData {
	return &TurbulenceData{
		Image:     DefaultImage(),
		Basis:     expr.SourcePerlin,
		Frequency: Literal(DefaultTurbulenceFreq),
		Power:     Literal(DefaultTurbulencePower),
		Roughness: Literal[uint32](DefaultRoughness),
	}
}

// ---------------------------------------------------------------------------
// Values
// ---------------------------------------------------------------------------

// ConstantData is a user-named literal.
type ConstantData[T expr.Number] struct {
	Name  string `json:"name"`
	Value T      `json:"value"`
}

// Generic is the operand type of an operation whose concrete type has not
// been fixed by the graph topology yet. It carries no value.
type Generic struct{}

// OperationData is binary arithmetic over two value slots. T is float64,
// uint32 or Generic.
type OperationData[T any] struct {
	Op     expr.OpType     `json:"op"`
	Inputs [2]NodeValue[T] `json:"inputs"`
}

func (*GeneratorData) nodeData()    {}
func (*FractalData) nodeData()      {}
func (*RigidFractalData) nodeData() {}
func (*CheckerboardData) nodeData() {}
func (*CylindersData) nodeData()    {}
func (*WorleyData) nodeData()       {}
func (*CombinerData) nodeData()     {}
func (*UnaryData) nodeData()        {}
func (*TransformData) nodeData()    {}
func (*BlendData) nodeData()        {}
func (*SelectData) nodeData()       {}
func (*ClampData) nodeData()        {}
func (*ScaleBiasData) nodeData()    {}
func (*ExponentData) nodeData()     {}
func (*CurveData) nodeData()        {}
func (*TerraceData) nodeData()      {}
func (*ControlPointData) nodeData() {}
func (*DisplaceData) nodeData()     {}
func (*TurbulenceData) nodeData()   {}
func (*ConstantData[T]) nodeData()  {}
func (*OperationData[T]) nodeData() {}
