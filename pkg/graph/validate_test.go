package graph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/chazu/noisegraph/pkg/expr"
)

// hasFinding reports whether errs contains a finding of the given severity
// whose message contains substr.
func hasFinding(errs []ValidationError, sev ValidationSeverity, substr string) bool {
	for _, e := range errs {
		if e.Severity == sev && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func errorsOnly(errs []ValidationError) []ValidationError {
	var out []ValidationError
	for _, e := range errs {
		if e.Severity == SeverityError {
			out = append(out, e)
		}
	}
	return out
}

func TestValidateCleanGraph(t *testing.T) {
	g := buildTerrain(t)
	assert.Empty(t, errorsOnly(Validate(g)))
	assert.NoError(t, Check(g))
}

func TestValidateDanglingReference(t *testing.T) {
	g := buildTerrain(t)
	g.Remove(1)
	errs := Validate(g)
	assert.True(t, hasFinding(errs, SeverityError, "references missing node 1"))
	assert.Error(t, Check(g))
}

func TestValidateTypeMismatch(t *testing.T) {
	tests := []struct {
		name  string
		build func(g *Graph)
		want  string
	}{
		{
			name: "u32 constant in f64 slot",
			build: func(g *Graph) {
				u := g.Add(NewU32("seed", 3))
				MustPayload[*FractalData](g.Node(0)).Frequency = Reference[float64](u)
			},
			want: `slot "frequency" expects f64`,
		},
		{
			name: "control point as noise source",
			build: func(g *Graph) {
				cp := g.Add(New(NodeControlPoint))
				MustPayload[*ScaleBiasData](g.Node(3)).Input = Connect(cp)
			},
			want: `slot "source" expects noise`,
		},
		{
			name: "generic operation in typed slot",
			build: func(g *Graph) {
				op := g.Add(New(NodeOperation))
				MustPayload[*ScaleBiasData](g.Node(3)).Scale = Reference[float64](op)
			},
			want: "node 4 is operation",
		},
		{
			name: "mixed component",
			build: func(g *Graph) {
				g.Add(NewOperation(expr.OpAdd, Connect(2), Input{}))
			},
			want: `slot "lhs" expects generic, node 2 is f64-operation`,
		},
		{
			name: "f64 value in curve point list",
			build: func(g *Graph) {
				c := New(NodeCurve)
				MustPayload[*CurveData](c).ControlPoints = []Input{Connect(1)}
				g.Add(c)
			},
			want: `expects control-point`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := buildTerrain(t)
			tt.build(g)
			errs := Validate(g)
			assert.True(t, hasFinding(errs, SeverityError, tt.want), "findings: %v", errs)
		})
	}
}

func TestValidatePayloadKindMismatch(t *testing.T) {
	g := NewGraph()
	g.Add(&Node{Kind: NodePerlin, Data: &CombinerData{}})
	assert.True(t, hasFinding(Validate(g), SeverityError, "perlin node has *graph.CombinerData payload"))
}

func TestValidateRoots(t *testing.T) {
	g := NewGraph()
	g.AddRoot(g.Add(NewU32("n", 1)))
	g.AddRoot(9)
	errs := Validate(g)
	assert.True(t, hasFinding(errs, SeverityError, "does not produce noise"))
	assert.True(t, hasFinding(errs, SeverityError, "root node does not exist"))
}

func TestValidateWarnings(t *testing.T) {
	g := NewGraph()
	g.Add(New(NodeBlend))
	g.Add(New(NodeCurve))
	g.Add(New(NodeTerrace))
	errs := Validate(g)
	assert.Empty(t, errorsOnly(errs))
	assert.True(t, hasFinding(errs, SeverityWarning, `blend input "control" is disconnected`))
	assert.True(t, hasFinding(errs, SeverityWarning, "curve has 0 control points"))
	assert.True(t, hasFinding(errs, SeverityWarning, "terrace has 0 control points"))
	assert.NoError(t, Check(g), "warnings do not fail Check")
}

func TestCheckAggregates(t *testing.T) {
	g := NewGraph()
	sb := New(NodeScaleBias)
	d := MustPayload[*ScaleBiasData](sb)
	d.Input = Connect(5)
	d.Bias = Reference[float64](6)
	g.Add(sb)

	err := Check(g)
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
}
