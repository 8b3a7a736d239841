package main

import (
	"github.com/go-logr/logr"

	"github.com/chazu/noisegraph/pkg/compile"
	"github.com/chazu/noisegraph/pkg/config"
	"github.com/chazu/noisegraph/pkg/engine"
	"github.com/chazu/noisegraph/pkg/export"
	"github.com/chazu/noisegraph/pkg/graph"
	"github.com/chazu/noisegraph/pkg/scalar"
)

// App runs scripts through the engine and turns the resulting graph into a
// report: value readouts for every resolved value node and a sampling plan
// for every previewed root.
type App struct {
	engine *engine.Engine
	cfg    config.Config
	log    logr.Logger
}

// ValueData is the readout of one constant or operation node.
type ValueData struct {
	Node  graph.NodeID `json:"node"`
	Kind  string       `json:"kind"`
	Name  string       `json:"name,omitempty"`
	Type  string       `json:"type"`
	Value string       `json:"value"`
}

// PreviewData describes how to render one root: the canonical script of its
// compiled expression and the points a noise evaluator should sample.
type PreviewData struct {
	Node       graph.NodeID `json:"node"`
	Kind       string       `json:"kind"`
	Version    uint64       `json:"version"`
	Script     string       `json:"script"`
	Min        [2]float64   `json:"min"`
	Max        [2]float64   `json:"max"`
	Resolution int          `json:"resolution"`
	Points     [][2]float64 `json:"points"`
}

// EvalErrorData is a JSON-serializable eval error.
type EvalErrorData struct {
	Line    int    `json:"line,omitempty"`
	Col     int    `json:"col,omitempty"`
	Message string `json:"message"`
}

// WarningData is a validation warning about one node.
type WarningData struct {
	Node    graph.NodeID `json:"node"`
	Message string       `json:"message"`
}

// Report is the full result of evaluating one script.
type Report struct {
	Values   []ValueData     `json:"values"`
	Previews []PreviewData   `json:"previews"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []WarningData   `json:"warnings"`

	graph *graph.Graph
}

// NewApp creates an App whose engine follows cfg.
func NewApp(cfg config.Config, log logr.Logger) *App {
	return &App{
		engine: engine.NewEngine(
			engine.WithTimeout(cfg.EvalTimeout),
			engine.WithLogger(log.WithName("engine")),
		),
		cfg: cfg,
		log: log,
	}
}

// Evaluate takes script source and returns the report. Fatal and script
// errors are reported in Errors; the other sections are then empty.
func (a *App) Evaluate(source string) Report {
	report := Report{
		Values:   []ValueData{},
		Previews: []PreviewData{},
		Errors:   []EvalErrorData{},
		Warnings: []WarningData{},
	}

	// Step 1: Evaluate the script into a noise graph.
	res, err := a.engine.EvaluateResult(source)
	if err != nil {
		a.log.Error(err, "evaluation failed")
		report.Errors = append(report.Errors, EvalErrorData{Message: err.Error()})
		return report
	}
	for _, w := range res.Warnings {
		report.Warnings = append(report.Warnings, WarningData{Node: w.NodeID, Message: w.Message})
	}
	if len(res.Errors) > 0 {
		for _, e := range res.Errors {
			report.Errors = append(report.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return report
	}
	g := res.Graph
	report.graph = g

	// Step 2: Read out every value node whose type is resolved.
	for _, id := range g.IDs() {
		readout, ok := scalar.Evaluate(g, id)
		if !ok {
			continue
		}
		n := g.Node(id)
		v := ValueData{Node: id, Kind: n.Kind.String(), Type: readout.Type.String(), Value: readout.String()}
		if d, ok := n.AsF64(); ok {
			v.Name = d.Name
		} else if d, ok := n.AsU32(); ok {
			v.Name = d.Name
		}
		report.Values = append(report.Values, v)
	}

	// Step 3: Compile every root and lay out its sample grid.
	for _, id := range g.Roots {
		report.Previews = append(report.Previews, a.preview(g, id))
	}
	a.log.V(1).Info("report ready", "values", len(report.Values), "previews", len(report.Previews))
	return report
}

func (a *App) preview(g *graph.Graph, id graph.NodeID) PreviewData {
	n := g.Node(id)
	view := graph.DefaultImage()
	if im, ok := n.Image(); ok {
		view = *im
	}
	if view.Scale == graph.DefaultImageScale {
		view.Scale = a.cfg.Preview.Scale
	}
	b := view.Bounds()
	res := a.cfg.Preview.Resolution

	p := PreviewData{
		Node:       id,
		Kind:       n.Kind.String(),
		Version:    view.Version,
		Script:     export.Script(compile.Compile(g, id)),
		Min:        [2]float64{b.Min.X, b.Min.Y},
		Max:        [2]float64{b.Max.X, b.Max.Y},
		Resolution: res,
	}
	for _, pt := range view.SamplePoints(res) {
		p.Points = append(p.Points, [2]float64{pt.X, pt.Y})
	}
	return p
}
