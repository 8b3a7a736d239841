package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/noisegraph/pkg/config"
)

const example = "../../examples/terrain.noise"

func newTestApp(t *testing.T) *App {
	t.Helper()
	return NewApp(config.Default(), testr.New(t))
}

// TestE2ETerrainExample exercises the full pipeline: script -> engine ->
// graph -> readouts, compiled previews and sample grids.
func TestE2ETerrainExample(t *testing.T) {
	source, err := os.ReadFile(example)
	require.NoError(t, err)

	report := newTestApp(t).Evaluate(string(source))
	require.Empty(t, report.Errors)
	assert.Empty(t, report.Warnings)
	assert.Equal(t, 13, report.graph.NodeCount())

	values := map[string]string{}
	for _, v := range report.Values {
		values[v.Kind+" "+v.Name] = v.Value
	}
	assert.Equal(t, map[string]string{
		"u32 seed":           "1337",
		"f64 base frequency": "1.5",
		"u32-operation ":     "1338",
		"f64-operation ":     "0.75",
		"f64 shore":          "-0.2",
		"f64 plain":          "0.1",
		"f64 ridge":          "0.6",
	}, values)

	require.Len(t, report.Previews, 1)
	p := report.Previews[0]
	assert.Equal(t, "terrace", p.Kind)
	assert.Equal(t, uint64(1), p.Version)
	assert.Equal(t, [2]float64{-4, -4}, p.Min)
	assert.Equal(t, [2]float64{4, 4}, p.Max)
	assert.Len(t, p.Points, config.DefaultResolution*config.DefaultResolution)
	assert.True(t, strings.HasPrefix(p.Script, `(def seed (u32 "seed" 1337))`), p.Script)
	assert.Contains(t, p.Script, `(def base_frequency (f64 "base frequency" 1.5))`)
	assert.Contains(t, p.Script, "(u32-op :add seed 1)")
}

func TestE2EEmptySource(t *testing.T) {
	report := newTestApp(t).Evaluate("")
	assert.Empty(t, report.Errors)
	assert.Empty(t, report.Values)
	assert.Empty(t, report.Previews)
}

func TestE2ESyntaxError(t *testing.T) {
	report := newTestApp(t).Evaluate("(preview (generator :perlin)")
	require.NotEmpty(t, report.Errors)
	assert.Empty(t, report.Previews)
	assert.Error(t, report.Err())
}

func TestE2EDefaultScaleFollowsConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Preview.Scale = 2
	cfg.Preview.Resolution = 2

	report := NewApp(cfg, testr.New(t)).Evaluate(`(preview (generator :perlin))`)
	require.Empty(t, report.Errors)
	require.Len(t, report.Previews, 1)
	p := report.Previews[0]
	assert.Equal(t, [2]float64{-1, -1}, p.Min)
	assert.Equal(t, [][2]float64{{-0.5, 0.5}, {0.5, 0.5}, {-0.5, -0.5}, {0.5, -0.5}}, p.Points)
}

func TestE2EWarningsReported(t *testing.T) {
	report := newTestApp(t).Evaluate(`(preview (blend (generator :perlin)))`)
	require.Empty(t, report.Errors)
	require.Len(t, report.Warnings, 2)
	for _, w := range report.Warnings {
		assert.Equal(t, 1, int(w.Node))
	}
}

// ---------------------------------------------------------------------------
// Commands
// ---------------------------------------------------------------------------

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func script(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.noise")
	require.NoError(t, os.WriteFile(path, []byte(source), 0o600))
	return path
}

func TestCheckCommand(t *testing.T) {
	out, err := run(t, "check", example)
	require.NoError(t, err)
	assert.Equal(t, "ok: 13 nodes, 1 preview(s)\n", out)

	out, err = run(t, "check", script(t, `(generator :plaid)`))
	assert.Error(t, err)
	assert.Contains(t, out, "error: ")
}

func TestCompileCommand(t *testing.T) {
	out, err := run(t, "compile", script(t, `(preview (generator :value :seed 9))`))
	require.NoError(t, err)
	assert.Equal(t, ";; node 0 (value)\n(preview (generator :value :seed 9))\n", out)

	_, err = run(t, "compile", script(t, `(generator :value)`))
	assert.ErrorIs(t, err, errNoPreview)
}

func TestEvalCommand(t *testing.T) {
	out, err := run(t, "eval", "--resolution", "1", script(t, `
(def n (f64 "level" 0.5))
(preview (scale-bias (generator :perlin) :bias n))
`))
	require.NoError(t, err)

	var report Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, []ValueData{{Node: 0, Kind: "f64", Name: "level", Type: "f64", Value: "0.5"}}, report.Values)
	require.Len(t, report.Previews, 1)
	assert.Equal(t, [][2]float64{{0, 0}}, report.Previews[0].Points)
}

func TestConfigFlagAndOverrides(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "noisegraph.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("preview:\n  resolution: 3\n"), 0o600))

	out, err := run(t, "eval", "-c", cfg, "-v", "2", script(t, `(preview (cylinders))`))
	require.NoError(t, err)
	var report Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Previews, 1)
	assert.Equal(t, 3, report.Previews[0].Resolution)

	_, err = run(t, "check", "--timeout", "-1s", example)
	assert.ErrorContains(t, err, "invalid config")
}

func TestMissingScript(t *testing.T) {
	_, err := run(t, "check", filepath.Join(t.TempDir(), "nope.noise"))
	assert.ErrorContains(t, err, "read script")
}
