package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateEmptySource(t *testing.T) {
	for _, source := range []string{"", "   \n\t  \n  "} {
		g, evalErrs, err := NewEngine().Evaluate(source)
		require.NoError(t, err)
		assert.Empty(t, evalErrs)
		require.NotNil(t, g)
		assert.Equal(t, 0, g.NodeCount())
	}
}

func TestEvaluatePlainLisp(t *testing.T) {
	// Lisp that builds nothing yields an empty graph.
	g, evalErrs, err := NewEngine().Evaluate("(def x 3)\n(+ x 2)")
	require.NoError(t, err)
	assert.Empty(t, evalErrs)
	require.NotNil(t, g)
	assert.Equal(t, 0, g.NodeCount())
}

func TestEvaluateSyntaxError(t *testing.T) {
	g, evalErrs, err := NewEngine().Evaluate("(+ 1 2)\n(+ 3")
	require.NoError(t, err, "syntax errors are not fatal")
	assert.Nil(t, g)
	require.NotEmpty(t, evalErrs)
	assert.NotEmpty(t, evalErrs[0].Message)
	if evalErrs[0].Line > 0 {
		t.Logf("extracted line info: line=%d, message=%q", evalErrs[0].Line, evalErrs[0].Message)
	}
}

func TestEvaluateUndefinedSymbol(t *testing.T) {
	g, evalErrs, err := NewEngine().Evaluate("(+ 1 undefined-symbol)")
	require.NoError(t, err)
	assert.Nil(t, g)
	assert.NotEmpty(t, evalErrs)
}

func TestEvaluateIndependentRuns(t *testing.T) {
	eng := NewEngine()
	source := `(preview (fractal :fbm :seed (u32 "seed" 1)))`

	first, evalErrs, err := eng.Evaluate(source)
	require.NoError(t, err)
	require.Empty(t, evalErrs)

	for i := 0; i < 3; i++ {
		g, evalErrs, err := eng.Evaluate(source)
		require.NoError(t, err)
		require.Empty(t, evalErrs)
		assert.Equal(t, first, g, "iteration %d", i)
		assert.NotSame(t, first, g, "each evaluation builds a fresh graph")
	}
}

func TestEvalErrorString(t *testing.T) {
	assert.Equal(t, "line 5: something went wrong", EvalError{Line: 5, Message: "something went wrong"}.Error())
	assert.Equal(t, "no location", EvalError{Message: "no location"}.Error())
}

func TestAwaitTimesOut(t *testing.T) {
	eng := NewEngine(WithTimeout(20 * time.Millisecond))
	eng.generation = 1
	ch := make(chan evalResult) // never sends

	ctx, cancel := context.WithTimeout(context.Background(), eng.timeout)
	defer cancel()
	start := time.Now()
	_, err := eng.await(ctx, 1, ch)
	require.ErrorIs(t, err, ErrTimeout)
	assert.Contains(t, err.Error(), "after 20ms")
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestAwaitCanceled(t *testing.T) {
	eng := NewEngine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := eng.await(ctx, 0, make(chan evalResult))
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestAwaitDiscardsStale(t *testing.T) {
	eng := NewEngine()
	eng.generation = 2
	ch := make(chan evalResult, 1)
	ch <- evalResult{}

	_, err := eng.await(context.Background(), 1, ch)
	assert.ErrorIs(t, err, ErrSuperseded)
}

func TestAwaitPassesResult(t *testing.T) {
	eng := NewEngine()
	eng.generation = 3
	ch := make(chan evalResult, 1)
	want := EvalResult{Errors: []EvalError{{Message: "boom"}}}
	ch <- evalResult{EvalResult: want}

	got, err := eng.await(context.Background(), 3, ch)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestEvaluateContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewEngine().EvaluateContext(ctx, `(preview (generator :perlin))`)
	// A result that lands before the select still wins the race.
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestEngineOptions(t *testing.T) {
	eng := NewEngine(WithTimeout(time.Minute))
	assert.Equal(t, time.Minute, eng.timeout)
	assert.Equal(t, DefaultEvalTimeout, NewEngine().timeout)
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantLine int
		wantMsg  string
	}{
		{"error on line format", "Error on line 5: unexpected token\n", 5, "unexpected token"},
		{"no line info", "some generic error", 0, "some generic error"},
		{"line format lowercase", "error on line 12: missing paren", 12, "missing paren"},
		{"short line format", "line 3: bad form", 3, "bad form"},
		{"line in the middle", "runtime: error on line 7: bad arg", 7, "bad arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := parseZygomysError(errors.New(tt.msg), nil)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.wantLine, errs[0].Line)
			assert.Equal(t, tt.wantMsg, errs[0].Message)
		})
	}
}

func TestParseZygomysErrorSplitsBuiltinFailure(t *testing.T) {
	failure := &builtinFailure{
		name: "fractal",
		errs: []error{errors.New("octaves: bad"), errors.New("frequency: bad")},
	}
	errs := parseZygomysError(errors.New("Error on line 2: fractal: octaves: bad; frequency: bad"), failure)
	assert.Equal(t, []EvalError{
		{Line: 2, Message: "fractal: octaves: bad"},
		{Line: 2, Message: "fractal: frequency: bad"},
	}, errs)
}

func TestEvaluateReportsEveryBuiltinProblem(t *testing.T) {
	g, evalErrs, err := NewEngine().Evaluate(`(fractal :fbm :octaves "many" :frequency "high")`)
	require.NoError(t, err)
	assert.Nil(t, g)
	require.Len(t, evalErrs, 2)
	assert.True(t, strings.HasPrefix(evalErrs[0].Message, "fractal: octaves: "), evalErrs[0].Message)
	assert.True(t, strings.HasPrefix(evalErrs[1].Message, "fractal: frequency: "), evalErrs[1].Message)
}
