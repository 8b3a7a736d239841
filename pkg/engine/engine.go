// Package engine provides the Lisp front end for building noise graphs.
// It wraps zygomys in a sandboxed environment and produces a graph.Graph
// from user source code.
package engine

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"
	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/noisegraph/pkg/graph"
	"github.com/chazu/noisegraph/pkg/propagate"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error, a runtime error in user code or a structural
// problem in the resulting graph.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning represents a non-fatal warning about the resulting graph.
type EvalWarning struct {
	Message string
	NodeID  graph.NodeID
}

// EvalResult bundles the full output of an evaluation.
type EvalResult struct {
	Graph    *graph.Graph
	Errors   []EvalError
	Warnings []EvalWarning
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout bounds a single evaluation.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.timeout = d
	}
}

// WithLogger sets the logger used by the engine and the propagators it
// creates.
func WithLogger(log logr.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// Engine wraps the zygomys interpreter. It is safe for concurrent use; each
// call to Evaluate creates a fresh sandboxed environment and a fresh graph.
type Engine struct {
	mu         sync.Mutex
	generation uint64

	timeout time.Duration
	log     logr.Logger
}

// NewEngine creates a new Engine instance.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		timeout: DefaultEvalTimeout,
		log:     logr.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate takes Lisp source code and produces a new graph.
//
// Return semantics:
//   - On success: returns graph + nil errors + nil error
//   - On parse/eval/validation failure: returns nil graph + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*graph.Graph, []EvalError, error) {
	res, err := e.EvaluateResult(source)
	if err != nil {
		return nil, nil, err
	}
	return res.Graph, res.Errors, nil
}

// EvaluateResult is Evaluate with the validation warnings kept.
func (e *Engine) EvaluateResult(source string) (EvalResult, error) {
	return e.EvaluateContext(context.Background(), source)
}

// EvaluateContext is EvaluateResult bounded by ctx as well as the engine's
// timeout. Fatal errors wrap ErrTimeout, ErrSuperseded or ctx.Err().
func (e *Engine) EvaluateContext(ctx context.Context, source string) (EvalResult, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		ch <- evalResult{EvalResult: e.evaluate(source)}
	}()

	res, err := e.await(ctx, gen, ch)
	if err != nil {
		e.log.Error(err, "evaluation failed", "generation", gen)
		return EvalResult{}, err
	}
	e.log.V(1).Info("evaluated", "generation", gen, "errors", len(res.Errors), "warnings", len(res.Warnings))
	return res, nil
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) EvalResult {
	g := graph.NewGraph()

	// Empty source is a valid program that produces an empty graph.
	if strings.TrimSpace(source) == "" {
		return EvalResult{Graph: g}
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	b := &builder{
		g:   g,
		p:   propagate.New(g, propagate.WithLogger(e.log)),
		log: e.log,
	}
	registerBuiltins(env, b)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return EvalResult{Errors: parseZygomysError(err, nil)}
	}
	if _, err := env.Run(); err != nil {
		return EvalResult{Errors: parseZygomysError(err, b.failure)}
	}

	var res EvalResult
	for _, v := range graph.Validate(g) {
		switch v.Severity {
		case graph.SeverityError:
			res.Errors = append(res.Errors, EvalError{Message: v.Error()})
		default:
			res.Warnings = append(res.Warnings, EvalWarning{Message: v.Message, NodeID: v.Node})
		}
	}
	if len(res.Errors) == 0 {
		res.Graph = g
	}
	return res
}

// linePattern finds the location zygomys puts in front of its messages:
// "Error on line N: ..." for parse errors, "line N: ..." elsewhere.
var linePattern = regexp.MustCompile(`(?i)(?:^|\bon )line (\d+):\s*`)

// parseZygomysError converts a failed load or run into EvalErrors. When a
// graph builtin caused the failure, each of the problems it collected is
// reported on its own, prefixed with the builtin's name, instead of the
// single flattened message zygomys carries.
func parseZygomysError(err error, failure *builtinFailure) []EvalError {
	msg := strings.TrimSpace(err.Error())
	line := 0
	if m := linePattern.FindStringSubmatchIndex(msg); m != nil {
		line, _ = strconv.Atoi(msg[m[2]:m[3]])
		msg = strings.TrimSpace(msg[m[1]:])
	}
	if failure == nil {
		return []EvalError{{Line: line, Message: msg}}
	}
	errs := make([]EvalError, 0, len(failure.errs))
	for _, e := range failure.errs {
		errs = append(errs, EvalError{Line: line, Message: failure.name + ": " + e.Error()})
	}
	return errs
}
