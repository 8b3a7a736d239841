package engine

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultEvalTimeout is the limit for a single evaluation unless
// WithTimeout says otherwise.
const DefaultEvalTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when a script runs past the engine's timeout.
	ErrTimeout = errors.New("evaluation timed out")
	// ErrSuperseded is returned to a caller whose evaluation finished after
	// a newer one had started on the same engine.
	ErrSuperseded = errors.New("evaluation superseded by newer request")
)

// evalResult passes an evaluation outcome through the result channel.
type evalResult struct {
	EvalResult
	err error
}

// await blocks until the evaluation numbered gen reports on ch or ctx ends.
// The goroutine behind ch may outlive a timeout; its result is then dropped
// because the channel is buffered and nobody reads it.
func (e *Engine) await(ctx context.Context, gen uint64, ch <-chan evalResult) (EvalResult, error) {
	select {
	case res := <-ch:
		if gen != e.currentGeneration() {
			return EvalResult{}, ErrSuperseded
		}
		return res.EvalResult, res.err

	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return EvalResult{}, fmt.Errorf("%w after %s", ErrTimeout, e.timeout)
		}
		return EvalResult{}, ctx.Err()
	}
}

func (e *Engine) currentGeneration() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation
}
