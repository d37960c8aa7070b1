package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chazu/gemcut/pkg/gemcad"
)

// EvalTimeout is the hard limit for a single evaluation.
const EvalTimeout = 5 * time.Second

var (
	ErrTimeout    = errors.New("engine: evaluation timed out")
	ErrSuperseded = errors.New("engine: evaluation superseded by newer request")
)

type evalResult struct {
	cut    *gemcad.Cut
	errors []EvalError
	err    error
}

// waitWithTimeout waits for a result from ch for at most EvalTimeout. A
// result whose generation is no longer current is discarded.
//
// On timeout the evaluating goroutine may still be running; the generation
// check drops its result when it finishes.
func waitWithTimeout(
	ch <-chan evalResult,
	gen uint64,
	mu *sync.Mutex,
	currentGen *uint64,
) (*gemcad.Cut, []EvalError, error) {
	timer := time.NewTimer(EvalTimeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		mu.Lock()
		current := *currentGen
		mu.Unlock()

		if gen != current {
			return nil, nil, ErrSuperseded
		}
		return res.cut, res.errors, res.err

	case <-timer.C:
		return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, EvalTimeout)
	}
}
