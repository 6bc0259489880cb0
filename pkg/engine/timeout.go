package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/chazu/primmesh/pkg/scene"
)

// EvalTimeout is the default limit for a single evaluation.
const EvalTimeout = 5 * time.Second

// evalResult carries one evaluation's output back to the caller.
type evalResult struct {
	scene    *scene.Scene
	errors   []EvalError
	warnings []EvalWarning
	err      error
}

// waitWithTimeout waits up to timeout for a result on ch. A result whose
// generation is no longer current is discarded.
//
// On timeout the evaluating goroutine keeps running; its result lands in
// the buffered channel and is dropped.
func waitWithTimeout(
	ch <-chan evalResult,
	gen uint64,
	timeout time.Duration,
	mu *sync.Mutex,
	currentGen *uint64,
) (evalResult, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		mu.Lock()
		current := *currentGen
		mu.Unlock()

		if gen != current {
			return evalResult{}, fmt.Errorf("engine: evaluation superseded by newer request")
		}
		if res.err != nil {
			return evalResult{}, res.err
		}
		return res, nil

	case <-timer.C:
		return evalResult{}, fmt.Errorf("engine: evaluation timed out after %s", timeout)
	}
}
