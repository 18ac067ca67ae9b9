package pagerank

import "context"

// StepFunc performs a single superstep. It receives the zero-based index of
// the step being executed.
type StepFunc func(ctx context.Context, step int) error

// ExecutorCallbacks encapsulates a series of callbacks that are invoked by an
// Executor around each superstep. All callbacks are optional.
type ExecutorCallbacks struct {
	// PreStep, if defined, is invoked before running the next superstep.
	PreStep func(ctx context.Context, step int) error

	// PostStep, if defined, is invoked after running a superstep.
	PostStep func(ctx context.Context, step int) error
}

func patchEmptyCallbacks(cb *ExecutorCallbacks) {
	if cb.PreStep == nil {
		cb.PreStep = func(context.Context, int) error { return nil }
	}
	if cb.PostStep == nil {
		cb.PostStep = func(context.Context, int) error { return nil }
	}
}

// Executor provides an orchestration layer for executing a fixed number of
// supersteps until an error occurs or the context expires.
type Executor struct {
	step      StepFunc
	cb        ExecutorCallbacks
	superstep int
}

// NewExecutor returns an Executor that invokes step for each superstep and
// the provided callbacks around it.
func NewExecutor(step StepFunc, cb ExecutorCallbacks) *Executor {
	patchEmptyCallbacks(&cb)
	return &Executor{
		step: step,
		cb:   cb,
	}
}

// RunSteps executes exactly numSteps supersteps unless the context expires or
// an error occurs.
func (ex *Executor) RunSteps(ctx context.Context, numSteps int) error {
	var err error
	for ; numSteps > 0; ex.superstep, numSteps = ex.superstep+1, numSteps-1 {
		if err = ensureContextNotExpired(ctx); err != nil {
			break
		} else if err = ex.cb.PreStep(ctx, ex.superstep); err != nil {
			break
		} else if err = ex.step(ctx, ex.superstep); err != nil {
			break
		} else if err = ex.cb.PostStep(ctx, ex.superstep); err != nil {
			break
		}
	}
	return err
}

// Superstep returns the number of supersteps that have completed.
func (ex *Executor) Superstep() int {
	return ex.superstep
}

func ensureContextNotExpired(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
