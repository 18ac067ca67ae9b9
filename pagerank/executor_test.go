package pagerank

import (
	"context"

	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(ExecutorTestSuite))

type ExecutorTestSuite struct{}

func (s *ExecutorTestSuite) TestRunSteps(c *gc.C) {
	var calls []string
	record := func(prefix string) func(context.Context, int) error {
		return func(_ context.Context, step int) error {
			calls = append(calls, prefix+string(rune('0'+step)))
			return nil
		}
	}

	exec := NewExecutor(record("step"), ExecutorCallbacks{
		PreStep:  record("pre"),
		PostStep: record("post"),
	})
	err := exec.RunSteps(context.TODO(), 2)
	c.Assert(err, gc.IsNil)
	c.Assert(exec.Superstep(), gc.Equals, 2)
	c.Assert(calls, gc.DeepEquals, []string{"pre0", "step0", "post0", "pre1", "step1", "post1"})
}

func (s *ExecutorTestSuite) TestOptionalCallbacks(c *gc.C) {
	var steps int
	exec := NewExecutor(func(context.Context, int) error { steps++; return nil }, ExecutorCallbacks{})

	c.Assert(exec.RunSteps(context.TODO(), 0), gc.IsNil)
	c.Assert(steps, gc.Equals, 0)

	c.Assert(exec.RunSteps(context.TODO(), 3), gc.IsNil)
	c.Assert(steps, gc.Equals, 3)
	c.Assert(exec.Superstep(), gc.Equals, 3)
}

func (s *ExecutorTestSuite) TestErrorStopsExecution(c *gc.C) {
	var steps int
	errBoom := xerrors.New("boom")
	exec := NewExecutor(func(context.Context, int) error { steps++; return nil }, ExecutorCallbacks{
		PostStep: func(_ context.Context, step int) error {
			if step == 1 {
				return errBoom
			}
			return nil
		},
	})

	err := exec.RunSteps(context.TODO(), 5)
	c.Assert(err, gc.Equals, errBoom)
	c.Assert(steps, gc.Equals, 2)
	c.Assert(exec.Superstep(), gc.Equals, 1)
}

func (s *ExecutorTestSuite) TestContextExpiry(c *gc.C) {
	ctx, cancelFn := context.WithCancel(context.Background())
	var steps int
	exec := NewExecutor(func(context.Context, int) error {
		steps++
		if steps == 2 {
			cancelFn()
		}
		return nil
	}, ExecutorCallbacks{})

	err := exec.RunSteps(ctx, 10)
	c.Assert(err, gc.Equals, context.Canceled)
	c.Assert(steps, gc.Equals, 2)
}
