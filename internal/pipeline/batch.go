package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/moneydairy/moneydairy/internal/importer"
)

// Outcome pairs an input with its result or error.
type Outcome struct {
	Input  Input
	Result *Result
	Err    error
}

// RunAll processes inputs with at most workers files in flight. One file
// failing does not stop the others. Outcomes are in input order.
func RunAll(ctx context.Context, reg *importer.Registry, inputs []Input, ref Reference, workers int) []Outcome {
	if workers < 1 {
		workers = 1
	}
	out := make([]Outcome, len(inputs))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			res, err := Run(ctx, reg, in, ref)
			out[i] = Outcome{Input: in, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return out
}
