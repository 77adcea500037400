package pathlist

import (
	"context"

	"golang.org/x/sync/errgroup"

	"wenv/internal/model"
)

// DefaultWorkers bounds ValidateParallel when workers <= 0.
const DefaultWorkers = 8

// ValidateParallel is Validate with the existence checks spread over a
// bounded group of goroutines. Each result lands in the slot of its entry's
// position, so the report is identical to the one Validate would build.
// It returns ctx.Err() if the context is cancelled before all checks finish.
func ValidateParallel(ctx context.Context, entries []model.Entry, exists ExistsFunc, mode model.Mode, delim string, workers int) (model.RepairReport, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	outcomes := make([]model.Outcome, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, e := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = classify(e, exists)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.RepairReport{}, err
	}
	if err := ctx.Err(); err != nil {
		return model.RepairReport{}, err
	}
	return assemble(entries, outcomes, mode, delim), nil
}
