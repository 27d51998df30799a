package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// SeedRun is the outcome of one run of RunSeeds.
type SeedRun struct {
	Seed   uint64
	Result *Result // nil when Err is set
	Err    error
}

// RunSeeds places the design once per seed, running up to parallel runs
// at a time, and returns the runs in seed order. The cache is bypassed.
//
// A run that fails to place is reported in its SeedRun; only a design
// that cannot be loaded or configured, or a cancelled context, fails the
// whole call.
func (r *Runner) RunSeeds(ctx context.Context, opts Options, seeds []uint64, parallel int) ([]SeedRun, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if parallel <= 0 {
		parallel = DefaultParallel
	}

	d, hash, err := LoadDesign(ctx, opts.DesignPath)
	if err != nil {
		return nil, err
	}

	runs := make([]SeedRun, len(seeds))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, seed := range seeds {
		runs[i].Seed = seed
		g.Go(func() error {
			o := opts
			o.Seed = seed
			result, err := r.Prepare(d, hash, o)
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			if err := r.Place(ctx, result, o); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				runs[i].Err = err
				r.Logger.Warn("placement run failed", "seed", seed, "err", err)
				return nil
			}
			runs[i].Result = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return runs, nil
}

// Failed returns the number of runs that did not place.
func Failed(runs []SeedRun) int {
	n := 0
	for _, run := range runs {
		if run.Err != nil {
			n++
		}
	}
	return n
}
