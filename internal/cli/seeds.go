package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/relplace/pkg/errors"
	"github.com/matzehuels/relplace/pkg/pipeline"
)

// seedsCommand creates the seeds command.
func (c *CLI) seedsCommand() *cobra.Command {
	var (
		flags    placeFlags
		count    int
		parallel int
	)

	cmd := &cobra.Command{
		Use:   "seeds [design]",
		Short: "Place a design with a range of seeds and report failures",
		Long: `Seeds places the design once per seed, starting at --seed, and reports
which runs failed to place or broke a macro during the swap exercise.
The placement cache is not used.`,
		Example:           `  relplace seeds counter.toml --count 32 --parallel 8`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDesign,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count <= 0 {
				return errors.New(errors.ErrCodeInvalidInput, "--count must be positive (got %d)", count)
			}
			seeds := make([]uint64, count)
			for i := range seeds {
				seeds[i] = flags.seed + uint64(i)
			}
			return c.runSeeds(cmd.Context(), flags.options(args[0]), seeds, parallel)
		},
	}

	flags.register(cmd)
	cmd.Flags().Uint64Var(&flags.seed, "seed", 1, "first seed")
	cmd.Flags().IntVarP(&count, "count", "n", 16, "number of seeds")
	cmd.Flags().IntVarP(&parallel, "parallel", "p", pipeline.DefaultParallel, "concurrent runs")

	return cmd
}

func (c *CLI) runSeeds(ctx context.Context, opts pipeline.Options, seeds []uint64, parallel int) error {
	runner, err := c.newRunner(true)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, os.Stderr, "Placing...")
	spinner.Update("Placing %d seeds...", len(seeds))
	spinner.Start()

	prog := newProgress(c.Logger)
	runs, err := runner.RunSeeds(ctx, opts, seeds, parallel)
	if err != nil {
		spinner.StopWithError("Seed sweep aborted")
		return err
	}
	spinner.Stop()
	prog.done("Placed all seeds")

	printSeedRuns(runs)
	printNewline()
	failed := pipeline.Failed(runs)
	if failed > 0 {
		return errors.New(errors.ErrCodePlacementExhausted, "%d of %d runs failed", failed, len(runs))
	}
	printSuccess("All %d runs placed and kept every macro intact", len(runs))
	return nil
}
