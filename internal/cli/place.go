package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	pio "github.com/matzehuels/relplace/pkg/io"
	"github.com/matzehuels/relplace/pkg/pipeline"
)

// placeFlags holds the engine and exercise flags shared by place and seeds.
type placeFlags struct {
	rotate          bool
	maxPlaceRetries int
	maxMacroRetries int
	seed            uint64
	swaps           int
	acceptRate      float64
	strict          bool
}

func (f *placeFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.BoolVar(&f.rotate, "rotate", false, "allow macros in all eight orientations (overrides the design)")
	flags.IntVar(&f.maxPlaceRetries, "max-place-retries", 0, "full initial placement attempts (0 keeps the design value)")
	flags.IntVar(&f.maxMacroRetries, "max-macro-retries", 0, "attempts per macro node (0 keeps the design value)")
	flags.IntVar(&f.swaps, "swaps", defaultSwaps, "random swap proposals to run after placement")
	flags.Float64Var(&f.acceptRate, "accept-rate", pipeline.DefaultAcceptRate, "share of legal swaps that are committed")
	flags.BoolVar(&f.strict, "strict", false, "fail when any relative constraint is rejected")
}

func (f *placeFlags) options(designPath string) pipeline.Options {
	return pipeline.Options{
		DesignPath:      designPath,
		Rotate:          f.rotate,
		MaxPlaceRetries: f.maxPlaceRetries,
		MaxMacroRetries: f.maxMacroRetries,
		Seed:            f.seed,
		Swaps:           f.swaps,
		AcceptRate:      f.acceptRate,
		Strict:          f.strict,
	}
}

// placeCommand creates the place command.
func (c *CLI) placeCommand() *cobra.Command {
	var (
		flags   placeFlags
		output  string
		noCache bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "place [design]",
		Short: "Place a design and write the placement as JSON",
		Long: `Place loads a design file (.toml, .yaml or .json), builds macros from its
relative constraints and places every block on the grid. Random swap
proposals are then run through the legalizer to check that macros stay
intact. The placement is written as JSON; a .zst output is compressed.`,
		Example: `  relplace place counter.toml
  relplace place counter.toml -o out/counter.placement.json.zst --seed 7 --rotate`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDesign,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := c.newRunner(noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			opts := flags.options(args[0])
			opts.Refresh = refresh

			prog := newProgress(c.Logger)
			result, err := runner.Execute(cmd.Context(), opts)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Placed %s", result.Design.Name))

			if output == "" {
				output = defaultOutput(args[0])
			}
			if err := pio.ExportJSON(result.Placement, output); err != nil {
				return err
			}

			printSuccess("Placed %s", StyleHighlight.Render(result.Design.Name))
			printStats(result.Stats, result.CacheHit)
			if result.Stats.Rejected > 0 {
				printWarning("%d relative constraints were ignored (run with -v for details)", result.Stats.Rejected)
			}
			printFile(output)
			printNewline()
			printNextStep("Verify", fmt.Sprintf("relplace check %s %s", args[0], output))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().Uint64Var(&flags.seed, "seed", pipeline.DefaultSeed, "random seed")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <design>.placement.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the placement cache")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached placements and store a fresh one")

	return cmd
}
