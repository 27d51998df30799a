package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/relplace/pkg/design"
	"github.com/matzehuels/relplace/pkg/errors"
	pio "github.com/matzehuels/relplace/pkg/io"
	"github.com/matzehuels/relplace/pkg/relplace"
)

// checkCommand creates the check command.
func (c *CLI) checkCommand() *cobra.Command {
	var rotate bool

	cmd := &cobra.Command{
		Use:   "check [design] [placement]",
		Short: "Verify a placement file against its design",
		Long: `Check applies an exported placement to a freshly built fabric and
verifies that the grid is consistent and that every macro sits in one of
its allowed orientations.`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeCheck,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.check(args[0], args[1], rotate)
		},
	}

	cmd.Flags().BoolVar(&rotate, "rotate", false, "accept all eight orientations (use when placed with --rotate)")
	return cmd
}

func (c *CLI) check(designPath, placementPath string, rotate bool) error {
	d, err := design.Load(designPath)
	if err != nil {
		return err
	}
	f, specs, err := d.Build()
	if err != nil {
		return err
	}
	p, err := pio.ImportJSON(placementPath)
	if err != nil {
		return err
	}
	if err := p.Apply(f); err != nil {
		return err
	}
	c.Logger.Debug("applied placement", "run", p.RunID, "seed", p.Seed, "blocks", len(p.Blocks))

	cfg := d.Config()
	if rotate {
		cfg.RotateEnable = true
	}
	// Rejections were reported when the design was placed.
	e := relplace.New(relplace.Options{})
	rejected := e.Configure(cfg, specs)
	if err := errors.Join(f.Verify(), e.Check(f)); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidDesign, err, "placement %s does not satisfy %s", placementPath, designPath)
	}

	printSuccess("%s satisfies %s", StyleHighlight.Render(placementPath), StyleHighlight.Render(d.Name))
	printKeyValue("run", p.RunID)
	printKeyValue("seed", strconv.FormatUint(p.Seed, 10))
	printDetail("%d blocks placed, %d macros intact", f.Placed(), e.MacroCount())
	if n := relplace.Rejected(rejected); n > 0 {
		printWarning("%d relative constraints were ignored and not checked", n)
	}
	return nil
}
