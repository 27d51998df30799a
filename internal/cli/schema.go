package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/relplace/pkg/design"
)

// schemaCommand creates the schema command.
func (c *CLI) schemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for design files",
		Long: `Schema prints the JSON Schema every design file is validated against.
TOML and YAML designs are checked against the same schema.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := cmd.OutOrStdout().Write(design.Schema())
			return err
		},
	}
}
