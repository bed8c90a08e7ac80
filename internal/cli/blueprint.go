package cli

import (
	"github.com/spf13/cobra"

	"github.com/tsawler/tablewrap"
	"github.com/tsawler/tablewrap/internal/blueprint"
)

// NewBlueprintCommand creates the blueprint command.
func NewBlueprintCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		table  int
		syntax string
	)

	cmd := &cobra.Command{
		Use:   "blueprint <document>",
		Short: "Write a blueprint for a table imported from a document",
		Long: `Import one table from a document and write it as a blueprint that
"tablewrap build" accepts, so it can be edited by hand.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := blueprint.Syntax(syntax)
			if s != blueprint.YAML && s != blueprint.TOML {
				return NewExitError(ExitCommandError, "syntax must be yaml or toml")
			}

			im := tablewrap.Open(args[0]).Tables(table)
			if rootOpts.Strict {
				im = im.Strict()
			}
			ws, warnings, err := im.Wrappers()
			for _, w := range warnings {
				rootOpts.log().Warn().Int("row", w.Row).Int("col", w.Col).Msg(w.Message)
			}
			if err != nil {
				return WrapExitError(ExitFailure, "import", err)
			}

			data, err := blueprint.FromWrapper(ws[0]).Encode(s)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().IntVarP(&table, "table", "t", 0, "table to convert (0-based)")
	cmd.Flags().StringVar(&syntax, "syntax", "yaml", "blueprint syntax (yaml|toml)")

	return cmd
}
