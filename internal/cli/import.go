package cli

import (
	"github.com/spf13/cobra"

	"github.com/tsawler/tablewrap"
)

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	var tables []int

	cmd := &cobra.Command{
		Use:   "import <document>",
		Short: "Import the tables of an HTML, DOCX, XLSX, ODT, PPTX or EPUB document",
		Long: `Import tables from a document and print them.

The format is detected from the file content, falling back to the
extension. Each non-empty XLSX sheet is one table. PPTX tables are
numbered across the whole deck and EPUB tables across the book in
reading order.

Cells whose spans overlap are imported as single cells and reported as
warnings on stderr; with --strict the import fails instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			im := tablewrap.Open(args[0]).Tables(tables...)
			if rootOpts.Strict {
				im = im.Strict()
			}

			els, warnings, err := im.Elements()
			for _, w := range warnings {
				rootOpts.log().Warn().Int("row", w.Row).Int("col", w.Col).Msg(w.Message)
			}
			if err != nil {
				return WrapExitError(ExitFailure, "import", err)
			}
			rootOpts.log().Debug().Str("file", args[0]).Int("tables", len(els)).Msg("imported document")
			return writeElements(cmd.OutOrStdout(), rootOpts, els)
		},
	}

	cmd.Flags().IntSliceVarP(&tables, "table", "t", nil, "tables to import (0-based, repeatable)")
	cmd.Flags().BoolVar(&rootOpts.Strict, "strict", rootOpts.Strict, "fail on overlapping spans")

	return cmd
}
