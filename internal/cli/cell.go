package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tsawler/tablewrap/element"
	"github.com/tsawler/tablewrap/internal/blueprint"
)

// NewCellCommand creates the cell command.
func NewCellCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cell <layout-file> <row> <col>",
		Short: "Show the cell governing a position",
		Long: `Build the blueprint and print the record of the anchor governing
(row, col). For a position inside a merged region this is the region's
top-left cell.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := strconv.Atoi(args[1])
			if err != nil {
				return WrapExitError(ExitCommandError, "row", err)
			}
			col, err := strconv.Atoi(args[2])
			if err != nil {
				return WrapExitError(ExitCommandError, "col", err)
			}

			b, err := blueprint.Load(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "load blueprint", err)
			}
			w, err := b.Build()
			if err != nil {
				return WrapExitError(ExitFailure, "build table", err)
			}
			d, err := w.GetCellDetails(row, col)
			if err != nil {
				return WrapExitError(ExitFailure, "get cell details", err)
			}

			c := element.Cell{Row: d.Row, Column: d.Col, RowSpan: d.RowSpan, ColSpan: d.ColSpan, Content: d.Content, Fill: d.Fill}
			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), c, rootOpts.Indent)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "anchor (%d,%d) span %dx%d content %q fill %q\n",
				c.Row, c.Column, c.RowSpan, c.ColSpan, c.Content, c.Fill)
			return err
		},
	}

	return cmd
}
