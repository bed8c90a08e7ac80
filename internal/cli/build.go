package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/tsawler/tablewrap/element"
	"github.com/tsawler/tablewrap/host"
	"github.com/tsawler/tablewrap/internal/blueprint"
)

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	var insert bool

	cmd := &cobra.Command{
		Use:   "build <layout-file>",
		Short: "Build a table from a YAML or TOML blueprint",
		Long: `Build a table from a blueprint and print it.

The blueprint syntax is chosen by extension (.yaml, .yml or .toml). Cells
are applied in order; the first invalid cell stops the build.

With --insert the element is wrapped in a host insertion request and
written as one line of JSON, as a host integration would receive it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			el, err := buildElement(rootOpts, args[0])
			if err != nil {
				return err
			}
			if insert {
				ins := host.NewJSONInserter(cmd.OutOrStdout(), *rootOpts.log())
				return ins.Insert(contextOrBackground(cmd.Context()), host.NewRequest(el))
			}
			return writeElements(cmd.OutOrStdout(), rootOpts, []*element.Table{el})
		},
	}

	cmd.Flags().BoolVar(&insert, "insert", false, "print a host insertion request instead of the element")

	return cmd
}

func buildElement(opts *RootOptions, path string) (*element.Table, error) {
	b, err := blueprint.Load(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load blueprint", err)
	}
	opts.log().Debug().Str("file", path).Int("rows", b.Rows).Int("cols", b.Cols).Int("cells", len(b.Cells)).Msg("loaded blueprint")

	w, err := b.Build()
	if err != nil {
		return nil, WrapExitError(ExitFailure, "build table", err)
	}
	return w.ToElement(), nil
}

// contextOrBackground guards commands executed without ExecuteContext.
func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
