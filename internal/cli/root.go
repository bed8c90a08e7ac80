// Package cli implements the tablewrap command line.
package cli

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tsawler/tablewrap/internal/config"
	"github.com/tsawler/tablewrap/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // json | markdown | csv | html
	Indent   bool
	Strict   bool
	LogLevel string

	logger *zerolog.Logger
}

// log returns the command logger, or a no-op logger before the root
// command has run.
func (o *RootOptions) log() *zerolog.Logger {
	if o.logger == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return o.logger
}

// NewRootCommand creates the root command. Flag defaults come from cfg.
func NewRootCommand(cfg config.Config) *cobra.Command {
	opts := &RootOptions{
		Format:   cfg.Output.Format,
		Indent:   cfg.Output.Indent,
		Strict:   cfg.Import.Strict,
		LogLevel: cfg.Log.Level,
	}

	cmd := &cobra.Command{
		Use:   "tablewrap",
		Short: "Build and import tables with merged cells",
		Long: `tablewrap lays out tables with row and column spans and prints them
as host-insertable elements, Markdown, CSV or HTML.

Tables come from YAML/TOML blueprints or from HTML, DOCX, XLSX, ODT, PPTX
and EPUB documents.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !config.ValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %s", opts.Format, strings.Join(config.Formats, ", ")))
			}
			level, ok := logging.ParseLevel(opts.LogLevel)
			if !ok {
				level = zerolog.InfoLevel
			}
			if opts.Verbose {
				level = zerolog.DebugLevel
			}
			// The process logger may already sit at a higher global level.
			logging.SetLevel(level)
			logger := logging.New(logging.Config{Level: level, NoColor: true, Output: cmd.ErrOrStderr()})
			opts.logger = &logger
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", opts.Format, "output format (json|markdown|csv|html)")
	cmd.PersistentFlags().BoolVar(&opts.Indent, "indent", opts.Indent, "indent JSON output")

	// Add subcommands
	cmd.AddCommand(NewBuildCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewCellCommand(opts))
	cmd.AddCommand(NewBlueprintCommand(opts))
	cmd.AddCommand(NewConfigCommand(cfg))

	return cmd
}
