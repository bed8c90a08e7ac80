// Command tablewrap builds tables with merged cells from blueprints and
// imports them from HTML, DOCX, XLSX, ODT, PPTX and EPUB documents.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/tsawler/tablewrap/internal/cli"
	"github.com/tsawler/tablewrap/internal/config"
	"github.com/tsawler/tablewrap/internal/logging"
)

func main() {
	logging.ConfigureRuntime()

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("config")
		os.Exit(cli.ExitCommandError)
	}

	if err := cli.NewRootCommand(cfg).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
