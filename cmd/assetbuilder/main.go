package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/assetbuilder/cmd/assetbuilder/commands"
	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/assetbuilder/internal/version"
)

func main() {
	var cli commands.CLI
	kctx := kong.Parse(&cli,
		kong.Name("assetbuilder"),
		kong.Description("Collect, convert, bundle and compress static assets."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	err := kctx.Run(&commands.Global{Logger: slog.Default(), Out: os.Stdout}, &cli)
	errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
}
