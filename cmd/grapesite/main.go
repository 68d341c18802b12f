package main

import (
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/grapesite/cmd/grapesite/commands"
	"git.home.luguber.info/inful/grapesite/internal/foundation/errors"
	"git.home.luguber.info/inful/grapesite/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("grapesite"),
		kong.Description("Static site generator for the Grapejuice website."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
	)

	if err := parser.Run(commands.NewGlobal(), cli); err != nil {
		adapter := errors.NewCLIErrorAdapter(cli.Verbose, nil)
		os.Exit(adapter.HandleError(err))
	}
}
