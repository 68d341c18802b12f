package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"git.home.luguber.info/inful/grapesite/internal/build"
)

// RoutesCmd lists the routes of the configured site.
type RoutesCmd struct{}

func (r *RoutesCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config, "")
	if err != nil {
		return err
	}
	routes, err := build.NewGenerator(cfg).Routes(context.Background())
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(g.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ROUTE\tFILE\tSOURCE\tTITLE")
	for _, rt := range routes {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", rt.Path, build.OutputFile(rt.Path), rt.Source, rt.Title)
	}
	return tw.Flush()
}
