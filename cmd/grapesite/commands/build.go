package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/grapesite/internal/build"
	"git.home.luguber.info/inful/grapesite/internal/config"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output   string `short:"o" help:"Output directory for the generated site (overrides output.directory)"`
	Strict   bool   `help:"Fail the build on broken internal links"`
	NoVerify bool   `name:"no-verify" help:"Skip internal link verification"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config, b.Output)
	if err != nil {
		return err
	}
	if b.Strict {
		cfg.Verify.Strict = true
	}
	if b.NoVerify {
		cfg.Verify.Enabled = false
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return RunBuild(ctx, g, cfg)
}

// RunBuild generates the site and prints a summary.
func RunBuild(ctx context.Context, g *Global, cfg *config.Config) error {
	report, err := build.NewGenerator(cfg).Generate(ctx)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(g.Out, "Built %d pages into %s (%s, %s)\n",
		len(report.Pages), cfg.Output.Directory, report.Outcome, report.Duration().Round(time.Millisecond))
	for _, w := range report.Warnings {
		_, _ = fmt.Fprintf(g.Out, "warning: %s\n", w)
	}
	return nil
}
