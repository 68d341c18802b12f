package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/grapesite/internal/config"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
	// Out receives user-facing command output.
	Out io.Writer
}

// NewGlobal returns a Global writing to stdout with the default logger.
func NewGlobal() *Global {
	return &Global{Logger: slog.Default(), Out: os.Stdout}
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"grapesite.yaml" env:"GRAPESITE_CONFIG"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build  BuildCmd  `cmd:"" help:"Build the static site"`
	Serve  ServeCmd  `cmd:"" help:"Build, serve and rebuild the site on changes"`
	Init   InitCmd   `cmd:"" help:"Initialize a new configuration file"`
	Verify VerifyCmd `cmd:"" help:"Check internal links of a built site"`
	Routes RoutesCmd `cmd:"" help:"List the routes the site would render"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadConfig loads the configuration file and applies the --output override.
func loadConfig(path, output string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if output != "" {
		cfg.Output.Directory = output
	}
	return cfg, nil
}
