package build

import (
	"context"

	"git.home.luguber.info/inful/grapesite/internal/assets"
	"git.home.luguber.info/inful/grapesite/internal/styles"
)

// stageCompileStyles publishes built-in stylesheets, then user CSS and compiled Sass.
func stageCompileStyles(ctx context.Context, bs *buildState) error {
	cfg := bs.gen.cfg.Plugins.Styles
	userDir := ""
	if cfg.Enabled {
		userDir = cfg.Dir
	}

	written, err := styles.NewPublisher(assets.Defaults(), userDir, bs.gen.sass).Publish(ctx, bs.outDir)
	if err != nil {
		return err
	}
	bs.report.Stylesheets = written
	return nil
}
