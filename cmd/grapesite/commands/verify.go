package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/grapesite/internal/foundation/errors"
	"git.home.luguber.info/inful/grapesite/internal/linkverify"
)

// VerifyCmd checks the internal links of an already built site.
type VerifyCmd struct {
	Dir string `arg:"" optional:"" help:"Site directory (defaults to output.directory)"`
}

func (v *VerifyCmd) Run(g *Global, root *CLI) error {
	dir := v.Dir
	if dir == "" {
		cfg, err := loadConfig(root.Config, "")
		if err != nil {
			return err
		}
		dir = cfg.Output.Directory
	}
	return RunVerify(context.Background(), g, dir)
}

// RunVerify prints every broken internal link under dir and fails if any exist.
func RunVerify(ctx context.Context, g *Global, dir string) error {
	broken, err := linkverify.VerifySite(ctx, dir)
	if err != nil {
		return err
	}
	for _, b := range broken {
		_, _ = fmt.Fprintf(g.Out, "%s: broken %s link %s\n", b.Page, b.Tag, b.URL)
	}
	if len(broken) > 0 {
		return errors.ContentError("broken internal links").
			WithContext("count", len(broken)).
			WithContext("dir", dir).
			Build()
	}
	_, _ = fmt.Fprintf(g.Out, "No broken links in %s\n", dir)
	return nil
}
