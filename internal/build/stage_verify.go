package build

import (
	"context"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/grapesite/internal/foundation/errors"
	"git.home.luguber.info/inful/grapesite/internal/linkverify"
	"git.home.luguber.info/inful/grapesite/internal/logfields"
)

// stageVerifyLinks checks internal links in the written pages. Broken links are
// warnings unless verification is strict.
func stageVerifyLinks(ctx context.Context, bs *buildState) error {
	cfg := bs.gen.cfg.Verify
	if !cfg.Enabled {
		return nil
	}

	broken, err := linkverify.VerifySite(ctx, bs.outDir)
	if err != nil {
		return err
	}
	bs.report.BrokenLinks = broken
	bs.gen.recorder.SetBrokenLinks(len(broken))

	for _, b := range broken {
		slog.Warn("Broken internal link", logfields.Page(b.Page), logfields.URL(b.URL))
		bs.report.warn(fmt.Sprintf("broken link %s in %s", b.URL, b.Page))
	}
	if cfg.Strict && len(broken) > 0 {
		return errors.ContentError("broken internal links").
			WithContext("count", len(broken)).
			Build()
	}
	return nil
}
