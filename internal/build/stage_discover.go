package build

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/grapesite/internal/logfields"
	"git.home.luguber.info/inful/grapesite/internal/source"
)

// stageDiscoverContent loads Markdown pages from the filesystem sources. Drafts
// are skipped and missing sources become report warnings.
func stageDiscoverContent(ctx context.Context, bs *buildState) error {
	cfg := bs.gen.cfg
	if !cfg.Plugins.Markdown.Enabled {
		return nil
	}

	d := source.NewDiscoverer(cfg.Plugins.Filesystem, cfg.Plugins.Markdown.Extensions)
	found, err := d.Discover(ctx)
	if err != nil {
		return err
	}
	for _, w := range d.Warnings() {
		p, _ := w.Context().GetString("path")
		bs.report.warn(w.Message() + ": " + p)
	}
	for _, p := range found {
		if p.Meta.Draft {
			slog.Debug("Skipping draft page", logfields.Route(p.Route), logfields.Path(p.Path))
			bs.report.SkippedDrafts = append(bs.report.SkippedDrafts, p.Route)
			continue
		}
		bs.pages = append(bs.pages, p)
	}
	slog.Info("Content discovered", logfields.Count(len(bs.pages)), slog.Int("drafts", len(bs.report.SkippedDrafts)))
	return nil
}
