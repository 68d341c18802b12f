package build

import (
	"context"

	"git.home.luguber.info/inful/grapesite/internal/webmanifest"
)

// stageGenerateManifest writes manifest.webmanifest, the icon set and the favicon.
func stageGenerateManifest(_ context.Context, bs *buildState) error {
	cfg := bs.gen.cfg.Plugins.Manifest
	if !cfg.Enabled {
		return nil
	}

	var icon []byte
	if cfg.Icon != "" {
		data, err := bs.resolver.ReadFile(cfg.Icon)
		if err != nil {
			return err
		}
		icon = data
	}

	res, err := webmanifest.Generate(cfg, icon, bs.outDir)
	if err != nil {
		return err
	}
	bs.manifest = true
	if res.Favicon != "" {
		bs.favicon = "/" + res.Favicon
	}
	bs.report.ManifestFiles = res.Files
	return nil
}
