package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/grapesite/internal/config"
	"git.home.luguber.info/inful/grapesite/internal/foundation/errors"
	"git.home.luguber.info/inful/grapesite/internal/pages"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force   bool   `help:"Overwrite existing configuration file"`
	Content string `name:"content" help:"Use this content directory and create a stub page for every installation guide in it"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	cfg := config.Default()
	if i.Content != "" {
		cfg.Plugins.Filesystem = []config.FilesystemSource{{Name: "pages", Path: i.Content}}
	}
	_, _ = fmt.Fprintf(g.Out, "Writing configuration to %s\n", root.Config)
	if err := config.Write(root.Config, cfg, i.Force); err != nil {
		return err
	}
	if i.Content != "" {
		written, err := ScaffoldGuides(i.Content)
		if err != nil {
			return err
		}
		for _, p := range written {
			_, _ = fmt.Fprintf(g.Out, "Created %s\n", p)
		}
	}
	_, _ = fmt.Fprintln(g.Out, "Initialized successfully")
	return nil
}

// ScaffoldGuides writes a stub Markdown page for each installation guide so
// the documentation index has no dangling links. Existing files are kept.
func ScaffoldGuides(contentDir string) ([]string, error) {
	var written []string
	for _, guide := range pages.Guides {
		rel := strings.TrimPrefix(guide.Route(), "/") + ".md"
		path := filepath.Join(contentDir, filepath.FromSlash(rel))
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return written, errors.WrapError(err, errors.CategoryFileSystem, "failed to create content directory").
				WithContext("path", path).
				Build()
		}
		body := fmt.Sprintf("---\ntitle: %q\n---\n\nInstalling Grapejuice from source on %s.\n", guide.Name, guide.Name)
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			return written, errors.WrapError(err, errors.CategoryFileSystem, "failed to write guide page").
				WithContext("path", path).
				Build()
		}
		written = append(written, path)
	}
	return written, nil
}
