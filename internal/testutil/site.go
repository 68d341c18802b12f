// Package testutil provides fixtures and assertions for tests that build sites.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"git.home.luguber.info/inful/grapesite/internal/config"
)

// SiteConfig returns a default configuration whose content, asset, style and
// output directories live under a fresh temp dir, plus that dir. Only the
// 48px icon is generated to keep builds fast.
func SiteConfig(t *testing.T) (*config.Config, string) {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Output.Directory = filepath.Join(root, "public")
	cfg.Plugins.Filesystem = []config.FilesystemSource{{Name: "pages", Path: filepath.Join(root, "content")}}
	cfg.Plugins.RootImport.Root = filepath.Join(root, "assets")
	cfg.Plugins.Styles.Dir = filepath.Join(root, "styles")
	cfg.Plugins.Manifest.Sizes = []int{48}
	return cfg, root
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// SiteAssertions checks the files of a generated site.
type SiteAssertions struct {
	t       *testing.T
	baseDir string
}

// NewSiteAssertions creates assertions rooted at the site output directory.
func NewSiteAssertions(t *testing.T, baseDir string) *SiteAssertions {
	return &SiteAssertions{t: t, baseDir: baseDir}
}

// HasFile fails the test unless every slash-separated rel path exists as a file.
func (sa *SiteAssertions) HasFile(rels ...string) *SiteAssertions {
	sa.t.Helper()
	for _, rel := range rels {
		full := filepath.Join(sa.baseDir, filepath.FromSlash(rel))
		st, err := os.Stat(full)
		if err != nil {
			sa.t.Errorf("expected file to exist: %s", full)
			continue
		}
		if st.IsDir() {
			sa.t.Errorf("expected %s to be a file, but it's a directory", full)
		}
	}
	return sa
}

// NoFile fails the test if rel exists.
func (sa *SiteAssertions) NoFile(rel string) *SiteAssertions {
	sa.t.Helper()
	full := filepath.Join(sa.baseDir, filepath.FromSlash(rel))
	if _, err := os.Stat(full); err == nil {
		sa.t.Errorf("expected file to not exist: %s", full)
	}
	return sa
}

// FileContains fails the test unless rel contains want.
func (sa *SiteAssertions) FileContains(rel, want string) *SiteAssertions {
	sa.t.Helper()
	full := filepath.Join(sa.baseDir, filepath.FromSlash(rel))
	// #nosec G304 - test helper, paths are controlled by test code
	data, err := os.ReadFile(full)
	if err != nil {
		sa.t.Errorf("failed to read file %s: %v", full, err)
		return sa
	}
	if !strings.Contains(string(data), want) {
		sa.t.Errorf("expected %s to contain %q\nactual content:\n%s", rel, want, data)
	}
	return sa
}
