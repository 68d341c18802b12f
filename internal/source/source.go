// Package source discovers Markdown and MDX pages on the filesystem.
package source

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/grapesite/internal/config"
	"git.home.luguber.info/inful/grapesite/internal/foundation/errors"
	"git.home.luguber.info/inful/grapesite/internal/frontmatter"
	"git.home.luguber.info/inful/grapesite/internal/logfields"
	"git.home.luguber.info/inful/grapesite/internal/slug"
)

// Page is a content file sourced from a filesystem root.
type Page struct {
	Source  string // configured source name
	Path    string // absolute file path
	RelPath string // slash-separated path relative to the source root
	Route   string
	Meta    frontmatter.Meta
	Body    []byte
	// Fingerprint identifies the page content (frontmatter and body).
	Fingerprint string
}

// Discoverer walks configured filesystem sources.
type Discoverer struct {
	sources    []config.FilesystemSource
	extensions map[string]struct{}
	warnings   []*errors.ClassifiedError
}

// NewDiscoverer constructs a Discoverer for the given sources and file extensions.
func NewDiscoverer(sources []config.FilesystemSource, extensions []string) *Discoverer {
	exts := make(map[string]struct{}, len(extensions))
	for _, e := range extensions {
		exts[strings.ToLower(e)] = struct{}{}
	}
	return &Discoverer{sources: sources, extensions: exts}
}

// Discover returns every page under the configured sources, ordered by
// frontmatter weight and then by route. Missing source directories are skipped
// and reported by Warnings. Files and directories starting with '.' or '_' are
// ignored.
func (d *Discoverer) Discover(ctx context.Context) ([]*Page, error) {
	d.warnings = nil
	var pages []*Page
	for _, src := range d.sources {
		root, err := filepath.Abs(src.Path)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to resolve source path").
				WithContext("source", src.Name).
				Build()
		}
		if st, statErr := os.Stat(root); statErr != nil || !st.IsDir() {
			slog.Warn("Content source directory missing; skipping", logfields.Source(src.Name), logfields.Path(root))
			d.warnings = append(d.warnings, errors.FileSystemError("content source directory missing").
				Warning().
				WithContext("source", src.Name).
				WithContext("path", root).
				Build())
			continue
		}

		found, err := d.walk(ctx, src.Name, root)
		if err != nil {
			return nil, err
		}
		slog.Debug("Content source discovered", logfields.Source(src.Name), logfields.Count(len(found)))
		pages = append(pages, found...)
	}

	sort.SliceStable(pages, func(i, j int) bool {
		if pages[i].Meta.Weight != pages[j].Meta.Weight {
			return pages[i].Meta.Weight < pages[j].Meta.Weight
		}
		return pages[i].Route < pages[j].Route
	})
	return pages, nil
}

// Warnings returns the non-fatal problems found by the last Discover call.
func (d *Discoverer) Warnings() []*errors.ClassifiedError {
	return d.warnings
}

func (d *Discoverer) walk(ctx context.Context, name, root string) ([]*Page, error) {
	var pages []*Page
	err := filepath.WalkDir(root, func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p != root && ignored(entry.Name()) {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.IsDir() {
			return nil
		}
		if _, ok := d.extensions[strings.ToLower(filepath.Ext(p))]; !ok {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		page, err := Load(p, filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		page.Source = name
		pages = append(pages, page)
		return nil
	})
	if err != nil {
		if errors.IsClassified(err) {
			return nil, err
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to walk content source").
			WithContext("source", name).
			WithContext("path", root).
			Build()
	}
	return pages, nil
}

// Load reads a single content file. rel determines the page route unless the
// frontmatter sets a slug, which replaces the final path segment.
func Load(absPath, rel string) (*Page, error) {
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryContent, "failed to read page").
			WithContext("path", absPath).
			Build()
	}

	doc, err := frontmatter.Parse(data)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryContent, "invalid frontmatter").
			WithContext("path", absPath).
			Build()
	}

	route := slug.RoutePath(rel)
	if doc.Meta.Slug != "" {
		route = path.Join(path.Dir(route), slug.Slugify(doc.Meta.Slug))
	}

	return &Page{
		Path:        absPath,
		RelPath:     rel,
		Route:       route,
		Meta:        doc.Meta,
		Body:        doc.Body,
		Fingerprint: mdfp.CalculateFingerprintFromParts(strings.TrimSuffix(string(doc.Raw), "\n"), string(doc.Body)),
	}, nil
}

func ignored(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}
