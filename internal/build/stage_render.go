package build

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/grapesite/internal/foundation/errors"
	"git.home.luguber.info/inful/grapesite/internal/logfields"
	"git.home.luguber.info/inful/grapesite/internal/markdown"
	"git.home.luguber.info/inful/grapesite/internal/pages"
	"git.home.luguber.info/inful/grapesite/internal/source"
	"git.home.luguber.info/inful/grapesite/internal/view"
	"git.home.luguber.info/inful/grapesite/internal/webmanifest"
)

// stageRenderPages renders every route into a full HTML document.
func stageRenderPages(ctx context.Context, bs *buildState) error {
	routes, err := bs.gen.routes(bs.pages)
	if err != nil {
		return err
	}

	for _, r := range routes {
		if err := ctx.Err(); err != nil {
			return err
		}

		scope := view.NewScope()
		file, err := bs.renderRoute(r, scope)
		if err != nil {
			return err
		}
		for _, a := range scope.Assets() {
			bs.assetRefs.Add(a)
		}
		bs.report.Pages = append(bs.report.Pages, PageEntry{
			Route:       r.Path,
			File:        file,
			Source:      r.Source,
			Title:       r.Title,
			Fingerprint: r.Fingerprint,
		})
		slog.Debug("Rendered page", logfields.Route(r.Path), logfields.Page(file))
	}

	bs.gen.recorder.AddPagesRendered(len(routes))
	return nil
}

func (bs *buildState) renderRoute(r Route, scope *view.Scope) (string, error) {
	body, err := r.Render(scope)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryRender, "failed to render page").
			WithContext("route", r.Path).
			Build()
	}

	cfg := bs.gen.cfg
	doc := view.Document{
		Lang:        cfg.Site.Lang,
		Title:       r.Title,
		Description: r.Description,
		Keywords:    r.Keywords,
		Canonical:   canonicalURL(cfg.Site.SiteURL, r.Path),
		Favicon:     bs.favicon,
		Stylesheets: scope.Stylesheets(),
		Body:        body,
	}
	if doc.Description == "" {
		doc.Description = cfg.Site.Description
	}
	if bs.manifest {
		doc.Manifest = "/" + webmanifest.File
		doc.ThemeColor = cfg.Plugins.Manifest.ThemeColor
	}

	var buf bytes.Buffer
	if err := doc.Render(&buf); err != nil {
		return "", errors.WrapError(err, errors.CategoryRender, "failed to serialize page").
			WithContext("route", r.Path).
			Build()
	}

	file := OutputFile(r.Path)
	dst := filepath.Join(bs.outDir, filepath.FromSlash(file))
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return "", errors.WrapError(err, errors.CategoryFileSystem, "failed to create page directory").
			WithContext("path", dst).
			Build()
	}
	if err := os.WriteFile(dst, buf.Bytes(), 0o644); err != nil { // #nosec G306 - public site page
		return "", errors.WrapError(err, errors.CategoryFileSystem, "failed to write page").
			WithContext("path", dst).
			Build()
	}
	return file, nil
}

// routes returns the built-in routes followed by the sourced Markdown pages.
// Two pages claiming the same route fail the build.
func (g *Generator) routes(sourced []*source.Page) ([]Route, error) {
	siteTitle := g.cfg.Site.Title
	routes := BuiltinRoutes(siteTitle)
	owner := make(map[string]string, len(routes)+len(sourced))
	for _, r := range routes {
		owner[r.Path] = r.Source
	}

	renderer := markdown.NewRenderer(markdown.Options{Unsafe: g.cfg.Plugins.Markdown.Unsafe})
	for _, p := range sourced {
		if prev, ok := owner[p.Route]; ok {
			return nil, errors.ContentError("duplicate route").
				WithContext("route", p.Route).
				WithContext("first", prev).
				WithContext("second", p.Path).
				Build()
		}
		owner[p.Route] = p.Path

		r, err := markdownRoute(renderer, p, siteTitle)
		if err != nil {
			return nil, err
		}
		routes = append(routes, r)
	}
	return routes, nil
}

// markdownRoute renders p's body and derives its titles. The page heading is
// the frontmatter title, else the first H1, else the file name.
func markdownRoute(renderer *markdown.Renderer, p *source.Page, siteTitle string) (Route, error) {
	res, err := renderer.Render(p.Body)
	if err != nil {
		return Route{}, errors.WrapError(err, errors.CategoryRender, "failed to render markdown").
			WithContext("path", p.Path).
			Build()
	}

	heading := p.Meta.Title
	if heading == "" {
		heading = res.Title
	}
	title := heading
	if title == "" {
		title = strings.TrimSuffix(path.Base(p.RelPath), path.Ext(p.RelPath))
	}

	return Route{
		Path:        p.Route,
		Title:       title + " | " + siteTitle,
		Description: p.Meta.Description,
		Keywords:    p.Meta.Tags,
		Source:      p.Source + ":" + p.RelPath,
		Fingerprint: p.Fingerprint,
		Render: func(s *view.Scope) (*html.Node, error) {
			return pages.Markdown(s, heading, res.HTML)
		},
	}, nil
}

func canonicalURL(siteURL, route string) string {
	if siteURL == "" {
		return ""
	}
	return strings.TrimRight(siteURL, "/") + route
}
