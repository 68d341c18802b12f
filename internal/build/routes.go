package build

import (
	"path"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/grapesite/internal/pages"
	"git.home.luguber.info/inful/grapesite/internal/view"
)

// SourceBuiltin marks routes provided by the page components rather than content files.
const SourceBuiltin = "builtin"

// Route is a renderable site page.
type Route struct {
	Path        string
	Title       string
	Description string
	Keywords    []string
	Source      string
	Fingerprint string
	Render      func(s *view.Scope) (*html.Node, error)
}

// BuiltinRoutes returns the page component routes in display order.
func BuiltinRoutes(siteTitle string) []Route {
	return []Route{
		{
			Path:   pages.IndexRoute,
			Title:  siteTitle,
			Source: SourceBuiltin,
			Render: func(s *view.Scope) (*html.Node, error) { return pages.Index(s), nil },
		},
		{
			Path:   pages.DocsRoute,
			Title:  "Documentation | " + siteTitle,
			Source: SourceBuiltin,
			Render: func(s *view.Scope) (*html.Node, error) { return pages.DocumentationIndex(s), nil },
		},
	}
}

// OutputFile maps a route to the HTML file serving it, relative to the output root.
//
//	"/"     -> "index.html"
//	"/docs" -> "docs/index.html"
func OutputFile(route string) string {
	clean := strings.Trim(path.Clean("/"+route), "/")
	if clean == "" {
		return "index.html"
	}
	return clean + "/index.html"
}
