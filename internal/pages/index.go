// Package pages holds the route-level page components of the site.
package pages

import (
	"golang.org/x/net/html"

	"git.home.luguber.info/inful/grapesite/internal/components"
	"git.home.luguber.info/inful/grapesite/internal/layout"
	"git.home.luguber.info/inful/grapesite/internal/view"
)

const (
	IndexStylesheet = "styles/index.css"

	Tagline      = "Running Roblox on Linux, made easy"
	CallToAction = "Get started"
)

// Index is the landing page: a hero section and a call-to-action into the docs.
func Index(s *view.Scope) *html.Node {
	s.Import(IndexStylesheet)

	hero := view.El("section", view.Attrs("class", "hero"),
		view.El("h1", nil,
			view.El("span", nil, view.Text(layout.BrandName)),
			view.El("small", nil, view.Text(Tagline)),
		),
	)
	cta := components.Link(DocsRoute, components.Button(s, view.Text(CallToAction)))

	return layout.Main(s, hero, cta)
}
