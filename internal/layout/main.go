// Package layout provides the shared page chrome wrapped around page content.
package layout

import (
	"golang.org/x/net/html"

	"git.home.luguber.info/inful/grapesite/internal/components"
	"git.home.luguber.info/inful/grapesite/internal/view"
)

const (
	// GlobalStylesheet holds the site-wide base styles every page imports.
	GlobalStylesheet = "styles/global.css"
	// MainStylesheet styles the header and main region of Main.
	MainStylesheet = "styles/layout/main-layout.css"

	// LogoAsset is the brand image referenced by the header.
	LogoAsset = "images/grapejuice.svg"
	// BrandName is the header text and the logo's alt text.
	BrandName  = "Grapejuice"
	logoHeight = "48"
)

// Main wraps children in the site chrome: a header with branding and
// navigation, followed by a main region holding children verbatim.
func Main(s *view.Scope, children ...*html.Node) *html.Node {
	s.Import(GlobalStylesheet)
	s.Import(MainStylesheet)

	branding := view.El("section", view.Attrs("class", "branding"),
		components.Link("/",
			view.El("img", view.Attrs("src", s.Asset(LogoAsset), "height", logoHeight, "alt", BrandName)),
			view.El("span", nil, view.Text(BrandName)),
			view.El("span", view.Attrs("class", "aligner")),
		),
	)

	return view.El("div", view.Attrs("class", "page main-layout"),
		view.El("header", view.Attrs("class", "page-header"),
			branding,
			components.Navigation(s),
		),
		view.El("main", nil, children...),
	)
}
