package pages

import (
	"golang.org/x/net/html"

	"git.home.luguber.info/inful/grapesite/internal/components"
	"git.home.luguber.info/inful/grapesite/internal/layout"
	"git.home.luguber.info/inful/grapesite/internal/slug"
	"git.home.luguber.info/inful/grapesite/internal/view"
)

const (
	IndexRoute = "/"
	DocsRoute  = "/docs"

	// SourceInstallRoute prefixes every installation guide route.
	SourceInstallRoute = DocsRoute + "/source-install/"

	DocsHeading = "Install Grapejuice locally from Source"
)

// Guide is a per-distribution installation guide.
type Guide struct {
	Name string
	// ID is normalized with slug.Slugify to form the route segment.
	ID string
}

// Route returns the guide's site route.
func (g Guide) Route() string {
	return SourceInstallRoute + slug.Slugify(g.ID)
}

// Guides lists the installation guides in display order.
var Guides = []Guide{
	{Name: "Arch Linux", ID: "archlinux"},
	{Name: "Debian 10 and Similar", ID: "debian-10"},
	{Name: "Fedora Workstation", ID: "fedora-workstation"},
	{Name: "Solus", ID: "solus"},
	{Name: "Ubuntu 18.04", ID: "Ubuntu 18.04"},
}

// DocumentationIndex lists the installation guides.
func DocumentationIndex(s *view.Scope) *html.Node {
	list := view.El("ul", nil)
	for _, g := range Guides {
		view.Append(list, view.El("li", nil, components.Link(g.Route(), view.Text(g.Name))))
	}

	section := view.El("section", nil,
		view.El("header", nil, view.El("h1", nil, view.Text(DocsHeading))),
		list,
	)
	return layout.Documentation(s, section)
}
