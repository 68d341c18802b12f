package components

import (
	"golang.org/x/net/html"

	"git.home.luguber.info/inful/grapesite/internal/view"
)

// NavigationStylesheet is imported by Navigation.
const NavigationStylesheet = "styles/components/navigation.css"

// NavItem is a single navigation entry.
type NavItem struct {
	Label string
	To    string
}

// NavItems is the site-wide navigation, in display order.
var NavItems = []NavItem{
	{Label: "Home", To: "/"},
	{Label: "Documentation", To: "/docs"},
}

// Navigation renders the site navigation list. It takes no inputs and always renders the same links.
func Navigation(s *view.Scope) *html.Node {
	s.Import(NavigationStylesheet)

	list := view.El("ul", nil)
	for _, item := range NavItems {
		view.Append(list, view.El("li", nil, Link(item.To, view.Text(item.Label))))
	}
	return view.El("nav", nil, list)
}
