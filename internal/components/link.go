package components

import (
	"golang.org/x/net/html"

	"git.home.luguber.info/inful/grapesite/internal/view"
)

// Link renders an in-site hyperlink to a route.
func Link(to string, children ...*html.Node) *html.Node {
	return view.El("a", view.Attrs("href", to), children...)
}
