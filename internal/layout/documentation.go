package layout

import (
	"golang.org/x/net/html"

	"git.home.luguber.info/inful/grapesite/internal/view"
)

// Documentation is the layout for documentation pages. It currently adds nothing to Main.
func Documentation(s *view.Scope, children ...*html.Node) *html.Node {
	return Main(s, children...)
}
