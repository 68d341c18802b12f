package components

import (
	"golang.org/x/net/html"

	"git.home.luguber.info/inful/grapesite/internal/view"
)

// ButtonStylesheet is imported by Button.
const ButtonStylesheet = "styles/components/button.css"

// Button wraps children unchanged in a styled inline container.
func Button(s *view.Scope, children ...*html.Node) *html.Node {
	s.Import(ButtonStylesheet)
	return view.El("span", view.Attrs("class", "button"), children...)
}
