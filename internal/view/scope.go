package view

import (
	"strings"

	"git.home.luguber.info/inful/grapesite/internal/util/sets"
)

// Scope collects the stylesheet and asset imports made while a page renders.
// A nil *Scope accepts imports and discards them.
type Scope struct {
	stylesheets sets.Ordered[string]
	assets      sets.Ordered[string]
}

// NewScope returns an empty Scope.
func NewScope() *Scope {
	return &Scope{}
}

// Import records a stylesheet dependency. Repeated imports keep the first position.
func (s *Scope) Import(stylesheet string) {
	if s == nil {
		return
	}
	s.stylesheets.Add(strings.TrimPrefix(stylesheet, "/"))
}

// Asset records a root-relative asset dependency and returns its public URL.
func (s *Scope) Asset(path string) string {
	path = strings.TrimPrefix(path, "/")
	if s != nil {
		s.assets.Add(path)
	}
	return "/" + path
}

// Stylesheets returns the imported stylesheets in first-import order.
func (s *Scope) Stylesheets() []string {
	if s == nil {
		return nil
	}
	return s.stylesheets.Values()
}

// Assets returns the referenced assets in first-reference order.
func (s *Scope) Assets() []string {
	if s == nil {
		return nil
	}
	return s.assets.Values()
}
