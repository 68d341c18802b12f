package pages

import (
	"bytes"
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/grapesite/internal/layout"
	"git.home.luguber.info/inful/grapesite/internal/view"
)

// MarkdownStylesheet styles rendered Markdown content.
const MarkdownStylesheet = "styles/markdown.css"

// Markdown wraps an already rendered Markdown body in the documentation layout.
func Markdown(s *view.Scope, title string, body []byte) (*html.Node, error) {
	s.Import(MarkdownStylesheet)

	context := &html.Node{Type: html.ElementNode, Data: "article", DataAtom: atom.Article}
	nodes, err := html.ParseFragment(bytes.NewReader(body), context)
	if err != nil {
		return nil, fmt.Errorf("parse rendered markdown: %w", err)
	}

	article := view.El("article", view.Attrs("class", "markdown"))
	if title != "" && !startsWithH1(nodes) {
		view.Append(article, view.El("h1", nil, view.Text(title)))
	}
	view.Append(article, nodes...)

	return layout.Documentation(s, article), nil
}

func startsWithH1(nodes []*html.Node) bool {
	for _, n := range nodes {
		switch n.Type {
		case html.TextNode:
			if len(bytes.TrimSpace([]byte(n.Data))) == 0 {
				continue
			}
			return false
		case html.ElementNode:
			return n.Data == "h1"
		}
	}
	return false
}
