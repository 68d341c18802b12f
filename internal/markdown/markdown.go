// Package markdown renders Markdown and MDX page bodies to HTML.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// Options controls the Markdown renderer.
type Options struct {
	// Unsafe passes raw HTML (and MDX-style JSX blocks) through untouched.
	Unsafe bool
}

// Result is a rendered Markdown document.
type Result struct {
	HTML []byte
	// Title is the text of the first level-one heading, if any.
	Title string
}

// Renderer converts Markdown to HTML using goldmark with GFM enabled.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer constructs a Renderer.
func NewRenderer(opts Options) *Renderer {
	rendererOpts := []goldmark.Option{
		goldmark.WithExtensions(extension.GFM, extension.Typographer),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	}
	if opts.Unsafe {
		rendererOpts = append(rendererOpts, goldmark.WithRendererOptions(gmhtml.WithUnsafe()))
	}
	return &Renderer{md: goldmark.New(rendererOpts...)}
}

// Render converts body (frontmatter already removed) to HTML.
func (r *Renderer) Render(body []byte) (Result, error) {
	root := r.md.Parser().Parse(text.NewReader(body))

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, body, root); err != nil {
		return Result{}, fmt.Errorf("render markdown: %w", err)
	}
	return Result{HTML: buf.Bytes(), Title: firstHeading(root, body)}, nil
}

func firstHeading(root gmast.Node, source []byte) string {
	var title string
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if h, ok := n.(*gmast.Heading); ok && h.Level == 1 {
			title = string(nodeText(h, source))
			return gmast.WalkStop, nil
		}
		return gmast.WalkContinue, nil
	})
	return title
}

func nodeText(n gmast.Node, source []byte) []byte {
	var buf bytes.Buffer
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *gmast.Text:
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *gmast.String:
			buf.Write(t.Value)
		}
		return gmast.WalkContinue, nil
	})
	return buf.Bytes()
}
