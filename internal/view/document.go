package view

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Document is the full HTML shell wrapped around a rendered page body.
type Document struct {
	Lang        string
	Title       string
	Description string
	Keywords    []string
	Canonical   string
	Manifest    string
	Favicon     string
	ThemeColor  string
	Stylesheets []string
	Body        *html.Node
}

// Node builds the document tree: doctype, head metadata, stylesheet links, body.
func (d Document) Node() *html.Node {
	lang := d.Lang
	if lang == "" {
		lang = "en"
	}

	head := El("head", nil,
		El("meta", Attrs("charset", "utf-8")),
		El("meta", Attrs("name", "viewport", "content", "width=device-width, initial-scale=1")),
		El("title", nil, Text(d.Title)),
	)
	if d.Description != "" {
		Append(head, El("meta", Attrs("name", "description", "content", d.Description)))
	}
	if len(d.Keywords) > 0 {
		Append(head, El("meta", Attrs("name", "keywords", "content", strings.Join(d.Keywords, ", "))))
	}
	if d.ThemeColor != "" {
		Append(head, El("meta", Attrs("name", "theme-color", "content", d.ThemeColor)))
	}
	if d.Canonical != "" {
		Append(head, El("link", Attrs("rel", "canonical", "href", d.Canonical)))
	}
	if d.Manifest != "" {
		Append(head, El("link", Attrs("rel", "manifest", "href", d.Manifest)))
	}
	if d.Favicon != "" {
		Append(head, El("link", Attrs("rel", "icon", "href", d.Favicon)))
	}
	for _, sheet := range d.Stylesheets {
		Append(head, El("link", Attrs("rel", "stylesheet", "href", "/"+sheet)))
	}

	body := El("body", nil, d.Body)

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	doc.AppendChild(El("html", Attrs("lang", lang), head, body))
	return doc
}

// Render writes the document to w.
func (d Document) Render(w io.Writer) error {
	return Render(w, d.Node())
}
