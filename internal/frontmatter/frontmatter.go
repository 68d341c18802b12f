package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Meta is the page metadata grapesite understands in YAML frontmatter.
type Meta struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description,omitempty"`
	Slug        string   `yaml:"slug,omitempty"`
	Draft       bool     `yaml:"draft,omitempty"`
	Weight      int      `yaml:"weight,omitempty"` // orders pages, lower first
	Tags        []string `yaml:"tags,omitempty"`   // rendered as page keywords
}

// Split separates YAML frontmatter (`---` delimited) from the Markdown body.
//
// If the document does not start with a YAML frontmatter delimiter, had is false
// and body is the full input.
func Split(content []byte) (frontmatter []byte, body []byte, had bool, err error) {
	nl := detectNewline(content)
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	start := len(open)
	closeLine := []byte("---" + nl)
	if bytes.HasPrefix(content[start:], closeLine) {
		return []byte{}, content[start+len(closeLine):], true, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(content[start:], closeSeq)
	if idx < 0 {
		// A closing delimiter on the final line without trailing newline.
		tail := []byte(nl + "---")
		if bytes.HasSuffix(content, tail) {
			return content[start : len(content)-len("---")], []byte{}, true, nil
		}
		return nil, nil, false, ErrMissingClosingDelimiter
	}

	end := start + idx + len(nl)
	return content[start:end], content[start+idx+len(closeSeq):], true, nil
}

// Document is a content file split into its decoded frontmatter and body.
type Document struct {
	Meta Meta
	// Raw is the frontmatter text without delimiters; empty when absent.
	Raw  []byte
	Body []byte
}

// Parse splits content and decodes its frontmatter into Meta.
func Parse(content []byte) (Document, error) {
	fm, body, _, err := Split(content)
	if err != nil {
		return Document{}, err
	}
	meta, err := DecodeMeta(fm)
	if err != nil {
		return Document{}, err
	}
	return Document{Meta: meta, Raw: fm, Body: body}, nil
}

// DecodeMeta decodes raw YAML frontmatter into Meta. Empty input yields a zero Meta.
func DecodeMeta(fm []byte) (Meta, error) {
	var meta Meta
	if len(bytes.TrimSpace(fm)) == 0 {
		return meta, nil
	}
	if err := yaml.Unmarshal(fm, &meta); err != nil {
		return Meta{}, fmt.Errorf("decode frontmatter: %w", err)
	}
	return meta, nil
}

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
