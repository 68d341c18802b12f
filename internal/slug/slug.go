// Package slug turns human readable names and content paths into URL route segments.
package slug

import (
	"path"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var lower = cases.Lower(language.Und)

// Slugify lowercases s, strips diacritics and punctuation, and joins words with '-'.
//
//	"Ubuntu 18.04"          -> "ubuntu-1804"
//	"Debian 10 and Similar" -> "debian-10-and-similar"
//	"Crème brûlée"          -> "creme-brulee"
//
// Slugify is idempotent.
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = lower.String(folded)

	var sb strings.Builder
	pendingSep := false
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingSep && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			pendingSep = false
			sb.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_':
			pendingSep = true
		}
	}
	return sb.String()
}

// RoutePath maps a content file path relative to a source root to its site route.
// The extension is dropped, every segment is slugified and index files map to
// their directory.
//
//	"docs/source-install/Ubuntu 18.04.md" -> "/docs/source-install/ubuntu-1804"
//	"docs/index.mdx"                      -> "/docs"
//	"index.md"                            -> "/"
func RoutePath(rel string) string {
	rel = strings.ReplaceAll(rel, "\\", "/")
	rel = strings.TrimSuffix(rel, path.Ext(rel))

	parts := strings.Split(rel, "/")
	if len(parts) > 0 && strings.EqualFold(parts[len(parts)-1], "index") {
		parts = parts[:len(parts)-1]
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := Slugify(p); s != "" {
			out = append(out, s)
		}
	}
	return "/" + strings.Join(out, "/")
}
