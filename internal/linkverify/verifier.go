// Package linkverify checks that internal links in a generated site resolve
// to files that were actually written.
package linkverify

import (
	"context"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/grapesite/internal/foundation/errors"
)

// BrokenLink is an internal link whose target does not exist.
type BrokenLink struct {
	Page   string // site-relative HTML file containing the link
	URL    string
	Target string // resolved site path
	Tag    string
}

// VerifySite scans every HTML file under root and returns broken internal links,
// sorted by page then URL.
func VerifySite(ctx context.Context, root string) ([]BrokenLink, error) {
	var broken []BrokenLink
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || filepath.Ext(p) != ".html" {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		found, err := verifyPage(root, filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		broken = append(broken, found...)
		return nil
	})
	if err != nil {
		if errors.IsClassified(err) {
			return nil, err
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to scan site for links").
			WithContext("root", root).
			Build()
	}

	sort.SliceStable(broken, func(i, j int) bool {
		if broken[i].Page != broken[j].Page {
			return broken[i].Page < broken[j].Page
		}
		return broken[i].URL < broken[j].URL
	})
	return broken, nil
}

func verifyPage(root, rel string) ([]BrokenLink, error) {
	f, err := os.Open(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	links, err := ExtractLinksFromReader(f)
	if err != nil {
		return nil, err
	}

	var broken []BrokenLink
	for _, l := range links {
		if !l.IsInternal {
			continue
		}
		target := resolve(rel, l.URL)
		if target == "" || exists(root, target) {
			continue
		}
		broken = append(broken, BrokenLink{Page: rel, URL: l.URL, Target: target, Tag: l.Tag})
	}
	return broken, nil
}

// resolve maps href, found in page rel, to a site path beginning with '/'.
func resolve(rel, href string) string {
	u, err := url.Parse(href)
	if err != nil || u.Path == "" {
		return ""
	}
	p := u.Path
	if !strings.HasPrefix(p, "/") {
		p = path.Join("/", path.Dir(rel), p)
	}
	return path.Clean(p)
}

// exists reports whether target is served: as a file, a directory index or an .html file.
func exists(root, target string) bool {
	base := filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(target, "/")))
	if st, err := os.Stat(base); err == nil {
		if !st.IsDir() {
			return true
		}
		_, err := os.Stat(filepath.Join(base, "index.html"))
		return err == nil
	}
	_, err := os.Stat(base + ".html")
	return err == nil
}
