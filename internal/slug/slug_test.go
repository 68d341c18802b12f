package slug

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Ubuntu 18.04":          "ubuntu-1804",
		"ubuntu-1804":           "ubuntu-1804",
		"Debian 10 and Similar": "debian-10-and-similar",
		"Fedora Workstation":    "fedora-workstation",
		"archlinux":             "archlinux",
		"  Solus  ":             "solus",
		"Crème brûlée":          "creme-brulee",
		"a__b--c":               "a-b-c",
		"!!!":                   "",
	}
	for in, want := range cases {
		require.Equal(t, want, Slugify(in), "input %q", in)
	}
}

func TestSlugify_Idempotent(t *testing.T) {
	for _, in := range []string{"Ubuntu 18.04", "Debian 10", "Crème brûlée", "x-y z"} {
		once := Slugify(in)
		require.Equal(t, once, Slugify(once))
	}
}

func TestRoutePath(t *testing.T) {
	cases := map[string]string{
		"docs/source-install/Ubuntu 18.04.md": "/docs/source-install/ubuntu-1804",
		"docs/source-install/solus.mdx":       "/docs/source-install/solus",
		"docs/index.mdx":                      "/docs",
		"index.md":                            "/",
		`docs\faq.md`:                         "/docs/faq",
	}
	for in, want := range cases {
		require.Equal(t, want, RoutePath(in), "input %q", in)
	}
}

var slugAlphabet = []rune("abcXYZ0189 -_.!/éÉüÜß")

func TestSlugify_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := rapid.StringOf(rapid.SampledFrom(slugAlphabet)).Draw(t, "in")
		out := Slugify(in)

		require.Equal(t, out, Slugify(out), "idempotent")
		require.False(t, strings.HasPrefix(out, "-") || strings.HasSuffix(out, "-"), "edge separator in %q", out)
		require.NotContains(t, out, "--")
		for _, r := range out {
			ok := r == '-' || r == 'ß' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
			require.True(t, ok, "unexpected rune %q in %q", r, out)
		}
	})
}

func TestRoutePath_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rel := rapid.StringOf(rapid.SampledFrom(slugAlphabet)).Draw(t, "rel") + ".md"
		route := RoutePath(rel)

		require.True(t, strings.HasPrefix(route, "/"))
		require.NotContains(t, route, "//")
		require.Equal(t, route == "/", strings.Trim(route, "/") == "")
	})
}
