package build

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"git.home.luguber.info/inful/grapesite/internal/config"
	"git.home.luguber.info/inful/grapesite/internal/foundation/errors"
	"git.home.luguber.info/inful/grapesite/internal/metrics"
	"git.home.luguber.info/inful/grapesite/internal/pages"
	"git.home.luguber.info/inful/grapesite/internal/testutil"
	"git.home.luguber.info/inful/grapesite/internal/view"
)

type fakeSass struct{}

func (fakeSass) Compile(_ context.Context, _, dst string) error {
	return os.WriteFile(dst, []byte("/* compiled */"), 0o600)
}

// writeGuides creates one Markdown page per install guide so /docs has no broken links.
func writeGuides(t *testing.T, root string) {
	t.Helper()
	for _, g := range pages.Guides {
		name := strings.TrimPrefix(g.Route(), pages.SourceInstallRoute)
		testutil.WriteFile(t, filepath.Join(root, "content", "docs", "source-install", name+".md"),
			"---\ntitle: "+g.Name+"\n---\nInstall steps.\n")
	}
}

func parseFile(t *testing.T, path string) *html.Node {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	doc, err := html.Parse(f)
	require.NoError(t, err)
	return doc
}

func TestGenerate_FullSite(t *testing.T) {
	cfg, root := testutil.SiteConfig(t)
	writeGuides(t, root)

	report, err := NewGenerator(cfg).Generate(context.Background())
	require.NoError(t, err)
	require.Equal(t, metrics.ResultSuccess, report.Outcome)
	require.Empty(t, report.BrokenLinks)
	require.NotEmpty(t, report.BuildID)
	require.Len(t, report.Pages, 2+len(pages.Guides))
	require.Equal(t, "/", report.Pages[0].Route)
	require.Equal(t, "/docs", report.Pages[1].Route)

	testutil.NewSiteAssertions(t, cfg.Output.Directory).HasFile(
		"index.html",
		"docs/index.html",
		"docs/source-install/archlinux/index.html",
		"docs/source-install/ubuntu-1804/index.html",
		"images/grapejuice.svg",
		"styles/global.css",
		"styles/components/navigation.css",
		"manifest.webmanifest",
		"favicon-32x32.png",
		"icons/icon-48x48.png",
		ReportFile,
	)

	for _, st := range []StageName{StagePrepareOutput, StageRenderPages, StageWriteReport} {
		require.Contains(t, report.StageDurations, string(st))
	}
}

func TestGenerate_PagesCarryDocumentChrome(t *testing.T) {
	cfg, root := testutil.SiteConfig(t)
	writeGuides(t, root)

	_, err := NewGenerator(cfg).Generate(context.Background())
	require.NoError(t, err)

	doc := parseFile(t, filepath.Join(cfg.Output.Directory, "index.html"))

	titles := view.FindAll(doc, "title")
	require.Len(t, titles, 1)
	require.Equal(t, "Grapejuice", view.TextContent(titles[0]))

	rels := map[string][]string{}
	for _, l := range view.FindAll(doc, "link") {
		rels[view.GetAttr(l, "rel")] = append(rels[view.GetAttr(l, "rel")], view.GetAttr(l, "href"))
	}
	require.Equal(t, []string{"https://www.yourdomain.tld/"}, rels["canonical"])
	require.Equal(t, []string{"/manifest.webmanifest"}, rels["manifest"])
	require.Equal(t, []string{"/favicon-32x32.png"}, rels["icon"])
	require.Equal(t, []string{
		"/styles/index.css",
		"/styles/components/button.css",
		"/styles/global.css",
		"/styles/layout/main-layout.css",
		"/styles/components/navigation.css",
	}, rels["stylesheet"])

	guide := parseFile(t, filepath.Join(cfg.Output.Directory, "docs", "source-install", "solus", "index.html"))
	require.Equal(t, "Solus | Grapejuice", view.TextContent(view.FindAll(guide, "title")[0]))
	navLinks := view.FindAll(view.FindAll(guide, "nav")[0], "a")
	require.Len(t, navLinks, 2)
}

func TestGenerate_BrokenLinksAreWarnings(t *testing.T) {
	cfg, _ := testutil.SiteConfig(t)

	report, err := NewGenerator(cfg).Generate(context.Background())
	require.NoError(t, err)
	require.Equal(t, metrics.ResultWarning, report.Outcome)
	require.Len(t, report.BrokenLinks, len(pages.Guides))
	require.Equal(t, "docs/index.html", report.BrokenLinks[0].Page)

	data, err := os.ReadFile(filepath.Join(cfg.Output.Directory, ReportFile))
	require.NoError(t, err)
	var written Report
	require.NoError(t, json.Unmarshal(data, &written))
	require.Equal(t, report.BuildID, written.BuildID)
	require.Equal(t, metrics.ResultWarning, written.Outcome)
}

func TestGenerate_StrictVerificationFails(t *testing.T) {
	cfg, _ := testutil.SiteConfig(t)
	cfg.Verify.Strict = true

	report, err := NewGenerator(cfg).Generate(context.Background())
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryContent))
	require.Equal(t, metrics.ResultFailed, report.Outcome)
	require.NoFileExists(t, filepath.Join(cfg.Output.Directory, ReportFile))
}

func TestGenerate_SkipsDrafts(t *testing.T) {
	cfg, root := testutil.SiteConfig(t)
	cfg.Verify.Enabled = false
	testutil.WriteFile(t, filepath.Join(root, "content", "docs", "wip.md"), "---\ntitle: WIP\ndraft: true\n---\nsoon\n")
	testutil.WriteFile(t, filepath.Join(root, "content", "docs", "faq.md"), "# Frequently asked\n\nText.\n")

	report, err := NewGenerator(cfg).Generate(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"/docs/wip"}, report.SkippedDrafts)
	require.NoFileExists(t, filepath.Join(cfg.Output.Directory, "docs", "wip", "index.html"))

	faq := parseFile(t, filepath.Join(cfg.Output.Directory, "docs", "faq", "index.html"))
	require.Equal(t, "Frequently asked | Grapejuice", view.TextContent(view.FindAll(faq, "title")[0]))
	require.Len(t, view.FindAll(faq, "h1"), 1)
}

func TestGenerate_PageTagsAndWeight(t *testing.T) {
	cfg, root := testutil.SiteConfig(t)
	cfg.Verify.Enabled = false
	testutil.WriteFile(t, filepath.Join(root, "content", "docs", "faq.md"), "---\ntags: [help, linux]\n---\n# FAQ\n")
	testutil.WriteFile(t, filepath.Join(root, "content", "docs", "zz-start.md"), "---\nweight: -5\n---\n# Start\n")

	report, err := NewGenerator(cfg).Generate(context.Background())
	require.NoError(t, err)
	require.Equal(t, "/docs/zz-start", report.Pages[2].Route)
	require.Equal(t, "/docs/faq", report.Pages[3].Route)

	faq := parseFile(t, filepath.Join(cfg.Output.Directory, "docs", "faq", "index.html"))
	var keywords string
	for _, m := range view.FindAll(faq, "meta") {
		if view.GetAttr(m, "name") == "keywords" {
			keywords = view.GetAttr(m, "content")
		}
	}
	require.Equal(t, "help, linux", keywords)
}

func TestGenerate_MissingContentSourceIsWarning(t *testing.T) {
	cfg, _ := testutil.SiteConfig(t)
	cfg.Verify.Enabled = false

	report, err := NewGenerator(cfg).Generate(context.Background())
	require.NoError(t, err)
	require.Equal(t, metrics.ResultWarning, report.Outcome)
	require.Len(t, report.Warnings, 1)
	require.Contains(t, report.Warnings[0], "content source directory missing")
}

func TestGenerate_DuplicateRouteFails(t *testing.T) {
	cfg, root := testutil.SiteConfig(t)
	testutil.WriteFile(t, filepath.Join(root, "content", "docs.md"), "# Docs\n")

	_, err := NewGenerator(cfg).Generate(context.Background())
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryContent))
	require.Contains(t, err.Error(), "duplicate route")
}

func TestGenerate_CompilesSass(t *testing.T) {
	cfg, root := testutil.SiteConfig(t)
	cfg.Verify.Enabled = false
	testutil.WriteFile(t, filepath.Join(root, "styles", "theme.scss"), "$c: red; body { color: $c; }")
	testutil.WriteFile(t, filepath.Join(root, "styles", "_vars.scss"), "$x: 1;")

	report, err := NewGenerator(cfg, WithSassCompiler(fakeSass{})).Generate(context.Background())
	require.NoError(t, err)
	require.Contains(t, report.Stylesheets, "styles/theme.css")
	require.NotContains(t, report.Stylesheets, "styles/_vars.css")
	require.FileExists(t, filepath.Join(cfg.Output.Directory, "styles", "theme.css"))
}

func TestGenerate_UserAssetOverridesLogo(t *testing.T) {
	cfg, root := testutil.SiteConfig(t)
	cfg.Verify.Enabled = false
	testutil.WriteFile(t, filepath.Join(root, "assets", "images", "grapejuice.svg"), "<svg id=\"custom\"/>")

	_, err := NewGenerator(cfg).Generate(context.Background())
	require.NoError(t, err)
	testutil.NewSiteAssertions(t, cfg.Output.Directory).FileContains("images/grapejuice.svg", "custom")
}

func TestGenerate_ManifestDisabled(t *testing.T) {
	cfg, _ := testutil.SiteConfig(t)
	cfg.Plugins.Manifest.Enabled = false
	cfg.Verify.Enabled = false

	report, err := NewGenerator(cfg).Generate(context.Background())
	require.NoError(t, err)
	require.Empty(t, report.ManifestFiles)
	require.NoFileExists(t, filepath.Join(cfg.Output.Directory, "manifest.webmanifest"))

	doc := parseFile(t, filepath.Join(cfg.Output.Directory, "index.html"))
	for _, l := range view.FindAll(doc, "link") {
		require.NotEqual(t, "manifest", view.GetAttr(l, "rel"))
	}
}

func TestGenerate_CanceledContext(t *testing.T) {
	cfg, _ := testutil.SiteConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := NewGenerator(cfg).Generate(ctx)
	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, metrics.ResultCanceled, report.Outcome)
}

func TestGenerate_RefusesProtectedOutputDirectories(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	cases := []struct {
		name string
		out  func(cfg *config.Config, root string) string
	}{
		{"filesystem root", func(*config.Config, string) string { return "/" }},
		{"working directory", func(*config.Config, string) string { return wd }},
		{"parent of working directory", func(*config.Config, string) string { return filepath.Dir(wd) }},
		{"content source", func(cfg *config.Config, _ string) string { return cfg.Plugins.Filesystem[0].Path }},
		{"asset root", func(cfg *config.Config, _ string) string { return cfg.Plugins.RootImport.Root }},
		{"styles directory", func(cfg *config.Config, _ string) string { return cfg.Plugins.Styles.Dir }},
		{"ancestor of sources", func(_ *config.Config, root string) string { return root }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, root := testutil.SiteConfig(t)
			writeGuides(t, root)
			testutil.WriteFile(t, filepath.Join(root, "assets", "images", "logo.svg"), "<svg/>")
			testutil.WriteFile(t, filepath.Join(root, "styles", "theme.css"), "body{}")
			cfg.Output.Directory = tc.out(cfg, root)

			_, err := NewGenerator(cfg).Generate(context.Background())
			require.Error(t, err)
			require.True(t, errors.HasCategory(err, errors.CategoryValidation))

			require.FileExists(t, filepath.Join(root, "content", "docs", "source-install", "solus.md"))
			require.FileExists(t, filepath.Join(root, "assets", "images", "logo.svg"))
			require.FileExists(t, filepath.Join(root, "styles", "theme.css"))
			require.DirExists(t, wd)
		})
	}
}

func TestGenerate_RefusesAncestorOfWorkingDirectory(t *testing.T) {
	cfg, _ := testutil.SiteConfig(t)
	project := filepath.Join(t.TempDir(), "project")
	testutil.WriteFile(t, filepath.Join(project, "grapesite.yaml"), "site: {title: Grapejuice}\n")
	t.Chdir(project)
	cfg.Output.Directory = filepath.Dir(project)

	_, err := NewGenerator(cfg).Generate(context.Background())
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryValidation))
	require.FileExists(t, filepath.Join(project, "grapesite.yaml"))
}

func TestGenerate_AllowsOutputInsideProject(t *testing.T) {
	cfg, root := testutil.SiteConfig(t)
	cfg.Verify.Enabled = false
	t.Chdir(root)
	cfg.Output.Directory = "public"

	_, err := NewGenerator(cfg).Generate(context.Background())
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(root, "public", "index.html"))
	requireNoStagingLeftovers(t, filepath.Join(root, "public"))
}

// requireNoStagingLeftovers fails if a staging or backup sibling of outDir remains.
func requireNoStagingLeftovers(t *testing.T, outDir string) {
	t.Helper()
	entries, err := os.ReadDir(filepath.Dir(outDir))
	require.NoError(t, err)
	base := filepath.Base(outDir)
	for _, e := range entries {
		require.False(t, strings.HasPrefix(e.Name(), base+".staging-"), "leftover staging directory %s", e.Name())
		require.NotEqual(t, base+".prev", e.Name())
	}
}

func TestGenerate_FailedRebuildKeepsPreviousSite(t *testing.T) {
	cfg, root := testutil.SiteConfig(t)
	writeGuides(t, root)
	gen := NewGenerator(cfg)

	first, err := gen.Generate(context.Background())
	require.NoError(t, err)
	index, err := os.ReadFile(filepath.Join(cfg.Output.Directory, "index.html"))
	require.NoError(t, err)

	testutil.WriteFile(t, filepath.Join(root, "content", "docs", "index.md"), "# Clash\n")
	_, err = gen.Generate(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicate route")

	after, err := os.ReadFile(filepath.Join(cfg.Output.Directory, "index.html"))
	require.NoError(t, err)
	require.Equal(t, string(index), string(after))
	testutil.NewSiteAssertions(t, cfg.Output.Directory).
		HasFile("docs/index.html", "styles/global.css", "docs/source-install/solus/index.html").
		FileContains(ReportFile, first.BuildID)
	requireNoStagingLeftovers(t, cfg.Output.Directory)
}

func TestGenerate_CanceledRebuildKeepsPreviousSite(t *testing.T) {
	cfg, root := testutil.SiteConfig(t)
	writeGuides(t, root)
	_, err := NewGenerator(cfg).Generate(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewGenerator(cfg).Generate(ctx)
	require.ErrorIs(t, err, context.Canceled)
	testutil.NewSiteAssertions(t, cfg.Output.Directory).HasFile("index.html", ReportFile)
	requireNoStagingLeftovers(t, cfg.Output.Directory)
}

func TestGenerate_PromotionReplacesRemovedPages(t *testing.T) {
	cfg, root := testutil.SiteConfig(t)
	cfg.Verify.Enabled = false
	faq := filepath.Join(root, "content", "docs", "faq.md")
	testutil.WriteFile(t, faq, "# FAQ v1\n")
	gen := NewGenerator(cfg)

	_, err := gen.Generate(context.Background())
	require.NoError(t, err)
	testutil.NewSiteAssertions(t, cfg.Output.Directory).FileContains("docs/faq/index.html", "FAQ v1")

	require.NoError(t, os.Remove(faq))
	testutil.WriteFile(t, filepath.Join(root, "content", "docs", "help.md"), "# Help\n")
	_, err = gen.Generate(context.Background())
	require.NoError(t, err)
	testutil.NewSiteAssertions(t, cfg.Output.Directory).
		NoFile("docs/faq/index.html").
		HasFile("docs/help/index.html")
	requireNoStagingLeftovers(t, cfg.Output.Directory)
}

func TestGenerate_WithoutCleanKeepsForeignFiles(t *testing.T) {
	cfg, _ := testutil.SiteConfig(t)
	cfg.Verify.Enabled = false
	testutil.WriteFile(t, filepath.Join(cfg.Output.Directory, "CNAME"), "grapejuice.example\n")

	cfg.Output.Clean = false
	_, err := NewGenerator(cfg).Generate(context.Background())
	require.NoError(t, err)
	testutil.NewSiteAssertions(t, cfg.Output.Directory).HasFile("CNAME", "index.html")

	cfg.Output.Clean = true
	_, err = NewGenerator(cfg).Generate(context.Background())
	require.NoError(t, err)
	testutil.NewSiteAssertions(t, cfg.Output.Directory).NoFile("CNAME").HasFile("index.html")
}

func TestGenerate_OutputPathIsFile(t *testing.T) {
	cfg, root := testutil.SiteConfig(t)
	cfg.Output.Directory = filepath.Join(root, "site.txt")
	testutil.WriteFile(t, cfg.Output.Directory, "not a dir")

	_, err := NewGenerator(cfg).Generate(context.Background())
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryFileSystem))
}

func TestIsOutputPath(t *testing.T) {
	out := filepath.Join("/site", "public")
	require.True(t, IsOutputPath(filepath.Join(out, "index.html"), out))
	require.True(t, IsOutputPath(out, out))
	require.True(t, IsOutputPath(filepath.Join("/site", "public.staging-123", "index.html"), out))
	require.True(t, IsOutputPath(filepath.Join("/site", "public.prev"), out))
	require.False(t, IsOutputPath(filepath.Join("/site", "publicity", "a.md"), out))
	require.False(t, IsOutputPath(filepath.Join("/site", "content", "a.md"), out))
	require.False(t, IsOutputPath("/site", out))
}

func TestGenerate_RebuildIsIdempotent(t *testing.T) {
	cfg, root := testutil.SiteConfig(t)
	writeGuides(t, root)
	gen := NewGenerator(cfg)

	_, err := gen.Generate(context.Background())
	require.NoError(t, err)
	first, err := os.ReadFile(filepath.Join(cfg.Output.Directory, "docs", "index.html"))
	require.NoError(t, err)

	_, err = gen.Generate(context.Background())
	require.NoError(t, err)
	second, err := os.ReadFile(filepath.Join(cfg.Output.Directory, "docs", "index.html"))
	require.NoError(t, err)
	require.Equal(t, string(first), string(second))
}

func TestOutputFile(t *testing.T) {
	cases := map[string]string{
		"/":                          "index.html",
		"/docs":                      "docs/index.html",
		"/docs/":                     "docs/index.html",
		"/docs/source-install/solus": "docs/source-install/solus/index.html",
		"/../etc":                    "etc/index.html",
	}
	for route, want := range cases {
		require.Equal(t, want, OutputFile(route), route)
	}
}

func TestRoutes_ListsBuiltinAndSourcedWithoutWriting(t *testing.T) {
	cfg, root := testutil.SiteConfig(t)
	writeGuides(t, root)
	testutil.WriteFile(t, filepath.Join(root, "content", "draft.md"), "---\ndraft: true\n---\n")

	routes, err := NewGenerator(cfg).Routes(context.Background())
	require.NoError(t, err)
	require.Len(t, routes, 2+len(pages.Guides))
	require.Equal(t, SourceBuiltin, routes[0].Source)
	require.Equal(t, "/docs/source-install/archlinux", routes[2].Path)
	require.NotEmpty(t, routes[2].Fingerprint)
	require.NoDirExists(t, cfg.Output.Directory)
}
