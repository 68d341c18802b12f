package config

import "time"

// Default values applied by ApplyDefaults.
const (
	DefaultTitle       = "Grapejuice"
	DefaultSiteURL     = "https://www.yourdomain.tld"
	DefaultDescription = "Running Roblox on Linux, made easy"
	DefaultLang        = "en"
	DefaultOutputDir   = "./public"
	DefaultStylesDir   = "styles"
	DefaultSassBinary  = "sass"
	DefaultAssetRoot   = "./assets"
	DefaultContentDir  = "./content"
	DefaultPort        = 8000
	DefaultDebounce    = 300 * time.Millisecond
)

// DefaultIconSizes mirrors the icon set browsers and launchers request.
var DefaultIconSizes = []int{48, 72, 96, 144, 192, 256, 384, 512}

// Default returns a fully populated default configuration.
func Default() *Config {
	cfg := &Config{
		Plugins: PluginsConfig{
			Styles:   StylesPlugin{Enabled: true},
			Manifest: ManifestPlugin{Enabled: true, Icon: "images/icon.png"},
			Markdown: MarkdownPlugin{Enabled: true},
			Filesystem: []FilesystemSource{
				{Name: "pages", Path: DefaultContentDir},
			},
		},
		Output: OutputConfig{Clean: true},
		Serve:  ServeConfig{LiveReload: true},
		Verify: VerifyConfig{Enabled: true},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every empty field of cfg with its default.
func ApplyDefaults(cfg *Config) {
	if cfg.Site.Title == "" {
		cfg.Site.Title = DefaultTitle
	}
	if cfg.Site.SiteURL == "" {
		cfg.Site.SiteURL = DefaultSiteURL
	}
	if cfg.Site.Description == "" {
		cfg.Site.Description = DefaultDescription
	}
	if cfg.Site.Lang == "" {
		cfg.Site.Lang = DefaultLang
	}

	styles := &cfg.Plugins.Styles
	if styles.Dir == "" {
		styles.Dir = DefaultStylesDir
	}
	if styles.SassBinary == "" {
		styles.SassBinary = DefaultSassBinary
	}

	m := &cfg.Plugins.Manifest
	if m.Name == "" {
		m.Name = cfg.Site.Title
	}
	if m.ShortName == "" {
		m.ShortName = m.Name
	}
	if m.StartURL == "" {
		m.StartURL = "/"
	}
	if m.Display == "" {
		m.Display = "minimal-ui"
	}
	if m.ThemeColor == "" {
		m.ThemeColor = "#663399"
	}
	if m.BackgroundColor == "" {
		m.BackgroundColor = "#ffffff"
	}
	if len(m.Sizes) == 0 {
		m.Sizes = append([]int(nil), DefaultIconSizes...)
	}

	if len(cfg.Plugins.Markdown.Extensions) == 0 {
		cfg.Plugins.Markdown.Extensions = []string{".md", ".mdx"}
	}
	for i := range cfg.Plugins.Filesystem {
		if cfg.Plugins.Filesystem[i].Name == "" {
			cfg.Plugins.Filesystem[i].Name = "pages"
		}
	}
	if cfg.Plugins.RootImport.Root == "" {
		cfg.Plugins.RootImport.Root = DefaultAssetRoot
	}

	if cfg.Output.Directory == "" {
		cfg.Output.Directory = DefaultOutputDir
	}
	if cfg.Serve.Port == 0 {
		cfg.Serve.Port = DefaultPort
	}
	if cfg.Serve.Debounce == 0 {
		cfg.Serve.Debounce = DefaultDebounce
	}
}
