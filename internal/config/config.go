package config

import (
	"time"
)

// DefaultConfigFile is the configuration file name used when none is given.
const DefaultConfigFile = "grapesite.yaml"

// Config represents the grapesite configuration.
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Plugins PluginsConfig `yaml:"plugins"`
	Output  OutputConfig  `yaml:"output"`
	Serve   ServeConfig   `yaml:"serve"`
	Verify  VerifyConfig  `yaml:"verify"`
}

// SiteConfig carries the site metadata.
type SiteConfig struct {
	Title       string `yaml:"title"`
	SiteURL     string `yaml:"site_url"`
	Description string `yaml:"description,omitempty"`
	Lang        string `yaml:"lang,omitempty"`
}

// PluginsConfig enables the generator plugins.
type PluginsConfig struct {
	Styles     StylesPlugin       `yaml:"styles"`
	Manifest   ManifestPlugin     `yaml:"manifest"`
	Markdown   MarkdownPlugin     `yaml:"markdown"`
	Filesystem []FilesystemSource `yaml:"filesystem,omitempty"`
	RootImport RootImportPlugin   `yaml:"root_import"`
}

// StylesPlugin copies CSS and compiles Sass sources.
type StylesPlugin struct {
	Enabled    bool   `yaml:"enabled"`
	Dir        string `yaml:"dir"`
	SassBinary string `yaml:"sass_binary,omitempty"`
}

// ManifestPlugin generates the web app manifest and icons from a source image.
type ManifestPlugin struct {
	Enabled         bool   `yaml:"enabled"`
	Icon            string `yaml:"icon,omitempty"`
	Name            string `yaml:"name,omitempty"`
	ShortName       string `yaml:"short_name,omitempty"`
	StartURL        string `yaml:"start_url,omitempty"`
	Display         string `yaml:"display,omitempty"`
	ThemeColor      string `yaml:"theme_color,omitempty"`
	BackgroundColor string `yaml:"background_color,omitempty"`
	Sizes           []int  `yaml:"sizes,omitempty"`
}

// MarkdownPlugin enables Markdown/MDX pages.
type MarkdownPlugin struct {
	Enabled    bool     `yaml:"enabled"`
	Extensions []string `yaml:"extensions,omitempty"`
	Unsafe     bool     `yaml:"unsafe,omitempty"`
}

// FilesystemSource is a directory whose Markdown files become pages.
type FilesystemSource struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// RootImportPlugin configures the directory root-relative asset imports resolve against.
type RootImportPlugin struct {
	Root string `yaml:"root"`
}

// OutputConfig represents output configuration.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean"`
}

// ServeConfig configures the preview server.
type ServeConfig struct {
	Host            string        `yaml:"host,omitempty"`
	Port            int           `yaml:"port"`
	RebuildInterval time.Duration `yaml:"rebuild_interval,omitempty"`
	Debounce        time.Duration `yaml:"debounce,omitempty"`
	// LiveReload makes open pages reload after each successful rebuild.
	LiveReload      bool          `yaml:"live_reload"`
}

// VerifyConfig controls post-build link verification.
type VerifyConfig struct {
	Enabled bool `yaml:"enabled"`
	Strict  bool `yaml:"strict,omitempty"`
}
