package config

import (
	"net/url"
	"strings"

	"git.home.luguber.info/inful/grapesite/internal/foundation/errors"
)

// Validate checks cfg for values the generator cannot work with.
func Validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Site.Title) == "" {
		return errors.ConfigError("site.title is required").Build()
	}

	u, err := url.Parse(cfg.Site.SiteURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.ConfigError("site.site_url must be an absolute URL").
			WithContext("site_url", cfg.Site.SiteURL).
			Build()
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.ConfigError("site.site_url must use http or https").
			WithContext("site_url", cfg.Site.SiteURL).
			Build()
	}

	for _, ext := range cfg.Plugins.Markdown.Extensions {
		if ext != ".md" && ext != ".mdx" && ext != ".markdown" {
			return errors.ConfigError("unsupported markdown extension").
				WithContext("extension", ext).
				Build()
		}
	}

	names := make(map[string]struct{}, len(cfg.Plugins.Filesystem))
	for _, src := range cfg.Plugins.Filesystem {
		if strings.TrimSpace(src.Path) == "" {
			return errors.ConfigError("filesystem source path is required").
				WithContext("source", src.Name).
				Build()
		}
		if _, dup := names[src.Name]; dup {
			return errors.ConfigError("duplicate filesystem source name").
				WithContext("source", src.Name).
				Build()
		}
		names[src.Name] = struct{}{}
	}

	if cfg.Plugins.Manifest.Enabled {
		for _, size := range cfg.Plugins.Manifest.Sizes {
			if size <= 0 || size > 4096 {
				return errors.ConfigError("manifest icon sizes must be between 1 and 4096").
					WithContext("size", size).
					Build()
			}
		}
	}

	if strings.TrimSpace(cfg.Output.Directory) == "" {
		return errors.ConfigError("output.directory is required").Build()
	}
	if cfg.Serve.Port < 1 || cfg.Serve.Port > 65535 {
		return errors.ConfigError("serve.port must be between 1 and 65535").
			WithContext("port", cfg.Serve.Port).
			Build()
	}
	if cfg.Serve.RebuildInterval < 0 {
		return errors.ConfigError("serve.rebuild_interval must not be negative").Build()
	}
	return nil
}
