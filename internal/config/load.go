package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/grapesite/internal/foundation/errors"
)

// Load reads configPath, expands ${VAR} references, applies defaults and validates.
// Fields missing from the file keep their Default values.
func Load(configPath string) (*Config, error) {
	loadEnvFile()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewError(errors.CategoryNotFound, "configuration file not found").
				Fatal().
				WithContext("path", configPath).
				Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			Fatal().
			WithContext("path", configPath).
			Build()
	}

	return Parse(data)
}

// Parse decodes YAML configuration data on top of the defaults and validates it.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal([]byte(expandEnv(string(data))), cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").Fatal().Build()
	}
	ApplyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Init writes a default configuration file to configPath.
func Init(configPath string, force bool) error {
	return Write(configPath, Default(), force)
}

// Write saves cfg to configPath, refusing to replace an existing file unless force is set.
func Write(configPath string, cfg *Config, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ValidationError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal default config").Build()
	}

	header := []byte("# grapesite configuration\n# Values may reference environment variables as ${NAME}.\n")
	if err := os.WriteFile(configPath, append(header, data...), 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").
			WithContext("path", configPath).
			Build()
	}
	return nil
}
