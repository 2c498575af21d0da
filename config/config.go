// Package config loads the loader configuration with koanf.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/classloader/core/metrics"
)

// Config is the root configuration.
type Config struct {
	Loader LoaderConfig `json:"loader"`
	// Modules are registered in order on ordered loaders, and under their
	// own name as tag on namespaced loaders.
	Modules    []string          `json:"modules"`
	Namespaces []NamespaceConfig `json:"namespaces"`
	// Objects maps a name to a descriptor: a qualified class name or a
	// map with "type" and "params".
	Objects map[string]any `json:"objects"`
	Logging LoggingConfig  `json:"logging"`
	Metrics metrics.Config `json:"metrics"`
	API     APIConfig      `json:"api"`
}

// APIConfig enables the loader introspection API.
type APIConfig struct {
	// Addr is the listen address. Empty disables the API.
	Addr string `json:"addr"`
	// Token, when set, is required as a bearer token.
	Token string `json:"token"`
}

// EnvPrefix marks environment overrides. K_LOADER__REVERSED=true sets
// loader.reversed.
const EnvPrefix = "K_"

// Load reads the file at path (YAML, JSON or TOML by extension), applies
// environment overrides, defaults and validation.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	parser, err := parserFor(path)
	if err != nil {
		return nil, err
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	case ".toml":
		return toml.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
}

// SetDefaults applies defaults to every section.
func (c *Config) SetDefaults() {
	c.Loader.SetDefaults()
	c.Logging.SetDefaults()
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Loader.Validate(); err != nil {
		return fmt.Errorf("loader: %w", err)
	}
	if err := validateModules(c.Modules); err != nil {
		return fmt.Errorf("modules: %w", err)
	}
	if err := validateNamespaces(c.Loader.Namespaced, c.Namespaces); err != nil {
		return fmt.Errorf("namespaces: %w", err)
	}
	if err := validateObjects(c.Objects); err != nil {
		return fmt.Errorf("objects: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	for i, s := range c.Metrics.Sinks {
		if s.Type == "" {
			return fmt.Errorf("metrics: sink %d has no type", i)
		}
	}
	return nil
}
