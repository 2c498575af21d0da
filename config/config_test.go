package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/classloader/core/factory"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

const yamlConfig = `loader:
  id: main
  namespaced: true
  reversed: true
modules:
  - app.handlers
namespaces:
  - tag: logging
    module: log
  - tag: app
    module: app.models
objects:
  root: "logging:Logger"
  audit:
    type: "logging:Logger"
    params:
      name: audit
      handlers: ["logging:NullHandler"]
logging:
  level: debug
  format: console
metrics:
  prometheus_addr: ":9100"
  sinks:
    - type: nop
`

func TestLoadYAML(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.yaml", yamlConfig))
	require.NoError(t, err)

	assert.Equal(t, "main", cfg.Loader.ID)
	assert.True(t, cfg.Loader.Namespaced)
	assert.True(t, cfg.Loader.Reversed)
	assert.True(t, cfg.Loader.IsCached(), "cached defaults to true")
	assert.True(t, cfg.Loader.WithBuiltins())
	assert.Equal(t, []string{"app.handlers"}, cfg.Modules)
	if diff := cmp.Diff([]NamespaceConfig{
		{Tag: "logging", Module: "log"},
		{Tag: "app", Module: "app.models"},
	}, cfg.Namespaces); diff != "" {
		t.Errorf("namespaces mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, ":9100", cfg.Metrics.PrometheusAddr)
	require.Len(t, cfg.Metrics.Sinks, 1)
	assert.Equal(t, "nop", cfg.Metrics.Sinks[0].Type)

	d, err := factory.ParseDescriptor(cfg.Objects["audit"])
	require.NoError(t, err)
	assert.Equal(t, "logging:Logger", d.Type)
	assert.Equal(t, "audit", d.Params["name"])
	d, err = factory.ParseDescriptor(cfg.Objects["root"])
	require.NoError(t, err)
	assert.Empty(t, d.Params)
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{
  "loader": {"cached": false},
  "modules": ["a", "b"],
  "objects": {"h": {"type": "NullHandler"}}
}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Loader.IsCached())
	assert.False(t, cfg.Loader.Namespaced)
	assert.Equal(t, []string{"a", "b"}, cfg.Modules)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, "config.toml", `
modules = ["x.y"]

[loader]
namespaced = true
builtins = false

[[namespaces]]
tag = "ns"
module = "x.z"

[logging]
level = "warn"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Loader.Namespaced)
	assert.False(t, cfg.Loader.WithBuiltins())
	assert.Equal(t, []string{"x.y"}, cfg.Modules)
	assert.Equal(t, []NamespaceConfig{{Tag: "ns", Module: "x.z"}}, cfg.Namespaces)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("K_LOADER__REVERSED", "false")
	t.Setenv("K_LOGGING__LEVEL", "error")
	t.Setenv("K_API__TOKEN", "s3cret")
	cfg, err := Load(writeConfig(t, "config.yaml", yamlConfig))
	require.NoError(t, err)
	assert.False(t, cfg.Loader.Reversed)
	assert.True(t, cfg.Loader.Namespaced, "keys without an override keep their file value")
	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, "s3cret", cfg.API.Token)
}

func TestLoadRejects(t *testing.T) {
	cases := map[string]string{
		"namespaces without namespaced loader": "namespaces:\n  - tag: a\n    module: b\n",
		"namespace tag with separator":         "loader:\n  namespaced: true\nnamespaces:\n  - tag: 'a:b'\n    module: b\n",
		"namespace without module":             "loader:\n  namespaced: true\nnamespaces:\n  - tag: a\n",
		"duplicate tag":                        "loader:\n  namespaced: true\nnamespaces:\n  - {tag: a, module: b}\n  - {tag: a, module: c}\n",
		"duplicate module":                     "modules: [a, a]\n",
		"object without type":                  "objects:\n  x:\n    params: {a: 1}\n",
		"unknown level":                        "logging:\n  level: loud\n",
		"unknown format":                       "logging:\n  format: xml\n",
		"sink without type":                    "metrics:\n  sinks:\n    - conf: {}\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, "config.yaml", data))
			assert.Error(t, err)
		})
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	_, err := Load(writeConfig(t, "config.ini", "x=1"))
	assert.ErrorContains(t, err, "unsupported config format")
	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
