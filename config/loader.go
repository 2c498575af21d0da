package config

import (
	"errors"
	"fmt"
	"sort"

	"github.com/kilianp07/classloader/core/factory"
	"github.com/kilianp07/classloader/core/registry"
)

// LoaderConfig selects the loader variant.
type LoaderConfig struct {
	// ID names the loader in logs, metrics and events. Empty generates one.
	ID string `json:"id"`
	// Namespaced keys the registry by namespace tag.
	Namespaced bool `json:"namespaced"`
	// Reversed searches the most recently registered module first.
	Reversed bool `json:"reversed"`
	// Cached wraps the loader with the class and factory caches.
	// Defaults to true.
	Cached *bool `json:"cached"`
	// Builtins defines the builtin "log" module in the catalog and
	// registers its factories. The module is searched only once listed
	// under modules or namespaces.
	// Defaults to true.
	Builtins *bool `json:"builtins"`
}

// NamespaceConfig maps a tag to a module name.
type NamespaceConfig struct {
	Tag    string `json:"tag"`
	Module string `json:"module"`
}

// SetDefaults applies sane defaults.
func (c *LoaderConfig) SetDefaults() {
	if c.Cached == nil {
		c.Cached = boolPtr(true)
	}
	if c.Builtins == nil {
		c.Builtins = boolPtr(true)
	}
}

// Validate checks mandatory fields.
func (c LoaderConfig) Validate() error {
	if c.Cached == nil || c.Builtins == nil {
		return errors.New("defaults not applied")
	}
	return nil
}

// IsCached reports whether the loader is wrapped with caches.
func (c LoaderConfig) IsCached() bool { return c.Cached == nil || *c.Cached }

// WithBuiltins reports whether the builtin modules are defined.
func (c LoaderConfig) WithBuiltins() bool { return c.Builtins == nil || *c.Builtins }

func boolPtr(b bool) *bool { return &b }

func validateModules(mods []string) error {
	seen := make(map[string]bool, len(mods))
	for _, m := range mods {
		if m == "" {
			return errors.New("empty module name")
		}
		if seen[m] {
			return fmt.Errorf("module %q listed twice", m)
		}
		seen[m] = true
	}
	return nil
}

func validateNamespaces(namespaced bool, nss []NamespaceConfig) error {
	if len(nss) > 0 && !namespaced {
		return errors.New("namespaces require loader.namespaced")
	}
	seen := make(map[string]bool, len(nss))
	for _, ns := range nss {
		if err := registry.ValidateNamespace(ns.Tag); err != nil {
			return err
		}
		if ns.Module == "" {
			return fmt.Errorf("namespace %q has no module", ns.Tag)
		}
		if seen[ns.Tag] {
			return fmt.Errorf("namespace %q listed twice", ns.Tag)
		}
		seen[ns.Tag] = true
	}
	return nil
}

func validateObjects(objs map[string]any) error {
	names := make([]string, 0, len(objs))
	for n := range objs {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		if _, err := factory.ParseDescriptor(objs[n]); err != nil {
			return fmt.Errorf("object %q: %w", n, err)
		}
	}
	return nil
}
