package module

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/kilianp07/classloader/core/class"
)

// Catalog is an in-process Importer holding modules by absolute dotted
// name. It plays the role of the host import system: modules are defined
// once, typically at start-up, and then resolved by name.
type Catalog struct {
	mu      sync.RWMutex
	modules map[string]*Module
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{modules: make(map[string]*Module)}
}

// Define returns the module stored under name, creating it and any missing
// parent packages. It panics on an empty name or empty path segment.
func (c *Catalog) Define(name string) *Module {
	if !validName(name) {
		panic(fmt.Sprintf("module: invalid module name %q", name))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	var m *Module
	for i := 0; i <= len(name); i++ {
		if i < len(name) && name[i] != '.' {
			continue
		}
		prefix := name[:i]
		if existing, ok := c.modules[prefix]; ok {
			m = existing
			continue
		}
		m = &Module{name: prefix, members: make(map[string]*class.Class)}
		c.modules[prefix] = m
	}
	return m
}

// Import implements Importer.
func (c *Catalog) Import(name string) (Handle, error) {
	if !validName(name) {
		return nil, fmt.Errorf("%w: invalid module name %q", ErrModuleNotFound, name)
	}
	c.mu.RLock()
	m, ok := c.modules[name]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, name)
	}
	return m, nil
}

// ImportRelative implements Importer.
func (c *Catalog) ImportRelative(path string, parent Handle) (Handle, error) {
	if !validName(path) {
		return nil, fmt.Errorf("%w: invalid submodule path %q", ErrModuleNotFound, path)
	}
	return c.Import(parent.Name() + "." + path)
}

// Names lists every defined module in lexicographic order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	out := make([]string, 0, len(c.modules))
	for n := range c.modules {
		out = append(out, n)
	}
	c.mu.RUnlock()
	sort.Strings(out)
	return out
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for _, seg := range strings.Split(name, ".") {
		if seg == "" {
			return false
		}
	}
	return true
}
