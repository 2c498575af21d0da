// Package module provides the module abstraction searched by the loader:
// loaded namespaces exposing classes by member name, references to them,
// and the importer capability that turns names into handles.
package module

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kilianp07/classloader/core/class"
)

var (
	// ErrModuleNotFound is returned by an Importer when no module exists
	// under the requested name.
	ErrModuleNotFound = errors.New("module not found")
	// ErrMemberNotFound is returned when a module has no member with the
	// requested name.
	ErrMemberNotFound = errors.New("member not found")
)

// Handle is a loaded module.
type Handle interface {
	// Name returns the absolute dotted module name.
	Name() string
	// Member fetches a class by member name.
	Member(name string) (*class.Class, bool)
}

// Importer resolves module names into handles.
type Importer interface {
	// Import resolves an absolute dotted module name.
	Import(name string) (Handle, error)
	// ImportRelative resolves a dotted submodule path relative to parent.
	ImportRelative(path string, parent Handle) (Handle, error)
}

// Module is an in-process module. It is created through a Catalog.
type Module struct {
	name    string
	members map[string]*class.Class
}

// Name implements Handle.
func (m *Module) Name() string { return m.name }

// Member implements Handle.
func (m *Module) Member(name string) (*class.Class, bool) {
	c, ok := m.members[name]
	return c, ok
}

// Add exposes classes under their own names. A later class with the same
// name replaces the earlier one. Add returns m for chaining.
func (m *Module) Add(classes ...*class.Class) *Module {
	for _, c := range classes {
		m.members[c.Name()] = c
	}
	return m
}

// Alias exposes c under an additional member name.
func (m *Module) Alias(member string, c *class.Class) *Module {
	m.members[member] = c
	return m
}

// Members lists member names in lexicographic order.
func (m *Module) Members() []string {
	out := make([]string, 0, len(m.members))
	for n := range m.members {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func (m *Module) String() string { return m.name }

// Lookup traverses path relative to h and fetches the final member.
// path is a dotted member path; every segment but the last names a
// submodule. Failures wrap ErrModuleNotFound or ErrMemberNotFound.
func Lookup(imp Importer, h Handle, path string) (*class.Class, error) {
	member := path
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		sub, err := imp.ImportRelative(path[:i], h)
		if err != nil {
			return nil, err
		}
		h, member = sub, path[i+1:]
	}
	c, ok := h.Member(member)
	if !ok || c == nil {
		return nil, fmt.Errorf("%w: %s.%s", ErrMemberNotFound, h.Name(), member)
	}
	return c, nil
}
