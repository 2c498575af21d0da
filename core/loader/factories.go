package loader

import (
	"errors"
	"fmt"
	"slices"

	"github.com/kilianp07/classloader/core/class"
)

// Builder produces the constructor used for class c. It runs lazily at
// dispatch time, so a builder registered against a base class can adapt
// to the concrete subclass being built. r is the outermost resolver.
type Builder func(r Resolver, c *class.Class) class.Constructor

// FactoryOption customises a factory registration.
type FactoryOption func(*factoryEntry)

// CoverSubtypes makes the factory apply to subclasses of its key when no
// exact factory matches them.
func CoverSubtypes() FactoryOption { return func(e *factoryEntry) { e.subtypes = true } }

type factoryEntry struct {
	key      *class.Class
	build    Builder
	subtypes bool
}

// factoryTable is ordered by first registration.
type factoryTable struct {
	entries []factoryEntry
}

func (t *factoryTable) index(key *class.Class) int {
	return slices.IndexFunc(t.entries, func(e factoryEntry) bool { return e.key == key })
}

// set stores e, replacing an entry with the same key in place.
func (t *factoryTable) set(e factoryEntry) {
	if i := t.index(e.key); i >= 0 {
		t.entries[i] = e
		return
	}
	t.entries = append(t.entries, e)
}

func (t *factoryTable) remove(key *class.Class) bool {
	i := t.index(key)
	if i < 0 {
		return false
	}
	t.entries = slices.Delete(t.entries, i, i+1)
	return true
}

// match finds the builder for c: an exact key first, then the first
// subtype-covering entry whose key c inherits from.
func (t *factoryTable) match(c *class.Class) (Builder, bool) {
	if i := t.index(c); i >= 0 {
		return t.entries[i].build, true
	}
	for _, e := range t.entries {
		if e.subtypes && c.IsSubclassOf(e.key) {
			return e.build, true
		}
	}
	return nil, false
}

// RegisterFactory stores builder for class c. Registering the same class
// again replaces its builder and keeps its position.
func (l *Loader) RegisterFactory(c *class.Class, builder Builder, opts ...FactoryOption) error {
	if c == nil || builder == nil {
		return errors.New("loader: factory needs a class and a builder")
	}
	e := factoryEntry{key: c, build: builder}
	for _, o := range opts {
		o(&e)
	}
	l.factories.set(e)
	l.mutated(FactoryRegistered, c.Name())
	return nil
}

// UnregisterFactory removes the factory registered for class c. It fails
// with ErrNotRegistered when there is none.
func (l *Loader) UnregisterFactory(c *class.Class) error {
	if c == nil || !l.factories.remove(c) {
		return fmt.Errorf("%w: factory for %v", ErrNotRegistered, c)
	}
	l.mutated(FactoryUnregistered, c.Name())
	return nil
}

// GetFactory returns the constructor for class c: the matching registered
// factory or, failing that, plain construction through c.New.
func (l *Loader) GetFactory(c *class.Class) class.Constructor {
	if b, ok := l.factories.match(c); ok {
		if ctor := b(l.self, c); ctor != nil {
			return ctor
		}
	}
	return c.New
}

// Factory resolves name and builds an instance with args.
func (l *Loader) Factory(name string, args class.Args) (any, error) {
	return construct(l, name, args)
}

func construct(r Resolver, name string, args class.Args) (any, error) {
	c, err := r.LoadClass(name)
	if err != nil {
		return nil, err
	}
	obj, err := r.GetFactory(c)(args)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", name, err)
	}
	return obj, nil
}
