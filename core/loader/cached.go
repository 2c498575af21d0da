package loader

import (
	"sort"
	"time"

	"github.com/kilianp07/classloader/core/class"
	"github.com/kilianp07/classloader/core/metrics"
	"github.com/kilianp07/classloader/core/module"
	"github.com/kilianp07/classloader/core/registry"
)

// Cached memoises class resolution and factory dispatch of a Loader.
//
// Classes are cached under the name passed to LoadClass, unless the call
// carries InNamespace or NoCache. Factories are cached under the requested
// class, so two subclasses served by one base-class factory hold two
// entries. Module and namespace mutations clear the class cache; factory
// mutations clear the factory cache. Mutations must go through Cached for
// the caches to stay coherent.
type Cached struct {
	inner     *Loader
	classes   Cache[string, *class.Class]
	factories Cache[*class.Class, class.Constructor]
}

// NewCached wraps l. Factory builders of l receive the Cached resolver
// from now on.
func NewCached(l *Loader) *Cached {
	c := &Cached{
		inner:     l,
		classes:   NewMapCache[string, *class.Class](),
		factories: NewMapCache[*class.Class, class.Constructor](),
	}
	l.self = c
	return c
}

// Loader returns the wrapped loader.
func (c *Cached) Loader() *Loader { return c.inner }

// ID returns the loader identifier.
func (c *Cached) ID() string { return c.inner.id }

// LoadClass implements Resolver.
func (c *Cached) LoadClass(name string, opts ...LookupOption) (*class.Class, error) {
	o := applyLookup(opts)
	if o.hasNamespace || o.noCache {
		c.recordLookup(metrics.CacheClass, metrics.LookupBypass, name)
		return c.inner.LoadClass(name, opts...)
	}
	if k, ok := c.classes.Get(name); ok {
		c.recordLookup(metrics.CacheClass, metrics.LookupHit, name)
		return k, nil
	}
	c.recordLookup(metrics.CacheClass, metrics.LookupMiss, name)
	k, err := c.inner.LoadClass(name)
	if err != nil {
		return nil, err
	}
	c.classes.Put(name, k)
	return k, nil
}

// GetFactory implements Resolver.
func (c *Cached) GetFactory(k *class.Class) class.Constructor {
	if ctor, ok := c.factories.Get(k); ok {
		c.recordLookup(metrics.CacheFactory, metrics.LookupHit, k.Name())
		return ctor
	}
	c.recordLookup(metrics.CacheFactory, metrics.LookupMiss, k.Name())
	ctor := c.inner.GetFactory(k)
	c.factories.Put(k, ctor)
	return ctor
}

// Factory implements Resolver.
func (c *Cached) Factory(name string, args class.Args) (any, error) {
	return construct(c, name, args)
}

// RegisterModule registers on the wrapped loader and clears the class cache.
func (c *Cached) RegisterModule(ref module.Ref, opts ...registry.RegisterOption) error {
	if err := c.inner.RegisterModule(ref, opts...); err != nil {
		return err
	}
	c.clearClasses("module registered")
	return nil
}

// RegisterNamespace registers on the wrapped loader and clears the class cache.
func (c *Cached) RegisterNamespace(tag string, ref module.Ref) error {
	if err := c.inner.RegisterNamespace(tag, ref); err != nil {
		return err
	}
	c.clearClasses("namespace registered")
	return nil
}

// UnregisterModule unregisters on the wrapped loader and clears the class cache.
func (c *Cached) UnregisterModule(ref module.Ref) error {
	if err := c.inner.UnregisterModule(ref); err != nil {
		return err
	}
	c.clearClasses("module unregistered")
	return nil
}

// UnregisterNamespace unregisters on the wrapped loader and clears the class cache.
func (c *Cached) UnregisterNamespace(tag string) error {
	if err := c.inner.UnregisterNamespace(tag); err != nil {
		return err
	}
	c.clearClasses("namespace unregistered")
	return nil
}

// RegisterFactory registers on the wrapped loader and clears the factory cache.
func (c *Cached) RegisterFactory(k *class.Class, b Builder, opts ...FactoryOption) error {
	if err := c.inner.RegisterFactory(k, b, opts...); err != nil {
		return err
	}
	c.clearFactories("factory registered")
	return nil
}

// UnregisterFactory unregisters on the wrapped loader and clears the factory cache.
func (c *Cached) UnregisterFactory(k *class.Class) error {
	if err := c.inner.UnregisterFactory(k); err != nil {
		return err
	}
	c.clearFactories("factory unregistered")
	return nil
}

// Modules returns a snapshot of the registered modules in search order.
func (c *Cached) Modules() []module.Ref { return c.inner.Modules() }

// Namespaces returns a snapshot of the namespace entries in search order.
func (c *Cached) Namespaces() []registry.Entry { return c.inner.Namespaces() }

// InvalidateCache clears both caches. Use it after changing module
// contents behind the loader's back.
func (c *Cached) InvalidateCache() {
	c.clearClasses("manual")
	c.clearFactories("manual")
}

// CachedClasses lists the class cache keys in lexicographic order.
func (c *Cached) CachedClasses() []string {
	keys := c.classes.Keys()
	sort.Strings(keys)
	return keys
}

// CachedFactories lists the classes held by the factory cache.
func (c *Cached) CachedFactories() []*class.Class {
	keys := c.factories.Keys()
	sort.Slice(keys, func(i, j int) bool { return keys[i].Name() < keys[j].Name() })
	return keys
}

func (c *Cached) clearClasses(reason string) {
	c.invalidated(metrics.CacheClass, reason, c.classes.Clear())
}

func (c *Cached) clearFactories(reason string) {
	c.invalidated(metrics.CacheFactory, reason, c.factories.Clear())
}

func (c *Cached) invalidated(cache, reason string, n int) {
	l := c.inner
	l.log.Debugf("%s cache invalidated (%s): %d entries dropped", cache, reason, n)
	l.publish(CacheInvalidated, cache)
	ev := metrics.InvalidationEvent{Cache: cache, Reason: reason, Entries: n, Time: time.Now()}
	if err := l.recorder.RecordInvalidation(ev); err != nil {
		l.log.Warnf("record invalidation: %v", err)
	}
}

func (c *Cached) recordLookup(cache, outcome, key string) {
	ev := metrics.LookupEvent{Cache: cache, Outcome: outcome, Key: key, Time: time.Now()}
	if err := c.inner.recorder.RecordLookup(ev); err != nil {
		c.inner.log.Warnf("record lookup: %v", err)
	}
}
