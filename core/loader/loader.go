// Package loader resolves qualified class names against a registry of
// modules and constructs instances through a table of factories.
//
// A Loader searches its registry in read order and returns the first
// module member matching the requested name. Qualified names take the form
//
//	[namespace ":"] segment ("." segment)* member
//
// where the namespace selects one registry entry directly and the dotted
// segments name submodules traversed relative to each searched module.
// Cached decorates a Loader with memoisation that is invalidated wholesale
// on every mutation.
//
// Loaders are not safe for concurrent use; callers synchronise mutation
// against lookups themselves.
package loader

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/classloader/core/class"
	"github.com/kilianp07/classloader/core/logger"
	"github.com/kilianp07/classloader/core/metrics"
	"github.com/kilianp07/classloader/core/module"
	"github.com/kilianp07/classloader/core/registry"
)

// Resolver is the lookup surface shared by Loader and Cached. Factory
// builders receive the outermost Resolver so nested construction goes
// through the same cache.
type Resolver interface {
	LoadClass(name string, opts ...LookupOption) (*class.Class, error)
	GetFactory(c *class.Class) class.Constructor
	Factory(name string, args class.Args) (any, error)
}

// ClassLoader is the full loader surface implemented by Loader and Cached.
type ClassLoader interface {
	Resolver
	ID() string
	RegisterModule(ref module.Ref, opts ...registry.RegisterOption) error
	RegisterNamespace(tag string, ref module.Ref) error
	UnregisterModule(ref module.Ref) error
	UnregisterNamespace(tag string) error
	RegisterFactory(c *class.Class, b Builder, opts ...FactoryOption) error
	UnregisterFactory(c *class.Class) error
	Modules() []module.Ref
	Namespaces() []registry.Entry
}

var (
	_ ClassLoader = (*Loader)(nil)
	_ ClassLoader = (*Cached)(nil)
)

// Loader is the uncached resolver.
type Loader struct {
	id        string
	importer  module.Importer
	reg       *registry.Registry
	factories factoryTable
	self      Resolver
	log       logger.Logger
	recorder  metrics.Recorder
	events    Publisher
}

// Option configures a Loader.
type Option func(*config)

type config struct {
	scheme   registry.Scheme
	reversed bool
	id       string
	log      logger.Logger
	recorder metrics.Recorder
	events   Publisher
}

// WithNamespaces keys the registry by namespace tag.
func WithNamespaces() Option { return func(c *config) { c.scheme = registry.Namespaced } }

// WithReversed searches the most recently registered module first.
func WithReversed() Option { return func(c *config) { c.reversed = true } }

// WithID sets the loader identifier used in logs, metrics and events.
func WithID(id string) Option { return func(c *config) { c.id = id } }

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l logger.Logger) Option { return func(c *config) { c.log = l } }

// WithRecorder sets the metrics recorder. Defaults to a no-op recorder.
func WithRecorder(r metrics.Recorder) Option { return func(c *config) { c.recorder = r } }

// WithEvents publishes mutation events to p.
func WithEvents(p Publisher) Option { return func(c *config) { c.events = p } }

// New creates a loader resolving module names through imp.
func New(imp module.Importer, opts ...Option) *Loader {
	cfg := config{scheme: registry.Ordered}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.id == "" {
		cfg.id = uuid.NewString()
	}
	if cfg.log == nil {
		cfg.log = logger.NopLogger{}
	}
	if cfg.recorder == nil {
		cfg.recorder = metrics.NopRecorder{}
	}
	var regOpts []registry.Option
	if cfg.reversed {
		regOpts = append(regOpts, registry.WithReversed())
	}
	l := &Loader{
		id:       cfg.id,
		importer: imp,
		reg:      registry.New(cfg.scheme, regOpts...),
		log:      cfg.log,
		recorder: cfg.recorder,
		events:   cfg.events,
	}
	l.self = l
	return l
}

// ID returns the loader identifier.
func (l *Loader) ID() string { return l.id }

// Scheme returns the registry key scheme.
func (l *Loader) Scheme() registry.Scheme { return l.reg.Scheme() }

// Reversed reports whether the registry is searched back to front.
func (l *Loader) Reversed() bool { return l.reg.Reversed() }

// RegisterModule adds a module to the registry. Use registry.At to insert
// at a position (ordered loaders) or registry.As to choose the namespace
// tag (namespaced loaders).
func (l *Loader) RegisterModule(ref module.Ref, opts ...registry.RegisterOption) error {
	if err := l.reg.Register(ref, opts...); err != nil {
		return err
	}
	l.mutated(ModuleRegistered, ref.String())
	return nil
}

// RegisterNamespace adds a module under tag. Namespaced loaders only.
func (l *Loader) RegisterNamespace(tag string, ref module.Ref) error {
	if err := l.reg.RegisterNamespace(tag, ref); err != nil {
		return err
	}
	l.mutated(NamespaceRegistered, tag)
	return nil
}

// UnregisterModule removes a module. On namespaced loaders every tag
// mapped to the module is removed.
func (l *Loader) UnregisterModule(ref module.Ref) error {
	if err := l.reg.Unregister(ref); err != nil {
		return err
	}
	l.mutated(ModuleUnregistered, ref.String())
	return nil
}

// UnregisterNamespace removes the module registered under tag.
func (l *Loader) UnregisterNamespace(tag string) error {
	if err := l.reg.UnregisterNamespace(tag); err != nil {
		return err
	}
	l.mutated(NamespaceUnregistered, tag)
	return nil
}

// Modules returns a snapshot of the registered modules in search order.
func (l *Loader) Modules() []module.Ref { return l.reg.Refs() }

// Namespaces returns a snapshot of the namespace entries in search order.
// It is empty for ordered loaders.
func (l *Loader) Namespaces() []registry.Entry {
	if l.reg.Scheme() != registry.Namespaced {
		return nil
	}
	return l.reg.Entries()
}

func (l *Loader) mutated(kind EventKind, subject string) {
	l.log.Debugw("loader mutated", map[string]any{"loader": l.id, "kind": string(kind), "subject": subject})
	l.publish(kind, subject)
	if sr, ok := l.recorder.(metrics.RegistrySizeRecorder); ok {
		if err := sr.RecordRegistrySize(l.id, l.reg.Len()); err != nil {
			l.log.Warnf("record registry size: %v", err)
		}
	}
}

// LookupOption customises a single LoadClass call.
type LookupOption func(*lookupOpts)

type lookupOpts struct {
	namespace    string
	hasNamespace bool
	noCache      bool
}

// InNamespace confines the lookup to the module registered under tag. An
// empty tag searches every module, like an unqualified name.
func InNamespace(tag string) LookupOption {
	return func(o *lookupOpts) { o.namespace, o.hasNamespace = tag, true }
}

// NoCache makes a cached loader resolve without reading or populating its
// class cache. Uncached loaders ignore it.
func NoCache() LookupOption { return func(o *lookupOpts) { o.noCache = true } }

func applyLookup(opts []LookupOption) lookupOpts {
	var o lookupOpts
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// LoadClass resolves a qualified class name. It fails with ErrNotRegistered
// when a namespace is unknown and with a *ClassNotFoundError when no
// searched module exposes the class.
func (l *Loader) LoadClass(name string, opts ...LookupOption) (*class.Class, error) {
	o := applyLookup(opts)
	start := time.Now()
	ns, path := o.namespace, name
	if !o.hasNamespace {
		if tag, rest, ok := strings.Cut(name, registry.NamespaceSeparator); ok {
			ns, path = tag, rest
		}
	}
	var (
		c    *class.Class
		from string
		err  error
	)
	if ns != "" {
		c, from, err = l.loadFromNamespace(path, ns)
	} else {
		c, from, err = l.search(path)
	}
	l.recordResolution(path, ns, from, err, time.Since(start))
	return c, err
}

func (l *Loader) loadFromNamespace(path, ns string) (*class.Class, string, error) {
	ref, ok := l.reg.Lookup(ns)
	if !ok {
		return nil, "", fmt.Errorf("%w: namespace %q", registry.ErrNotRegistered, ns)
	}
	h, err := module.Resolve(l.importer, ref)
	if err == nil {
		var c *class.Class
		if c, err = module.Lookup(l.importer, h, path); err == nil {
			return c, h.Name(), nil
		}
	}
	return nil, "", &ClassNotFoundError{Name: path, Namespace: ns, Err: err}
}

func (l *Loader) search(path string) (*class.Class, string, error) {
	var errs []error
	for _, ref := range l.reg.Refs() {
		h, err := module.Resolve(l.importer, ref)
		if err != nil {
			l.log.Warnf("resolve module %s: %v", ref, err)
			errs = append(errs, err)
			continue
		}
		c, err := module.Lookup(l.importer, h, path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		return c, h.Name(), nil
	}
	return nil, "", &ClassNotFoundError{Name: path, Err: errors.Join(errs...)}
}

func (l *Loader) recordResolution(name, ns, from string, err error, d time.Duration) {
	outcome := metrics.ResolutionOK
	switch {
	case err == nil:
	case errors.Is(err, ErrClassNotFound):
		outcome = metrics.ResolutionNotFound
	case errors.Is(err, registry.ErrNotRegistered):
		outcome = metrics.ResolutionNotRegistered
	default:
		outcome = metrics.ResolutionError
	}
	ev := metrics.ResolutionEvent{
		Name:      name,
		Namespace: ns,
		Outcome:   outcome,
		Module:    from,
		Duration:  d,
		Time:      time.Now(),
	}
	if rerr := l.recorder.RecordResolution(ev); rerr != nil {
		l.log.Warnf("record resolution: %v", rerr)
	}
}
