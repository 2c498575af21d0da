// Package app wires configuration, the loader and its observability stack
// into a runnable service.
package app

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/kilianp07/classloader/api/loaderapi"
	"github.com/kilianp07/classloader/app/plugins"
	"github.com/kilianp07/classloader/config"
	"github.com/kilianp07/classloader/core/class"
	"github.com/kilianp07/classloader/core/factory"
	"github.com/kilianp07/classloader/core/loader"
	coremetrics "github.com/kilianp07/classloader/core/metrics"
	"github.com/kilianp07/classloader/core/module"
	"github.com/kilianp07/classloader/core/registry"
	"github.com/kilianp07/classloader/infra/logger"
	"github.com/kilianp07/classloader/infra/metrics"
	"github.com/kilianp07/classloader/internal/eventbus"
)

// Service owns a configured loader together with its event bus and
// metrics recorder.
type Service struct {
	Catalog *module.Catalog
	Loader  loader.ClassLoader
	Loggers *plugins.Loggers

	cached   *loader.Cached
	bus      *eventbus.Bus[loader.Event]
	recorder coremetrics.Recorder
	objects  map[string]any
	log      logger.Logger
	promAddr string
	api      config.APIConfig
}

var _ loaderapi.Inspector = (*Service)(nil)

// New builds a Service from the configuration. Modules are resolved
// through cat; a nil cat starts from an empty catalog.
func New(cfg *config.Config, cat *module.Catalog) (*Service, error) {
	if err := logger.Configure(cfg.Logging.Logger()); err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	logg := logger.New("service")
	if cat == nil {
		cat = module.NewCatalog()
	}

	recorder, err := coremetrics.NewRecorder(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics recorder: %w", err)
	}

	bus := eventbus.New[loader.Event]()
	opts := []loader.Option{
		loader.WithLogger(logger.New("loader")),
		loader.WithRecorder(recorder),
		loader.WithEvents(bus),
	}
	if cfg.Loader.ID != "" {
		opts = append(opts, loader.WithID(cfg.Loader.ID))
	}
	if cfg.Loader.Namespaced {
		opts = append(opts, loader.WithNamespaces())
	}
	if cfg.Loader.Reversed {
		opts = append(opts, loader.WithReversed())
	}
	base := loader.New(cat, opts...)

	svc := &Service{
		Catalog:  cat,
		Loader:   base,
		bus:      bus,
		recorder: recorder,
		objects:  cfg.Objects,
		log:      logg,
		promAddr: cfg.Metrics.PrometheusAddr,
		api:      cfg.API,
	}
	if cfg.Loader.IsCached() {
		svc.cached = loader.NewCached(base)
		svc.Loader = svc.cached
	}

	if cfg.Loader.WithBuiltins() {
		plugins.DefineBuiltins(cat)
		svc.Loggers = plugins.NewLoggers()
		if err := plugins.RegisterLoggingFactories(svc.Loader, plugins.WithLoggers(svc.Loggers)); err != nil {
			return nil, fmt.Errorf("logging factories: %w", err)
		}
	}
	for _, m := range cfg.Modules {
		if err := svc.Loader.RegisterModule(module.Named(m)); err != nil {
			return nil, fmt.Errorf("register module %s: %w", m, err)
		}
	}
	for _, ns := range cfg.Namespaces {
		if err := svc.Loader.RegisterNamespace(ns.Tag, module.Named(ns.Module)); err != nil {
			return nil, fmt.Errorf("register namespace %s: %w", ns.Tag, err)
		}
	}
	logg.Infof("loader %s ready: %d modules", svc.Loader.ID(), len(svc.Loader.Modules()))
	return svc, nil
}

// Resolve loads a class. A non-nil namespace confines the lookup to it.
func (s *Service) Resolve(name string, namespace *string) (*class.Class, error) {
	if namespace != nil {
		return s.Loader.LoadClass(name, loader.InNamespace(*namespace))
	}
	return s.Loader.LoadClass(name)
}

// Entries lists the registry in search order.
func (s *Service) Entries() []registry.Entry {
	if ns := s.Loader.Namespaces(); ns != nil {
		return ns
	}
	refs := s.Loader.Modules()
	out := make([]registry.Entry, len(refs))
	for i, r := range refs {
		out[i] = registry.Entry{Ref: r}
	}
	return out
}

// Objects lists the configured object names in lexicographic order.
func (s *Service) Objects() []string {
	names := make([]string, 0, len(s.objects))
	for n := range s.objects {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Build constructs the configured object called name.
func (s *Service) Build(name string) (any, error) {
	raw, ok := s.objects[name]
	if !ok {
		return nil, fmt.Errorf("object %q is not configured", name)
	}
	d, err := factory.ParseDescriptor(raw)
	if err != nil {
		return nil, fmt.Errorf("object %q: %w", name, err)
	}
	obj, err := s.Loader.Factory(d.Type, d.Params)
	if err != nil {
		return nil, fmt.Errorf("object %q: %w", name, err)
	}
	return obj, nil
}

// InvalidateCache clears the loader caches. It reports false for uncached
// loaders.
func (s *Service) InvalidateCache() bool {
	if s.cached == nil {
		return false
	}
	s.cached.InvalidateCache()
	return true
}

// CachedClasses lists the class cache keys. Uncached loaders report none.
func (s *Service) CachedClasses() []string {
	if s.cached == nil {
		return []string{}
	}
	return s.cached.CachedClasses()
}

// Events subscribes to loader events.
func (s *Service) Events() (<-chan loader.Event, func()) {
	ch := s.bus.Subscribe()
	return ch, func() { s.bus.Unsubscribe(ch) }
}

// Run records bus events as metrics and serves /metrics and the loader
// API when configured. It blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	done := metrics.StartEventCollector(ctx, s.bus, s.recorder)
	errc := make(chan error, 2)
	if s.promAddr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promAddr); err != nil {
				errc <- fmt.Errorf("prom server: %w", err)
			}
		}()
	}
	if s.api.Addr != "" {
		h := loaderapi.NewHandler(s, s.api.Token)
		go func() {
			if err := loaderapi.Serve(ctx, s.api.Addr, h); err != nil {
				errc <- fmt.Errorf("loader api: %w", err)
			}
		}()
	}
	var err error
	select {
	case <-ctx.Done():
	case err = <-errc:
		s.log.Errorf("%v", err)
		<-ctx.Done()
	}
	<-done
	return err
}

// Close releases the event bus and closes the metrics recorder, flushing
// any queued points.
func (s *Service) Close() error {
	s.bus.Close()
	if c, ok := s.recorder.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
