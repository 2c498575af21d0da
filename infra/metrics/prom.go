package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/classloader/core/metrics"
)

// DefaultNamespace prefixes every Prometheus metric name.
const DefaultNamespace = "classloader"

// PromRecorder records loader activity in Prometheus metrics.
type PromRecorder struct {
	lookups       *prometheus.CounterVec
	resolutions   *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	invalidations *prometheus.CounterVec
	dropped       *prometheus.CounterVec
	mutations     *prometheus.CounterVec
	registrySize  *prometheus.GaugeVec
}

var (
	_ coremetrics.MutationRecorder     = (*PromRecorder)(nil)
	_ coremetrics.RegistrySizeRecorder = (*PromRecorder)(nil)
)

// NewPromRecorder registers loader metrics on the default Prometheus
// registerer. The HTTP endpoint is started separately with StartPromServer.
func NewPromRecorder() (*PromRecorder, error) {
	return NewPromRecorderWithRegistry(DefaultNamespace, prometheus.DefaultRegisterer)
}

// NewPromRecorderWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered under the same names are reused.
func NewPromRecorderWithRegistry(namespace string, reg prometheus.Registerer) (*PromRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}
	r := &PromRecorder{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache accesses by cache and outcome",
		}, []string{"cache", "outcome"}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Class resolutions against the module registry",
		}, []string{"outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resolution_duration_seconds",
			Help:      "Time spent resolving a class name",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}, []string{"outcome"}),
		invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_invalidations_total",
			Help:      "Wholesale cache clears by cache and reason",
		}, []string{"cache", "reason"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_entries_dropped_total",
			Help:      "Entries discarded by cache invalidations",
		}, []string{"cache"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Registry and factory table mutations",
		}, []string{"loader", "kind"}),
		registrySize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "registry_modules",
			Help:      "Number of registered module entries",
		}, []string{"loader"}),
	}
	var err error
	if r.lookups, err = register(reg, r.lookups); err != nil {
		return nil, err
	}
	if r.resolutions, err = register(reg, r.resolutions); err != nil {
		return nil, err
	}
	if r.latency, err = register(reg, r.latency); err != nil {
		return nil, err
	}
	if r.invalidations, err = register(reg, r.invalidations); err != nil {
		return nil, err
	}
	if r.dropped, err = register(reg, r.dropped); err != nil {
		return nil, err
	}
	if r.mutations, err = register(reg, r.mutations); err != nil {
		return nil, err
	}
	if r.registrySize, err = register(reg, r.registrySize); err != nil {
		return nil, err
	}
	return r, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	return c, err
}

// RecordLookup increments the lookup counter.
func (r *PromRecorder) RecordLookup(ev coremetrics.LookupEvent) error {
	r.lookups.WithLabelValues(ev.Cache, ev.Outcome).Inc()
	return nil
}

// RecordResolution counts the resolution and observes its duration.
func (r *PromRecorder) RecordResolution(ev coremetrics.ResolutionEvent) error {
	r.resolutions.WithLabelValues(ev.Outcome).Inc()
	r.latency.WithLabelValues(ev.Outcome).Observe(ev.Duration.Seconds())
	return nil
}

// RecordInvalidation counts the clear and the entries it dropped.
func (r *PromRecorder) RecordInvalidation(ev coremetrics.InvalidationEvent) error {
	r.invalidations.WithLabelValues(ev.Cache, ev.Reason).Inc()
	r.dropped.WithLabelValues(ev.Cache).Add(float64(ev.Entries))
	return nil
}

// RecordMutation increments the mutation counter.
func (r *PromRecorder) RecordMutation(ev coremetrics.MutationEvent) error {
	r.mutations.WithLabelValues(ev.Loader, ev.Kind).Inc()
	return nil
}

// RecordRegistrySize sets the registry gauge for loader.
func (r *PromRecorder) RecordRegistrySize(loader string, size int) error {
	r.registrySize.WithLabelValues(loader).Set(float64(size))
	return nil
}
