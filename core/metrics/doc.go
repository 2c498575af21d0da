// Package metrics defines the observability interfaces of the loader.
//
// A Recorder receives one event per cache lookup, class resolution and cache
// invalidation. Optional interfaces such as MutationRecorder are detected
// with type assertions, so sinks only implement what they can store.
// Recorders are created from configuration through NewRecorder; the
// Prometheus and InfluxDB backends live in infra/metrics and register
// themselves on import. Several configured backends are combined with
// MultiRecorder.
package metrics
