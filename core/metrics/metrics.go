package metrics

import "time"

// Cache names used in lookup and invalidation events.
const (
	CacheClass   = "class"
	CacheFactory = "factory"
)

// Lookup outcomes.
const (
	LookupHit    = "hit"
	LookupMiss   = "miss"
	LookupBypass = "bypass"
)

// Resolution outcomes.
const (
	ResolutionOK            = "ok"
	ResolutionNotFound      = "not_found"
	ResolutionNotRegistered = "not_registered"
	ResolutionError         = "error"
)

// LookupEvent records a cache access.
type LookupEvent struct {
	Cache   string
	Outcome string
	Key     string
	Time    time.Time
}

// ResolutionEvent records one class resolution against the registry.
type ResolutionEvent struct {
	Name      string
	Namespace string
	Outcome   string
	// Module is the module the class was found in, empty on failure.
	Module   string
	Duration time.Duration
	Time     time.Time
}

// InvalidationEvent records a wholesale cache clear.
type InvalidationEvent struct {
	Cache   string
	Reason  string
	Entries int
	Time    time.Time
}

// Recorder records loader activity for observability purposes.
type Recorder interface {
	RecordLookup(ev LookupEvent) error
	RecordResolution(ev ResolutionEvent) error
	RecordInvalidation(ev InvalidationEvent) error
}

// MutationEvent records a structural change of a loader.
type MutationEvent struct {
	Loader  string
	Kind    string
	Subject string
	Time    time.Time
}

// MutationRecorder records registry and factory table mutations.
type MutationRecorder interface {
	RecordMutation(ev MutationEvent) error
}

// RegistrySizeRecorder records the number of registered modules.
type RegistrySizeRecorder interface {
	RecordRegistrySize(loader string, size int) error
}

// NopRecorder implements every recorder interface with no-op methods.
type NopRecorder struct{}

func (NopRecorder) RecordLookup(LookupEvent) error             { return nil }
func (NopRecorder) RecordResolution(ResolutionEvent) error     { return nil }
func (NopRecorder) RecordInvalidation(InvalidationEvent) error { return nil }
func (NopRecorder) RecordMutation(MutationEvent) error         { return nil }
func (NopRecorder) RecordRegistrySize(string, int) error       { return nil }
