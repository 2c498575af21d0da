package metrics

import (
	"errors"
	"io"
)

// MultiRecorder fans events out to multiple recorders.
type MultiRecorder struct {
	Recorders []Recorder
}

// NewMultiRecorder creates a MultiRecorder with the provided recorders.
func NewMultiRecorder(recs ...Recorder) *MultiRecorder {
	return &MultiRecorder{Recorders: recs}
}

// RecordLookup forwards the event to all recorders, returning the first error encountered.
func (m *MultiRecorder) RecordLookup(ev LookupEvent) error {
	for _, r := range m.Recorders {
		if err := r.RecordLookup(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordResolution forwards resolution events.
func (m *MultiRecorder) RecordResolution(ev ResolutionEvent) error {
	for _, r := range m.Recorders {
		if err := r.RecordResolution(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordInvalidation forwards invalidation events.
func (m *MultiRecorder) RecordInvalidation(ev InvalidationEvent) error {
	for _, r := range m.Recorders {
		if err := r.RecordInvalidation(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordMutation forwards mutation events when supported by the recorder.
func (m *MultiRecorder) RecordMutation(ev MutationEvent) error {
	for _, r := range m.Recorders {
		if mr, ok := r.(MutationRecorder); ok {
			if err := mr.RecordMutation(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordRegistrySize forwards registry size when supported by the recorder.
func (m *MultiRecorder) RecordRegistrySize(loader string, size int) error {
	for _, r := range m.Recorders {
		if sr, ok := r.(RegistrySizeRecorder); ok {
			if err := sr.RecordRegistrySize(loader, size); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close closes every recorder implementing io.Closer and joins their
// errors.
func (m *MultiRecorder) Close() error {
	var errs []error
	for _, r := range m.Recorders {
		if c, ok := r.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
