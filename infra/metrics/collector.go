package metrics

import (
	"context"

	"github.com/kilianp07/classloader/core/loader"
	coremetrics "github.com/kilianp07/classloader/core/metrics"
)

// EventSource is the subscription side of an event bus.
type EventSource interface {
	Subscribe() <-chan loader.Event
	Unsubscribe(<-chan loader.Event)
}

// StartEventCollector subscribes to the bus and records every loader event
// as a mutation when rec supports it. It stops when the context is canceled
// or the bus is closed. The returned channel is closed once the collector
// has unsubscribed.
func StartEventCollector(ctx context.Context, bus EventSource, rec coremetrics.Recorder) <-chan struct{} {
	done := make(chan struct{})
	mr, ok := rec.(coremetrics.MutationRecorder)
	if bus == nil || !ok {
		close(done)
		return done
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				_ = mr.RecordMutation(coremetrics.MutationEvent{
					Loader:  ev.Loader,
					Kind:    string(ev.Kind),
					Subject: ev.Subject,
					Time:    ev.Time,
				})
			}
		}
	}()
	return done
}
