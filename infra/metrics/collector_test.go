package metrics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/classloader/core/loader"
	coremetrics "github.com/kilianp07/classloader/core/metrics"
	"github.com/kilianp07/classloader/internal/eventbus"
)

type mutationSink struct {
	coremetrics.NopRecorder
	mu  sync.Mutex
	got []coremetrics.MutationEvent
}

func (s *mutationSink) RecordMutation(ev coremetrics.MutationEvent) error {
	s.mu.Lock()
	s.got = append(s.got, ev)
	s.mu.Unlock()
	return nil
}

func (s *mutationSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.got)
}

func TestStartEventCollector(t *testing.T) {
	bus := eventbus.New[loader.Event]()
	sink := &mutationSink{}
	ctx, cancel := context.WithCancel(context.Background())
	done := StartEventCollector(ctx, bus, sink)

	bus.Publish(loader.Event{Loader: "main", Kind: loader.ModuleRegistered, Subject: "pkg"})
	require.Eventually(t, func() bool { return sink.count() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
	assert.Zero(t, bus.Subscribers())
	assert.Equal(t, "module_registered", sink.got[0].Kind)
	assert.Equal(t, "pkg", sink.got[0].Subject)
}

func TestStartEventCollector_StopsOnClose(t *testing.T) {
	bus := eventbus.New[loader.Event]()
	done := StartEventCollector(context.Background(), bus, &mutationSink{})
	bus.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop")
	}
}

func TestStartEventCollector_IgnoresPlainRecorders(t *testing.T) {
	bus := eventbus.New[loader.Event]()
	done := StartEventCollector(context.Background(), bus, lookupOnly{})
	<-done
	assert.Zero(t, bus.Subscribers())
}

type lookupOnly struct{}

func (lookupOnly) RecordLookup(coremetrics.LookupEvent) error             { return nil }
func (lookupOnly) RecordResolution(coremetrics.ResolutionEvent) error     { return nil }
func (lookupOnly) RecordInvalidation(coremetrics.InvalidationEvent) error { return nil }
