package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/classloader/core/metrics"
)

func TestPromRecorder_Lookups(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPromRecorderWithRegistry("", reg)
	require.NoError(t, err)

	require.NoError(t, rec.RecordLookup(coremetrics.LookupEvent{Cache: coremetrics.CacheClass, Outcome: coremetrics.LookupMiss}))
	require.NoError(t, rec.RecordLookup(coremetrics.LookupEvent{Cache: coremetrics.CacheClass, Outcome: coremetrics.LookupHit}))
	require.NoError(t, rec.RecordLookup(coremetrics.LookupEvent{Cache: coremetrics.CacheClass, Outcome: coremetrics.LookupHit}))

	expected := `
# HELP classloader_cache_lookups_total Cache accesses by cache and outcome
# TYPE classloader_cache_lookups_total counter
classloader_cache_lookups_total{cache="class",outcome="hit"} 2
classloader_cache_lookups_total{cache="class",outcome="miss"} 1
`
	assert.NoError(t, testutil.CollectAndCompare(rec.lookups, strings.NewReader(expected)))
}

func TestPromRecorder_ResolutionsAndInvalidations(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPromRecorderWithRegistry("test", reg)
	require.NoError(t, err)

	require.NoError(t, rec.RecordResolution(coremetrics.ResolutionEvent{Outcome: coremetrics.ResolutionOK, Duration: time.Millisecond}))
	require.NoError(t, rec.RecordResolution(coremetrics.ResolutionEvent{Outcome: coremetrics.ResolutionNotFound}))
	require.NoError(t, rec.RecordInvalidation(coremetrics.InvalidationEvent{Cache: coremetrics.CacheClass, Reason: "manual", Entries: 3}))

	assert.Equal(t, 1.0, testutil.ToFloat64(rec.resolutions.WithLabelValues(coremetrics.ResolutionOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.resolutions.WithLabelValues(coremetrics.ResolutionNotFound)))
	assert.Equal(t, 2, testutil.CollectAndCount(rec.latency))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.invalidations.WithLabelValues(coremetrics.CacheClass, "manual")))
	assert.Equal(t, 3.0, testutil.ToFloat64(rec.dropped.WithLabelValues(coremetrics.CacheClass)))
}

func TestPromRecorder_MutationsAndRegistrySize(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPromRecorderWithRegistry("", reg)
	require.NoError(t, err)

	require.NoError(t, rec.RecordMutation(coremetrics.MutationEvent{Loader: "main", Kind: "module_registered"}))
	require.NoError(t, rec.RecordRegistrySize("main", 4))
	require.NoError(t, rec.RecordRegistrySize("main", 3))

	assert.Equal(t, 1.0, testutil.ToFloat64(rec.mutations.WithLabelValues("main", "module_registered")))
	expected := `
# HELP classloader_registry_modules Number of registered module entries
# TYPE classloader_registry_modules gauge
classloader_registry_modules{loader="main"} 3
`
	assert.NoError(t, testutil.CollectAndCompare(rec.registrySize, strings.NewReader(expected)))
}

func TestPromRecorder_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromRecorderWithRegistry("", reg)
	require.NoError(t, err)
	second, err := NewPromRecorderWithRegistry("", reg)
	require.NoError(t, err)
	assert.Same(t, first.lookups, second.lookups)

	require.NoError(t, second.RecordLookup(coremetrics.LookupEvent{Cache: coremetrics.CacheFactory, Outcome: coremetrics.LookupHit}))
	assert.Equal(t, 1.0, testutil.ToFloat64(first.lookups.WithLabelValues(coremetrics.CacheFactory, coremetrics.LookupHit)))
}
