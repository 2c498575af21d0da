package registry

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/classloader/core/module"
)

var (
	ns1 = module.Named("tests.fake.namespace1")
	ns2 = module.Named("tests.fake.namespace2")
	ns3 = module.Named("tests.fake.namespace3")
)

func names(refs []module.Ref) []string {
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = r.String()
	}
	return out
}

func TestOrdered_RegisterAppends(t *testing.T) {
	r := New(Ordered)
	require.NoError(t, r.Register(ns1))
	require.NoError(t, r.Register(ns2))
	assert.Equal(t, []string{"tests.fake.namespace1", "tests.fake.namespace2"}, names(r.Refs()))
	assert.Nil(t, r.Tags())
}

func TestOrdered_RegisterAtIndex(t *testing.T) {
	r := New(Ordered)
	require.NoError(t, r.Register(ns1))
	require.NoError(t, r.Register(ns2, At(0)))
	require.NoError(t, r.Register(ns3, At(99)))
	want := []string{"tests.fake.namespace2", "tests.fake.namespace1", "tests.fake.namespace3"}
	if diff := cmp.Diff(want, names(r.Refs())); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestOrdered_Duplicates(t *testing.T) {
	r := New(Ordered)
	require.NoError(t, r.Register(ns1))
	require.NoError(t, r.Register(ns2, At(0)))
	assert.ErrorIs(t, r.Register(ns1), ErrAlreadyRegistered)
	assert.Equal(t, 2, r.Len())
}

func TestOrdered_Unregister(t *testing.T) {
	r := New(Ordered)
	assert.ErrorIs(t, r.Unregister(ns2), ErrNotRegistered)
	require.NoError(t, r.Register(ns1))
	require.NoError(t, r.Register(ns2, At(0)))
	require.NoError(t, r.Unregister(ns2))
	assert.Equal(t, []string{"tests.fake.namespace1"}, names(r.Refs()))
}

func TestOrdered_HandleAndNameAreDistinct(t *testing.T) {
	cat := module.NewCatalog()
	h := cat.Define("tests.fake.namespace1")
	r := New(Ordered)
	require.NoError(t, r.Register(ns1))
	require.NoError(t, r.Register(module.Of(h)), "equality, not resolved identity")
	assert.ErrorIs(t, r.Register(module.Of(h)), ErrAlreadyRegistered)
}

func TestOrdered_SchemeMismatch(t *testing.T) {
	r := New(Ordered)
	assert.ErrorIs(t, r.Register(ns1, As("x")), ErrSchemeMismatch)
	assert.ErrorIs(t, r.RegisterNamespace("x", ns1), ErrSchemeMismatch)
	assert.ErrorIs(t, r.UnregisterNamespace("x"), ErrSchemeMismatch)
	_, ok := r.Lookup("")
	assert.False(t, ok)
	assert.Error(t, r.Register(module.Ref{}))
}

func TestSnapshotIsCopy(t *testing.T) {
	r := New(Ordered)
	require.NoError(t, r.Register(ns1))
	refs := r.Refs()
	refs[0] = ns2
	_ = append(refs, ns3)
	assert.Equal(t, []string{"tests.fake.namespace1"}, names(r.Refs()))

	n := New(Namespaced)
	require.NoError(t, n.RegisterNamespace("a", ns1))
	entries := n.Entries()
	entries[0].Tag = "b"
	_, ok := n.Lookup("a")
	assert.True(t, ok)
}

func TestReversed(t *testing.T) {
	r := New(Ordered, WithReversed())
	assert.True(t, r.Reversed())
	require.NoError(t, r.Register(ns1))
	require.NoError(t, r.Register(ns2))
	require.NoError(t, r.Register(ns3, At(0)))
	assert.Equal(t, []string{"tests.fake.namespace2", "tests.fake.namespace1", "tests.fake.namespace3"}, names(r.Refs()))

	twice := New(Ordered, WithReversed(), WithReversed())
	assert.False(t, twice.Reversed())
	require.NoError(t, twice.Register(ns1))
	require.NoError(t, twice.Register(ns2))
	assert.Equal(t, []string{"tests.fake.namespace1", "tests.fake.namespace2"}, names(twice.Refs()))
}

func TestNamespaced_Register(t *testing.T) {
	r := New(Namespaced)
	require.NoError(t, r.Register(ns1))
	require.NoError(t, r.Register(ns2, As("fake2")))
	require.NoError(t, r.RegisterNamespace("fake3", ns3))

	want := []Entry{
		{Tag: "tests.fake.namespace1", Ref: ns1},
		{Tag: "fake2", Ref: ns2},
		{Tag: "fake3", Ref: ns3},
	}
	assert.Equal(t, want, r.Entries())
	assert.Equal(t, []string{"tests.fake.namespace1", "fake2", "fake3"}, r.Tags())

	ref, ok := r.Lookup("fake2")
	assert.True(t, ok)
	assert.Equal(t, ns2, ref)
}

func TestNamespaced_DefaultTagFromHandle(t *testing.T) {
	cat := module.NewCatalog()
	h := cat.Define("pkg.logging")
	r := New(Namespaced)
	require.NoError(t, r.Register(module.Of(h)))
	assert.Equal(t, []string{"pkg.logging"}, r.Tags())
}

func TestNamespaced_Errors(t *testing.T) {
	r := New(Namespaced)
	require.NoError(t, r.RegisterNamespace("fake1", ns1))
	assert.ErrorIs(t, r.RegisterNamespace("fake1", ns2), ErrAlreadyRegistered)
	assert.ErrorIs(t, r.Register(ns2, As("fake1")), ErrAlreadyRegistered)
	assert.ErrorIs(t, r.Register(ns2, At(0)), ErrSchemeMismatch)
	assert.ErrorIs(t, r.RegisterNamespace("a:b", ns2), ErrInvalidNamespace)
	assert.ErrorIs(t, r.RegisterNamespace("", ns2), ErrInvalidNamespace)
	assert.ErrorIs(t, r.UnregisterNamespace("fake2"), ErrNotRegistered)
	assert.ErrorIs(t, r.Unregister(ns2), ErrNotRegistered)
}

func TestNamespaced_UnregisterModuleRemovesAllTags(t *testing.T) {
	r := New(Namespaced)
	require.NoError(t, r.RegisterNamespace("a", ns1))
	require.NoError(t, r.RegisterNamespace("b", ns2))
	require.NoError(t, r.RegisterNamespace("c", ns1))
	assert.Equal(t, []string{"tests.fake.namespace1", "tests.fake.namespace2", "tests.fake.namespace1"}, names(r.Refs()))

	require.NoError(t, r.Unregister(ns1))
	assert.Equal(t, []string{"b"}, r.Tags())
}

func TestNamespaced_UnregisterNamespace(t *testing.T) {
	r := New(Namespaced, WithReversed())
	require.NoError(t, r.RegisterNamespace("a", ns1))
	require.NoError(t, r.RegisterNamespace("b", ns2))
	require.NoError(t, r.RegisterNamespace("c", ns3))
	assert.Equal(t, []string{"c", "b", "a"}, r.Tags())
	require.NoError(t, r.UnregisterNamespace("b"))
	assert.Equal(t, []string{"c", "a"}, r.Tags())
}

func TestScheme_String(t *testing.T) {
	assert.Equal(t, "ordered", Ordered.String())
	assert.Equal(t, "namespaced", Namespaced.String())
	assert.Equal(t, "Scheme(7)", Scheme(7).String())
}
