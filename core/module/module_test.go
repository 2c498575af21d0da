package module

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/classloader/core/class"
)

type thing struct{}

func TestCatalog_DefineCreatesParents(t *testing.T) {
	cat := NewCatalog()
	leaf := cat.Define("pkg.sub.leaf")
	assert.Equal(t, "pkg.sub.leaf", leaf.Name())
	assert.Equal(t, []string{"pkg", "pkg.sub", "pkg.sub.leaf"}, cat.Names())
	assert.Same(t, leaf, cat.Define("pkg.sub.leaf"), "define is idempotent")
	assert.Panics(t, func() { cat.Define("pkg..x") })
}

func TestCatalog_Import(t *testing.T) {
	cat := NewCatalog()
	m := cat.Define("pkg")
	h, err := cat.Import("pkg")
	require.NoError(t, err)
	assert.Same(t, m, h)

	_, err = cat.Import("missing")
	assert.ErrorIs(t, err, ErrModuleNotFound)
	_, err = cat.Import("")
	assert.ErrorIs(t, err, ErrModuleNotFound)
}

func TestCatalog_ImportRelative(t *testing.T) {
	cat := NewCatalog()
	parent := cat.Define("pkg")
	sub := cat.Define("pkg.a.b")
	h, err := cat.ImportRelative("a.b", parent)
	require.NoError(t, err)
	assert.Same(t, sub, h)

	_, err = cat.ImportRelative("c", parent)
	assert.ErrorIs(t, err, ErrModuleNotFound)
	_, err = cat.ImportRelative(".a", parent)
	assert.ErrorIs(t, err, ErrModuleNotFound)
}

func TestLookup(t *testing.T) {
	cat := NewCatalog()
	k1 := class.Define[thing]("K")
	k2 := class.Define[thing]("K")
	root := cat.Define("pkg").Add(k1)
	cat.Define("pkg.sub.inner").Add(k2)

	c, err := Lookup(cat, root, "K")
	require.NoError(t, err)
	assert.Same(t, k1, c)

	c, err = Lookup(cat, root, "sub.inner.K")
	require.NoError(t, err)
	assert.Same(t, k2, c)

	_, err = Lookup(cat, root, "Missing")
	assert.ErrorIs(t, err, ErrMemberNotFound)
	_, err = Lookup(cat, root, "nope.K")
	assert.ErrorIs(t, err, ErrModuleNotFound)
}

func TestModule_AliasAndMembers(t *testing.T) {
	cat := NewCatalog()
	k := class.Define[thing]("K")
	m := cat.Define("pkg").Add(k).Alias("Other", k)
	assert.Equal(t, []string{"K", "Other"}, m.Members())
	c, ok := m.Member("Other")
	assert.True(t, ok)
	assert.Same(t, k, c)
}

func TestRef(t *testing.T) {
	cat := NewCatalog()
	m := cat.Define("pkg")

	assert.Equal(t, Named("pkg"), Named("pkg"))
	assert.NotEqual(t, Named("pkg"), Of(m), "name and handle refs never compare equal")
	assert.True(t, Of(m) == Of(m))
	assert.Equal(t, "pkg", Of(m).String())
	assert.True(t, Ref{}.IsZero())
	assert.True(t, Of(m).IsHandle())

	h, err := Resolve(cat, Named("pkg"))
	require.NoError(t, err)
	assert.Same(t, m, h)
	h, err = Resolve(cat, Of(m))
	require.NoError(t, err)
	assert.Same(t, m, h)
	_, err = Resolve(cat, Named("nope"))
	assert.ErrorIs(t, err, ErrModuleNotFound)
}
