package registry

import "slices"

// View presents registry entries in some read order. Implementations
// return fresh slices the caller may modify.
type View interface {
	Entries() []Entry
}

// storage reads entries in insertion order.
type storage struct{ r *Registry }

func (s storage) Entries() []Entry { return slices.Clone(s.r.entries) }

type reversed struct{ inner View }

// Reverse wraps v so that entries are read back to front.
func Reverse(v View) View { return reversed{inner: v} }

func (rv reversed) Entries() []Entry {
	out := rv.inner.Entries()
	slices.Reverse(out)
	return out
}
