package module

// Ref refers to a module either by name, resolved through an Importer on
// every use, or by an already loaded handle used as-is.
//
// Refs are comparable: two refs are equal when both are names with the same
// text or both wrap the same handle. A name ref is never equal to a handle
// ref, even when the handle carries that name. Handle implementations must
// therefore be comparable; pointer types are.
type Ref struct {
	name   string
	handle Handle
}

// Named returns a ref resolved lazily by name.
func Named(name string) Ref { return Ref{name: name} }

// Of returns a ref to an already loaded handle.
func Of(h Handle) Ref { return Ref{handle: h} }

// IsHandle reports whether r wraps a handle.
func (r Ref) IsHandle() bool { return r.handle != nil }

// IsZero reports whether r refers to nothing.
func (r Ref) IsZero() bool { return r.handle == nil && r.name == "" }

// String returns the name for name refs and the handle name otherwise.
func (r Ref) String() string {
	if r.handle != nil {
		return r.handle.Name()
	}
	return r.name
}

// Resolve turns r into a handle.
func Resolve(imp Importer, r Ref) (Handle, error) {
	if r.handle != nil {
		return r.handle, nil
	}
	return imp.Import(r.name)
}
