// Package registry holds the ordered collection of module references the
// loader searches.
//
// A registry uses one of two key schemes. In the Ordered scheme entries are
// bare module refs, unique by equality, and insertion position decides
// search priority. In the Namespaced scheme every entry carries a unique tag
// that qualified class names can address directly ("tag:Class"); tags keep
// registration order for unqualified searches.
//
// Reversal is a read-time view: storage order always follows insertion, and
// a reversed registry presents its snapshots and search order backwards.
package registry

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/kilianp07/classloader/core/module"
)

var (
	// ErrAlreadyRegistered indicates a duplicate module ref or namespace tag.
	ErrAlreadyRegistered = errors.New("already registered")
	// ErrNotRegistered indicates an unknown module ref or namespace tag.
	ErrNotRegistered = errors.New("not registered")
	// ErrInvalidNamespace indicates a namespace tag that cannot be addressed
	// by a qualified name.
	ErrInvalidNamespace = errors.New("invalid namespace")
	// ErrSchemeMismatch indicates an operation that does not apply to the
	// registry key scheme.
	ErrSchemeMismatch = errors.New("operation not supported by registry scheme")
)

// NamespaceSeparator splits a namespace tag from the class path.
const NamespaceSeparator = ":"

// Scheme selects how entries are keyed.
type Scheme int

const (
	// Ordered keys entries by module ref.
	Ordered Scheme = iota
	// Namespaced keys entries by namespace tag.
	Namespaced
)

func (s Scheme) String() string {
	switch s {
	case Ordered:
		return "ordered"
	case Namespaced:
		return "namespaced"
	default:
		return fmt.Sprintf("Scheme(%d)", int(s))
	}
}

// Entry is one registered module. Tag is empty in the Ordered scheme.
type Entry struct {
	Tag string
	Ref module.Ref
}

// Registry is the module collection. It is not safe for concurrent use.
type Registry struct {
	scheme   Scheme
	entries  []Entry
	view     View
	reversed bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithReversed presents entries in reverse insertion order.
func WithReversed() Option {
	return func(r *Registry) {
		r.view = Reverse(r.view)
		r.reversed = !r.reversed
	}
}

// New returns an empty registry using the given key scheme.
func New(scheme Scheme, opts ...Option) *Registry {
	r := &Registry{scheme: scheme}
	r.view = storage{r}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Scheme returns the registry key scheme.
func (r *Registry) Scheme() Scheme { return r.scheme }

// Reversed reports whether entries are read back to front.
func (r *Registry) Reversed() bool { return r.reversed }

// Len returns the number of entries.
func (r *Registry) Len() int { return len(r.entries) }

// RegisterOption customises a single registration.
type RegisterOption func(*registerOpts)

type registerOpts struct {
	index  int
	hasIdx bool
	tag    string
	hasTag bool
}

// At inserts the ref at position idx of the storage order. A negative idx
// appends; an idx past the end appends. Ordered scheme only.
func At(idx int) RegisterOption {
	return func(o *registerOpts) { o.index, o.hasIdx = idx, true }
}

// As registers the ref under tag. Namespaced scheme only.
func As(tag string) RegisterOption {
	return func(o *registerOpts) { o.tag, o.hasTag = tag, true }
}

// Register adds ref. In the Namespaced scheme the tag defaults to
// ref.String().
func (r *Registry) Register(ref module.Ref, opts ...RegisterOption) error {
	if ref.IsZero() {
		return fmt.Errorf("registry: empty module reference")
	}
	var o registerOpts
	for _, fn := range opts {
		fn(&o)
	}
	if r.scheme == Namespaced {
		if o.hasIdx {
			return fmt.Errorf("%w: position given for namespaced registry", ErrSchemeMismatch)
		}
		tag := ref.String()
		if o.hasTag {
			tag = o.tag
		}
		return r.RegisterNamespace(tag, ref)
	}
	if o.hasTag {
		return fmt.Errorf("%w: namespace %q given for ordered registry", ErrSchemeMismatch, o.tag)
	}
	if r.indexOfRef(ref) >= 0 {
		return fmt.Errorf("%w: module %q", ErrAlreadyRegistered, ref)
	}
	e := Entry{Ref: ref}
	if !o.hasIdx || o.index < 0 || o.index >= len(r.entries) {
		r.entries = append(r.entries, e)
		return nil
	}
	r.entries = slices.Insert(r.entries, o.index, e)
	return nil
}

// RegisterNamespace adds ref under tag. Namespaced scheme only.
func (r *Registry) RegisterNamespace(tag string, ref module.Ref) error {
	if r.scheme != Namespaced {
		return fmt.Errorf("%w: namespace %q given for ordered registry", ErrSchemeMismatch, tag)
	}
	if ref.IsZero() {
		return fmt.Errorf("registry: empty module reference")
	}
	if err := ValidateNamespace(tag); err != nil {
		return err
	}
	if r.indexOfTag(tag) >= 0 {
		return fmt.Errorf("%w: namespace %q", ErrAlreadyRegistered, tag)
	}
	r.entries = append(r.entries, Entry{Tag: tag, Ref: ref})
	return nil
}

// Unregister removes ref. In the Namespaced scheme every tag mapped to an
// equal ref is removed.
func (r *Registry) Unregister(ref module.Ref) error {
	n := len(r.entries)
	r.entries = slices.DeleteFunc(r.entries, func(e Entry) bool { return e.Ref == ref })
	if len(r.entries) == n {
		return fmt.Errorf("%w: module %q", ErrNotRegistered, ref)
	}
	return nil
}

// UnregisterNamespace removes the entry registered under tag.
func (r *Registry) UnregisterNamespace(tag string) error {
	if r.scheme != Namespaced {
		return fmt.Errorf("%w: namespace %q given for ordered registry", ErrSchemeMismatch, tag)
	}
	i := r.indexOfTag(tag)
	if i < 0 {
		return fmt.Errorf("%w: namespace %q", ErrNotRegistered, tag)
	}
	r.entries = slices.Delete(r.entries, i, i+1)
	return nil
}

// Lookup returns the ref registered under tag.
func (r *Registry) Lookup(tag string) (module.Ref, bool) {
	if i := r.indexOfTag(tag); i >= 0 && r.scheme == Namespaced {
		return r.entries[i].Ref, true
	}
	return module.Ref{}, false
}

// Entries returns a copy of the entries in read order.
func (r *Registry) Entries() []Entry { return r.view.Entries() }

// Refs returns a copy of the registered refs in read order. Refs may
// repeat in the Namespaced scheme when one module is registered under
// several tags.
func (r *Registry) Refs() []module.Ref {
	entries := r.view.Entries()
	out := make([]module.Ref, len(entries))
	for i, e := range entries {
		out[i] = e.Ref
	}
	return out
}

// Tags returns the namespace tags in read order.
func (r *Registry) Tags() []string {
	if r.scheme != Namespaced {
		return nil
	}
	entries := r.view.Entries()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Tag
	}
	return out
}

func (r *Registry) indexOfRef(ref module.Ref) int {
	return slices.IndexFunc(r.entries, func(e Entry) bool { return e.Ref == ref })
}

func (r *Registry) indexOfTag(tag string) int {
	if r.scheme != Namespaced {
		return -1
	}
	return slices.IndexFunc(r.entries, func(e Entry) bool { return e.Tag == tag })
}

// ValidateNamespace checks that tag can prefix a qualified class name.
func ValidateNamespace(tag string) error {
	if tag == "" {
		return fmt.Errorf("%w: empty tag", ErrInvalidNamespace)
	}
	if strings.Contains(tag, NamespaceSeparator) {
		return fmt.Errorf("%w: %q contains %q", ErrInvalidNamespace, tag, NamespaceSeparator)
	}
	return nil
}
