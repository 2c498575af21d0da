// Package class defines the runtime class handle resolved by the loader.
//
// A Class names a Go type, optionally extends another Class, and knows how
// to build a plain instance of itself from keyword arguments.
package class

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/kilianp07/classloader/core/factory"
)

// Args are keyword construction arguments.
type Args = map[string]any

// Constructor builds an instance from keyword arguments.
type Constructor func(args Args) (any, error)

// ErrConstruct wraps failures of plain construction.
var ErrConstruct = errors.New("construct")

// Class is a named handle over a Go type. Classes are compared by identity.
type Class struct {
	name string
	typ  reflect.Type
	base *Class
	ctor Constructor
}

// Option customises a Class at definition time.
type Option func(*Class)

// Extends makes the class a subclass of base.
func Extends(base *Class) Option { return func(c *Class) { c.base = base } }

// WithConstructor replaces plain field decoding with fn.
func WithConstructor(fn Constructor) Option { return func(c *Class) { c.ctor = fn } }

// Define declares a class named name whose instances are *T.
func Define[T any](name string, opts ...Option) *Class {
	return DefineType(name, reflect.TypeOf((*T)(nil)).Elem(), opts...)
}

// DefineType declares a class for an arbitrary Go type. Pointer types are
// reduced to their element type.
func DefineType(name string, t reflect.Type, opts ...Option) *Class {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	c := &Class{name: name, typ: t}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Name returns the class name.
func (c *Class) Name() string { return c.name }

// Type returns the Go type of instances (the element type for pointers).
func (c *Class) Type() reflect.Type { return c.typ }

// Base returns the direct base class, or nil.
func (c *Class) Base() *Class { return c.base }

// IsSubclassOf reports whether c is other or inherits from it.
func (c *Class) IsSubclassOf(other *Class) bool {
	if other == nil {
		return false
	}
	for k := c; k != nil; k = k.base {
		if k == other {
			return true
		}
	}
	return false
}

// New builds a plain instance. Without a constructor the instance is a
// freshly allocated *T whose fields are decoded from args.
func (c *Class) New(args Args) (any, error) {
	if c.ctor != nil {
		return c.ctor(args)
	}
	if c.typ == nil {
		return nil, fmt.Errorf("%w %s: class has no type", ErrConstruct, c.name)
	}
	ptr := reflect.New(c.typ)
	if len(args) == 0 {
		return ptr.Interface(), nil
	}
	if c.typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w %s: %s takes no arguments", ErrConstruct, c.name, c.typ)
	}
	if err := factory.DecodeArgs(args, ptr.Interface()); err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrConstruct, c.name, err)
	}
	return ptr.Interface(), nil
}

func (c *Class) String() string { return c.name }
