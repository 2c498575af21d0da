package loader

import (
	"errors"
	"fmt"

	"github.com/kilianp07/classloader/core/registry"
)

var (
	// ErrClassNotFound matches every *ClassNotFoundError.
	ErrClassNotFound = errors.New("class not found")
	// ErrAlreadyRegistered is re-exported from the registry package.
	ErrAlreadyRegistered = registry.ErrAlreadyRegistered
	// ErrNotRegistered is re-exported from the registry package. Factory
	// table operations use it as well.
	ErrNotRegistered = registry.ErrNotRegistered
)

// ClassNotFoundError reports a class that no searched module exposes.
// Namespace is set when the lookup was confined to one namespace. Err
// joins the per-module causes, if any.
type ClassNotFoundError struct {
	Name      string
	Namespace string
	Err       error
}

func (e *ClassNotFoundError) Error() string {
	if e.Namespace != "" {
		return fmt.Sprintf("class %q could not be loaded from namespace %q", e.Name, e.Namespace)
	}
	return fmt.Sprintf("class %q could not be loaded", e.Name)
}

// Is makes errors.Is(err, ErrClassNotFound) hold.
func (e *ClassNotFoundError) Is(target error) bool { return target == ErrClassNotFound }

func (e *ClassNotFoundError) Unwrap() error { return e.Err }
