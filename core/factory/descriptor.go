package factory

import (
	"errors"
	"fmt"
	"maps"
)

// ErrInvalidDescriptor is returned when a value cannot be read as a Descriptor.
var ErrInvalidDescriptor = errors.New("invalid descriptor")

// Descriptor names a class to construct together with its construction
// arguments.
type Descriptor struct {
	Type   string         `json:"type"`
	Params map[string]any `json:"params"`
}

// ParseDescriptor reads v as a Descriptor. Accepted forms are a bare
// qualified class name, a map with a "type" key and an optional "params"
// map, or a Descriptor value. Params is never nil on success.
func ParseDescriptor(v any) (Descriptor, error) {
	switch d := v.(type) {
	case string:
		if d == "" {
			return Descriptor{}, fmt.Errorf("%w: empty type", ErrInvalidDescriptor)
		}
		return Descriptor{Type: d, Params: map[string]any{}}, nil
	case Descriptor:
		return d.normalized()
	case *Descriptor:
		if d == nil {
			return Descriptor{}, fmt.Errorf("%w: nil", ErrInvalidDescriptor)
		}
		return d.normalized()
	case map[string]any:
		var out Descriptor
		if err := Decode(d, &out); err != nil {
			return Descriptor{}, fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)
		}
		return out.normalized()
	default:
		return Descriptor{}, fmt.Errorf("%w: unsupported value of type %T", ErrInvalidDescriptor, v)
	}
}

func (d Descriptor) normalized() (Descriptor, error) {
	if d.Type == "" {
		return Descriptor{}, fmt.Errorf("%w: missing type", ErrInvalidDescriptor)
	}
	if d.Params == nil {
		d.Params = map[string]any{}
	} else {
		d.Params = maps.Clone(d.Params)
	}
	return d, nil
}
