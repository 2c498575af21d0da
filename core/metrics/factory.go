package metrics

import "github.com/kilianp07/classloader/core/factory"

var recorderRegistry = factory.NewRegistry[Recorder]()

func init() {
	_ = RegisterRecorder("nop", func(map[string]any) (Recorder, error) {
		return NopRecorder{}, nil
	})
}

// RegisterRecorder adds a recorder factory identified by name.
func RegisterRecorder(name string, f factory.Factory[Recorder]) error {
	return recorderRegistry.Register(name, f)
}

// RecorderTypes lists the registered recorder type names.
func RecorderTypes() []string { return recorderRegistry.Names() }

// NewRecorder creates a Recorder from the provided configuration.
func NewRecorder(cfgs []factory.ModuleConfig) (Recorder, error) {
	if len(cfgs) == 0 {
		return NopRecorder{}, nil
	}
	if len(cfgs) == 1 {
		return recorderRegistry.Create(cfgs[0])
	}
	recs := make([]Recorder, len(cfgs))
	for i, c := range cfgs {
		r, err := recorderRegistry.Create(c)
		if err != nil {
			return nil, err
		}
		recs[i] = r
	}
	return NewMultiRecorder(recs...), nil
}
