// Package factory holds the small building blocks shared by everything that
// turns configuration into objects.
//
// Registry is a generic name-to-factory table used for pluggable backends
// such as metrics recorders. Descriptor is the "type plus params" form used
// to describe an object to construct by qualified class name, either as a
// bare string ("log:Filter") or as a map with "type" and "params" keys.
//
// Example usage:
//
//	reg := factory.NewRegistry[io.Writer]()
//	reg.Register("file", func(conf map[string]any) (io.Writer, error) {
//	    var c struct{ Path string `json:"path"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return os.Create(c.Path)
//	})
//	w, err := reg.Create(factory.ModuleConfig{Type: "file", Conf: map[string]any{"path": "out.log"}})
package factory
