package plugins

import (
	"fmt"
	"io"
	"maps"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kilianp07/classloader/core/class"
	"github.com/kilianp07/classloader/core/factory"
	"github.com/kilianp07/classloader/core/loader"
)

// LogModule is the name under which DefineBuiltins exposes the logging
// classes.
const LogModule = "log"

// Logging classes. Concrete handlers extend HandlerClass so that one
// factory serves all of them.
var (
	LoggerClass        = class.Define[Logger]("Logger")
	HandlerClass       = class.Define[HandlerBase]("Handler")
	NullHandlerClass   = class.Define[NullHandler]("NullHandler", class.Extends(HandlerClass))
	StreamHandlerClass = class.Define[StreamHandler]("StreamHandler", class.Extends(HandlerClass))
	FileHandlerClass   = class.Define[FileHandler]("FileHandler", class.Extends(HandlerClass))
	FilterClass        = class.Define[Filter]("Filter")
	FormatterClass     = class.Define[Formatter]("Formatter")
)

// FactoryRegistrar is the part of a loader the logging factories need.
type FactoryRegistrar interface {
	RegisterFactory(c *class.Class, b loader.Builder, opts ...loader.FactoryOption) error
}

// LoggingOption customises RegisterLoggingFactories.
type LoggingOption func(*loggingOpts)

type loggingOpts struct{ loggers *Loggers }

// WithLoggers memoises built loggers in set instead of DefaultLoggers.
func WithLoggers(set *Loggers) LoggingOption {
	return func(o *loggingOpts) { o.loggers = set }
}

// DefaultLoggers is the process-wide logger set.
var DefaultLoggers = NewLoggers()

// RegisterLoggingFactories installs the Logger factory and the Handler
// factory, which also covers every handler subclass.
func RegisterLoggingFactories(r FactoryRegistrar, opts ...LoggingOption) error {
	o := loggingOpts{loggers: DefaultLoggers}
	for _, fn := range opts {
		fn(&o)
	}
	if err := r.RegisterFactory(LoggerClass, LoggerFactory(o.loggers)); err != nil {
		return err
	}
	return r.RegisterFactory(HandlerClass, HandlerFactory, loader.CoverSubtypes())
}

type loggerArgs struct {
	Name      string `json:"name"`
	Propagate *bool  `json:"propagate"`
	Level     string `json:"level"`
	Handlers  []any  `json:"handlers"`
	Filters   []any  `json:"filters"`
}

// LoggerFactory returns a builder producing loggers from set. Arguments:
// name, propagate (default true), level (default debug), handlers and
// filters. Handler and filter entries are instances or descriptors; each
// call adds them to the memoised logger.
func LoggerFactory(set *Loggers) loader.Builder {
	return func(r loader.Resolver, _ *class.Class) class.Constructor {
		return func(args class.Args) (any, error) {
			var a loggerArgs
			if err := factory.DecodeArgs(args, &a); err != nil {
				return nil, fmt.Errorf("logger: %w", err)
			}
			level := zerolog.DebugLevel
			if a.Level != "" {
				l, err := zerolog.ParseLevel(strings.ToLower(a.Level))
				if err != nil {
					return nil, fmt.Errorf("logger %q: %w", a.Name, err)
				}
				level = l
			}
			handlers := make([]Handler, 0, len(a.Handlers))
			for _, v := range a.Handlers {
				h, err := buildAs[Handler](r, v)
				if err != nil {
					return nil, fmt.Errorf("logger %q handler: %w", a.Name, err)
				}
				handlers = append(handlers, h)
			}
			filters, err := buildFilters(r, a.Filters)
			if err != nil {
				return nil, fmt.Errorf("logger %q: %w", a.Name, err)
			}

			l := set.Get(a.Name)
			l.SetPropagate(a.Propagate == nil || *a.Propagate)
			l.SetLevel(level)
			for _, h := range handlers {
				l.AddHandler(h)
			}
			for _, f := range filters {
				l.AddFilter(f)
			}
			return l, nil
		}
	}
}

// HandlerFactory builds the concrete handler class it is dispatched for.
// The formatter and filters arguments are consumed here; the remaining
// arguments construct the handler itself.
func HandlerFactory(r loader.Resolver, c *class.Class) class.Constructor {
	return func(args class.Args) (any, error) {
		rest := maps.Clone(args)
		formatter := rest["formatter"]
		filterArg := rest["filters"]
		delete(rest, "formatter")
		delete(rest, "filters")

		obj, err := c.New(rest)
		if err != nil {
			return nil, err
		}
		h, ok := obj.(Handler)
		if !ok {
			return nil, fmt.Errorf("%s is not a concrete handler", c.Name())
		}
		if o, ok := h.(interface{ Open() error }); ok {
			if err := o.Open(); err != nil {
				return nil, err
			}
		}
		if err := decorateHandler(r, c, h, formatter, filterArg); err != nil {
			if cl, ok := h.(io.Closer); ok {
				_ = cl.Close()
			}
			return nil, err
		}
		return h, nil
	}
}

// decorateHandler attaches the formatter and filters built from their
// arguments. A nil formatter argument leaves the handler's unset.
func decorateHandler(r loader.Resolver, c *class.Class, h Handler, formatter, filterArg any) error {
	if formatter != nil {
		f, err := buildAs[*Formatter](r, formatter)
		if err != nil {
			return fmt.Errorf("%s formatter: %w", c.Name(), err)
		}
		h.SetFormatter(f)
	}
	var list []any
	if filterArg != nil {
		var ok bool
		if list, ok = filterArg.([]any); !ok {
			return fmt.Errorf("%s filters: want a list, got %T", c.Name(), filterArg)
		}
	}
	filters, err := buildFilters(r, list)
	if err != nil {
		return fmt.Errorf("%s: %w", c.Name(), err)
	}
	for _, f := range filters {
		h.AddFilter(f)
	}
	return nil
}

func buildFilters(r loader.Resolver, list []any) ([]*Filter, error) {
	out := make([]*Filter, 0, len(list))
	for _, v := range list {
		f, err := buildAs[*Filter](r, v)
		if err != nil {
			return nil, fmt.Errorf("filter: %w", err)
		}
		out = append(out, f)
	}
	return out, nil
}

// buildAs returns v when it already is a T, and otherwise reads v as a
// descriptor and builds it through r.
func buildAs[T any](r loader.Resolver, v any) (T, error) {
	var zero T
	if t, ok := v.(T); ok {
		return t, nil
	}
	d, err := factory.ParseDescriptor(v)
	if err != nil {
		return zero, err
	}
	obj, err := r.Factory(d.Type, d.Params)
	if err != nil {
		return zero, err
	}
	t, ok := obj.(T)
	if !ok {
		return zero, fmt.Errorf("%s built %T, want %T", d.Type, obj, zero)
	}
	return t, nil
}
