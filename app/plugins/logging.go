package plugins

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	corelogger "github.com/kilianp07/classloader/core/logger"
)

// Filter admits records from the logger called Name and its dotted
// descendants. An empty Name admits everything.
type Filter struct {
	Name string `json:"name"`
}

// Allow reports whether records from logger pass the filter.
func (f *Filter) Allow(logger string) bool {
	if f == nil || f.Name == "" || f.Name == logger {
		return true
	}
	return strings.HasPrefix(logger, f.Name+".")
}

// Formatter selects how a handler renders records.
type Formatter struct {
	// Format is "json" (default) or "console".
	Format string `json:"fmt"`
	// DateFormat is the console timestamp layout.
	DateFormat string `json:"datefmt"`
}

func (f *Formatter) wrap(w io.Writer) io.Writer {
	if f == nil || f.Format != "console" {
		return w
	}
	return zerolog.ConsoleWriter{Out: w, TimeFormat: f.DateFormat, NoColor: true}
}

// Handler is a log destination. Concrete handlers embed HandlerBase.
type Handler interface {
	Formatter() *Formatter
	SetFormatter(f *Formatter)
	Filters() []*Filter
	AddFilter(f *Filter)
	Output() io.Writer
}

// HandlerBase carries the formatter and filters shared by all handlers.
type HandlerBase struct {
	mu        sync.RWMutex
	formatter *Formatter
	filters   []*Filter
}

func (h *HandlerBase) Formatter() *Formatter {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.formatter
}

func (h *HandlerBase) SetFormatter(f *Formatter) {
	h.mu.Lock()
	h.formatter = f
	h.mu.Unlock()
}

func (h *HandlerBase) Filters() []*Filter {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]*Filter(nil), h.filters...)
}

func (h *HandlerBase) AddFilter(f *Filter) {
	h.mu.Lock()
	h.filters = append(h.filters, f)
	h.mu.Unlock()
}

// NullHandler discards records.
type NullHandler struct {
	HandlerBase
}

func (*NullHandler) Output() io.Writer { return io.Discard }

// StreamHandler writes to stdout or stderr.
type StreamHandler struct {
	HandlerBase
	// Stream is "stdout" or "stderr" (default).
	Stream string `json:"stream"`
}

func (h *StreamHandler) Output() io.Writer {
	if h.Stream == "stdout" {
		return os.Stdout
	}
	return os.Stderr
}

// FileHandler appends to a file opened when the handler is built.
type FileHandler struct {
	HandlerBase
	Filename string `json:"filename"`
	// Mode is "a" to append (default) or "w" to truncate.
	Mode string `json:"mode"`

	file *os.File
}

// Open opens Filename according to Mode.
func (h *FileHandler) Open() error {
	if h.Filename == "" {
		return errors.New("file handler: filename required")
	}
	flags := os.O_CREATE | os.O_WRONLY
	switch h.Mode {
	case "", "a":
		flags |= os.O_APPEND
	case "w":
		flags |= os.O_TRUNC
	default:
		return fmt.Errorf("file handler: unsupported mode %q", h.Mode)
	}
	f, err := os.OpenFile(h.Filename, flags, 0o644)
	if err != nil {
		return fmt.Errorf("file handler: %w", err)
	}
	h.file = f
	return nil
}

func (h *FileHandler) Output() io.Writer {
	if h.file == nil {
		return io.Discard
	}
	return h.file
}

// Close closes the underlying file.
func (h *FileHandler) Close() error {
	if h.file == nil {
		return nil
	}
	return h.file.Close()
}

// Logger is a named logger in the Python logging mould: it owns handlers
// and filters, and with propagation enabled also emits through the
// handlers of its dotted ancestors. It implements the core logger
// interface on top of zerolog.
type Logger struct {
	name string
	set  *Loggers

	mu        sync.RWMutex
	level     zerolog.Level
	propagate bool
	handlers  []Handler
	filters   []*Filter
}

var _ corelogger.Logger = (*Logger)(nil)

// Name returns the dotted logger name.
func (l *Logger) Name() string { return l.name }

// Level returns the minimum level emitted.
func (l *Logger) Level() zerolog.Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

// SetLevel changes the minimum level.
func (l *Logger) SetLevel(level zerolog.Level) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

// Propagate reports whether records also reach ancestor handlers.
func (l *Logger) Propagate() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.propagate
}

// SetPropagate toggles propagation to ancestor handlers.
func (l *Logger) SetPropagate(p bool) {
	l.mu.Lock()
	l.propagate = p
	l.mu.Unlock()
}

// Handlers returns the attached handlers.
func (l *Logger) Handlers() []Handler {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Handler(nil), l.handlers...)
}

// AddHandler attaches h.
func (l *Logger) AddHandler(h Handler) {
	l.mu.Lock()
	l.handlers = append(l.handlers, h)
	l.mu.Unlock()
}

// Filters returns the logger-level filters.
func (l *Logger) Filters() []*Filter {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]*Filter(nil), l.filters...)
}

// AddFilter attaches f.
func (l *Logger) AddFilter(f *Filter) {
	l.mu.Lock()
	l.filters = append(l.filters, f)
	l.mu.Unlock()
}

// Zerolog returns a zerolog.Logger emitting through l.
func (l *Logger) Zerolog() zerolog.Logger {
	return zerolog.New(l).Level(l.Level()).With().Timestamp().Str("logger", l.name).Logger()
}

// Write fans an encoded record out to the handlers of l and, while
// propagation holds, of its ancestors. Logger filters are checked once;
// handler filters are checked against the originating logger name.
func (l *Logger) Write(p []byte) (int, error) {
	for _, f := range l.Filters() {
		if !f.Allow(l.name) {
			return len(p), nil
		}
	}
	var errs []error
	for cur := l; cur != nil; cur = cur.set.parent(cur) {
		for _, h := range cur.Handlers() {
			if !allowAll(h.Filters(), l.name) {
				continue
			}
			if _, err := h.Formatter().wrap(h.Output()).Write(p); err != nil {
				errs = append(errs, err)
			}
		}
		if !cur.Propagate() {
			break
		}
	}
	return len(p), errors.Join(errs...)
}

func allowAll(filters []*Filter, name string) bool {
	for _, f := range filters {
		if !f.Allow(name) {
			return false
		}
	}
	return true
}

func (l *Logger) Debugf(format string, args ...any) {
	z := l.Zerolog()
	z.Debug().Msgf(format, args...)
}

func (l *Logger) Debugw(msg string, fields map[string]any) {
	z := l.Zerolog()
	z.Debug().Fields(fields).Msg(msg)
}

func (l *Logger) Infof(format string, args ...any) {
	z := l.Zerolog()
	z.Info().Msgf(format, args...)
}

func (l *Logger) Warnf(format string, args ...any) {
	z := l.Zerolog()
	z.Warn().Msgf(format, args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	z := l.Zerolog()
	z.Error().Msgf(format, args...)
}

// Loggers memoises loggers by name: asking twice for the same name yields
// the same *Logger.
type Loggers struct {
	mu sync.Mutex
	m  map[string]*Logger
}

// NewLoggers returns an empty logger set.
func NewLoggers() *Loggers { return &Loggers{m: make(map[string]*Logger)} }

// Get returns the logger called name, creating it with level debug and
// propagation enabled.
func (s *Loggers) Get(name string) *Logger {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.m[name]; ok {
		return l
	}
	l := &Logger{name: name, set: s, level: zerolog.DebugLevel, propagate: true}
	s.m[name] = l
	return l
}

// parent returns the closest existing ancestor of l, ending at the root
// logger "" when it exists.
func (s *Loggers) parent(l *Logger) *Logger {
	if l.name == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	name := l.name
	for {
		i := strings.LastIndexByte(name, '.')
		if i < 0 {
			return s.m[""]
		}
		name = name[:i]
		if p, ok := s.m[name]; ok {
			return p
		}
	}
}
