// Package logger provides the zerolog-backed implementation of the core
// logging interface.
package logger

import corelogger "github.com/kilianp07/classloader/core/logger"

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger discards everything.
type NopLogger = corelogger.NopLogger

// Config selects the minimum level and the output format.
type Config struct {
	// Level is a zerolog level name: trace, debug, info, warn, error.
	Level string `json:"level"`
	// Format is "json" or "console". Empty falls back to APP_ENV: "dev"
	// selects console output.
	Format string `json:"format"`
}

// New returns a Logger for the given component using the settings applied
// by Configure.
func New(component string) Logger {
	return NewZerologLogger(component)
}
