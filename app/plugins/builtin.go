// Package plugins provides the builtin modules that ship with the loader:
// the "log" module, a zerolog-backed rendition of a hierarchical logging
// package whose classes are built through loader factories.
package plugins

import "github.com/kilianp07/classloader/core/module"

// DefineBuiltins adds the builtin modules to cat and returns their names.
func DefineBuiltins(cat *module.Catalog) []string {
	cat.Define(LogModule).Add(
		LoggerClass,
		HandlerClass,
		NullHandlerClass,
		StreamHandlerClass,
		FileHandlerClass,
		FilterClass,
		FormatterClass,
	)
	return []string{LogModule}
}
