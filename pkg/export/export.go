// Package export writes registry listings in machine-readable formats.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/kilianp07/classloader/core/registry"
)

// Entry is one registry row. Tag is empty on ordered loaders.
type Entry struct {
	Tag    string `json:"tag,omitempty"`
	Module string `json:"module"`
}

// Entries converts registry entries, keeping their order.
func Entries(in []registry.Entry) []Entry {
	out := make([]Entry, len(in))
	for i, e := range in {
		out[i] = Entry{Tag: e.Tag, Module: e.Ref.String()}
	}
	return out
}

// WriteJSON writes entries to w as a JSON array.
func WriteJSON(w io.Writer, entries []Entry) error {
	return json.NewEncoder(w).Encode(entries)
}

// WriteCSV writes entries to w with a "tag,module" header.
func WriteCSV(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"tag", "module"}); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write([]string{e.Tag, e.Module}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Write dispatches on format: "json" or "csv".
func Write(w io.Writer, format string, entries []Entry) error {
	switch format {
	case "json":
		return WriteJSON(w, entries)
	case "csv":
		return WriteCSV(w, entries)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}
