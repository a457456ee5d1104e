// Package export renders delivery log entries for other tools.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/kilianp07/greetd/core/delivery"
)

// Formats lists the supported output formats.
var Formats = []string{"text", "json", "csv"}

// Write renders entries in the named format.
func Write(w io.Writer, format string, entries []delivery.Entry) error {
	switch format {
	case "text", "":
		return WriteText(w, entries)
	case "json":
		return WriteJSON(w, entries)
	case "csv":
		return WriteCSV(w, entries)
	}
	return fmt.Errorf("unknown export format %q (known: %v)", format, Formats)
}

// WriteText writes one log line per entry.
func WriteText(w io.Writer, entries []delivery.Entry) error {
	for _, e := range entries {
		if _, err := fmt.Fprintln(w, e.Line()); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON writes the entries as a JSON array.
func WriteJSON(w io.Writer, entries []delivery.Entry) error {
	if entries == nil {
		entries = []delivery.Entry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

// WriteCSV writes the entries with a header row.
func WriteCSV(w io.Writer, entries []delivery.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "timestamp", "name", "email", "channel", "message"}); err != nil {
		return err
	}
	for _, e := range entries {
		rec := []string{
			e.ID,
			e.Timestamp.Format(time.RFC3339Nano),
			e.Name,
			e.Email,
			e.Channel,
			e.Message,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
