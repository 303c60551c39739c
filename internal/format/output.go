package format

import (
	"encoding/json"
	"fmt"
	"io"

	"kanban-cli/internal/model"
)

// TextWriter is implemented by values with their own text rendering.
type TextWriter interface {
	WriteText(w io.Writer) error
}

// Write writes output in the requested format.
//
// Supported formats:
// - json (default)
// - text
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch format {
	case "", "json":
		return WriteJSON(w, v, pretty)
	case "text":
		return WriteText(w, v)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteJSON writes strict JSON output for CLI commands.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))
	return err
}

// WriteText renders boards and history for people. Other values fall back to
// indented JSON.
func WriteText(w io.Writer, v any) error {
	switch x := v.(type) {
	case model.Board:
		return writeBoard(w, x)
	case *model.Board:
		return writeBoard(w, *x)
	case []model.HistoryEntry:
		return writeHistory(w, x)
	case TextWriter:
		return x.WriteText(w)
	default:
		return WriteJSON(w, v, true)
	}
}
