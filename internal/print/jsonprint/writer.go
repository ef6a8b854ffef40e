// Package jsonprint prints values as indented JSON documents.
package jsonprint

import (
	"encoding/json"
	"io"
)

// Print writes v to w as an indented JSON document followed by a newline.
// HTML characters are not escaped.
func Print(w io.Writer, v any) error {
	e := json.NewEncoder(w)
	e.SetEscapeHTML(false)
	e.SetIndent("", "  ")
	return e.Encode(v)
}
