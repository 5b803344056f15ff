package format

import (
	"encoding/json"
	"io"
)

// WriteJSON writes v as a single newline-terminated JSON document, the
// shape shell pipelines expect from the scriptable commands.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
