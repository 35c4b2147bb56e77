package cmd

import (
	"encoding/json"
	"io"
)

// jsonEncode writes v as indented JSON, the shared --json output shape
// across search/get/multi-get/status.
func jsonEncode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
