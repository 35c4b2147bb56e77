package ui

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/qfs-dev/qfs/internal/store"
)

// StatusRenderer prints a one-shot, non-interactive rendering of a store's
// status, used by the `qfs status` command.
type StatusRenderer struct {
	out    io.Writer
	styles Styles
}

// NewStatusRenderer creates a status renderer.
func NewStatusRenderer(out io.Writer, noColor bool) *StatusRenderer {
	return &StatusRenderer{out: out, styles: GetStyles(noColor)}
}

// Render displays status info as text.
func (r *StatusRenderer) Render(status *store.Status) error {
	_, _ = fmt.Fprintf(r.out, "%s\n\n", r.styles.Header.Render("qfs status"))

	_, _ = fmt.Fprintf(r.out, "  Schema version: %d\n", status.SchemaVersion)
	_, _ = fmt.Fprintf(r.out, "  Documents:      %d\n", status.Documents)
	_, _ = fmt.Fprintf(r.out, "  Embeddings:     %d\n", status.Embeddings)
	_, _ = fmt.Fprintln(r.out)

	_, _ = fmt.Fprintf(r.out, "  Collections (%d):\n", len(status.Collections))
	if len(status.Collections) == 0 {
		_, _ = fmt.Fprintln(r.out, r.styles.Dim.Render("    (none registered)"))
	}
	for _, c := range status.Collections {
		_, _ = fmt.Fprintf(r.out, "    %s\n", c)
	}

	return nil
}

// RenderJSON outputs status as JSON.
func (r *StatusRenderer) RenderJSON(status *store.Status) error {
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(status)
}
