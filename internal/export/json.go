package export

import (
	"encoding/json"
	"io"

	"github.com/warrenhq/warren/internal"
)

// JSONExporter renders a canvas snapshot as pretty-printed JSON. This is the
// canonical interchange format; only JSON exports can be imported back.
type JSONExporter struct{}

// Export writes the snapshot to w.
func (e *JSONExporter) Export(snapshot *internal.CanvasExport, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(snapshot)
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}
