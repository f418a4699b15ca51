package export

import (
	"io"

	"github.com/warrenhq/warren/internal"
	"gopkg.in/yaml.v3"
)

// YAMLExporter renders a canvas snapshot as YAML
type YAMLExporter struct{}

// Export writes the snapshot to w.
func (e *YAMLExporter) Export(snapshot *internal.CanvasExport, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()

	return enc.Encode(snapshot)
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}
