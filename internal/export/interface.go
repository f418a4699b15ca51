package export

import (
	"fmt"
	"io"

	"github.com/warrenhq/warren/internal"
)

// Exporter defines the interface for all canvas export formats
type Exporter interface {
	Export(snapshot *internal.CanvasExport, w io.Writer) error
	Extension() string
}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "json":
		return &JSONExporter{}, nil
	case "yaml":
		return &YAMLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: json, yaml, md)", format)
	}
}
