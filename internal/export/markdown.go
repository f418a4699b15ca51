package export

import (
	"fmt"
	"io"
	"time"

	"github.com/warrenhq/warren/internal"
)

// MarkdownExporter renders a canvas snapshot as a readable Markdown outline:
// answered nodes become sections, their question nodes become sub-lists.
type MarkdownExporter struct{}

// Export writes the snapshot to w.
func (e *MarkdownExporter) Export(snapshot *internal.CanvasExport, w io.Writer) error {
	c := snapshot.Canvas
	_, _ = fmt.Fprintf(w, "# %s\n\n", c.Name)
	if c.Description != "" {
		_, _ = fmt.Fprintf(w, "%s\n\n", c.Description)
	}
	_, _ = fmt.Fprintf(w, "**Exported:** %s  \n", formatMillis(snapshot.ExportedAt))
	_, _ = fmt.Fprintf(w, "**Nodes:** %d · **Edges:** %d\n\n", len(snapshot.Nodes), len(snapshot.Edges))
	_, _ = fmt.Fprintf(w, "---\n\n")

	// Question nodes grouped under the node they branch from.
	children := make(map[string][]*internal.StoredNode)
	byID := make(map[string]*internal.StoredNode, len(snapshot.Nodes))
	for i := range snapshot.Nodes {
		byID[snapshot.Nodes[i].ID] = &snapshot.Nodes[i]
	}
	for _, edge := range snapshot.Edges {
		if child, ok := byID[edge.Target]; ok {
			children[edge.Source] = append(children[edge.Source], child)
		}
	}

	for i := range snapshot.Nodes {
		node := &snapshot.Nodes[i]
		if node.Type != internal.NodeTypeMain {
			continue
		}

		_, _ = fmt.Fprintf(w, "## %s\n\n", node.Data.Label)
		if node.Data.Content != "" {
			_, _ = fmt.Fprintf(w, "%s\n\n", node.Data.Content)
		}
		if len(node.Data.Sources) > 0 {
			_, _ = fmt.Fprintf(w, "**Sources:**\n\n")
			for _, src := range node.Data.Sources {
				_, _ = fmt.Fprintf(w, "- [%s](%s)\n", src.Title, src.URL)
			}
			_, _ = fmt.Fprintf(w, "\n")
		}
		if branches := children[node.ID]; len(branches) > 0 {
			_, _ = fmt.Fprintf(w, "**Open questions:**\n\n")
			for _, q := range branches {
				if q.Type == internal.NodeTypeQuestion {
					_, _ = fmt.Fprintf(w, "- %s\n", q.Data.Label)
				}
			}
			_, _ = fmt.Fprintf(w, "\n")
		}
	}

	// Notes and other free-standing nodes at the end.
	for i := range snapshot.Nodes {
		node := &snapshot.Nodes[i]
		if node.Type != internal.NodeTypeNote || node.Data.Content == "" {
			continue
		}
		_, _ = fmt.Fprintf(w, "## Note: %s\n\n%s\n\n", node.Data.Label, node.Data.Content)
	}

	return nil
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}

func formatMillis(ms int64) string {
	return time.Unix(0, ms*int64(time.Millisecond)).Format(time.RFC3339)
}
