package testutil

import (
	"testing"

	"github.com/warrenhq/warren/internal"
)

// SampleGraph returns a small answered graph: one main node with two question
// nodes fanned out from it.
func SampleGraph() ([]internal.Node, []internal.Edge) {
	nodes := []internal.Node{
		{
			ID:   "main",
			Type: internal.NodeTypeMain,
			Data: internal.NodeData{
				Label:      "What is a warren?",
				Content:    "A warren is a network of interconnected rabbit burrows.",
				IsExpanded: true,
				Sources: []internal.Source{
					{Title: "Warren", URL: "https://example.org/warren"},
				},
			},
		},
		{
			ID:   "question-main-0",
			Type: internal.NodeTypeQuestion,
			Data: internal.NodeData{Label: "How deep do warrens go?"},
		},
		{
			ID:   "question-main-1",
			Type: internal.NodeTypeQuestion,
			Data: internal.NodeData{Label: "Who digs the tunnels?"},
		},
	}
	edges := []internal.Edge{
		{ID: "edge-main-question-main-0", Source: "main", Target: "question-main-0", Type: "smoothstep", Animated: true},
		{ID: "edge-main-question-main-1", Source: "main", Target: "question-main-1", Type: "smoothstep", Animated: true},
	}
	return nodes, edges
}

// SeedCanvas creates a canvas holding SampleGraph and returns it.
func SeedCanvas(t *testing.T, repo *internal.Repository, name string) *internal.Canvas {
	t.Helper()
	canvas, err := repo.CreateCanvas(name, "seeded for tests")
	if err != nil {
		t.Fatalf("Failed to create canvas: %v", err)
	}
	nodes, edges := SampleGraph()
	if err := repo.SaveCanvasState(canvas.ID, nodes, edges); err != nil {
		t.Fatalf("Failed to seed canvas state: %v", err)
	}
	return canvas
}
