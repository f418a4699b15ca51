package internal

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	return NewRepository(openTemp(t))
}

// answeredGraph is a small graph with one answered main node and two open
// questions hanging off it.
func answeredGraph() ([]Node, []Edge) {
	nodes := []Node{
		{
			ID:   "main",
			Type: NodeTypeMain,
			Data: NodeData{
				Label:      "What is a warren?",
				Content:    "A warren is a network of interconnected rabbit burrows.",
				IsExpanded: true,
				Sources:    []Source{{Title: "Warren", URL: "https://example.org/warren"}},
			},
		},
		{ID: "question-main-0", Type: NodeTypeQuestion, Data: NodeData{Label: "How deep do warrens go?"}},
		{ID: "question-main-1", Type: NodeTypeQuestion, Data: NodeData{Label: "Who digs the tunnels?"}},
	}
	edges := []Edge{
		{ID: "edge-main-question-main-0", Source: "main", Target: "question-main-0", Type: "smoothstep", Animated: true},
		{ID: "edge-main-question-main-1", Source: "main", Target: "question-main-1", Type: "smoothstep", Animated: true},
	}
	return nodes, edges
}

func seedCanvas(t *testing.T, repo *Repository, name string) *Canvas {
	t.Helper()
	canvas, err := repo.CreateCanvas(name, "")
	if err != nil {
		t.Fatalf("CreateCanvas() error = %v", err)
	}
	nodes, edges := answeredGraph()
	if err := repo.SaveCanvasState(canvas.ID, nodes, edges); err != nil {
		t.Fatalf("SaveCanvasState() error = %v", err)
	}
	return canvas
}

func TestCreateCanvas(t *testing.T) {
	repo := newTestRepo(t)

	canvas, err := repo.CreateCanvas("My Exploration", "about rabbits")
	if err != nil {
		t.Fatalf("CreateCanvas() error = %v", err)
	}
	if !strings.HasPrefix(canvas.ID, "canvas_") {
		t.Errorf("canvas id = %q, want canvas_ prefix", canvas.ID)
	}
	if canvas.CreatedAt == 0 || canvas.CreatedAt != canvas.UpdatedAt {
		t.Errorf("timestamps = (%d, %d), want equal and non-zero", canvas.CreatedAt, canvas.UpdatedAt)
	}

	got, err := repo.GetCanvas(canvas.ID)
	if err != nil {
		t.Fatalf("GetCanvas() error = %v", err)
	}
	if got.Name != "My Exploration" || got.Description != "about rabbits" {
		t.Errorf("stored canvas = %+v", got)
	}
}

func TestGetCanvas_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetCanvas("canvas_missing")
	if !IsNotFound(err) {
		t.Errorf("GetCanvas() error = %v, want not-found", err)
	}
}

func TestGetAllCanvases_Ordering(t *testing.T) {
	repo := newTestRepo(t)

	first, err := repo.CreateCanvas("First", "")
	if err != nil {
		t.Fatalf("CreateCanvas() error = %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	second, err := repo.CreateCanvas("Second", "")
	if err != nil {
		t.Fatalf("CreateCanvas() error = %v", err)
	}
	time.Sleep(2 * time.Millisecond)

	// Touching the older canvas must move it to the front.
	if err := repo.TouchCanvas(first.ID); err != nil {
		t.Fatalf("TouchCanvas() error = %v", err)
	}

	all, err := repo.GetAllCanvases()
	if err != nil {
		t.Fatalf("GetAllCanvases() error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("len(canvases) = %d, want 2", len(all))
	}
	if all[0].ID != first.ID || all[1].ID != second.ID {
		t.Errorf("order = [%s, %s], want most recently updated first", all[0].Name, all[1].Name)
	}
}

func TestUpdateCanvas_MergesFields(t *testing.T) {
	repo := newTestRepo(t)
	canvas, err := repo.CreateCanvas("Old Name", "keep me")
	if err != nil {
		t.Fatalf("CreateCanvas() error = %v", err)
	}

	name := "New Name"
	if err := repo.UpdateCanvas(canvas.ID, CanvasUpdate{Name: &name}); err != nil {
		t.Fatalf("UpdateCanvas() error = %v", err)
	}

	got, err := repo.GetCanvas(canvas.ID)
	if err != nil {
		t.Fatalf("GetCanvas() error = %v", err)
	}
	if got.Name != "New Name" {
		t.Errorf("name = %q, want %q", got.Name, "New Name")
	}
	if got.Description != "keep me" {
		t.Errorf("description = %q, want untouched", got.Description)
	}
	if got.UpdatedAt < canvas.UpdatedAt {
		t.Errorf("updatedAt went backwards: %d -> %d", canvas.UpdatedAt, got.UpdatedAt)
	}
}

func TestUpdateCanvas_NotFound(t *testing.T) {
	repo := newTestRepo(t)
	name := "whatever"
	err := repo.UpdateCanvas("canvas_missing", CanvasUpdate{Name: &name})
	if !IsNotFound(err) {
		t.Errorf("UpdateCanvas() error = %v, want not-found", err)
	}
}

func TestDeleteCanvas_CascadesToGraph(t *testing.T) {
	repo := newTestRepo(t)
	doomed := seedCanvas(t, repo, "Doomed")
	kept := seedCanvas(t, repo, "Kept")

	if err := repo.DeleteCanvas(doomed.ID); err != nil {
		t.Fatalf("DeleteCanvas() error = %v", err)
	}

	if _, err := repo.GetCanvas(doomed.ID); !IsNotFound(err) {
		t.Errorf("GetCanvas(deleted) error = %v, want not-found", err)
	}

	// No orphaned nodes or edges may remain for the deleted canvas.
	snapshot, err := repo.ExportDatabase()
	if err != nil {
		t.Fatalf("ExportDatabase() error = %v", err)
	}
	for _, n := range snapshot.Nodes {
		if n.CanvasID == doomed.ID {
			t.Errorf("orphaned node %s survived canvas deletion", n.ID)
		}
	}
	for _, e := range snapshot.Edges {
		if e.CanvasID == doomed.ID {
			t.Errorf("orphaned edge %s survived canvas deletion", e.ID)
		}
	}

	// The other canvas is untouched.
	state, err := repo.LoadCanvasState(kept.ID)
	if err != nil {
		t.Fatalf("LoadCanvasState() error = %v", err)
	}
	if len(state.Nodes) != 3 || len(state.Edges) != 2 {
		t.Errorf("kept canvas graph = %d nodes / %d edges, want 3 / 2", len(state.Nodes), len(state.Edges))
	}
}

func TestDeleteCanvas_NotFound(t *testing.T) {
	repo := newTestRepo(t)
	if err := repo.DeleteCanvas("canvas_missing"); !IsNotFound(err) {
		t.Errorf("DeleteCanvas() error = %v, want not-found", err)
	}
}

func TestDuplicateCanvas(t *testing.T) {
	repo := newTestRepo(t)
	original := seedCanvas(t, repo, "Original")

	copied, err := repo.DuplicateCanvas(original.ID, "")
	if err != nil {
		t.Fatalf("DuplicateCanvas() error = %v", err)
	}
	if copied.ID == original.ID {
		t.Error("duplicate reused the original canvas id")
	}
	if copied.Name != "Original (Copy)" {
		t.Errorf("copy name = %q, want %q", copied.Name, "Original (Copy)")
	}

	origState, err := repo.LoadCanvasState(original.ID)
	if err != nil {
		t.Fatalf("LoadCanvasState(original) error = %v", err)
	}
	copyState, err := repo.LoadCanvasState(copied.ID)
	if err != nil {
		t.Fatalf("LoadCanvasState(copy) error = %v", err)
	}
	if len(copyState.Nodes) != len(origState.Nodes) || len(copyState.Edges) != len(origState.Edges) {
		t.Fatalf("copy graph = %d/%d, want %d/%d",
			len(copyState.Nodes), len(copyState.Edges), len(origState.Nodes), len(origState.Edges))
	}
	// Node ids carry over verbatim; the composite storage key keeps them
	// distinct across canvases.
	for i := range origState.Nodes {
		if copyState.Nodes[i].ID != origState.Nodes[i].ID {
			t.Errorf("node id changed in copy: %q vs %q", copyState.Nodes[i].ID, origState.Nodes[i].ID)
		}
	}
}

func TestDuplicateCanvas_CustomName(t *testing.T) {
	repo := newTestRepo(t)
	original := seedCanvas(t, repo, "Original")

	copied, err := repo.DuplicateCanvas(original.ID, "Fork")
	if err != nil {
		t.Fatalf("DuplicateCanvas() error = %v", err)
	}
	if copied.Name != "Fork" {
		t.Errorf("copy name = %q, want %q", copied.Name, "Fork")
	}
}

func TestSaveCanvasState_ReplaceSemantics(t *testing.T) {
	repo := newTestRepo(t)
	canvas := seedCanvas(t, repo, "Replace")

	// Save a smaller graph; the previous nodes and edges must be gone.
	nodes := []Node{{ID: "note-1", Type: NodeTypeNote, Data: NodeData{Label: "just a note"}}}
	if err := repo.SaveCanvasState(canvas.ID, nodes, nil); err != nil {
		t.Fatalf("SaveCanvasState() error = %v", err)
	}

	state, err := repo.LoadCanvasState(canvas.ID)
	if err != nil {
		t.Fatalf("LoadCanvasState() error = %v", err)
	}
	if len(state.Nodes) != 1 || len(state.Edges) != 0 {
		t.Fatalf("graph after replace = %d nodes / %d edges, want 1 / 0", len(state.Nodes), len(state.Edges))
	}
	if state.Nodes[0].ID != "note-1" {
		t.Errorf("surviving node = %q, want note-1", state.Nodes[0].ID)
	}
}

func TestSaveCanvasState_RoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	canvas, err := repo.CreateCanvas("Round Trip", "")
	if err != nil {
		t.Fatalf("CreateCanvas() error = %v", err)
	}

	nodes, edges := answeredGraph()
	nodes[0].Position = Position{X: 42.5, Y: -7}
	nodes[0].Data.Thread = []ConversationMessage{
		{User: "What is a warren?", Assistant: "A network of burrows."},
	}
	if err := repo.SaveCanvasState(canvas.ID, nodes, edges); err != nil {
		t.Fatalf("SaveCanvasState() error = %v", err)
	}

	state, err := repo.LoadCanvasState(canvas.ID)
	if err != nil {
		t.Fatalf("LoadCanvasState() error = %v", err)
	}
	if len(state.Nodes) != len(nodes) || len(state.Edges) != len(edges) {
		t.Fatalf("graph = %d/%d, want %d/%d", len(state.Nodes), len(state.Edges), len(nodes), len(edges))
	}

	var main *Node
	for i := range state.Nodes {
		if state.Nodes[i].ID == "main" {
			main = &state.Nodes[i]
		}
	}
	if main == nil {
		t.Fatal("main node missing after round trip")
	}
	if main.Position.X != 42.5 || main.Position.Y != -7 {
		t.Errorf("position = %+v, want (42.5, -7)", main.Position)
	}
	if len(main.Data.Sources) != 1 || main.Data.Sources[0].URL != "https://example.org/warren" {
		t.Errorf("sources did not survive: %+v", main.Data.Sources)
	}
	if len(main.Data.Thread) != 1 || main.Data.Thread[0].Assistant != "A network of burrows." {
		t.Errorf("thread did not survive: %+v", main.Data.Thread)
	}
	if !main.Data.IsExpanded {
		t.Error("isExpanded flag lost in round trip")
	}
}

func TestSaveCanvasState_UnknownCanvas(t *testing.T) {
	repo := newTestRepo(t)
	nodes, edges := answeredGraph()
	if err := repo.SaveCanvasState("canvas_missing", nodes, edges); !IsNotFound(err) {
		t.Errorf("SaveCanvasState() error = %v, want not-found", err)
	}
}

func TestDeleteNode_RemovesTouchingEdges(t *testing.T) {
	repo := newTestRepo(t)
	canvas := seedCanvas(t, repo, "Prune")

	if err := repo.DeleteNode(canvas.ID, "question-main-0"); err != nil {
		t.Fatalf("DeleteNode() error = %v", err)
	}

	state, err := repo.LoadCanvasState(canvas.ID)
	if err != nil {
		t.Fatalf("LoadCanvasState() error = %v", err)
	}
	if len(state.Nodes) != 2 {
		t.Errorf("nodes after delete = %d, want 2", len(state.Nodes))
	}
	for _, e := range state.Edges {
		if e.Source == "question-main-0" || e.Target == "question-main-0" {
			t.Errorf("dangling edge %s survived node deletion", e.ID)
		}
	}
	if len(state.Edges) != 1 {
		t.Errorf("edges after delete = %d, want 1", len(state.Edges))
	}
}

func TestSettings(t *testing.T) {
	repo := newTestRepo(t)

	if _, err := repo.Setting(SettingCurrentCanvas); !IsNotFound(err) {
		t.Errorf("Setting(absent) error = %v, want not-found", err)
	}

	if err := repo.SetSetting(SettingCurrentCanvas, "canvas_1"); err != nil {
		t.Fatalf("SetSetting() error = %v", err)
	}
	if err := repo.SetSetting(SettingCurrentCanvas, "canvas_2"); err != nil {
		t.Fatalf("SetSetting() upsert error = %v", err)
	}

	got, err := repo.Setting(SettingCurrentCanvas)
	if err != nil {
		t.Fatalf("Setting() error = %v", err)
	}
	if got != "canvas_2" {
		t.Errorf("setting = %q, want canvas_2", got)
	}

	if err := repo.DeleteSetting(SettingCurrentCanvas); err != nil {
		t.Fatalf("DeleteSetting() error = %v", err)
	}
	// Deleting an absent key is not an error.
	if err := repo.DeleteSetting(SettingCurrentCanvas); err != nil {
		t.Errorf("DeleteSetting(absent) error = %v, want nil", err)
	}
}

func TestExportImportCanvas_RoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	canvas := seedCanvas(t, repo, "Source")

	export, err := repo.ExportCanvas(canvas.ID)
	if err != nil {
		t.Fatalf("ExportCanvas() error = %v", err)
	}
	if export.Version != ExportVersion {
		t.Errorf("export version = %q, want %q", export.Version, ExportVersion)
	}
	if len(export.Nodes) != 3 || len(export.Edges) != 2 {
		t.Fatalf("export graph = %d/%d, want 3/2", len(export.Nodes), len(export.Edges))
	}

	imported, err := repo.ImportCanvas(export)
	if err != nil {
		t.Fatalf("ImportCanvas() error = %v", err)
	}
	if imported.ID == canvas.ID {
		t.Error("import reused the source canvas id")
	}
	if imported.Name != "Source (Imported)" {
		t.Errorf("imported name = %q, want %q", imported.Name, "Source (Imported)")
	}

	state, err := repo.LoadCanvasState(imported.ID)
	if err != nil {
		t.Fatalf("LoadCanvasState() error = %v", err)
	}
	if len(state.Nodes) != 3 || len(state.Edges) != 2 {
		t.Errorf("imported graph = %d/%d, want 3/2", len(state.Nodes), len(state.Edges))
	}
}

func TestImportCanvas_VersionMismatch(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.ImportCanvas(&CanvasExport{Version: "2.0"})
	var ve *VersionError
	if !errors.As(err, &ve) {
		t.Fatalf("ImportCanvas() error = %T, want *VersionError", err)
	}
	if ve.Got != "2.0" || ve.Want != ExportVersion {
		t.Errorf("version error = %+v", ve)
	}
}

func TestImportDatabase_Replace(t *testing.T) {
	repo := newTestRepo(t)
	seedCanvas(t, repo, "Old")
	if err := repo.SetSetting("theme", "dark"); err != nil {
		t.Fatalf("SetSetting() error = %v", err)
	}

	snapshot, err := repo.ExportDatabase()
	if err != nil {
		t.Fatalf("ExportDatabase() error = %v", err)
	}

	// Wipe and add unrelated data, then restore the snapshot without merge.
	if err := repo.ClearDatabase(); err != nil {
		t.Fatalf("ClearDatabase() error = %v", err)
	}
	seedCanvas(t, repo, "Interloper")

	if err := repo.ImportDatabase(snapshot, false); err != nil {
		t.Fatalf("ImportDatabase() error = %v", err)
	}

	all, err := repo.GetAllCanvases()
	if err != nil {
		t.Fatalf("GetAllCanvases() error = %v", err)
	}
	if len(all) != 1 || all[0].Name != "Old" {
		t.Fatalf("canvases after replace = %+v, want only Old", all)
	}
	if theme, err := repo.Setting("theme"); err != nil || theme != "dark" {
		t.Errorf("setting after replace = (%q, %v), want dark", theme, err)
	}
}

func TestImportDatabase_Merge(t *testing.T) {
	repo := newTestRepo(t)
	seedCanvas(t, repo, "Existing")

	other := newTestRepo(t)
	seedCanvas(t, other, "Incoming")
	snapshot, err := other.ExportDatabase()
	if err != nil {
		t.Fatalf("ExportDatabase() error = %v", err)
	}

	if err := repo.ImportDatabase(snapshot, true); err != nil {
		t.Fatalf("ImportDatabase(merge) error = %v", err)
	}

	all, err := repo.GetAllCanvases()
	if err != nil {
		t.Fatalf("GetAllCanvases() error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("canvases after merge = %d, want 2", len(all))
	}
}

func TestImportDatabase_VersionMismatch(t *testing.T) {
	repo := newTestRepo(t)
	err := repo.ImportDatabase(&DatabaseExport{Version: "0.9"}, true)
	var ve *VersionError
	if !errors.As(err, &ve) {
		t.Errorf("ImportDatabase() error = %T, want *VersionError", err)
	}
}
