package internal

import (
	"database/sql"
	"fmt"
)

// SettingCurrentCanvas stores the id of the canvas last opened.
const SettingCurrentCanvas = "currentCanvasId"

// Repository enforces the data-model invariants on top of the Store and
// exposes the domain operations. Every mutation goes through a Store
// transaction; nothing writes to a collection directly.
type Repository struct {
	store *Store
}

// NewRepository creates a repository backed by the given store.
func NewRepository(store *Store) *Repository {
	return &Repository{store: store}
}

// CanvasState is a fully loaded canvas with its graph, stripped of storage
// bookkeeping fields.
type CanvasState struct {
	Canvas Canvas
	Nodes  []Node
	Edges  []Edge
}

// CreateCanvas creates a canvas with both timestamps set to now.
func (r *Repository) CreateCanvas(name, description string) (*Canvas, error) {
	now := Now()
	canvas := &Canvas{
		ID:          NewCanvasID(),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := r.store.Transaction("createCanvas", func(tx *sql.Tx) error {
		return putCanvas(tx, canvas)
	})
	if err != nil {
		return nil, err
	}
	return canvas, nil
}

// GetCanvas returns a single canvas by id.
func (r *Repository) GetCanvas(id string) (*Canvas, error) {
	return getCanvas(r.store.db, id)
}

// GetAllCanvases returns every canvas, most recently updated first. The UI
// relies on this ordering for its recents display.
func (r *Repository) GetAllCanvases() ([]Canvas, error) {
	return allCanvases(r.store.db)
}

// CanvasUpdate holds the fields UpdateCanvas may merge. Nil pointers leave
// the stored value alone.
type CanvasUpdate struct {
	Name        *string
	Description *string
	Thumbnail   *string
	Metadata    map[string]any
}

// UpdateCanvas merges fields into a canvas and bumps updatedAt.
func (r *Repository) UpdateCanvas(id string, update CanvasUpdate) error {
	return r.store.Transaction("updateCanvas", func(tx *sql.Tx) error {
		canvas, err := getCanvas(tx, id)
		if err != nil {
			return err
		}
		if update.Name != nil {
			canvas.Name = *update.Name
		}
		if update.Description != nil {
			canvas.Description = *update.Description
		}
		if update.Thumbnail != nil {
			canvas.Thumbnail = *update.Thumbnail
		}
		if update.Metadata != nil {
			canvas.Metadata = update.Metadata
		}
		canvas.UpdatedAt = Now()
		return putCanvas(tx, canvas)
	})
}

// TouchCanvas bumps a canvas's updatedAt without changing any other field.
func (r *Repository) TouchCanvas(id string) error {
	return r.UpdateCanvas(id, CanvasUpdate{})
}

// DeleteCanvas removes a canvas and every node and edge it owns, atomically.
func (r *Repository) DeleteCanvas(id string) error {
	return r.store.Transaction("deleteCanvas", func(tx *sql.Tx) error {
		if _, err := getCanvas(tx, id); err != nil {
			return err
		}
		if err := deleteCanvasRow(tx, id); err != nil {
			return fmt.Errorf("failed to delete canvas: %w", err)
		}
		if err := deleteNodesByCanvas(tx, id); err != nil {
			return fmt.Errorf("failed to delete canvas nodes: %w", err)
		}
		if err := deleteEdgesByCanvas(tx, id); err != nil {
			return fmt.Errorf("failed to delete canvas edges: %w", err)
		}
		return nil
	})
}

// DuplicateCanvas copies a canvas with all its nodes and edges. Node and edge
// ids are reused verbatim; they stay unique because storage keys them by
// (canvasId, id).
func (r *Repository) DuplicateCanvas(id, newName string) (*Canvas, error) {
	now := Now()
	copied := &Canvas{ID: NewCanvasID(), CreatedAt: now, UpdatedAt: now}

	err := r.store.Transaction("duplicateCanvas", func(tx *sql.Tx) error {
		original, err := getCanvas(tx, id)
		if err != nil {
			return err
		}

		copied.Name = newName
		if copied.Name == "" {
			copied.Name = original.Name + " (Copy)"
		}
		copied.Description = original.Description

		nodes, err := nodesByCanvas(tx, id)
		if err != nil {
			return err
		}
		edges, err := edgesByCanvas(tx, id)
		if err != nil {
			return err
		}

		if err := putCanvas(tx, copied); err != nil {
			return fmt.Errorf("failed to save canvas copy: %w", err)
		}
		for i := range nodes {
			nodes[i].CanvasID = copied.ID
			nodes[i].CreatedAt = now
			nodes[i].UpdatedAt = now
		}
		for i := range edges {
			edges[i].CanvasID = copied.ID
			edges[i].CreatedAt = now
			edges[i].UpdatedAt = now
		}
		if err := bulkPutNodes(tx, nodes); err != nil {
			return fmt.Errorf("failed to copy nodes: %w", err)
		}
		if err := bulkPutEdges(tx, edges); err != nil {
			return fmt.Errorf("failed to copy edges: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return copied, nil
}

// SaveCanvasState replaces the full node and edge set of a canvas in one
// transaction. Last write wins; there is no diff-merge.
func (r *Repository) SaveCanvasState(canvasID string, nodes []Node, edges []Edge) error {
	return r.store.Transaction("saveCanvasState", func(tx *sql.Tx) error {
		canvas, err := getCanvas(tx, canvasID)
		if err != nil {
			return err
		}

		if err := deleteNodesByCanvas(tx, canvasID); err != nil {
			return fmt.Errorf("failed to clear nodes: %w", err)
		}
		if err := deleteEdgesByCanvas(tx, canvasID); err != nil {
			return fmt.Errorf("failed to clear edges: %w", err)
		}

		now := Now()
		if err := bulkPutNodes(tx, bindNodes(canvasID, nodes, now)); err != nil {
			return fmt.Errorf("failed to save nodes: %w", err)
		}
		if err := bulkPutEdges(tx, bindEdges(canvasID, edges, now)); err != nil {
			return fmt.Errorf("failed to save edges: %w", err)
		}

		canvas.UpdatedAt = now
		return putCanvas(tx, canvas)
	})
}

// LoadCanvasState loads a canvas and its graph. Nodes and edges come back
// stripped of canvasId and timestamps.
func (r *Repository) LoadCanvasState(canvasID string) (*CanvasState, error) {
	canvas, err := getCanvas(r.store.db, canvasID)
	if err != nil {
		return nil, err
	}
	stored, err := nodesByCanvas(r.store.db, canvasID)
	if err != nil {
		return nil, err
	}
	storedEdges, err := edgesByCanvas(r.store.db, canvasID)
	if err != nil {
		return nil, err
	}

	state := &CanvasState{Canvas: *canvas, Nodes: make([]Node, 0, len(stored)), Edges: make([]Edge, 0, len(storedEdges))}
	for i := range stored {
		state.Nodes = append(state.Nodes, stored[i].Node)
	}
	for i := range storedEdges {
		state.Edges = append(state.Edges, storedEdges[i].Edge)
	}
	return state, nil
}

// DeleteNode removes a node and every edge that names it as an endpoint.
func (r *Repository) DeleteNode(canvasID, nodeID string) error {
	return r.store.Transaction("deleteNode", func(tx *sql.Tx) error {
		canvas, err := getCanvas(tx, canvasID)
		if err != nil {
			return err
		}
		if err := deleteNodeRow(tx, canvasID, nodeID); err != nil {
			return fmt.Errorf("failed to delete node: %w", err)
		}
		if err := deleteEdgesTouchingNode(tx, canvasID, nodeID); err != nil {
			return fmt.Errorf("failed to delete connected edges: %w", err)
		}
		canvas.UpdatedAt = Now()
		return putCanvas(tx, canvas)
	})
}

// ---- settings ----

// Setting returns the value for key, or a NotFoundError.
func (r *Repository) Setting(key string) (string, error) {
	s, err := getSetting(r.store.db, key)
	if err != nil {
		return "", err
	}
	return s.Value, nil
}

// SetSetting upserts a key/value preference.
func (r *Repository) SetSetting(key, value string) error {
	return r.store.Transaction("setSetting", func(tx *sql.Tx) error {
		return putSetting(tx, &Setting{Key: key, Value: value, UpdatedAt: Now()})
	})
}

// DeleteSetting removes a preference. Deleting an absent key is not an error.
func (r *Repository) DeleteSetting(key string) error {
	return r.store.Transaction("deleteSetting", func(tx *sql.Tx) error {
		return deleteSettingRow(tx, key)
	})
}

// ---- export / import ----

// ExportCanvas snapshots one canvas into the versioned export format.
func (r *Repository) ExportCanvas(canvasID string) (*CanvasExport, error) {
	canvas, err := getCanvas(r.store.db, canvasID)
	if err != nil {
		return nil, err
	}
	nodes, err := nodesByCanvas(r.store.db, canvasID)
	if err != nil {
		return nil, err
	}
	edges, err := edgesByCanvas(r.store.db, canvasID)
	if err != nil {
		return nil, err
	}

	return &CanvasExport{
		Version:    ExportVersion,
		Canvas:     *canvas,
		Nodes:      nodes,
		Edges:      edges,
		ExportedAt: Now(),
	}, nil
}

// ImportCanvas creates a new canvas from an export payload. It never
// overwrites an existing canvas; the copy is named "<original> (Imported)".
func (r *Repository) ImportCanvas(data *CanvasExport) (*Canvas, error) {
	if data.Version != ExportVersion {
		return nil, &VersionError{Got: data.Version, Want: ExportVersion}
	}

	now := Now()
	canvas := &Canvas{
		ID:          NewCanvasID(),
		Name:        data.Canvas.Name + " (Imported)",
		Description: data.Canvas.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := r.store.Transaction("importCanvas", func(tx *sql.Tx) error {
		if err := putCanvas(tx, canvas); err != nil {
			return fmt.Errorf("failed to save imported canvas: %w", err)
		}
		nodes := make([]Node, 0, len(data.Nodes))
		for i := range data.Nodes {
			nodes = append(nodes, data.Nodes[i].Node)
		}
		edges := make([]Edge, 0, len(data.Edges))
		for i := range data.Edges {
			edges = append(edges, data.Edges[i].Edge)
		}
		if err := bulkPutNodes(tx, bindNodes(canvas.ID, nodes, now)); err != nil {
			return fmt.Errorf("failed to import nodes: %w", err)
		}
		if err := bulkPutEdges(tx, bindEdges(canvas.ID, edges, now)); err != nil {
			return fmt.Errorf("failed to import edges: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return canvas, nil
}

// ExportDatabase snapshots the whole store.
func (r *Repository) ExportDatabase() (*DatabaseExport, error) {
	canvases, err := allCanvases(r.store.db)
	if err != nil {
		return nil, err
	}
	nodes, err := allNodes(r.store.db)
	if err != nil {
		return nil, err
	}
	edges, err := allEdges(r.store.db)
	if err != nil {
		return nil, err
	}
	settings, err := allSettings(r.store.db)
	if err != nil {
		return nil, err
	}

	return &DatabaseExport{
		Version:    ExportVersion,
		Canvases:   canvases,
		Nodes:      nodes,
		Edges:      edges,
		Settings:   settings,
		ExportedAt: Now(),
	}, nil
}

// ImportDatabase restores a whole-store snapshot. With merge=false all four
// collections are cleared first; the caller is responsible for confirming
// that with the user.
func (r *Repository) ImportDatabase(data *DatabaseExport, merge bool) error {
	if data.Version != ExportVersion {
		return &VersionError{Got: data.Version, Want: ExportVersion}
	}

	return r.store.Transaction("importDatabase", func(tx *sql.Tx) error {
		if !merge {
			if err := clearAll(tx); err != nil {
				return err
			}
		}
		for i := range data.Canvases {
			if err := putCanvas(tx, &data.Canvases[i]); err != nil {
				return fmt.Errorf("failed to import canvas %s: %w", data.Canvases[i].ID, err)
			}
		}
		if err := bulkPutNodes(tx, data.Nodes); err != nil {
			return fmt.Errorf("failed to import nodes: %w", err)
		}
		if err := bulkPutEdges(tx, data.Edges); err != nil {
			return fmt.Errorf("failed to import edges: %w", err)
		}
		for i := range data.Settings {
			if err := putSetting(tx, &data.Settings[i]); err != nil {
				return fmt.Errorf("failed to import setting %s: %w", data.Settings[i].Key, err)
			}
		}
		return nil
	})
}

// ClearDatabase removes everything from all four collections.
func (r *Repository) ClearDatabase() error {
	return r.store.Transaction("clearDatabase", func(tx *sql.Tx) error {
		return clearAll(tx)
	})
}

func bindNodes(canvasID string, nodes []Node, now int64) []StoredNode {
	stored := make([]StoredNode, 0, len(nodes))
	for _, n := range nodes {
		stored = append(stored, StoredNode{Node: n, CanvasID: canvasID, CreatedAt: now, UpdatedAt: now})
	}
	return stored
}

func bindEdges(canvasID string, edges []Edge, now int64) []StoredEdge {
	stored := make([]StoredEdge, 0, len(edges))
	for _, e := range edges {
		stored = append(stored, StoredEdge{Edge: e, CanvasID: canvasID, CreatedAt: now, UpdatedAt: now})
	}
	return stored
}
