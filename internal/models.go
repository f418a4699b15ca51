package internal

import (
	"encoding/json"
	"strings"
	"time"
)

// Node type discriminators. The values are stored verbatim in the database and
// in export files, so renaming one is a schema change.
const (
	NodeTypeMain     = "mainNode"
	NodeTypeQuestion = "questionNode"
	NodeTypeChat     = "chatNode"
	NodeTypeNote     = "noteNode"
	NodeTypeQuery    = "queryNode"
)

// QuestionIDPrefix is the id namespace for unexpanded question nodes. Only
// nodes whose id carries this prefix are eligible for expansion.
const QuestionIDPrefix = "question-"

// Handle sides used for edge routing in a left-to-right layout.
const (
	PositionLeft  = "left"
	PositionRight = "right"
)

// ExportVersion tags canvas and database export payloads.
const ExportVersion = "1.0"

// Canvas represents a saved graph workspace.
type Canvas struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	CreatedAt   int64          `json:"createdAt" yaml:"created_at"`
	UpdatedAt   int64          `json:"updatedAt" yaml:"updated_at"`
	Thumbnail   string         `json:"thumbnail,omitempty" yaml:"thumbnail,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Position is a node's placement on the canvas.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Source is a citation attached to an answered node.
type Source struct {
	Title  string `json:"title" yaml:"title"`
	URL    string `json:"url" yaml:"url"`
	Author string `json:"author,omitempty" yaml:"author,omitempty"`
}

// Image is an illustration attached to an answered node.
type Image struct {
	URL         string `json:"url" yaml:"url"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// ConversationMessage is one user/assistant turn of accumulated context. It is
// never persisted on its own; it derives from answered node content.
type ConversationMessage struct {
	User      string `json:"user,omitempty" yaml:"user,omitempty"`
	Assistant string `json:"assistant,omitempty" yaml:"assistant,omitempty"`
}

// NodeData is the content payload of a node.
type NodeData struct {
	Label      string                `json:"label,omitempty" yaml:"label,omitempty"`
	Content    string                `json:"content,omitempty" yaml:"content,omitempty"`
	Sources    []Source              `json:"sources,omitempty" yaml:"sources,omitempty"`
	Images     []string              `json:"images,omitempty" yaml:"images,omitempty"`
	IsExpanded bool                  `json:"isExpanded" yaml:"is_expanded"`
	Thread     []ConversationMessage `json:"thread,omitempty" yaml:"thread,omitempty"`
}

// Node is a graph vertex as callers see it, free of storage bookkeeping.
type Node struct {
	ID             string   `json:"id" yaml:"id"`
	Type           string   `json:"type" yaml:"type"`
	Position       Position `json:"position" yaml:"position"`
	Data           NodeData `json:"data" yaml:"data"`
	SourcePosition string   `json:"sourcePosition,omitempty" yaml:"source_position,omitempty"`
	TargetPosition string   `json:"targetPosition,omitempty" yaml:"target_position,omitempty"`
}

// Edge is a directed arc between two nodes of the same canvas.
type Edge struct {
	ID       string `json:"id" yaml:"id"`
	Source   string `json:"source" yaml:"source"`
	Target   string `json:"target" yaml:"target"`
	Type     string `json:"type,omitempty" yaml:"type,omitempty"`
	Animated bool   `json:"animated,omitempty" yaml:"animated,omitempty"`
}

// StoredNode is a Node bound to its owning canvas.
type StoredNode struct {
	Node      `yaml:",inline"`
	CanvasID  string `json:"canvasId" yaml:"canvas_id"`
	CreatedAt int64  `json:"createdAt" yaml:"created_at"`
	UpdatedAt int64  `json:"updatedAt" yaml:"updated_at"`
}

// StoredEdge is an Edge bound to its owning canvas.
type StoredEdge struct {
	Edge      `yaml:",inline"`
	CanvasID  string `json:"canvasId" yaml:"canvas_id"`
	CreatedAt int64  `json:"createdAt" yaml:"created_at"`
	UpdatedAt int64  `json:"updatedAt" yaml:"updated_at"`
}

// Setting is a persisted key/value preference, independent of canvas lifecycle.
type Setting struct {
	Key       string `json:"key" yaml:"key"`
	Value     string `json:"value" yaml:"value"`
	UpdatedAt int64  `json:"updatedAt" yaml:"updated_at"`
}

// CanvasExport is the versioned snapshot of a single canvas.
type CanvasExport struct {
	Version    string       `json:"version" yaml:"version"`
	Canvas     Canvas       `json:"canvas" yaml:"canvas"`
	Nodes      []StoredNode `json:"nodes" yaml:"nodes"`
	Edges      []StoredEdge `json:"edges" yaml:"edges"`
	ExportedAt int64        `json:"exportedAt" yaml:"exported_at"`
}

// DatabaseExport is the versioned snapshot of the whole store.
type DatabaseExport struct {
	Version    string       `json:"version" yaml:"version"`
	Canvases   []Canvas     `json:"canvases" yaml:"canvases"`
	Nodes      []StoredNode `json:"nodes" yaml:"nodes"`
	Edges      []StoredEdge `json:"edges" yaml:"edges"`
	Settings   []Setting    `json:"settings" yaml:"settings"`
	ExportedAt int64        `json:"exportedAt" yaml:"exported_at"`
}

// IsQuestion reports whether the node sits in the question id namespace.
func (n *Node) IsQuestion() bool {
	return strings.HasPrefix(n.ID, QuestionIDPrefix)
}

// GetCreatedAt returns the canvas creation time.
func (c *Canvas) GetCreatedAt() time.Time {
	return time.Unix(0, c.CreatedAt*int64(time.Millisecond))
}

// GetUpdatedAt returns the canvas last-touched time.
func (c *Canvas) GetUpdatedAt() time.Time {
	return time.Unix(0, c.UpdatedAt*int64(time.Millisecond))
}

// MarshalData serializes a node payload for storage.
func MarshalData(d NodeData) (string, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// UnmarshalData deserializes a stored node payload. An empty column yields the
// zero payload rather than an error.
func UnmarshalData(raw string) (NodeData, error) {
	var d NodeData
	if raw == "" {
		return d, nil
	}
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return NodeData{}, err
	}
	return d, nil
}

// MarshalMetadata serializes canvas metadata for storage. Nil metadata is
// stored as an empty string.
func MarshalMetadata(m map[string]any) (string, error) {
	if m == nil {
		return "", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// UnmarshalMetadata deserializes stored canvas metadata.
func UnmarshalMetadata(raw string) (map[string]any, error) {
	if raw == "" {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, err
	}
	return m, nil
}

// Now returns the current wall clock as unix milliseconds, the timestamp unit
// used everywhere in the store and in export files.
func Now() int64 {
	return time.Now().UnixMilli()
}
