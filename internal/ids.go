package internal

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NewCanvasID returns a canvas id unique within the store. The time prefix is
// for human readability; uniqueness comes from the random suffix.
func NewCanvasID() string {
	return fmt.Sprintf("canvas_%d_%s", Now(), shortID())
}

// NewNodeID returns an id for a user-created node of the given type, e.g.
// "note-6f1c2a9d".
func NewNodeID(nodeType string) string {
	kind := strings.TrimSuffix(nodeType, "Node")
	return fmt.Sprintf("%s-%s", kind, shortID())
}

// NewQuestionID returns the id for the index-th follow-up question spawned
// from parentID. The "question-" namespace is what makes the node expandable.
func NewQuestionID(parentID string, index int) string {
	return fmt.Sprintf("%s%s-%d", QuestionIDPrefix, parentID, index)
}

// NewEdgeID returns the id for an edge from source to target.
func NewEdgeID(sourceID, targetID string) string {
	return fmt.Sprintf("edge-%s-%s", sourceID, targetID)
}

func shortID() string {
	return uuid.NewString()[:8]
}
