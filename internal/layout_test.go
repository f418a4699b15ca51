package internal

import (
	"testing"
)

func TestFullLayout_LeftToRight(t *testing.T) {
	l := NewLayout(DefaultLayoutConfig())
	nodes := []Node{
		{ID: "main", Type: NodeTypeMain},
		{ID: "question-main-0", Type: NodeTypeQuestion},
		{ID: "question-main-1", Type: NodeTypeQuestion},
	}
	edges := []Edge{
		{ID: "e0", Source: "main", Target: "question-main-0"},
		{ID: "e1", Source: "main", Target: "question-main-1"},
	}

	out := l.Full(nodes, edges)
	if len(out) != 3 {
		t.Fatalf("len(out) = %d, want 3", len(out))
	}

	byID := make(map[string]Node)
	for _, n := range out {
		byID[n.ID] = n
		if n.SourcePosition != PositionRight || n.TargetPosition != PositionLeft {
			t.Errorf("node %s handles = (%s, %s), want (right, left)", n.ID, n.SourcePosition, n.TargetPosition)
		}
	}

	// Rank 0: the main node column is the tallest, so it starts at the top,
	// flush against the left margin.
	main := byID["main"]
	if main.Position.X != 100 || main.Position.Y != 0 {
		t.Errorf("main position = %+v, want (100, 0)", main.Position)
	}

	// Rank 1: one full main-node width plus the rank gap to the right.
	q0, q1 := byID["question-main-0"], byID["question-main-1"]
	if q0.Position.X != 1200 || q1.Position.X != 1200 {
		t.Errorf("question x = %v / %v, want 1200", q0.Position.X, q1.Position.X)
	}
	if q0.Position.Y != 90 {
		t.Errorf("first question y = %v, want 90 (centered column)", q0.Position.Y)
	}
	if gap := q1.Position.Y - q0.Position.Y; gap != 220 {
		t.Errorf("question gap = %v, want node height + node sep = 220", gap)
	}
}

func TestFullLayout_ExpandedMarginWidensGaps(t *testing.T) {
	l := NewLayout(DefaultLayoutConfig())
	nodes := []Node{
		{ID: "main", Type: NodeTypeMain, Data: NodeData{IsExpanded: true}},
		{ID: "question-main-0", Type: NodeTypeQuestion},
		{ID: "question-main-1", Type: NodeTypeQuestion},
	}
	edges := []Edge{
		{ID: "e0", Source: "main", Target: "question-main-0"},
		{ID: "e1", Source: "main", Target: "question-main-1"},
	}

	out := l.Full(nodes, edges)
	byID := make(map[string]Node)
	for _, n := range out {
		byID[n.ID] = n
	}
	gap := byID["question-main-1"].Position.Y - byID["question-main-0"].Position.Y
	if gap != 420 {
		t.Errorf("question gap = %v, want 420 with the expanded margin applied", gap)
	}
}

func TestFullLayout_Empty(t *testing.T) {
	l := NewLayout(DefaultLayoutConfig())
	if out := l.Full(nil, nil); len(out) != 0 {
		t.Errorf("Full(nil) = %v, want empty", out)
	}
}

func TestFullLayout_IgnoresDanglingEdges(t *testing.T) {
	l := NewLayout(DefaultLayoutConfig())
	nodes := []Node{{ID: "a", Type: NodeTypeQuestion}}
	edges := []Edge{{ID: "e", Source: "a", Target: "ghost"}}

	out := l.Full(nodes, edges)
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
	if out[0].Position.X != 100 {
		t.Errorf("x = %v, want the margin", out[0].Position.X)
	}
}

func TestFullLayout_CycleTerminates(t *testing.T) {
	l := NewLayout(DefaultLayoutConfig())
	nodes := []Node{
		{ID: "a", Type: NodeTypeQuestion},
		{ID: "b", Type: NodeTypeQuestion},
	}
	edges := []Edge{
		{ID: "e0", Source: "a", Target: "b"},
		{ID: "e1", Source: "b", Target: "a"},
	}

	out := l.Full(nodes, edges)
	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want both cycle members placed", len(out))
	}
}

func TestMerge_NeverMovesExistingNodes(t *testing.T) {
	l := NewLayout(DefaultLayoutConfig())
	current := []Node{
		{ID: "main", Type: NodeTypeMain, Position: Position{X: 50, Y: 80}},
		{ID: "question-main-0", Type: NodeTypeQuestion, Position: Position{X: 999, Y: -3}},
	}
	incoming := []Node{
		{ID: "question-main-1", Type: NodeTypeQuestion},
		{ID: "question-main-2", Type: NodeTypeQuestion},
	}
	edges := []Edge{
		{ID: "e0", Source: "main", Target: "question-main-0"},
		{ID: "e1", Source: "main", Target: "question-main-1"},
		{ID: "e2", Source: "main", Target: "question-main-2"},
	}

	out := l.Merge(current, incoming, edges)
	if len(out) != 4 {
		t.Fatalf("len(out) = %d, want 4", len(out))
	}

	byID := make(map[string]Node)
	for _, n := range out {
		byID[n.ID] = n
	}
	// Dragged positions survive untouched.
	if byID["main"].Position != (Position{X: 50, Y: 80}) {
		t.Errorf("main moved to %+v", byID["main"].Position)
	}
	if byID["question-main-0"].Position != (Position{X: 999, Y: -3}) {
		t.Errorf("existing question moved to %+v", byID["question-main-0"].Position)
	}

	// New children land one rank right of their parent, stacked downward.
	q1, q2 := byID["question-main-1"], byID["question-main-2"]
	if q1.Position != (Position{X: 1150, Y: 80}) {
		t.Errorf("first new child = %+v, want (1150, 80)", q1.Position)
	}
	if q2.Position != (Position{X: 1150, Y: 300}) {
		t.Errorf("second new child = %+v, want (1150, 300)", q2.Position)
	}
}

func TestMerge_SkipsNodesAlreadyPresent(t *testing.T) {
	l := NewLayout(DefaultLayoutConfig())
	current := []Node{{ID: "main", Type: NodeTypeMain, Position: Position{X: 10}}}
	incoming := []Node{{ID: "main", Type: NodeTypeMain}}

	out := l.Merge(current, incoming, nil)
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want duplicate dropped", len(out))
	}
	if out[0].Position.X != 10 {
		t.Errorf("position = %v, want original kept", out[0].Position.X)
	}
}

func TestMerge_OrphanIncomingStillAdded(t *testing.T) {
	l := NewLayout(DefaultLayoutConfig())
	current := []Node{{ID: "main", Type: NodeTypeMain}}
	incoming := []Node{{ID: "note-1", Type: NodeTypeNote}}

	out := l.Merge(current, incoming, nil)
	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want orphan appended", len(out))
	}
}
