package internal

import (
	"context"
	"errors"
	"sync"
)

// Rejection reasons for an expansion click. Both are expected conditions, not
// failures of the pipeline.
var (
	ErrNotExpandable       = errors.New("node is not an unexpanded question")
	ErrExpansionInFlight   = errors.New("another expansion is already in flight")
	ErrNodeMissing         = errors.New("node is not on the canvas")
	ErrExpansionSuperseded = errors.New("expansion was superseded")
)

// SearchService is the slice of the AI collaborator the explorer needs.
// *AIClient satisfies it; tests substitute fakes.
type SearchService interface {
	Search(ctx context.Context, req *SearchRequest) (*SearchResponse, error)
}

// expansion is the cancellation token owned by one in-flight request. The
// response handler compares token identity before mutating anything, so a
// superseded or cancelled request can never apply a stale payload.
type expansion struct {
	cancel context.CancelFunc
}

// Explorer governs one canvas's in-memory graph: the initial search, the
// question-node expansion lifecycle, conversation history, and node/edge
// creation. At most one expansion is in flight across the canvas at a time.
type Explorer struct {
	ai     SearchService
	layout *Layout
	mode   string

	mu       sync.Mutex
	nodes    []Node
	edges    []Edge
	history  []ConversationMessage
	inflight map[string]*expansion

	onChange func(nodes []Node, edges []Edge)
}

// NewExplorer creates an explorer using the given collaborator and layout
// engine. Mode selects how the collaborator branches follow-up questions.
func NewExplorer(ai SearchService, layout *Layout, mode string) *Explorer {
	if mode == "" {
		mode = ModeExpansive
	}
	return &Explorer{
		ai:       ai,
		layout:   layout,
		mode:     mode,
		inflight: make(map[string]*expansion),
	}
}

// OnChange registers a callback invoked after every graph mutation with a
// snapshot of the new state. The autosaver subscribes here.
func (e *Explorer) OnChange(fn func(nodes []Node, edges []Edge)) {
	e.mu.Lock()
	e.onChange = fn
	e.mu.Unlock()
}

// Load replaces the working graph, running a full layout pass. Used when a
// persisted canvas is opened.
func (e *Explorer) Load(nodes []Node, edges []Edge) {
	e.mu.Lock()
	e.nodes = e.layout.Full(nodes, edges)
	e.edges = append([]Edge(nil), edges...)
	e.mu.Unlock()
}

// Nodes returns a snapshot of the current node set.
func (e *Explorer) Nodes() []Node {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Node(nil), e.nodes...)
}

// Edges returns a snapshot of the current edge set.
func (e *Explorer) Edges() []Edge {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Edge(nil), e.edges...)
}

// History returns a snapshot of the accumulated conversation turns.
func (e *Explorer) History() []ConversationMessage {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]ConversationMessage(nil), e.history...)
}

// Busy reports whether any expansion is currently in flight.
func (e *Explorer) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.inflight) > 0
}

// Search runs the initial query, building a main answer node with follow-up
// question nodes fanned out from it, and lays out the fresh graph.
func (e *Explorer) Search(ctx context.Context, query string) error {
	resp, err := e.ai.Search(ctx, &SearchRequest{
		Query:                query,
		PreviousConversation: e.History(),
		Mode:                 e.mode,
	})
	if err != nil {
		return err
	}

	main := Node{
		ID:   "main",
		Type: NodeTypeMain,
		Data: NodeData{
			Label:      labelOr(resp.ContextualQuery, query),
			Content:    resp.Response,
			Sources:    resp.Sources,
			Images:     imageURLs(resp.Images),
			IsExpanded: true,
		},
	}
	nodes := []Node{main}
	edges := []Edge{}
	questions, questionEdges := followUpNodes(main.ID, resp.FollowUpQuestions)
	nodes = append(nodes, questions...)
	edges = append(edges, questionEdges...)

	e.mu.Lock()
	e.nodes = e.layout.Full(nodes, edges)
	e.edges = edges
	e.mu.Unlock()
	e.notify()
	return nil
}

// ExpandNode handles a click on a question node: the node optimistically
// flips to its loading state, the collaborator is queried with the
// accumulated history, and on success the node transforms into an answered
// node with new follow-up questions merged into the layout.
//
// Admission control rejects the click outright when any expansion is already
// in flight; requests are never queued.
func (e *Explorer) ExpandNode(ctx context.Context, nodeID string) error {
	e.mu.Lock()

	idx := e.indexOf(nodeID)
	if idx < 0 {
		e.mu.Unlock()
		return ErrNodeMissing
	}
	node := e.nodes[idx]
	if !node.IsQuestion() || node.Data.IsExpanded {
		e.mu.Unlock()
		return ErrNotExpandable
	}
	if len(e.inflight) > 0 {
		e.mu.Unlock()
		return ErrExpansionInFlight
	}

	// Admission control makes this unreachable in practice, but a stale
	// token for the same id must never outlive a new request.
	if prev := e.inflight[nodeID]; prev != nil {
		prev.cancel()
	}

	reqCtx, cancel := context.WithCancel(ctx)
	tok := &expansion{cancel: cancel}
	e.inflight[nodeID] = tok

	question := node.Data.Label
	before := node

	// Append the current main node's turn to the conversation; history only
	// ever grows.
	if main := e.findMain(); main != nil {
		e.history = append(e.history, ConversationMessage{
			User:      main.Data.Label,
			Assistant: main.Data.Content,
		})
	}
	history := append([]ConversationMessage(nil), e.history...)

	// Optimistic loading state before the network call returns.
	e.nodes[idx].Type = NodeTypeMain
	e.nodes[idx].Data.Content = "Loading..."
	e.nodes[idx].Data.IsExpanded = true
	e.mu.Unlock()
	e.notify()

	resp, err := e.ai.Search(reqCtx, &SearchRequest{
		Query:                question,
		PreviousConversation: history,
		Mode:                 e.mode,
	})

	e.mu.Lock()

	// Whichever path runs below, release the in-flight marker if this
	// request still owns it so admission control unblocks.
	if e.inflight[nodeID] != tok {
		// A newer request superseded this one; discard the stale result.
		e.mu.Unlock()
		return ErrExpansionSuperseded
	}
	delete(e.inflight, nodeID)

	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Deliberate cancellation applies no mutation.
			e.mu.Unlock()
			return err
		}
		// Upstream failure: revert the node to its collapsed question state.
		LogError("Failed to expand node %s: %v", nodeID, err)
		if i := e.indexOf(nodeID); i >= 0 {
			restored := before
			restored.Data.IsExpanded = false
			e.nodes[i] = restored
		}
		e.mu.Unlock()
		e.notify()
		return err
	}

	idx = e.indexOf(nodeID)
	if idx < 0 {
		e.mu.Unlock()
		return ErrNodeMissing
	}
	e.nodes[idx].Type = NodeTypeMain
	e.nodes[idx].Data = NodeData{
		Label:      labelOr(resp.ContextualQuery, question),
		Content:    resp.Response,
		Sources:    resp.Sources,
		Images:     imageURLs(resp.Images),
		IsExpanded: true,
	}

	questions, questionEdges := followUpNodes(nodeID, resp.FollowUpQuestions)
	e.edges = append(e.edges, questionEdges...)
	e.nodes = e.layout.Merge(e.nodes, questions, e.edges)
	e.mu.Unlock()
	e.notify()
	return nil
}

// CancelExpansions aborts every outstanding expansion. Called on teardown of
// the exploration surface; the abandoned handlers observe their cancelled
// tokens and apply nothing.
func (e *Explorer) CancelExpansions() {
	e.mu.Lock()
	for id, tok := range e.inflight {
		tok.cancel()
		delete(e.inflight, id)
	}
	e.mu.Unlock()
}

// CreateNodeAtPosition adds a typed node (chat, note, query) at the given
// position and returns it.
func (e *Explorer) CreateNodeAtPosition(nodeType string, pos Position) Node {
	node := Node{
		ID:             NewNodeID(nodeType),
		Type:           nodeType,
		Position:       pos,
		SourcePosition: PositionRight,
		TargetPosition: PositionLeft,
	}

	e.mu.Lock()
	e.nodes = append(e.nodes, node)
	e.mu.Unlock()
	e.notify()
	return node
}

// ConnectEnd handles a drag released over empty canvas: a fresh question node
// appears at the drop position, wired from the node the drag started on.
func (e *Explorer) ConnectEnd(fromNodeID string, pos Position) (Node, Edge, error) {
	e.mu.Lock()
	if e.indexOf(fromNodeID) < 0 {
		e.mu.Unlock()
		return Node{}, Edge{}, ErrNodeMissing
	}

	node := Node{
		ID:             NewQuestionID(fromNodeID, len(e.nodes)),
		Type:           NodeTypeQuestion,
		Position:       pos,
		SourcePosition: PositionRight,
		TargetPosition: PositionLeft,
		Data:           NodeData{Label: "New question"},
	}
	edge := Edge{
		ID:       NewEdgeID(fromNodeID, node.ID),
		Source:   fromNodeID,
		Target:   node.ID,
		Type:     "smoothstep",
		Animated: true,
	}
	e.nodes = append(e.nodes, node)
	e.edges = append(e.edges, edge)
	e.mu.Unlock()
	e.notify()
	return node, edge, nil
}

// indexOf returns the position of a node id, or -1. Callers hold e.mu.
func (e *Explorer) indexOf(id string) int {
	for i := range e.nodes {
		if e.nodes[i].ID == id {
			return i
		}
	}
	return -1
}

// findMain returns the current main-type node, if any. Callers hold e.mu.
func (e *Explorer) findMain() *Node {
	for i := range e.nodes {
		if e.nodes[i].Type == NodeTypeMain && e.nodes[i].ID == "main" {
			return &e.nodes[i]
		}
	}
	for i := range e.nodes {
		if e.nodes[i].Type == NodeTypeMain {
			return &e.nodes[i]
		}
	}
	return nil
}

// notify delivers a state snapshot to the subscriber. The callback runs
// outside the lock on a fresh copy, so it never sees concurrent mutation and
// may itself call back into the explorer.
func (e *Explorer) notify() {
	e.mu.Lock()
	fn := e.onChange
	if fn == nil {
		e.mu.Unlock()
		return
	}
	nodes := append([]Node(nil), e.nodes...)
	edges := append([]Edge(nil), e.edges...)
	e.mu.Unlock()
	fn(nodes, edges)
}

// followUpNodes builds question nodes and their edges fanned out from parent.
func followUpNodes(parentID string, questions []string) ([]Node, []Edge) {
	nodes := make([]Node, 0, len(questions))
	edges := make([]Edge, 0, len(questions))
	for i, q := range questions {
		id := NewQuestionID(parentID, i)
		nodes = append(nodes, Node{
			ID:             id,
			Type:           NodeTypeQuestion,
			Data:           NodeData{Label: q},
			SourcePosition: PositionRight,
			TargetPosition: PositionLeft,
		})
		edges = append(edges, Edge{
			ID:       NewEdgeID(parentID, id),
			Source:   parentID,
			Target:   id,
			Type:     "smoothstep",
			Animated: true,
		})
	}
	return nodes, edges
}

func labelOr(contextual, fallback string) string {
	if contextual != "" {
		return contextual
	}
	return fallback
}

func imageURLs(images []Image) []string {
	if len(images) == 0 {
		return nil
	}
	urls := make([]string, 0, len(images))
	for _, img := range images {
		urls = append(urls, img.URL)
	}
	return urls
}
