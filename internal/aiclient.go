package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Exploration modes accepted by the AI collaborator.
const (
	ModeExpansive = "expansive"
	ModeFocused   = "focused"
)

// SearchRequest is the query sent to the AI collaborator for both the initial
// search and node expansion.
type SearchRequest struct {
	Query                string                `json:"query"`
	PreviousConversation []ConversationMessage `json:"previousConversation"`
	Mode                 string                `json:"mode"`
}

// SearchResponse is the collaborator's answer. ContextualQuery, when present,
// overrides the node's display label.
type SearchResponse struct {
	Response          string   `json:"response"`
	FollowUpQuestions []string `json:"followUpQuestions"`
	Sources           []Source `json:"sources"`
	Images            []Image  `json:"images"`
	ContextualQuery   string   `json:"contextualQuery,omitempty"`
}

// HistoryMessage is one turn of role-tagged history for the suggestions
// endpoint.
type HistoryMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// SuggestionsRequest asks for related questions around a query.
type SuggestionsRequest struct {
	Query               string           `json:"query"`
	ConversationHistory []HistoryMessage `json:"conversationHistory"`
	Mode                string           `json:"mode"`
}

// SuggestionsResponse carries the suggested questions.
type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

// AIClient talks to the external AI collaborator over HTTP.
type AIClient struct {
	baseURL string
	client  *http.Client
}

// NewAIClient creates a client for the collaborator at baseURL. A nil
// httpClient falls back to a default with a generous timeout; expansions are
// cancelled through their context, not the client timeout.
func NewAIClient(baseURL string, httpClient *http.Client) *AIClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Minute}
	}
	return &AIClient{baseURL: baseURL, client: httpClient}
}

// Search performs a search or node-expansion request. Cancelling ctx aborts
// the call with the context's error.
func (c *AIClient) Search(ctx context.Context, req *SearchRequest) (*SearchResponse, error) {
	var resp SearchResponse
	if err := c.post(ctx, "/search", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Suggestions fetches related questions for a query.
func (c *AIClient) Suggestions(ctx context.Context, req *SuggestionsRequest) (*SuggestionsResponse, error) {
	var resp SuggestionsResponse
	if err := c.post(ctx, "/suggestions", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *AIClient) post(ctx context.Context, endpoint string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	LogDebug("POST %s%s", c.baseURL, endpoint)
	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		// Deliberate cancellation surfaces as the context error so callers
		// can tell it apart from upstream failure.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &UpstreamError{Endpoint: endpoint, Err: err}
	}
	defer func() { _ = httpResp.Body.Close() }()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, httpResp.Body)
		return &UpstreamError{Endpoint: endpoint, Status: httpResp.StatusCode}
	}

	if err := json.NewDecoder(httpResp.Body).Decode(out); err != nil {
		return &UpstreamError{Endpoint: endpoint, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}
