// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/jeranaias/webquery-tui/internal/logging"
)

// HeaderConversationID is the response header carrying the server's
// conversation identifier.
const HeaderConversationID = "X-Conversation-ID"

// DefaultEndpoint is the generate endpoint of a locally running server.
const DefaultEndpoint = "http://127.0.0.1:8000/generate"

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the transport client.
type ClientConfig struct {
	// Endpoint is the full URL prompts are POSTed to.
	Endpoint string

	// BaseURL roots the conversation routes. Derived from Endpoint when empty.
	BaseURL string

	// Timeout for non-streaming requests (default: 10s)
	Timeout time.Duration

	// TrackConversation sends conversation_id with every prompt.
	TrackConversation bool

	// ConversationID seeds the tracked conversation. A new one is generated when empty.
	ConversationID string

	// RequestsPerMinute throttles Send. Zero disables throttling.
	RequestsPerMinute int
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		Endpoint:          DefaultEndpoint,
		Timeout:           10 * time.Second,
		TrackConversation: true,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client posts prompts to the generate endpoint and streams the answer back.
//
// The Client is safe for concurrent use; the conversation ID may change
// while a stream is in flight.
type Client struct {
	config       *ClientConfig
	httpClient   *http.Client
	streamClient *http.Client
	limiter      *rate.Limiter

	mu             sync.RWMutex
	conversationID string
}

// NewClientWithConfig creates a new client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	if config.Endpoint == "" {
		config.Endpoint = DefaultEndpoint
	}
	if config.BaseURL == "" {
		config.BaseURL = baseFromEndpoint(config.Endpoint)
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}

	id := config.ConversationID
	if id == "" {
		id = uuid.NewString()
	}

	// Burst of one: prompts are spaced evenly rather than bunched.
	limiter := rate.NewLimiter(rate.Inf, 1)
	if config.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(config.RequestsPerMinute)), 1)
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		// Streams are bounded by context, never by a client timeout.
		streamClient:   &http.Client{},
		limiter:        limiter,
		conversationID: id,
	}
}

// baseFromEndpoint strips a trailing "/generate" segment from the endpoint path.
func baseFromEndpoint(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return strings.TrimSuffix(endpoint, "/")
	}
	p := strings.TrimSuffix(u.Path, "/")
	p = strings.TrimSuffix(p, "/generate")
	u.Path = p
	u.RawQuery = ""
	return strings.TrimSuffix(u.String(), "/")
}

// =============================================================================
// GENERATE
// =============================================================================

// GenerateRequest is the JSON body sent to the endpoint.
type GenerateRequest struct {
	Prompt         string `json:"prompt"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// Send posts prompt and streams the answer. onChunk receives the cumulative
// decoded text after every read. Send returns nil when the body ends, or a
// *TransportError. It never touches any message state of its own. The
// answer is bounded only by ctx.
func (c *Client) Send(ctx context.Context, prompt string, onChunk ChunkFunc) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return requestError(ctx, KindRateLimited, "request throttled", err)
	}

	reqBody := GenerateRequest{Prompt: prompt}
	if c.config.TrackConversation {
		reqBody.ConversationID = c.ConversationID()
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return &TransportError{Kind: KindInvalidRequest, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return &TransportError{Kind: KindInvalidRequest, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.streamClient.Do(req)
	if err != nil {
		return requestError(ctx, KindNetwork, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}

	if c.config.TrackConversation {
		c.adoptConversation(resp.Header.Get(HeaderConversationID))
	}

	reader := NewStreamReader(resp.Body)
	err = reader.Process(ctx, onChunk)
	logging.L().Debugw("stream finished",
		"endpoint", c.config.Endpoint,
		"bytes", len(reader.Text()),
		"elapsed", time.Since(start),
		"error", err)
	return err
}

// =============================================================================
// CONVERSATION
// =============================================================================

// ConversationID returns the conversation the next prompt belongs to.
func (c *Client) ConversationID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conversationID
}

// SetConversationID switches to an existing server-side conversation.
func (c *Client) SetConversationID(id string) {
	if id == "" {
		return
	}
	c.mu.Lock()
	c.conversationID = id
	c.mu.Unlock()
}

func (c *Client) adoptConversation(id string) {
	if id == "" {
		return
	}
	c.mu.Lock()
	if c.conversationID != id {
		logging.L().Debugw("conversation adopted", "from", c.conversationID, "to", id)
		c.conversationID = id
	}
	c.mu.Unlock()
}

// HistoryEntry is one stored turn of a server-side conversation.
type HistoryEntry struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// IsUser reports whether the entry was written by the user.
func (e HistoryEntry) IsUser() bool {
	return e.Type == "HumanMessage"
}

// History is the server's record of a conversation.
type History struct {
	ConversationID string         `json:"conversation_id"`
	Messages       []HistoryEntry `json:"messages"`
}

func (c *Client) conversationURL(id string) string {
	return c.config.BaseURL + "/conversations/" + url.PathEscape(id)
}

// History fetches the server-side record of the current conversation.
func (c *Client) History(ctx context.Context) (*History, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.conversationURL(c.ConversationID()), nil)
	if err != nil {
		return nil, &TransportError{Kind: KindInvalidRequest, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, requestError(ctx, KindNetwork, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp)
	}

	var history History
	if err := json.NewDecoder(resp.Body).Decode(&history); err != nil {
		return nil, &TransportError{Kind: KindStream, Message: "failed to decode history", Cause: err}
	}
	return &history, nil
}

// ResetConversation asks the server to forget the current conversation and
// switches to a fresh ID. The ID rotates even when the server call fails.
func (c *Client) ResetConversation(ctx context.Context) error {
	old := c.ConversationID()

	c.mu.Lock()
	c.conversationID = uuid.NewString()
	c.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.conversationURL(old), nil)
	if err != nil {
		return &TransportError{Kind: KindInvalidRequest, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return requestError(ctx, KindNetwork, "request failed", err)
	}
	defer resp.Body.Close()

	// The server answers 200 even for unknown conversations.
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}
	return nil
}
