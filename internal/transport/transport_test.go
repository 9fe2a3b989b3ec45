// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// =============================================================================
// HELPERS
// =============================================================================

// flushWriter writes each part and flushes so the client sees separate reads.
func flushWriter(t *testing.T, w http.ResponseWriter, parts ...string) {
	t.Helper()
	f, ok := w.(http.Flusher)
	if !ok {
		t.Error("response writer does not flush")
		return
	}
	for _, p := range parts {
		io.WriteString(w, p)
		f.Flush()
		time.Sleep(5 * time.Millisecond)
	}
}

func newTestClient(url string) *Client {
	cfg := DefaultConfig()
	cfg.Endpoint = url + "/generate"
	return NewClientWithConfig(cfg)
}

// chunkReader hands out one chunk per Read.
type chunkReader struct {
	chunks [][]byte
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.chunks[0])
	r.chunks[0] = r.chunks[0][n:]
	if len(r.chunks[0]) == 0 {
		r.chunks = r.chunks[1:]
	}
	return n, nil
}

// =============================================================================
// SEND TESTS
// =============================================================================

func TestSend_PostsPromptAsJSON(t *testing.T) {
	var got GenerateRequest
	var contentType, method, path string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		contentType = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&got)
		io.WriteString(w, "ok")
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if err := client.Send(context.Background(), "hello", nil); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if method != http.MethodPost {
		t.Errorf("method = %q, want POST", method)
	}
	if path != "/generate" {
		t.Errorf("path = %q, want /generate", path)
	}
	if contentType != "application/json" {
		t.Errorf("Content-Type = %q", contentType)
	}
	if got.Prompt != "hello" {
		t.Errorf("prompt = %q, want hello", got.Prompt)
	}
	if got.ConversationID != client.ConversationID() {
		t.Errorf("conversation_id = %q, want %q", got.ConversationID, client.ConversationID())
	}
}

func TestSend_WithoutConversationTracking(t *testing.T) {
	var raw map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&raw)
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.Endpoint = server.URL + "/generate"
	cfg.TrackConversation = false
	client := NewClientWithConfig(cfg)

	if err := client.Send(context.Background(), "hi", nil); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if _, ok := raw["conversation_id"]; ok {
		t.Errorf("body = %v, want only prompt", raw)
	}
}

func TestSend_ReportsCumulativeText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flushWriter(t, w, "Hel", "lo, ", "world")
	}))
	defer server.Close()

	var seen []string
	client := newTestClient(server.URL)
	err := client.Send(context.Background(), "x", func(text string) {
		seen = append(seen, text)
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if len(seen) == 0 {
		t.Fatal("no chunks delivered")
	}
	if last := seen[len(seen)-1]; last != "Hello, world" {
		t.Errorf("final text = %q, want %q", last, "Hello, world")
	}
	for i := 1; i < len(seen); i++ {
		if !strings.HasPrefix(seen[i], seen[i-1]) {
			t.Errorf("chunk %d = %q does not extend %q", i, seen[i], seen[i-1])
		}
	}
}

func TestSend_EmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	calls := 0
	client := newTestClient(server.URL)
	if err := client.Send(context.Background(), "x", func(string) { calls++ }); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if calls != 0 {
		t.Errorf("callback called %d times for empty body", calls)
	}
}

func TestSend_StatusErrorUsesErrorField(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"string error", 500, `{"error":"boom"}`, "HTTP error! Status: 500 - boom"},
		{"no error field", 503, `{"detail":"x"}`, "HTTP error! Status: 503 - Service Unavailable"},
		{"not json", 404, `nope`, "HTTP error! Status: 404 - Not Found"},
		{"empty string", 400, `{"error":""}`, "HTTP error! Status: 400 - Bad Request"},
		{"null", 502, `{"error":null}`, "HTTP error! Status: 502 - Bad Gateway"},
		{"object", 500, `{"error": {"code": 7}}`, `HTTP error! Status: 500 - {"code":7}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer server.Close()

			client := newTestClient(server.URL)
			err := client.Send(context.Background(), "x", func(string) {
				t.Error("callback must not run for an error response")
			})

			var te *TransportError
			if !errors.As(err, &te) {
				t.Fatalf("error = %v, want *TransportError", err)
			}
			if te.Kind != KindStatus || te.Status != tt.status {
				t.Errorf("kind/status = %v/%d", te.Kind, te.Status)
			}
			if err.Error() != tt.want {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.want)
			}
			if StatusCode(err) != tt.status {
				t.Errorf("StatusCode() = %d", StatusCode(err))
			}
		})
	}
}

func TestSend_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	err := newTestClient(url).Send(context.Background(), "x", nil)

	var te *TransportError
	if !errors.As(err, &te) || te.Kind != KindNetwork {
		t.Fatalf("error = %v, want network TransportError", err)
	}
}

func TestSend_CancelMidStream(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flushWriter(t, w, "partial")
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var once sync.Once
	err := newTestClient(server.URL).Send(ctx, "x", func(text string) {
		once.Do(cancel)
	})

	if !IsCanceled(err) {
		t.Fatalf("error = %v, want cancelled", err)
	}
}

func TestSend_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := newTestClient(server.URL).Send(ctx, "x", nil)

	if !IsTimeout(err) {
		t.Fatalf("error = %v, want timeout", err)
	}
}

func TestSend_Throttled(t *testing.T) {
	var hits int
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.Endpoint = server.URL + "/generate"
	cfg.RequestsPerMinute = 1
	client := NewClientWithConfig(cfg)

	if err := client.Send(context.Background(), "first", nil); err != nil {
		t.Fatalf("first Send: %v", err)
	}

	// The next slot is a minute away, past this deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := client.Send(ctx, "second", nil)

	var te *TransportError
	if !errors.As(err, &te) || te.Kind != KindRateLimited {
		t.Fatalf("error = %v, want rate limited", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if hits != 1 {
		t.Errorf("server hits = %d, want 1", hits)
	}
}

func TestSend_AdoptsServerConversationID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(HeaderConversationID, "server-chosen")
		io.WriteString(w, "hi")
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if err := client.Send(context.Background(), "x", nil); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if got := client.ConversationID(); got != "server-chosen" {
		t.Errorf("ConversationID() = %q, want server-chosen", got)
	}
}

// =============================================================================
// STREAM READER TESTS
// =============================================================================

func TestStreamReader_SplitMultibyte(t *testing.T) {
	// "héllo" with the two bytes of é split across reads
	r := &chunkReader{chunks: [][]byte{{'h', 0xC3}, {0xA9, 'l', 'l', 'o'}}}

	var seen []string
	err := NewStreamReader(r).Process(context.Background(), func(text string) {
		seen = append(seen, text)
	})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	for _, s := range seen {
		if strings.ContainsRune(s, '\uFFFD') {
			t.Errorf("chunk %q contains a replacement character", s)
		}
	}
	if got := seen[len(seen)-1]; got != "héllo" {
		t.Errorf("final = %q, want héllo", got)
	}
}

func TestStreamReader_InvalidBytesReplaced(t *testing.T) {
	r := &chunkReader{chunks: [][]byte{{'a', 0xFF, 'b'}}}

	reader := NewStreamReader(r)
	if err := reader.Process(context.Background(), nil); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if got := reader.Text(); got != "a\uFFFDb" {
		t.Errorf("Text() = %q", got)
	}
}

// =============================================================================
// CONVERSATION TESTS
// =============================================================================

func TestBaseFromEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		want     string
	}{
		{"http://127.0.0.1:8000/generate", "http://127.0.0.1:8000"},
		{"http://127.0.0.1:8000/generate/", "http://127.0.0.1:8000"},
		{"https://api.example.com/v1/generate", "https://api.example.com/v1"},
		{"http://host:9000/", "http://host:9000"},
	}

	for _, tt := range tests {
		if got := baseFromEndpoint(tt.endpoint); got != tt.want {
			t.Errorf("baseFromEndpoint(%q) = %q, want %q", tt.endpoint, got, tt.want)
		}
	}
}

func TestHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/conversations/c-1" {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, `{"conversation_id":"c-1","messages":[{"type":"HumanMessage","content":"q"},{"type":"AIMessage","content":"a"}]}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	client.SetConversationID("c-1")

	h, err := client.History(context.Background())
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if h.ConversationID != "c-1" || len(h.Messages) != 2 {
		t.Fatalf("History() = %+v", h)
	}
	if !h.Messages[0].IsUser() || h.Messages[1].IsUser() {
		t.Errorf("IsUser mismatch: %+v", h.Messages)
	}
}

func TestResetConversation(t *testing.T) {
	var deleted string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			deleted = strings.TrimPrefix(r.URL.Path, "/conversations/")
		}
		io.WriteString(w, `{"message":"Conversation deleted."}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	before := client.ConversationID()

	if err := client.ResetConversation(context.Background()); err != nil {
		t.Fatalf("ResetConversation() error = %v", err)
	}
	if deleted != before {
		t.Errorf("deleted %q, want %q", deleted, before)
	}
	if client.ConversationID() == before || client.ConversationID() == "" {
		t.Errorf("conversation ID not rotated: %q", client.ConversationID())
	}
}

// =============================================================================
// ERROR TESTS
// =============================================================================

func TestTransportError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &TransportError{Kind: KindNetwork, Message: "request failed", Cause: cause}

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	if err.Error() != "request failed: connection refused" {
		t.Errorf("Error() = %q", err.Error())
	}
	if KindNetwork.String() != "network" {
		t.Errorf("String() = %q", KindNetwork.String())
	}
}
