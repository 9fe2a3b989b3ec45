// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedClock returns the same instant on every call.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// =============================================================================
// SENDER / STATUS TESTS
// =============================================================================

func TestSender_DisplayName(t *testing.T) {
	tests := []struct {
		sender Sender
		want   string
	}{
		{SenderUser, "You"},
		{SenderAssistant, "AI"},
		{Sender("bot"), "bot"},
	}

	for _, tt := range tests {
		if got := tt.sender.DisplayName(); got != tt.want {
			t.Errorf("%q.DisplayName() = %q, want %q", tt.sender, got, tt.want)
		}
	}
}

func TestStatus_IsFinal(t *testing.T) {
	assert.False(t, StatusPending.IsFinal())
	assert.False(t, StatusStreaming.IsFinal())
	assert.True(t, StatusComplete.IsFinal())
	assert.True(t, StatusFailed.IsFinal())
	assert.Equal(t, "streaming", StatusStreaming.String())
}

func TestMessage_DisplayText(t *testing.T) {
	pending := Message{Sender: SenderAssistant, Status: StatusPending}
	assert.Equal(t, PendingText, pending.DisplayText())

	streaming := Message{Sender: SenderAssistant, Status: StatusStreaming, Text: "Go"}
	assert.Equal(t, "Go", streaming.DisplayText())
}

func TestMessage_Clock(t *testing.T) {
	at := time.Date(2025, 3, 14, 9, 5, 30, 0, time.Local)
	msg := Message{ID: at.UnixMilli()}

	assert.Equal(t, "09:05", msg.Clock())
	assert.True(t, msg.Timestamp().Equal(at))
}

// =============================================================================
// STORE TESTS
// =============================================================================

func TestStore_AppendTurn(t *testing.T) {
	s := NewStore()
	id := s.AppendTurn("hello")

	msgs := s.Messages()
	require.Len(t, msgs, 2)

	assert.Equal(t, SenderUser, msgs[0].Sender)
	assert.Equal(t, "hello", msgs[0].Text)
	assert.Equal(t, StatusComplete, msgs[0].Status)

	assert.Equal(t, SenderAssistant, msgs[1].Sender)
	assert.Equal(t, StatusPending, msgs[1].Status)
	assert.Equal(t, id, msgs[1].ID)
	assert.Empty(t, msgs[1].Text)
}

func TestStore_IDsMonotonicWithStalledClock(t *testing.T) {
	s := NewStore()
	s.SetClock(fixedClock(time.UnixMilli(1_700_000_000_000)))

	s.AppendTurn("a")
	s.AppendTurn("b")

	msgs := s.Messages()
	for i := 1; i < len(msgs); i++ {
		assert.Greater(t, msgs[i].ID, msgs[i-1].ID, "ID at %d", i)
	}
}

func TestStore_UpdateMessageText(t *testing.T) {
	s := NewStore()
	id := s.AppendTurn("q")

	chunks := []string{"G", "Go i", "Go is fun"}
	for _, c := range chunks {
		require.True(t, s.UpdateMessageText(id, c))
		got, _ := s.Get(id)
		assert.Equal(t, c, got.Text)
		assert.Equal(t, StatusStreaming, got.Status)
	}
}

func TestStore_UpdateUnknownIDIsNoop(t *testing.T) {
	s := NewStore()
	s.AppendTurn("q")
	before := s.Messages()

	assert.False(t, s.UpdateMessageText(42, "stray"))
	assert.Equal(t, before, s.Messages())
}

func TestStore_CompleteAndFail(t *testing.T) {
	s := NewStore()
	id := s.AppendTurn("q")
	s.UpdateMessageText(id, "partial")

	require.True(t, s.Fail(id))
	got, _ := s.Get(id)
	assert.Equal(t, ErrorText, got.Text)
	assert.Equal(t, StatusFailed, got.Status)

	// Final messages ignore further updates.
	assert.False(t, s.UpdateMessageText(id, "late"))
	assert.False(t, s.Complete(id, false))
}

func TestStore_CompleteCancelled(t *testing.T) {
	s := NewStore()
	empty := s.AppendTurn("a")
	partial := s.AppendTurn("b")
	s.UpdateMessageText(partial, "half an ans")

	s.Complete(empty, true)
	s.Complete(partial, true)

	m, _ := s.Get(empty)
	assert.Equal(t, CancelledText, m.Text)
	m, _ = s.Get(partial)
	assert.Equal(t, "half an ans", m.Text)
	assert.Equal(t, StatusComplete, m.Status)
}

func TestStore_CompleteEmptyAnswer(t *testing.T) {
	s := NewStore()
	id := s.AppendTurn("hi")

	require.True(t, s.Complete(id, false))
	m, _ := s.Get(id)
	assert.Equal(t, EmptyAnswerText, m.Text)
	assert.Equal(t, EmptyAnswerText, m.DisplayText())
	assert.Equal(t, StatusComplete, m.Status)
}

func TestStore_Clear(t *testing.T) {
	s := NewStore()
	id := s.AppendTurn("q")

	require.True(t, s.BeginClear())
	assert.True(t, s.Clearing())
	assert.False(t, s.BeginClear(), "second clear while clearing")
	assert.Len(t, s.Messages(), 2, "messages stay during the transition")

	s.Clear()
	assert.Empty(t, s.Messages())
	assert.False(t, s.Clearing())
	assert.False(t, s.UpdateMessageText(id, "after clear"))
}

func TestStore_MessagesIsCopy(t *testing.T) {
	s := NewStore()
	s.AppendTurn("q")

	msgs := s.Messages()
	msgs[0].Text = "mutated"

	got := s.Messages()
	assert.Equal(t, "q", got[0].Text)
}

func TestStore_InFlightAndPending(t *testing.T) {
	s := NewStore()
	a := s.AppendTurn("a")
	b := s.AppendTurn("b")
	assert.True(t, s.HasPending())

	s.UpdateMessageText(a, "x")
	s.Complete(a, false)
	assert.Equal(t, []int64{b}, s.InFlight())

	s.UpdateMessageText(b, "y")
	assert.False(t, s.HasPending())
}

func TestStore_LastAssistant(t *testing.T) {
	s := NewStore()
	_, ok := s.LastAssistant()
	assert.False(t, ok)

	a := s.AppendTurn("a")
	s.UpdateMessageText(a, "first")
	s.AppendTurn("b")

	m, ok := s.LastAssistant()
	require.True(t, ok)
	assert.Equal(t, "first", m.Text)
}
