// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"
)

// =============================================================================
// STORE
// =============================================================================

// Store holds the ordered conversation and the transient clearing flag.
//
// It is owned by a single event loop and is not safe for concurrent use.
// Messages are never removed one at a time; Clear empties the sequence.
type Store struct {
	messages []Message
	index    map[int64]int
	clearing bool
	lastID   int64
	now      func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		index: make(map[int64]int),
		now:   time.Now,
	}
}

// SetClock replaces the time source used for IDs.
func (s *Store) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// nextID returns the current Unix millisecond, bumped past the last ID
// when the clock has not advanced.
func (s *Store) nextID() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

func (s *Store) append(msg Message) {
	s.index[msg.ID] = len(s.messages)
	s.messages = append(s.messages, msg)
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// AppendTurn appends a complete user message and a pending assistant
// placeholder, in that order, and returns the placeholder's ID.
func (s *Store) AppendTurn(prompt string) int64 {
	s.append(Message{
		ID:     s.nextID(),
		Text:   prompt,
		Sender: SenderUser,
		Status: StatusComplete,
	})

	id := s.nextID()
	s.append(Message{
		ID:     id,
		Sender: SenderAssistant,
		Status: StatusPending,
	})
	return id
}

// UpdateMessageText replaces the text of message id. A pending message
// becomes streaming. Unknown IDs and final messages are left untouched and
// false is returned.
func (s *Store) UpdateMessageText(id int64, text string) bool {
	i, ok := s.index[id]
	if !ok || s.messages[i].Status.IsFinal() {
		return false
	}
	s.messages[i].Text = text
	s.messages[i].Status = StatusStreaming
	return true
}

// Complete marks message id as final. A message that never received text
// gets CancelledText when cancelled is true, EmptyAnswerText otherwise.
func (s *Store) Complete(id int64, cancelled bool) bool {
	i, ok := s.index[id]
	if !ok || s.messages[i].Status.IsFinal() {
		return false
	}
	if s.messages[i].Text == "" {
		if cancelled {
			s.messages[i].Text = CancelledText
		} else {
			s.messages[i].Text = EmptyAnswerText
		}
	}
	s.messages[i].Status = StatusComplete
	return true
}

// Fail replaces the text of message id with ErrorText and marks it failed.
// Partially streamed text is discarded.
func (s *Store) Fail(id int64) bool {
	i, ok := s.index[id]
	if !ok || s.messages[i].Status.IsFinal() {
		return false
	}
	s.messages[i].Text = ErrorText
	s.messages[i].Status = StatusFailed
	return true
}

// BeginClear sets the clearing flag. It returns false when a clear is
// already in progress.
func (s *Store) BeginClear() bool {
	if s.clearing {
		return false
	}
	s.clearing = true
	return true
}

// Clear empties the conversation and resets the clearing flag.
func (s *Store) Clear() {
	s.messages = nil
	s.index = make(map[int64]int)
	s.clearing = false
}

// =============================================================================
// QUERIES
// =============================================================================

// Messages returns a copy of the conversation in order.
func (s *Store) Messages() []Message {
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Clearing reports whether the exit transition is running.
func (s *Store) Clearing() bool {
	return s.clearing
}

// Get returns message id.
func (s *Store) Get(id int64) (Message, bool) {
	i, ok := s.index[id]
	if !ok {
		return Message{}, false
	}
	return s.messages[i], true
}

// HasPending reports whether any message is waiting for its first chunk.
func (s *Store) HasPending() bool {
	for _, m := range s.messages {
		if m.IsPending() {
			return true
		}
	}
	return false
}

// InFlight returns the IDs of assistant messages that are not final.
func (s *Store) InFlight() []int64 {
	var ids []int64
	for _, m := range s.messages {
		if m.Sender == SenderAssistant && !m.Status.IsFinal() {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

// LastAssistant returns the most recent assistant message with text.
func (s *Store) LastAssistant() (Message, bool) {
	for i := len(s.messages) - 1; i >= 0; i-- {
		m := s.messages[i]
		if m.Sender == SenderAssistant && m.Text != "" {
			return m, true
		}
	}
	return Message{}, false
}
