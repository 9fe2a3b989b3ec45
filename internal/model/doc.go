// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the conversation and its messages.
//
// # Key Types
//
//   - Message: one entry with ID, text, sender and lifecycle status
//   - Store: the ordered conversation plus the transient clearing flag
//   - Sender: user or assistant, labelled "You" and "AI"
//   - Status: pending, streaming, complete, failed
//
// # Usage
//
//	store := model.NewStore()
//	id := store.AppendTurn("what is new in go?")
//	store.UpdateMessageText(id, "Go 1.24 adds")
//	store.UpdateMessageText(id, "Go 1.24 adds generic type aliases")
//	store.Complete(id, false)
package model
