// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file implements the per-message cancellation registry. Every stream
// registers its cancel function under the assistant message ID it feeds.
package chat

import (
	"context"
	"sort"
	"sync"
)

// =============================================================================
// CANCEL REGISTRY (THREAD-SAFE)
// =============================================================================

// cancelRegistry maps assistant message IDs to the cancel function of the
// stream writing into them.
// It must be shared as a pointer so copies of Model see the same streams.
type cancelRegistry struct {
	mu    sync.Mutex
	funcs map[int64]context.CancelFunc
}

// newCancelRegistry creates an empty registry.
func newCancelRegistry() *cancelRegistry {
	return &cancelRegistry{funcs: make(map[int64]context.CancelFunc)}
}

// set registers fn for id, cancelling any function already registered there.
func (r *cancelRegistry) set(id int64, fn context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.funcs[id]; ok {
		prev()
	}
	r.funcs[id] = fn
}

// cancel stops the stream for id. It reports whether one was registered.
func (r *cancelRegistry) cancel(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn, ok := r.funcs[id]
	if !ok {
		return false
	}
	fn()
	delete(r.funcs, id)
	return true
}

// cancelAll stops every registered stream and returns their IDs in order.
func (r *cancelRegistry) cancelAll() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int64, 0, len(r.funcs))
	for id, fn := range r.funcs {
		fn()
		ids = append(ids, id)
	}
	r.funcs = make(map[int64]context.CancelFunc)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// remove forgets id after its stream finished. The context is still
// cancelled so nothing derived from it leaks.
func (r *cancelRegistry) remove(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if fn, ok := r.funcs[id]; ok {
		fn()
		delete(r.funcs, id)
	}
}

// active returns the number of streams in flight.
func (r *cancelRegistry) active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.funcs)
}
