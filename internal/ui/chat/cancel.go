// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"sync"
)

// =============================================================================
// IN-FLIGHT QUERY
// =============================================================================

// inflight numbers queries and holds the cancel func of the newest one.
// Results carrying an older number are stale. Model keeps it behind a
// pointer so Bubble Tea's value copies share it.
type inflight struct {
	mu     sync.Mutex
	seq    int
	cancel context.CancelFunc
}

// begin cancels any running query and starts query number seq under parent.
func (q *inflight) begin(parent context.Context) (context.Context, int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.cancel != nil {
		q.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	q.seq++
	q.cancel = cancel
	return ctx, q.seq
}

// finish reports whether seq is the current query and releases it.
func (q *inflight) finish(seq int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if seq != q.seq {
		return false
	}
	if q.cancel != nil {
		q.cancel()
		q.cancel = nil
	}
	return true
}

// abort cancels the running query; its result will be ignored.
func (q *inflight) abort() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.seq++
	if q.cancel != nil {
		q.cancel()
		q.cancel = nil
	}
}

// current returns the number of the newest query.
func (q *inflight) current() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.seq
}

// active reports whether a query can be cancelled.
func (q *inflight) active() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.cancel != nil
}
