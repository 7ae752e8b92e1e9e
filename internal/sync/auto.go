// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloudsync

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/storage"
)

// DefaultDebounce is the quiet period before AutoSync pushes.
const DefaultDebounce = 5 * time.Second

// AutoSync pushes the latest snapshot once changes stop arriving.
type AutoSync struct {
	remote   CloudSync
	debounce time.Duration
	onError  func(error)

	mu      sync.Mutex
	timer   *time.Timer
	pending *storage.Snapshot
	closed  bool

	// pushMu serialises pushes.
	pushMu sync.Mutex
}

// NewAutoSync creates a debounced pusher. A non-positive debounce uses
// DefaultDebounce.
func NewAutoSync(remote CloudSync, debounce time.Duration) *AutoSync {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &AutoSync{remote: remote, debounce: debounce}
}

// OnError sets a callback for failed background pushes.
func (a *AutoSync) OnError(fn func(error)) *AutoSync {
	a.mu.Lock()
	a.onError = fn
	a.mu.Unlock()
	return a
}

// Notify records snap as the latest state and restarts the debounce timer.
func (a *AutoSync) Notify(snap storage.Snapshot) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.pending = &snap
	if a.timer == nil {
		a.timer = time.AfterFunc(a.debounce, a.fire)
		return
	}
	a.timer.Reset(a.debounce)
}

// Pending reports whether a push is scheduled.
func (a *AutoSync) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending != nil
}

func (a *AutoSync) fire() {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	defer cancel()
	if err := a.push(ctx); err != nil {
		log.Printf("auto sync: %v", err)
		a.mu.Lock()
		fn := a.onError
		a.mu.Unlock()
		if fn != nil {
			fn(err)
		}
	}
}

// push sends the pending snapshot, if any.
func (a *AutoSync) push(ctx context.Context) error {
	a.pushMu.Lock()
	defer a.pushMu.Unlock()

	a.mu.Lock()
	snap := a.pending
	a.pending = nil
	a.mu.Unlock()
	if snap == nil {
		return nil
	}

	if err := a.remote.Push(ctx, *snap); err != nil {
		// Keep the data for the next attempt unless newer state arrived.
		a.mu.Lock()
		if a.pending == nil {
			a.pending = snap
		}
		a.mu.Unlock()
		return err
	}
	return nil
}

// Flush pushes any pending snapshot now.
func (a *AutoSync) Flush(ctx context.Context) error {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
	}
	a.mu.Unlock()
	return a.push(ctx)
}

// Close flushes pending changes and stops accepting new ones.
func (a *AutoSync) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	defer cancel()
	return a.Flush(ctx)
}
