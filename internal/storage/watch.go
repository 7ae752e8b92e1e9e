// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// FILE WATCHER
// =============================================================================

// DefaultWatchDebounce groups bursts of writes into one notification.
const DefaultWatchDebounce = 250 * time.Millisecond

// Watch signals on the returned channel when the file at path is written,
// created or replaced by another process. Bursts of events within debounce
// are reported once. The channel is closed when ctx is cancelled.
//
// The parent directory is watched rather than the file itself because
// atomic writes replace the inode.
func Watch(ctx context.Context, path string, debounce time.Duration) (<-chan struct{}, error) {
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	out := make(chan struct{}, 1)
	go runWatch(ctx, watcher, filepath.Clean(path), debounce, out)
	return out, nil
}

func runWatch(ctx context.Context, watcher *fsnotify.Watcher, target string, debounce time.Duration, out chan<- struct{}) {
	defer close(out)
	defer watcher.Close()

	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		relevOp = fsnotify.Write | fsnotify.Create | fsnotify.Rename
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target || event.Op&relevOp == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			// Coalesce: a pending notification already covers this change.
			select {
			case out <- struct{}{}:
			default:
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("store watcher: %v", err)
		}
	}
}
