// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/cloud"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/commands"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/export"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/model"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/speech"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/storage"
	cloudsync "github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/sync"
)

// Timeouts for background work. Queries rely on the client's own timeout.
const (
	saveTimeout    = 5 * time.Second
	suggestTimeout = 20 * time.Second
	syncTimeout    = 30 * time.Second
)

// =============================================================================
// COMMAND CREATORS
// =============================================================================

// queryCmd asks the backend and delivers a QueryResultMsg.
func queryCmd(ctx context.Context, backend Backend, req cloud.QueryRequest, seq int) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		resp, err := backend.Query(ctx, req)
		if err != nil {
			log.Printf("QUERY_FAILED | model=%s search=%v elapsed=%s error=%v", req.Model, req.ForceSearch, time.Since(start).Round(time.Millisecond), err)
		} else {
			log.Printf("QUERY_OK | model=%s search=%v elapsed=%s sources=%d", req.Model, req.ForceSearch, time.Since(start).Round(time.Millisecond), len(resp.Sources))
		}
		return QueryResultMsg{Seq: seq, Query: req.Query, Response: resp, Err: err}
	}
}

// suggestCmd refreshes suggestions from prompt history (oldest first).
func suggestCmd(ctx context.Context, backend Backend, prompts []string, explicit bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, suggestTimeout)
		defer cancel()
		got, err := backend.Suggestions(ctx, prompts)
		if len(got) > model.MaxSuggestions {
			got = got[:model.MaxSuggestions]
		}
		return SuggestionsMsg{
			Suggestions: got,
			Predictive:  err == nil && len(prompts) > 0,
			Err:         err,
			Explicit:    explicit,
		}
	}
}

// persistCmd saves snap. A nil store is a no-op.
func persistCmd(ctx context.Context, store storage.HistoryStore, snap storage.Snapshot) tea.Cmd {
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, saveTimeout)
		defer cancel()
		return PersistedMsg{Err: store.Save(ctx, snap)}
	}
}

// loadCmd re-reads the store.
func loadCmd(ctx context.Context, store storage.HistoryStore) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, saveTimeout)
		defer cancel()
		snap, err := store.Load(ctx)
		return SnapshotLoadedMsg{Snapshot: snap, Err: err}
	}
}

// startWatchCmd begins watching the store file.
func startWatchCmd(ctx context.Context, path string) tea.Cmd {
	return func() tea.Msg {
		ch, err := storage.Watch(ctx, path, storage.DefaultWatchDebounce)
		return watchStartedMsg{ch: ch, err: err}
	}
}

// waitForChange blocks until the watcher fires. A closed channel ends the
// loop.
func waitForChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return StoreChangedMsg{}
	}
}

// syncCmd pulls, pushes, or pulls then pushes the merged state.
func syncCmd(ctx context.Context, remote cloudsync.CloudSync, direction string, local storage.Snapshot, quiet bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, syncTimeout)
		defer cancel()

		done := SyncDoneMsg{Direction: direction, Quiet: quiet}
		if direction == commands.SyncPush {
			done.Err = remote.Push(ctx, local)
			return done
		}

		remoteSnap, found, err := remote.Pull(ctx)
		if err != nil {
			done.Err = err
			return done
		}
		merged := local
		if found {
			merged = cloudsync.Merge(local, remoteSnap)
			done.Snapshot = &merged
		}
		if direction == commands.SyncBoth {
			done.Err = remote.Push(ctx, merged)
		}
		return done
	}
}

// speakCmd plays text and reports when playback ends.
func speakCmd(ctx context.Context, synth speech.SpeechSynth, text string) tea.Cmd {
	return func() tea.Msg {
		return SpeechDoneMsg{Err: synth.Speak(ctx, text)}
	}
}

// exportCmd writes snap to path, inferring the format from the extension.
func exportCmd(snap storage.Snapshot, path string) tea.Cmd {
	return func() tea.Msg {
		out, err := export.ExportToFile(snap, path, "")
		return ExportedMsg{Path: out, Err: err}
	}
}
