// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/model"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/storage"
)

// =============================================================================
// QUERY MESSAGES
// =============================================================================

// QueryResultMsg delivers the answer to query number Seq.
type QueryResultMsg struct {
	Seq      int
	Query    string
	Response *model.CiscoQueryResponse
	Err      error
}

// SuggestionsMsg delivers refreshed suggestions. Predictive is true when
// they were derived from prompt history.
type SuggestionsMsg struct {
	Suggestions []string
	Predictive  bool
	Err         error

	// Explicit is set for a user-requested refresh, which reports errors.
	Explicit bool
}

// =============================================================================
// PERSISTENCE MESSAGES
// =============================================================================

// PersistedMsg reports a finished save.
type PersistedMsg struct {
	Err error
}

// SnapshotLoadedMsg delivers a snapshot re-read from the store.
type SnapshotLoadedMsg struct {
	Snapshot storage.Snapshot
	Err      error
}

// watchStartedMsg hands the store watcher channel to the model.
type watchStartedMsg struct {
	ch  <-chan struct{}
	err error
}

// StoreChangedMsg signals that another process wrote the store.
type StoreChangedMsg struct{}

// SyncDoneMsg reports a finished cloud sync. Snapshot is set when remote
// state was merged in.
type SyncDoneMsg struct {
	Direction string
	Snapshot  *storage.Snapshot
	Err       error

	// Quiet suppresses the success toast (startup pull).
	Quiet bool
}

// =============================================================================
// OUTPUT MESSAGES
// =============================================================================

// SpeechDoneMsg reports the end of playback.
type SpeechDoneMsg struct {
	Err error
}

// ExportedMsg reports a finished export.
type ExportedMsg struct {
	Path string
	Err  error
}

// AttachedMsg delivers a loaded attachment.
type AttachedMsg struct {
	Attachment *Attachment
	Err        error
}
