// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history implements shell-style recall of previously submitted
// prompts.
//
// The navigator is a two-state machine. Live (cursor -1) shows the draft the
// user is typing; Browsing (cursor >= 0) shows a history entry, cursor 0
// being the most recent prompt. The draft is captured the first time the
// user leaves Live and restored when they come back. Any manual edit while
// browsing detaches the input from history.
//
// # Key Types
//
//   - State: cursor and captured draft
//   - Navigator: State bundled with the history slice for UI widgets
//
// # Usage
//
//	prompts := history.BuildPromptHistory(transcript.Messages())
//	nav := history.NewNavigator(prompts)
//
//	// on key up
//	if v, ok := nav.Older(input.Value()); ok {
//	    input.SetValue(v)
//	}
//
//	// on submit
//	nav.Reset()
//
// All transitions are pure functions of their inputs; out-of-range moves
// are no-ops, never errors.
package history
