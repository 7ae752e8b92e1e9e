// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

// =============================================================================
// NAVIGATOR STATE
// =============================================================================

// liveCursor is the cursor value while the input shows the live draft.
const liveCursor = -1

// State is the position of the input field within the prompt history.
//
// Cursor is -1 while the user edits the live draft (Live). Cursor 0 is the
// most recent prompt, Cursor len(history)-1 the oldest (Browsing). Draft is
// captured the first time the user leaves the live draft.
type State struct {
	Cursor int
	Draft  string
}

// Initial returns the Live state with an empty draft.
func Initial() State {
	return State{Cursor: liveCursor}
}

// Live reports whether the input shows the live draft.
func (s State) Live() bool {
	return s.Cursor < 0
}

// Browsing reports whether the input shows a history entry.
func (s State) Browsing() bool {
	return s.Cursor >= 0
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// MoveOlder moves one entry back in time. history is in submission order
// (oldest first). On the first move away from the live draft, current is
// captured as the draft. It returns the new state, the value to display and
// whether the state changed; at the oldest entry the state is unchanged and
// the displayed value is the current one.
func MoveOlder(s State, history []string, current string) (State, string, bool) {
	cursor := clampCursor(s.Cursor, len(history))
	if cursor != s.Cursor {
		// History shrank under the cursor.
		s.Cursor = cursor
		if s.Live() {
			return s, s.Draft, true
		}
		return s, entryAt(history, cursor), true
	}
	if cursor+1 >= len(history) {
		return s, current, false
	}

	if s.Live() {
		s.Draft = current
	}
	s.Cursor = cursor + 1
	return s, entryAt(history, s.Cursor), true
}

// MoveNewer moves one entry forward in time. Reaching cursor -1 restores
// the captured draft. At the live draft it is a no-op: the returned bool is
// false and callers leave the input untouched.
func MoveNewer(s State, history []string) (State, string, bool) {
	if s.Live() {
		return s, s.Draft, false
	}

	s.Cursor = clampCursor(s.Cursor, len(history)) - 1
	if s.Cursor < liveCursor {
		s.Cursor = liveCursor
	}
	if s.Live() {
		return s, s.Draft, true
	}
	return s, entryAt(history, s.Cursor), true
}

// Reset returns to the live state with an empty draft. Call it when the
// prompt is submitted or explicitly cleared.
func Reset(State) State {
	return Initial()
}

// OnManualEdit handles a direct edit of the input. While browsing, the edit
// detaches the input from history: the cursor returns to -1 and newValue
// becomes the live draft.
func OnManualEdit(s State, newValue string) State {
	if s.Live() {
		return s
	}
	return State{Cursor: liveCursor, Draft: newValue}
}

// clampCursor keeps a cursor inside [-1, n-1] when history shrank after the
// cursor was set.
func clampCursor(cursor, n int) int {
	if cursor < liveCursor {
		return liveCursor
	}
	if cursor > n-1 {
		return n - 1
	}
	return cursor
}

// entryAt maps a cursor (0 = most recent) to a history entry.
func entryAt(history []string, cursor int) string {
	return history[len(history)-1-cursor]
}

// =============================================================================
// NAVIGATOR
// =============================================================================

// Navigator bundles a State with the history it walks, for input widgets
// that hold one value per field. The zero value is not ready; use
// NewNavigator.
type Navigator struct {
	state   State
	history []string
}

// NewNavigator creates a Live navigator over history (oldest first).
func NewNavigator(history []string) Navigator {
	return Navigator{state: Initial(), history: history}
}

// SetHistory replaces the history. The cursor is clamped on the next move.
func (n *Navigator) SetHistory(history []string) {
	n.history = history
}

// History returns the history being navigated.
func (n *Navigator) History() []string {
	return n.history
}

// State returns the current navigator state.
func (n *Navigator) State() State {
	return n.state
}

// Older moves back in time. It returns the value to display and whether the
// input should change.
func (n *Navigator) Older(current string) (string, bool) {
	var (
		value   string
		changed bool
	)
	n.state, value, changed = MoveOlder(n.state, n.history, current)
	return value, changed
}

// Newer moves forward in time, restoring the draft at the live end.
func (n *Navigator) Newer() (string, bool) {
	var (
		value   string
		changed bool
	)
	n.state, value, changed = MoveNewer(n.state, n.history)
	return value, changed
}

// Edit records a manual edit of the input.
func (n *Navigator) Edit(value string) {
	n.state = OnManualEdit(n.state, value)
}

// Reset returns to the live state with an empty draft.
func (n *Navigator) Reset() {
	n.state = Reset(n.state)
}
