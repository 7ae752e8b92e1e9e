// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// MaxMessages is the maximum number of messages to keep in a transcript.
// When exceeded, the oldest messages are pruned to prevent unbounded growth.
const MaxMessages = 1000

// =============================================================================
// TRANSCRIPT TYPE
// =============================================================================

// Transcript is the ordered list of messages of a chat session.
// It is not safe for concurrent use.
type Transcript struct {
	messages []ChatMessage
	max      int
}

// NewTranscript creates an empty transcript capped at MaxMessages.
func NewTranscript() *Transcript {
	return &Transcript{max: MaxMessages}
}

// NewTranscriptFrom creates a transcript holding a copy of msgs.
func NewTranscriptFrom(msgs []ChatMessage) *Transcript {
	t := NewTranscript()
	t.Replace(msgs)
	return t
}

// SetMax changes the cap. Values <= 0 restore MaxMessages.
func (t *Transcript) SetMax(max int) {
	if max <= 0 {
		max = MaxMessages
	}
	t.max = max
	t.prune()
}

// Append adds messages to the end of the transcript.
func (t *Transcript) Append(msgs ...ChatMessage) {
	t.messages = append(t.messages, msgs...)
	t.prune()
}

// Replace swaps the whole transcript for a copy of msgs.
func (t *Transcript) Replace(msgs []ChatMessage) {
	t.messages = append([]ChatMessage(nil), msgs...)
	t.prune()
}

// Messages returns a copy of the messages in order.
func (t *Transcript) Messages() []ChatMessage {
	return append([]ChatMessage(nil), t.messages...)
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	return len(t.messages)
}

// IsEmpty returns true if the transcript has no messages.
func (t *Transcript) IsEmpty() bool {
	return len(t.messages) == 0
}

// Clear removes all messages.
func (t *Transcript) Clear() {
	t.messages = nil
}

// Last returns the most recent message.
func (t *Transcript) Last() (ChatMessage, bool) {
	if len(t.messages) == 0 {
		return ChatMessage{}, false
	}
	return t.messages[len(t.messages)-1], true
}

// LastResponse returns the most recent assistant message carrying a
// query response.
func (t *Transcript) LastResponse() (ChatMessage, bool) {
	for i := len(t.messages) - 1; i >= 0; i-- {
		m := t.messages[i]
		if m.Role == RoleAssistant && m.Metadata != nil {
			return m, true
		}
	}
	return ChatMessage{}, false
}

// prune drops the oldest messages beyond the cap.
func (t *Transcript) prune() {
	max := t.max
	if max <= 0 {
		max = MaxMessages
	}
	if len(t.messages) > max {
		t.messages = append([]ChatMessage(nil), t.messages[len(t.messages)-max:]...)
	}
}
