// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Cisco Expert"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Fixed assistant texts.
const (
	// AssistantDetailsPrefix prefixes the content of a successful answer.
	AssistantDetailsPrefix = "Details for: "

	// ApologyMessage is the content of the assistant message appended when a
	// query fails.
	ApologyMessage = "I apologize, but I encountered an error. Please try again."
)

// ChatMessage is a single transcript entry. Timestamp is in Unix
// milliseconds so persisted transcripts stay compatible with the web build.
type ChatMessage struct {
	ID        string              `json:"id"`
	Role      Role                `json:"role"`
	Content   string              `json:"content"`
	Timestamp int64               `json:"timestamp"`
	Metadata  *CiscoQueryResponse `json:"metadata,omitempty"`

	// Image is the attached image as a data URL or bare base64.
	Image string `json:"image,omitempty"`

	// Attachment is the name of an attached text file, if any.
	Attachment string `json:"attachment,omitempty"`

	// Error marks the apology message appended for a failed query.
	Error bool `json:"error,omitempty"`
}

// NewMessage creates a new message with a generated ID.
func NewMessage(role Role, content string) ChatMessage {
	return ChatMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UnixMilli(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) ChatMessage {
	return NewMessage(RoleUser, content)
}

// NewAssistantMessage creates the assistant answer for query.
func NewAssistantMessage(query string, resp *CiscoQueryResponse) ChatMessage {
	msg := NewMessage(RoleAssistant, AssistantDetailsPrefix+query)
	msg.Metadata = resp
	return msg
}

// NewErrorMessage creates the apology message shown after a failed query.
func NewErrorMessage() ChatMessage {
	msg := NewMessage(RoleAssistant, ApologyMessage)
	msg.Error = true
	return msg
}

// Time returns the message timestamp.
func (m ChatMessage) Time() time.Time {
	return time.UnixMilli(m.Timestamp)
}

// HasImage reports whether an image is attached.
func (m ChatMessage) HasImage() bool {
	return m.Image != ""
}

// Preview returns a truncated preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m ChatMessage) Preview(maxLen int) string {
	content := strings.Join(strings.Fields(m.Content), " ")
	runes := []rune(content)
	if len(runes) <= maxLen {
		return content
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
