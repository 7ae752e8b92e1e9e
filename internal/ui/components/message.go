// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/model"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/ui/styles"
)

// =============================================================================
// MESSAGE BUBBLE COMPONENT
// =============================================================================

// MessageBubble renders one transcript entry.
type MessageBubble struct {
	Message       model.ChatMessage
	Theme         *styles.Theme
	Width         int
	ShowReasoning bool
}

// NewMessageBubble creates a bubble for msg.
func NewMessageBubble(msg model.ChatMessage, theme *styles.Theme, width int) MessageBubble {
	return MessageBubble{Message: msg, Theme: theme, Width: width}
}

// Render renders the message. User prompts sit right-aligned in a bubble,
// assistant answers render as a result card.
func (b MessageBubble) Render() string {
	switch {
	case b.Message.Role == model.RoleUser:
		return b.renderUser()
	case b.Message.Metadata != nil:
		return b.renderCard()
	default:
		return b.renderPlainAssistant()
	}
}

func (b MessageBubble) renderUser() string {
	maxWidth := b.Width * 3 / 4
	if maxWidth < 20 {
		maxWidth = 20
	}

	var body []string
	if text := strings.TrimSpace(b.Message.Content); text != "" {
		body = append(body, wordwrap.String(text, maxWidth-6))
	}
	if tag := attachmentTag(b.Message); tag != "" {
		body = append(body, b.Theme.AttachmentTag.Render(tag))
	}

	bubble := b.Theme.UserBubble.Render(strings.Join(body, "\n"))
	meta := b.Theme.Timestamp.Render(b.Message.Time().Format("15:04:05"))
	block := lipgloss.JoinVertical(lipgloss.Right, bubble, meta)
	return lipgloss.PlaceHorizontal(b.Width, lipgloss.Right, block)
}

func (b MessageBubble) renderCard() string {
	card := ResultCard{
		Response:      b.Message.Metadata,
		Theme:         b.Theme,
		Width:         b.Width,
		ShowReasoning: b.ShowReasoning,
	}
	label := b.Theme.RoleLabel.Render(b.Message.Role.DisplayName()) + "  " +
		b.Theme.Timestamp.Render(b.Message.Time().Format("15:04:05"))
	return label + "\n" + card.Render()
}

func (b MessageBubble) renderPlainAssistant() string {
	style := b.Theme.AssistantCard
	text := b.Message.Content
	if b.Message.Error {
		style = b.Theme.ErrorBubble
		text = styles.StatusIndicators.Error + " " + text
	}
	width := b.Width - 4
	if width < 20 {
		width = 20
	}
	label := b.Theme.RoleLabel.Render(b.Message.Role.DisplayName()) + "  " +
		b.Theme.Timestamp.Render(b.Message.Time().Format("15:04:05"))
	return label + "\n" + style.Render(wordwrap.String(text, width))
}

// attachmentTag describes what was attached to a prompt.
func attachmentTag(msg model.ChatMessage) string {
	var tags []string
	if msg.HasImage() {
		tags = append(tags, "[image attached]")
	}
	if msg.Attachment != "" {
		tags = append(tags, "[file: "+msg.Attachment+"]")
	}
	return strings.Join(tags, " ")
}
