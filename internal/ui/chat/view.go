// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/model"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/ui/components"
)

// minViewportHeight keeps the transcript visible on tiny terminals.
const minViewportHeight = 3

// =============================================================================
// VIEW
// =============================================================================

// View renders the chat view.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	parts := []string{m.renderHeader(), m.viewport.View()}
	if hints := m.renderHints(); hints != "" {
		parts = append(parts, hints)
	}
	parts = append(parts, m.input.View(), m.renderStatusBar())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderHeader() string {
	info, ok := model.LookupModel(m.modelID)
	if !ok {
		info = model.ModelInfo{ID: m.modelID, Name: m.modelID}
	}
	return components.Header{
		Theme:    m.theme,
		Width:    m.width,
		Model:    info,
		Research: m.research,
		Syncing:  m.syncing,
		SyncOn:   m.remote != nil,
	}.View()
}

func (m Model) renderHints() string {
	if len(m.hints) == 0 {
		return ""
	}
	return m.theme.InputHint.Render("  " + strings.Join(m.hints, "  "))
}

func (m Model) renderStatusBar() string {
	bar := components.StatusBar{
		Theme:    m.theme,
		Width:    m.width,
		Status:   components.StatusReady,
		Messages: m.transcript.Len(),
	}
	switch {
	case m.state == StateThinking:
		bar.Status = components.StatusThinking
		bar.Spinner = m.spinner.View()
	case m.syncing:
		bar.Status = components.StatusSyncing
	case m.speaking:
		bar.Status = components.StatusSpeaking
	}
	if m.toast.Message != "" {
		bar.Message = m.toast.Message
		bar.IsError = m.toast.IsError()
	}
	return bar.View()
}

// welcome is the empty-transcript screen.
func (m Model) welcome() components.Welcome {
	return components.Welcome{
		Theme:       m.theme,
		Width:       m.contentWidth(),
		Suggestions: m.suggestions,
		Predictive:  m.predictive,
	}
}

// =============================================================================
// LAYOUT
// =============================================================================

func (m Model) contentWidth() int {
	w := m.width - 2
	if w < 20 {
		w = 20
	}
	return w
}

// layout sizes the viewport to the space the other rows leave.
func (m *Model) layout() {
	if m.width == 0 {
		return
	}
	m.input.SetWidth(m.width)

	used := lipgloss.Height(m.renderHeader()) +
		lipgloss.Height(m.input.View()) +
		lipgloss.Height(m.renderStatusBar())
	if hints := m.renderHints(); hints != "" {
		used += lipgloss.Height(hints)
	}

	height := m.height - used
	if height < minViewportHeight {
		height = minViewportHeight
	}
	m.viewport.Width = m.width
	m.viewport.Height = height
}

// updateViewport re-renders the transcript into the viewport.
func (m *Model) updateViewport() {
	if m.width == 0 {
		return
	}
	width := m.contentWidth()

	var b strings.Builder
	if m.transcript.IsEmpty() {
		b.WriteString(m.welcome().View())
	} else {
		for i, msg := range m.transcript.Messages() {
			if i > 0 {
				b.WriteString("\n\n")
			}
			b.WriteString(components.MessageBubble{
				Message:       msg,
				Theme:         m.theme,
				Width:         width,
				ShowReasoning: m.showReasoning,
			}.Render())
		}
	}

	if m.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(components.RenderMarkdown(m.notice, width, m.theme.IsDark))
		b.WriteString(m.theme.InputHint.Render("esc to dismiss"))
	}

	m.viewport.SetContent(b.String())
}
