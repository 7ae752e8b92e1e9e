// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// Status represents the current application status.
type Status int

const (
	StatusReady Status = iota
	StatusThinking
	StatusSpeaking
	StatusSyncing
	StatusError
)

// String returns the display string for the status.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusThinking:
		return "Synthesizing CLI output..."
	case StatusSpeaking:
		return "Speaking"
	case StatusSyncing:
		return "Syncing"
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Icon returns a shape indicator for the status.
// ACCESSIBILITY: Distinct shapes alongside colors.
func (s Status) Icon() string {
	switch s {
	case StatusReady:
		return styles.StatusIndicators.Success
	case StatusError:
		return styles.StatusIndicators.Error
	default:
		return styles.StatusIndicators.Info
	}
}

// Shortcut is one key hint.
type Shortcut struct {
	Key  string
	Desc string
}

// DefaultShortcuts are the hints shown when there is room.
var DefaultShortcuts = []Shortcut{
	{"↑↓", "history"},
	{"^R", "research"},
	{"^T", "reasoning"},
	{"^Y", "copy"},
	{"^S", "speak"},
	{"/help", "commands"},
}

// StatusBar is the bottom bar.
type StatusBar struct {
	Theme     *styles.Theme
	Width     int
	Status    Status
	Spinner   string
	Message   string
	IsError   bool
	Messages  int
	Shortcuts []Shortcut
}

// View renders the status bar on a single row.
func (s StatusBar) View() string {
	var left string
	if s.Status == StatusThinking && s.Spinner != "" {
		left = s.Spinner + " " + s.Theme.ThinkingText.Render(s.Status.String())
	} else {
		left = s.Status.Icon() + " " + s.Status.String()
	}
	if s.Messages > 0 {
		left += s.Theme.ShortcutDesc.Render(" · " + pluralize(s.Messages, "message"))
	}

	if s.Message != "" {
		style := s.Theme.StatusMessage
		if s.IsError {
			style = s.Theme.StatusError
		}
		left += "  " + style.Render(s.Message)
	}

	inner := s.Width - 2
	if inner < 10 {
		inner = 10
	}

	right := s.renderShortcuts(inner - lipgloss.Width(left) - 2)
	if lipgloss.Width(left) > inner {
		left = truncate.StringWithTail(left, uint(inner), "...")
	}
	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return s.Theme.StatusBar.Width(s.Width).Render(left + strings.Repeat(" ", gap) + right)
}

// renderShortcuts returns as many hints as fit in budget columns.
func (s StatusBar) renderShortcuts(budget int) string {
	shortcuts := s.Shortcuts
	if shortcuts == nil {
		shortcuts = DefaultShortcuts
	}
	var parts []string
	used := 0
	for _, sc := range shortcuts {
		part := s.Theme.ShortcutKey.Render(sc.Key) + " " + s.Theme.ShortcutDesc.Render(sc.Desc)
		w := lipgloss.Width(part)
		if len(parts) > 0 {
			w += 2
		}
		if used+w > budget {
			break
		}
		parts = append(parts, part)
		used += w
	}
	return strings.Join(parts, "  ")
}

func pluralize(n int, word string) string {
	s := strconv.Itoa(n) + " " + word
	if n != 1 {
		s += "s"
	}
	return s
}
