// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/ui/styles"
)

func init() {
	lipgloss.SetColorProfile(colorProfile())
}

// =============================================================================
// CLI STYLES
// =============================================================================

// Styles for line-oriented output. They share the TUI palette so `ask`
// output matches the full-screen card.
var (
	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(styles.Cyan)
	LabelStyle   = lipgloss.NewStyle().Foreground(styles.TextMuted).Width(18)
	SuccessStyle = lipgloss.NewStyle().Bold(true).Foreground(styles.Emerald)
	ErrorStyle   = lipgloss.NewStyle().Bold(true).Foreground(styles.Rose)
	WarningStyle = lipgloss.NewStyle().Foreground(styles.Amber)
	DimStyle     = lipgloss.NewStyle().Foreground(styles.TextMuted)
)

// RenderLabel pads a label to the config listing column.
func RenderLabel(label string) string {
	if !ColorsEnabled() {
		return label + strings.Repeat(" ", max(0, 18-len(label)))
	}
	return LabelStyle.Render(label)
}

// RenderSeparator draws a rule width columns wide (60 when width <= 0).
func RenderSeparator(width int) string {
	if width <= 0 {
		width = 60
	}
	return RenderConditional(DimStyle, strings.Repeat("─", width))
}

// RenderConditional applies style only when colors are enabled.
func RenderConditional(style lipgloss.Style, text string) string {
	if ColorsEnabled() {
		return style.Render(text)
	}
	return text
}
