// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/model"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/ui/styles"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// AppTitle is shown in the header and on the welcome screen.
const AppTitle = "Cisco CLI Expert"

// Header is the top bar: title, active model and sync state.
type Header struct {
	Theme    *styles.Theme
	Width    int
	Model    model.ModelInfo
	Research bool
	Syncing  bool
	SyncOn   bool
}

// ModelLabel is the short model name shown in the header, or "Research"
// while research mode forces web search.
func ModelLabel(info model.ModelInfo, research bool) string {
	if research {
		return "Research"
	}
	name := strings.TrimPrefix(info.Name, "Gemini ")
	if name == "" {
		return info.ID
	}
	return name
}

// View renders the header.
func (h Header) View() string {
	subtitle := "ENTERPRISE LIGHT PROTOCOL"
	if h.Theme.IsDark {
		subtitle = "DARK INTELLIGENCE OPS"
	}
	left := h.Theme.HeaderTitle.Render(AppTitle) + "  " + h.Theme.HeaderSubtitle.Render(subtitle)

	badge := h.Theme.HeaderBadge
	if h.Research {
		badge = h.Theme.ResearchBadge
	}
	right := badge.Render(ModelLabel(h.Model, h.Research))
	switch {
	case h.Syncing:
		right = h.Theme.Timestamp.Render("syncing...") + " " + right
	case h.SyncOn:
		right = h.Theme.StatusMessage.Render("cloud") + " " + right
	}

	inner := h.Width - 2
	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		// Narrow terminals drop the subtitle first.
		left = h.Theme.HeaderTitle.Render(AppTitle)
		gap = inner - lipgloss.Width(left) - lipgloss.Width(right)
	}
	if gap < 1 {
		gap = 1
	}
	return h.Theme.Header.Width(h.Width).Render(left + strings.Repeat(" ", gap) + right)
}
