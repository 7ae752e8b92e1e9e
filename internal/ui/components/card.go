// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/format"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/model"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/ui/styles"
)

// =============================================================================
// RESULT CARD COMPONENT
// =============================================================================

// Reasoning toggle labels.
const (
	reasoningCollapsed = "▸ Analysis & Reasoning"
	reasoningExpanded  = "▾ Analysis & Reasoning"
	reasoningHint      = "ctrl+t"
)

// ResultCard renders a query response as a technical reference card.
type ResultCard struct {
	Response *model.CiscoQueryResponse
	Theme    *styles.Theme
	Width    int

	// ShowReasoning expands the analysis block. It is collapsed by default.
	ShowReasoning bool
}

// NewResultCard creates a card for resp.
func NewResultCard(resp *model.CiscoQueryResponse, theme *styles.Theme, width int) ResultCard {
	return ResultCard{Response: resp, Theme: theme, Width: width}
}

// Render renders the full card. A nil response renders as "".
func (c ResultCard) Render() string {
	r := c.Response
	if r == nil {
		return ""
	}
	width := c.Width
	if width < 30 {
		width = 30
	}
	inner := width - 4

	var blocks []string
	if !format.IsPlaceholder(r.Correction) {
		blocks = append(blocks, c.Theme.Correction.Render("Did you mean: "+strings.TrimSpace(r.Correction)))
	}
	if r.IsOutOfScope {
		blocks = append(blocks, c.Theme.OutOfScope.Render(styles.StatusIndicators.Warning+" Outside Cisco networking scope"))
	}
	if reasoning := c.renderReasoning(inner); reasoning != "" {
		blocks = append(blocks, reasoning)
	}

	if !r.Technical() {
		if !format.IsPlaceholder(r.GeneralAnswer) {
			blocks = append(blocks, RenderMarkdown(r.GeneralAnswer, inner, c.Theme.IsDark))
		}
	} else {
		if badges := c.renderBadges(); badges != "" {
			blocks = append(blocks, badges)
		}
		for _, s := range r.Sections() {
			blocks = append(blocks, c.renderSection(s, inner))
		}
	}

	if sources := c.renderSources(inner); sources != "" {
		blocks = append(blocks, sources)
	}

	return c.Theme.AssistantCard.Width(width - 2).Render(strings.Join(blocks, "\n\n"))
}

func (c ResultCard) renderReasoning(width int) string {
	if format.IsPlaceholder(c.Response.Reasoning) {
		return ""
	}
	if !c.ShowReasoning {
		return c.Theme.ReasoningLabel.Render(reasoningCollapsed) + " " + c.Theme.Timestamp.Render(reasoningHint)
	}
	body := RenderText(c.Response.Reasoning, c.Theme, width-2)
	return c.Theme.ReasoningLabel.Render(reasoningExpanded) + "\n" + c.Theme.Reasoning.Render(body)
}

func (c ResultCard) renderBadges() string {
	r := c.Response
	var badges []string
	if r.DeviceCategory != "" {
		device := r.DeviceCategory.Normalize()
		badges = append(badges, c.Theme.DeviceBadge.Background(styles.DeviceColor(device)).Render(string(device)))
	}
	if mode := strings.TrimSpace(r.CommandMode); !format.IsPlaceholder(mode) {
		badges = append(badges, c.Theme.ModeBadge.Render(mode))
	}
	return strings.Join(badges, " ")
}

func (c ResultCard) renderSection(s model.Section, width int) string {
	heading := styles.SectionHeading(s.Key, s.Title)
	if s.Code {
		cb := NewCodeBlock("", s.Body)
		cb.Dark = c.Theme.IsDark
		cb.Theme = c.Theme
		cb.SetMaxWidth(width)
		return heading + "\n" + cb.Render()
	}
	return heading + "\n" + RenderText(s.Body, c.Theme, width)
}

func (c ResultCard) renderSources(width int) string {
	sources := c.Response.Sources
	if len(sources) == 0 {
		return ""
	}
	rows := []string{c.Theme.RoleLabel.Render("Sources")}
	for i, src := range sources {
		title := src.Title
		if title == "" {
			title = src.URI
		}
		num := strconv.Itoa(i+1) + ". "
		row := num + c.Theme.SourceTitle.Render(title)
		if src.URI != "" && src.URI != title {
			row += "\n" + strings.Repeat(" ", len(num)) + c.Theme.SourceURI.Render(src.URI)
		}
		rows = append(rows, lipgloss.NewStyle().MaxWidth(width).Render(row))
	}
	return strings.Join(rows, "\n")
}

// =============================================================================
// PLAIN TEXT CARD
// =============================================================================

// PlainCard renders resp without styling, for non-TTY output.
func PlainCard(resp *model.CiscoQueryResponse, showReasoning bool) string {
	if resp == nil {
		return ""
	}
	var blocks []string
	if !format.IsPlaceholder(resp.Correction) {
		blocks = append(blocks, "Did you mean: "+strings.TrimSpace(resp.Correction))
	}
	if resp.IsOutOfScope {
		blocks = append(blocks, "Note: outside Cisco networking scope")
	}
	if showReasoning && !format.IsPlaceholder(resp.Reasoning) {
		blocks = append(blocks, "ANALYSIS & REASONING\n"+format.Plain(format.Format(resp.Reasoning)))
	}
	if !resp.Technical() {
		if !format.IsPlaceholder(resp.GeneralAnswer) {
			blocks = append(blocks, strings.TrimSpace(resp.GeneralAnswer))
		}
	} else {
		var meta []string
		if resp.DeviceCategory != "" {
			meta = append(meta, "["+string(resp.DeviceCategory.Normalize())+"]")
		}
		if !format.IsPlaceholder(resp.CommandMode) {
			meta = append(meta, "["+strings.TrimSpace(resp.CommandMode)+"]")
		}
		if len(meta) > 0 {
			blocks = append(blocks, strings.Join(meta, " "))
		}
		for _, s := range resp.Sections() {
			body := strings.Trim(s.Body, "\n")
			if !s.Code {
				body = format.Plain(format.Format(s.Body))
			}
			blocks = append(blocks, styles.UpperTitle(s.Title)+"\n"+body)
		}
	}
	if len(resp.Sources) > 0 {
		rows := []string{"SOURCES"}
		for i, src := range resp.Sources {
			rows = append(rows, strconv.Itoa(i+1)+". "+src.Title+" <"+src.URI+">")
		}
		blocks = append(blocks, strings.Join(rows, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}
