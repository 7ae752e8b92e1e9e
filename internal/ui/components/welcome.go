// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/model"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/ui/styles"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/util"
)

// =============================================================================
// WELCOME SCREEN COMPONENT
// =============================================================================

const (
	welcomeTitle   = "Cisco Terminal Intelligence"
	welcomeTagline = "Real-time command synthesis for IOS, IOS XE, and IOS XR environments."
)

var researchNotes = []struct{ label, text string }{
	{"Why use it?", "Model knowledge has a **cutoff**. Research connects the model to **live Cisco docs** via Google Search."},
	{"When to use it?", "**Critical** for **niche commands** or verifying syntax on the **latest IOS trains**."},
	{"How to use it?", "Press `ctrl+r` or type `/search`. The header badge turns amber while it is on."},
}

// Welcome is shown while the transcript is empty.
type Welcome struct {
	Theme       *styles.Theme
	Width       int
	Suggestions []string

	// Predictive is true when the suggestions came from prompt history.
	Predictive bool
}

// Pick returns the suggestion for digit key ("1".."4").
func (w Welcome) Pick(key string) (string, bool) {
	n, err := strconv.Atoi(key)
	if err != nil || n < 1 || n > len(w.Suggestions) || n > model.MaxSuggestions {
		return "", false
	}
	return w.Suggestions[n-1], true
}

// View renders the welcome screen.
func (w Welcome) View() string {
	width := w.Width
	if width < 30 {
		width = 30
	}
	inner := width - 8
	if inner > 76 {
		inner = 76
	}

	mode := "STANDARD PROTOCOLS"
	if w.Predictive {
		mode = "PREDICTIVE INTELLIGENCE ACTIVE"
	}

	rows := []string{
		w.Theme.WelcomeLogo.Render(">_ " + welcomeTitle),
		w.Theme.WelcomeInfo.Render(welcomeTagline),
		"",
		w.Theme.Timestamp.Render(mode),
		"",
	}

	for i, s := range w.Suggestions {
		if i >= model.MaxSuggestions {
			break
		}
		label := util.TruncateWidth(s, inner-8)
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Center,
			w.Theme.SuggestionKey.Render(strconv.Itoa(i+1)), " ",
			w.Theme.SuggestionButton.Render(label)))
	}

	rows = append(rows, "", w.Theme.ReasoningLabel.Render(styles.UpperTitle("Deep Research Protocol")))
	for _, note := range researchNotes {
		rows = append(rows,
			w.Theme.RoleLabel.Render(note.label),
			RenderText(note.text, w.Theme, inner))
	}

	box := w.Theme.WelcomeBox.Width(inner + 6).Render(strings.Join(rows, "\n"))
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, box)
}
