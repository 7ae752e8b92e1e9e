// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package setup

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Italic(true)

	successStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)

	highlightStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.Overlay).
			Padding(1, 2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(styles.Purple).
			Bold(true)

	unselectedStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)
)

const logo = `
   ___ _                 ___ _    ___
  / __(_)___ __ ___     / __| |  |_ _|
 | (__| (_-</ _/ _ \   | (__| |__ | |
  \___|_/__/\__\___/    \___|____|___|
`

const tagline = "IOS, IOS XE and IOS XR command reference in your terminal"

// =============================================================================
// VIEW
// =============================================================================

// View renders the current screen.
func (w *Wizard) View() string {
	switch w.phase {
	case PhaseWelcome:
		return w.center(w.viewWelcome())
	case PhaseChecks:
		return w.center(w.viewChecks())
	case PhaseModel:
		return w.center(w.viewList("Choose a Default Model", w.models, w.modelIdx))
	case PhaseStorage:
		return w.center(w.viewList("Where Should History Live?", w.backends, w.backendIdx))
	case PhaseKey:
		return w.center(w.viewKey())
	case PhaseWriting:
		return w.center(fmt.Sprintf("  %s Writing %s\n", w.spinner.View(), w.path))
	case PhaseComplete:
		return w.center(w.viewComplete())
	}
	return ""
}

func (w *Wizard) viewWelcome() string {
	var s strings.Builder
	s.WriteString(highlightStyle.Render(logo))
	s.WriteString("\n")
	s.WriteString(subtitleStyle.Render("  " + tagline))
	s.WriteString("\n\n")

	s.WriteString(boxStyle.Render(`This wizard will:

  * Check the config directory and network
  * Pick your default model
  * Pick where prompt history is stored
  * Save your Gemini API key`))
	s.WriteString("\n\n")
	s.WriteString(highlightStyle.Render("  Press ENTER to begin"))
	s.WriteString(dimStyle.Render("  |  Press Q to quit"))
	return s.String()
}

func (w *Wizard) viewChecks() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("  Environment Check"))
	s.WriteString("\n\n")

	for idx, check := range w.checks {
		var icon, status string
		style := dimStyle
		switch check.Status {
		case StatusChecking:
			icon = "[ ]"
			if idx == w.current {
				icon = w.spinner.View()
			}
			status = "Checking..."
		case StatusPass:
			icon, status, style = "[OK]", check.Message, successStyle
		case StatusFail:
			icon, status, style = "[FAIL]", check.Message, errorStyle
		case StatusWarn:
			icon, status, style = "[!!]", check.Message, warningStyle
		}

		fmt.Fprintf(&s, "  %s %s", style.Render(icon), check.Name)
		s.WriteString(dimStyle.Render(" - " + status))
		s.WriteString("\n")
		if check.Fix != "" {
			s.WriteString(dimStyle.Render("      -> " + check.Fix))
			s.WriteString("\n")
		}
	}
	s.WriteString("\n")

	if w.checksDone() {
		if w.anyFailed() {
			s.WriteString(warningStyle.Render("  Some checks need attention"))
			s.WriteString("\n\n")
			s.WriteString(highlightStyle.Render("  Press ENTER to continue anyway"))
		} else {
			s.WriteString(successStyle.Render("  All checks passed!"))
			s.WriteString("\n\n")
			s.WriteString(highlightStyle.Render("  Press ENTER to continue"))
		}
	}
	return s.String()
}

func (w *Wizard) anyFailed() bool {
	for _, c := range w.checks {
		if c.Status == StatusFail {
			return true
		}
	}
	return false
}

func (w *Wizard) viewList(title string, opts []Option, selected int) string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("  " + title))
	s.WriteString("\n\n")

	for idx, o := range opts {
		cursor, style := "  ", unselectedStyle
		if idx == selected {
			cursor, style = "> ", selectedStyle
		}
		s.WriteString(style.Render("  " + cursor + o.Label))
		s.WriteString("\n")
	}
	s.WriteString("\n")
	s.WriteString(dimStyle.Render("  Up/Down to select, ENTER to confirm, ESC to go back"))
	return s.String()
}

func (w *Wizard) viewKey() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("  Gemini API Key"))
	s.WriteString("\n\n")

	if w.envKey != "" {
		s.WriteString(dimStyle.Render("  A key is already set in the environment. Leave blank to keep using it."))
	} else {
		s.WriteString(dimStyle.Render("  Get a key at https://aistudio.google.com/apikey. Leave blank to skip."))
	}
	s.WriteString("\n\n  ")
	s.WriteString(w.keyInput.View())
	s.WriteString("\n\n")

	if w.err != nil {
		s.WriteString(errorStyle.Render("  Could not save: " + w.err.Error()))
		s.WriteString("\n\n")
	}
	s.WriteString(dimStyle.Render("  ENTER to save, ESC to go back"))
	return s.String()
}

func (w *Wizard) viewComplete() string {
	var s strings.Builder
	s.WriteString(successStyle.Render("  Setup complete!"))
	s.WriteString("\n\n")

	ch := w.Choices()
	fmt.Fprintf(&s, "  %s %s\n", dimStyle.Render("Model:  "), ch.Model)
	fmt.Fprintf(&s, "  %s %s\n", dimStyle.Render("History:"), ch.Backend)
	fmt.Fprintf(&s, "  %s %s\n\n", dimStyle.Render("Config: "), w.path)

	s.WriteString("  Choose your next step:\n\n")
	options := []struct {
		label, hint string
		active      bool
	}{
		{"Start ciscocli now", "<- Opens the chat", w.launchSelected},
		{"Close setup", "<- Run 'ciscocli' anytime", !w.launchSelected},
	}
	for _, o := range options {
		if o.active {
			s.WriteString(selectedStyle.Render("  > " + o.label))
			s.WriteString(dimStyle.Render("  " + o.hint))
		} else {
			s.WriteString(unselectedStyle.Render("    " + o.label))
		}
		s.WriteString("\n\n")
	}
	s.WriteString(dimStyle.Render("  Up/Down or Tab to select  |  Enter to confirm"))
	return s.String()
}

// center pads content down a third of the screen.
func (w *Wizard) center(content string) string {
	if w.width == 0 || w.height == 0 {
		return content
	}
	top := (w.height - lipgloss.Height(content)) / 3
	if top < 0 {
		top = 0
	}
	return strings.Repeat("\n", top) + content
}
