// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/history"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/ui/styles"
)

// =============================================================================
// INPUT AREA COMPONENT - Prompt input with history recall
// =============================================================================

// Input defaults.
const (
	DefaultPlaceholder = "Enter CLI or Q&A..."
	MaxInputChars      = 4096
)

// InputArea is the prompt input. Up and Down walk the prompt history; any
// other edit returns the navigator to the live draft.
type InputArea struct {
	input      textinput.Model
	nav        history.Navigator
	width      int
	research   bool
	attachment string
	theme      *styles.Theme
}

// NewInputArea creates a new InputArea component.
func NewInputArea(theme *styles.Theme) *InputArea {
	ti := textinput.New()
	ti.Placeholder = DefaultPlaceholder
	ti.CharLimit = MaxInputChars
	ti.Width = 70
	ti.Prompt = "> "

	ti.PromptStyle = theme.InputPrompt
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.TextPrimary)
	ti.PlaceholderStyle = theme.InputPlaceholder
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(styles.Cyan)

	return &InputArea{
		input: ti,
		nav:   history.NewNavigator(nil),
		width: 80,
		theme: theme,
	}
}

// Focus focuses the input.
func (i *InputArea) Focus() tea.Cmd {
	return i.input.Focus()
}

// Blur removes focus from the input.
func (i *InputArea) Blur() {
	i.input.Blur()
}

// Focused returns whether the input is focused.
func (i *InputArea) Focused() bool {
	return i.input.Focused()
}

// SetWidth sets the input area width.
func (i *InputArea) SetWidth(width int) {
	i.width = width
	inputWidth := width - 8
	if inputWidth < 20 {
		inputWidth = 20
	}
	i.input.Width = inputWidth
}

// SetHistory replaces the recallable prompts (oldest first).
func (i *InputArea) SetHistory(prompts []string) {
	i.nav.SetHistory(prompts)
}

// Navigator exposes the history navigator state.
func (i *InputArea) Navigator() *history.Navigator {
	return &i.nav
}

// SetResearch toggles the research indicator.
func (i *InputArea) SetResearch(on bool) {
	i.research = on
}

// SetAttachment shows name as the pending attachment; "" clears it.
func (i *InputArea) SetAttachment(name string) {
	i.attachment = name
	if name != "" {
		i.input.Placeholder = "Analysing " + name + "..."
	} else {
		i.input.Placeholder = DefaultPlaceholder
	}
}

// Value returns the current input value.
func (i *InputArea) Value() string {
	return i.input.Value()
}

// SetValue sets the input value and moves the cursor to the end.
func (i *InputArea) SetValue(value string) {
	i.input.SetValue(value)
	i.input.CursorEnd()
}

// Reset clears the input and returns history navigation to the live draft.
func (i *InputArea) Reset() {
	i.input.Reset()
	i.nav.Reset()
}

// Update handles key input.
func (i *InputArea) Update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyUp:
			if value, changed := i.nav.Older(i.input.Value()); changed {
				i.SetValue(value)
			}
			return nil
		case tea.KeyDown:
			if value, changed := i.nav.Newer(); changed {
				i.SetValue(value)
			}
			return nil
		}
	}

	before := i.input.Value()
	var cmd tea.Cmd
	i.input, cmd = i.input.Update(msg)
	if after := i.input.Value(); after != before {
		i.nav.Edit(after)
	}
	return cmd
}

// View renders the input area.
func (i *InputArea) View() string {
	var tags string
	if i.research {
		tags += i.theme.ResearchBadge.Render("RESEARCH") + " "
	}
	if i.attachment != "" {
		tags += i.theme.AttachmentTag.Render("["+i.attachment+"]") + " "
	}

	// Tags share the row with the text field.
	fieldWidth := i.width - 8 - lipgloss.Width(tags)
	if fieldWidth < 10 {
		fieldWidth = 10
	}
	i.input.Width = fieldWidth

	line := tags + i.input.View()
	if i.nav.State().Browsing() {
		line += " " + i.theme.InputHint.Render("(history)")
	}
	return i.theme.InputContainer.Width(i.width).Render(line)
}
