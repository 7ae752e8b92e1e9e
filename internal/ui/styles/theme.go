// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme modes accepted by NewTheme.
const (
	ModeAuto  = "auto"
	ModeDark  = "dark"
	ModeLight = "light"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style
	HeaderBadge    lipgloss.Style
	ResearchBadge  lipgloss.Style

	// ==========================================================================
	// MESSAGE STYLES
	// ==========================================================================

	UserBubble    lipgloss.Style
	AssistantCard lipgloss.Style
	ErrorBubble   lipgloss.Style
	RoleLabel     lipgloss.Style
	Timestamp     lipgloss.Style
	AttachmentTag lipgloss.Style

	// ==========================================================================
	// FORMATTED TEXT STYLES
	// ==========================================================================

	Text       lipgloss.Style
	Bold       lipgloss.Style
	Italic     lipgloss.Style
	InlineCode lipgloss.Style
	Bullet     lipgloss.Style

	// ==========================================================================
	// RESULT CARD STYLES
	// ==========================================================================

	Correction     lipgloss.Style
	Reasoning      lipgloss.Style
	ReasoningLabel lipgloss.Style
	OutOfScope     lipgloss.Style
	DeviceBadge    lipgloss.Style
	ModeBadge      lipgloss.Style
	SourceTitle    lipgloss.Style
	SourceURI      lipgloss.Style

	// ==========================================================================
	// CODE BLOCK STYLES
	// ==========================================================================

	CodeBlock     lipgloss.Style
	CodeLangBadge lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer   lipgloss.Style
	InputPrompt      lipgloss.Style
	InputPlaceholder lipgloss.Style
	InputHint        lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar     lipgloss.Style
	StatusMessage lipgloss.Style
	StatusError   lipgloss.Style
	ShortcutKey   lipgloss.Style
	ShortcutDesc  lipgloss.Style

	// ==========================================================================
	// SPINNER STYLES
	// ==========================================================================

	Spinner      lipgloss.Style
	ThinkingText lipgloss.Style

	// ==========================================================================
	// WELCOME SCREEN STYLES
	// ==========================================================================

	WelcomeBox       lipgloss.Style
	WelcomeLogo      lipgloss.Style
	WelcomeInfo      lipgloss.Style
	SuggestionKey    lipgloss.Style
	SuggestionButton lipgloss.Style
}

// NewTheme creates a theme for mode ("dark", "light" or "auto"). Auto asks
// the terminal for its background.
func NewTheme(mode string) *Theme {
	colorProfile := termenv.ColorProfile()

	var isDark bool
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case ModeDark:
		isDark = true
	case ModeLight:
		isDark = false
	default:
		isDark = termenv.HasDarkBackground()
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// Header
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.HeaderSubtitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.HeaderBadge = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Indigo).
		Bold(true).
		Padding(0, 1)

	t.ResearchBadge = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Amber).
		Bold(true).
		Padding(0, 1)

	// Messages
	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		Background(UserBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 2)

	t.AssistantCard = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AssistantBorder).
		Padding(0, 1)

	t.ErrorBubble = lipgloss.NewStyle().
		Foreground(ErrorBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(ErrorBubbleBorder).
		Padding(0, 2)

	t.RoleLabel = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.AttachmentTag = lipgloss.NewStyle().
		Foreground(Amber).
		Italic(true)

	// Formatted text
	t.Text = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.Bold = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Bold(true)

	t.Italic = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.InlineCode = lipgloss.NewStyle().
		Foreground(Cyan).
		Background(SurfaceDim)

	t.Bullet = lipgloss.NewStyle().
		Foreground(Indigo).
		Bold(true)

	// Result card
	t.Correction = lipgloss.NewStyle().
		Foreground(Amber).
		Background(CorrectionBg).
		Padding(0, 1)

	t.Reasoning = lipgloss.NewStyle().
		Foreground(TextSecondary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(Purple).
		PaddingLeft(1)

	t.ReasoningLabel = lipgloss.NewStyle().
		Foreground(Purple).
		Bold(true)

	t.OutOfScope = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)

	t.DeviceBadge = lipgloss.NewStyle().
		Foreground(TextInverse).
		Bold(true).
		Padding(0, 1)

	t.ModeBadge = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(Overlay).
		Padding(0, 1)

	t.SourceTitle = lipgloss.NewStyle().
		Foreground(LinkColor).
		Underline(true)

	t.SourceURI = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Code blocks
	t.CodeBlock = lipgloss.NewStyle().
		Background(SurfaceDim).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.CodeLangBadge = lipgloss.NewStyle().
		Foreground(TextMuted).
		Background(OverlayDim).
		Padding(0, 1).
		Bold(true)

	// Input area
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.InputHint = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.StatusMessage = lipgloss.NewStyle().
		Foreground(Emerald)

	t.StatusError = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Spinner
	t.Spinner = lipgloss.NewStyle().
		Foreground(Cyan)

	t.ThinkingText = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	// Welcome screen
	t.WelcomeBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Indigo).
		Padding(1, 3).
		Align(lipgloss.Center)

	t.WelcomeLogo = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.WelcomeInfo = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.SuggestionKey = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Cyan).
		Bold(true).
		Padding(0, 1)

	t.SuggestionButton = lipgloss.NewStyle().
		Foreground(TextPrimary).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // >= 100 columns
)
