// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/model"
)

// =============================================================================
// THEME TESTS
// =============================================================================

func TestNewTheme_Modes(t *testing.T) {
	tests := []struct {
		mode     string
		wantDark bool
	}{
		{"dark", true},
		{"DARK", true},
		{" light ", false},
	}
	for _, tt := range tests {
		theme := NewTheme(tt.mode)
		if theme == nil {
			t.Fatalf("NewTheme(%q) returned nil", tt.mode)
		}
		if theme.IsDark != tt.wantDark {
			t.Errorf("NewTheme(%q).IsDark = %v, want %v", tt.mode, theme.IsDark, tt.wantDark)
		}
	}
}

func TestThemeInitStyles(t *testing.T) {
	theme := NewTheme(ModeDark)

	styles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"Header", theme.Header},
		{"UserBubble", theme.UserBubble},
		{"AssistantCard", theme.AssistantCard},
		{"ErrorBubble", theme.ErrorBubble},
		{"InputContainer", theme.InputContainer},
		{"StatusBar", theme.StatusBar},
		{"CodeBlock", theme.CodeBlock},
		{"Correction", theme.Correction},
		{"WelcomeBox", theme.WelcomeBox},
	}
	for _, s := range styles {
		if !strings.Contains(s.style.Render("test"), "test") {
			t.Errorf("%s style should render its content", s.name)
		}
	}
}

func TestThemeGetLayoutMode(t *testing.T) {
	theme := NewTheme(ModeLight)
	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{59, LayoutNarrow},
		{60, LayoutMedium},
		{99, LayoutMedium},
		{100, LayoutWide},
	}
	for _, tt := range tests {
		theme.SetSize(tt.width, 30)
		if got := theme.GetLayoutMode(); got != tt.want {
			t.Errorf("GetLayoutMode() at width %d = %v, want %v", tt.width, got, tt.want)
		}
	}
	if theme.Height != 30 {
		t.Errorf("Height = %d, want 30", theme.Height)
	}
}

// =============================================================================
// SECTION TESTS
// =============================================================================

func TestAccent_AllSections(t *testing.T) {
	keys := []string{
		model.SectionSyntax, model.SectionDescription, model.SectionUsageContext,
		model.SectionUsageGuidelines, model.SectionChecklist, model.SectionOptions,
		model.SectionTroubleshooting, model.SectionSecurity, model.SectionNotes,
		model.SectionExamples,
	}
	for _, k := range keys {
		a := Accent(k)
		if a.Icon == "" || a.Icon == "-" {
			t.Errorf("Accent(%q) has no icon", k)
		}
	}
	if Accent(model.SectionSyntax).Color != Blue {
		t.Error("syntax should be blue")
	}
	if Accent(model.SectionSecurity).Color != Red {
		t.Error("security should be red")
	}
	if got := Accent("unknown"); got.Color != TextSecondary {
		t.Errorf("Accent(unknown) = %+v", got)
	}
}

func TestSectionHeading(t *testing.T) {
	got := SectionHeading(model.SectionOptions, "Options & Parameters")
	if !strings.Contains(got, "OPTIONS & PARAMETERS") {
		t.Errorf("SectionHeading = %q, want upper-case title", got)
	}
	if !strings.Contains(got, "::") {
		t.Errorf("SectionHeading = %q, want icon", got)
	}
}

func TestUpperTitle(t *testing.T) {
	if got := UpperTitle("Usage Context"); got != "USAGE CONTEXT" {
		t.Errorf("UpperTitle = %q", got)
	}
}

func TestDeviceColor(t *testing.T) {
	if DeviceColor("switch") != Teal {
		t.Error("switch should be teal")
	}
	if DeviceColor(model.DeviceRouter) != Indigo {
		t.Error("router should be indigo")
	}
	if DeviceColor("firewall") != Purple {
		t.Error("unknown devices are universal")
	}
}

// =============================================================================
// STATUS RENDER TESTS
// =============================================================================

func TestRenderStatusHelpers(t *testing.T) {
	tests := []struct {
		name      string
		fn        func(string) string
		indicator string
	}{
		{"success", RenderSuccess, StatusIndicators.Success},
		{"error", RenderError, StatusIndicators.Error},
		{"warning", RenderWarning, StatusIndicators.Warning},
		{"info", RenderInfo, StatusIndicators.Info},
	}
	for _, tt := range tests {
		got := tt.fn("saved")
		if !strings.Contains(got, tt.indicator) || !strings.Contains(got, "saved") {
			t.Errorf("%s: %q missing indicator or message", tt.name, got)
		}
	}
	if !strings.Contains(RenderLink("docs"), "docs") {
		t.Error("RenderLink dropped its text")
	}
}
