// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/model"
)

// =============================================================================
// RESULT CARD SECTIONS
// =============================================================================

// SectionAccent is the color and glyph of one result card section.
type SectionAccent struct {
	Color lipgloss.AdaptiveColor
	Icon  string
}

var sectionAccents = map[string]SectionAccent{
	model.SectionSyntax:          {Blue, ">_"},
	model.SectionDescription:     {Indigo, "i"},
	model.SectionUsageContext:    {Teal, "@"},
	model.SectionUsageGuidelines: {Teal, "#"},
	model.SectionChecklist:       {Cyan, "[v]"},
	model.SectionOptions:         {Amber, "::"},
	model.SectionTroubleshooting: {Orange, "?!"},
	model.SectionSecurity:        {Red, "[#]"},
	model.SectionNotes:           {Rose, "*"},
	model.SectionExamples:        {Emerald, "{}"},
}

// Accent returns the accent for a section key, falling back to muted text.
func Accent(key string) SectionAccent {
	if a, ok := sectionAccents[key]; ok {
		return a
	}
	return SectionAccent{Color: TextSecondary, Icon: "-"}
}

// SectionHeading renders "ICON  TITLE" in the section's accent color.
func SectionHeading(key, title string) string {
	a := Accent(key)
	return lipgloss.NewStyle().Foreground(a.Color).Bold(true).
		Render(a.Icon + "  " + UpperTitle(title))
}

// DeviceColor returns the badge color for a device category.
func DeviceColor(d model.DeviceCategory) lipgloss.AdaptiveColor {
	switch d.Normalize() {
	case model.DeviceSwitch:
		return Teal
	case model.DeviceRouter:
		return Indigo
	default:
		return Purple
	}
}

// UpperTitle upper-cases a heading. A Caser holds state, so each call gets
// its own.
func UpperTitle(s string) string {
	return cases.Upper(language.English).String(s)
}
