// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the ciscocli TUI.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection. NewTheme can also force a mode from the [ui] theme setting.

# Color System (colors.go)

  - Cyan - Brand color, prompts
  - Blue, Indigo, Teal - Syntax, descriptions, usage context
  - Amber, Orange - Options, troubleshooting, research mode
  - Red, Rose - Security, notes, errors
  - Emerald - Examples, success

# Result Card Sections (sections.go)

Each response section has an accent color and a short glyph:

	styles.SectionHeading(model.SectionSyntax, "Command Syntax")
	// ">_  COMMAND SYNTAX" in blue

# Usage

	theme := styles.NewTheme(cfg.UI.Theme)
	theme.SetSize(width, height)
	header := theme.Header.Width(width).Render(title)
*/
package styles
