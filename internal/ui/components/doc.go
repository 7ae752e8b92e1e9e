// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the visual building blocks of the ciscocli TUI.

# Core Components

## Formatted Text

RenderLines (lines.go) - Styles format.Line output (bold, italic, code,
bullets, spacers) and word-wraps it with reflow.

## Answers

ResultCard (card.go) - Correction banner, reasoning toggle, device and mode
badges, sections, sources. General answers go through glamour.
CodeBlock (codeblock.go) - Chroma highlighting with a Cisco IOS lexer.
MessageBubble (message.go) - One transcript entry.

## Chrome

Header (header.go), StatusBar (statusbar.go), Welcome (welcome.go),
InputArea (input.go) with prompt history recall, Toast (toast.go).

# Usage

	card := components.NewResultCard(resp, theme, width)
	fmt.Println(card.Render())
*/
package components
