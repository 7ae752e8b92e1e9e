// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/format"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/ui/styles"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/util"
)

// =============================================================================
// FORMATTED TEXT RENDERER
// =============================================================================

// RenderText formats raw model text and renders it. Placeholders ("N/A",
// blank) render as "".
func RenderText(raw string, theme *styles.Theme, width int) string {
	return RenderLines(format.Format(raw), theme, width)
}

// RenderLines maps formatted lines onto terminal styles. Spacers become
// blank rows; bullet continuation rows hang under the bullet text.
// width <= 0 disables wrapping.
func RenderLines(lines []format.Line, theme *styles.Theme, width int) string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line.IsSpacer() {
			out = append(out, "")
			continue
		}
		out = append(out, renderLine(line, theme, width))
	}
	return strings.Join(out, "\n")
}

func renderLine(line format.Line, theme *styles.Theme, width int) string {
	var sb strings.Builder
	for _, seg := range line.Segments {
		sb.WriteString(RenderSegment(seg, theme))
	}
	body := sb.String()

	prefix := format.BulletPrefix(line.Bullet)
	prefixWidth := util.StringWidth(prefix)
	if avail := width - prefixWidth; width > 0 && avail > 0 {
		// Word wrap first, then hard-wrap words longer than the line (URLs).
		body = wrap.String(wordwrap.String(body, avail), avail)
	}
	if prefix == "" {
		return body
	}

	rows := strings.Split(body, "\n")
	pad := strings.Repeat(" ", prefixWidth)
	for i := range rows {
		if i == 0 {
			rows[i] = theme.Bullet.Render(prefix) + rows[i]
		} else {
			rows[i] = pad + rows[i]
		}
	}
	return strings.Join(rows, "\n")
}

// RenderSegment styles one inline segment.
func RenderSegment(seg format.Segment, theme *styles.Theme) string {
	switch seg.Kind {
	case format.KindBold:
		return theme.Bold.Render(seg.Value)
	case format.KindItalic:
		return theme.Italic.Render(seg.Value)
	case format.KindCode:
		return theme.InlineCode.Render(seg.Value)
	case format.KindLineBreak:
		return "\n"
	default:
		return theme.Text.Render(seg.Value)
	}
}
