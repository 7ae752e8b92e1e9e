// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

type rendererKey struct {
	width int
	dark  bool
}

var (
	renderersMu sync.Mutex
	renderers   = map[rendererKey]*glamour.TermRenderer{}
)

// markdownRenderer returns a cached glamour renderer for width.
// PERFORMANCE: Renderers are expensive to build; resizes reuse them.
func markdownRenderer(width int, dark bool) (*glamour.TermRenderer, error) {
	key := rendererKey{width: width, dark: dark}

	renderersMu.Lock()
	defer renderersMu.Unlock()
	if r, ok := renderers[key]; ok {
		return r, nil
	}

	style := "light"
	if dark {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	renderers[key] = r
	return r, nil
}

// RenderMarkdown renders a general (non-technical) answer. The original
// text is returned if glamour fails.
func RenderMarkdown(content string, width int, dark bool) string {
	if width <= 0 {
		width = 80
	}
	r, err := markdownRenderer(width, dark)
	if err != nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}
