// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/model"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/storage"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports transcripts to Markdown.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a snapshot to Markdown. Answer fields are already
// Markdown, so they are written through unchanged.
func (e *MarkdownExporter) Export(snap storage.Snapshot) ([]byte, error) {
	if len(snap.Messages) == 0 {
		return nil, fmt.Errorf("transcript has no messages")
	}

	var sb strings.Builder

	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		sb.WriteString(fmt.Sprintf("title: %s\n", escapeYAML("Cisco CLI Expert transcript")))
		sb.WriteString(fmt.Sprintf("messages: %d\n", len(snap.Messages)))
		sb.WriteString(fmt.Sprintf("exported: %s\n", e.options.clock().Format(time.RFC3339)))
		sb.WriteString("generator: ciscocli\n")
		sb.WriteString("---\n\n")
	}

	sb.WriteString("# Cisco CLI Expert transcript\n\n")

	for i, msg := range snap.Messages {
		if e.options.IncludeTimestamps {
			sb.WriteString(fmt.Sprintf("## %s <sub>%s</sub>\n\n", msg.Role.DisplayName(), formatShortTimestamp(msg.Time())))
		} else {
			sb.WriteString(fmt.Sprintf("## %s\n\n", msg.Role.DisplayName()))
		}

		if msg.HasImage() {
			sb.WriteString("*[image attached]*\n\n")
		}
		if msg.Attachment != "" {
			sb.WriteString("*[file attached]*\n\n")
		}

		if msg.Metadata != nil {
			sb.WriteString(e.formatResponse(msg.Metadata))
		} else {
			sb.WriteString(strings.TrimSpace(msg.Content))
			sb.WriteString("\n\n")
		}

		if i < len(snap.Messages)-1 {
			sb.WriteString("---\n\n")
		}
	}

	if len(snap.Suggestions) > 0 {
		sb.WriteString("\n## Suggestions\n\n")
		for _, s := range snap.Suggestions {
			sb.WriteString("- " + s + "\n")
		}
	}

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// =============================================================================
// FORMATTING HELPERS
// =============================================================================

// formatResponse renders an answer card as Markdown sections.
func (e *MarkdownExporter) formatResponse(r *model.CiscoQueryResponse) string {
	var sb strings.Builder

	if r.Correction != "" {
		sb.WriteString(fmt.Sprintf("> **Did you mean:** `%s`\n\n", r.Correction))
	}
	if r.IsOutOfScope {
		sb.WriteString("> **Out of scope.** " + strings.TrimSpace(r.Reasoning) + "\n\n")
		return sb.String()
	}
	if e.options.IncludeReasoning && strings.TrimSpace(r.Reasoning) != "" {
		sb.WriteString("**Analysis & Reasoning**\n\n")
		sb.WriteString(strings.TrimSpace(r.Reasoning) + "\n\n")
	}

	if !r.Technical() {
		sb.WriteString(strings.TrimSpace(r.GeneralAnswer) + "\n\n")
	} else {
		var badges []string
		if r.DeviceCategory != "" {
			badges = append(badges, "`"+string(r.DeviceCategory)+"`")
		}
		if mode := strings.TrimSpace(r.CommandMode); mode != "" {
			badges = append(badges, "`"+mode+"`")
		}
		if len(badges) > 0 {
			sb.WriteString(strings.Join(badges, " ") + "\n\n")
		}
	}

	for _, sec := range r.Sections() {
		sb.WriteString(fmt.Sprintf("### %s\n\n", escapeMarkdown(sec.Title)))
		if sec.Code {
			sb.WriteString("```\n" + strings.TrimRight(sec.Body, "\n") + "\n```\n\n")
		} else {
			sb.WriteString(strings.TrimSpace(sec.Body) + "\n\n")
		}
	}

	if len(r.Sources) > 0 {
		sb.WriteString("### Sources\n\n")
		for _, src := range r.Sources {
			sb.WriteString(fmt.Sprintf("- [%s](%s)\n", escapeMarkdown(src.Title), src.URI))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// =============================================================================
// ESCAPING HELPERS
// =============================================================================

// escapeMarkdown escapes special Markdown characters in plain text.
func escapeMarkdown(s string) string {
	// Only characters that break headings and link text
	s = strings.ReplaceAll(s, "#", "\\#")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "[", "\\[")
	s = strings.ReplaceAll(s, "]", "\\]")
	return s
}

// escapeYAML quotes a front-matter value.
func escapeYAML(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return "\"" + s + "\""
}
