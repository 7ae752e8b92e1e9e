// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/storage"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/util"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter converts a transcript snapshot to a document format.
type Exporter interface {
	// Export renders the snapshot.
	Export(snap storage.Snapshot) ([]byte, error)

	// FileExtension returns the file extension, e.g. ".md".
	FileExtension() string

	// MimeType returns the MIME type of the output.
	MimeType() string
}

// Format names an export format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

// Formats lists the supported formats.
var Formats = []Format{FormatMarkdown, FormatJSON, FormatYAML}

// ParseFormat accepts a format name or a common alias ("md", "yml").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markdown", "md", "":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (want markdown, json or yaml)", s)
	}
}

// FormatFromPath guesses the format from a file extension, defaulting to
// Markdown.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatMarkdown
	}
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// IncludeMetadata adds a front-matter header with export details.
	IncludeMetadata bool

	// IncludeTimestamps adds per-message times.
	IncludeTimestamps bool

	// IncludeReasoning adds the model's analysis to assistant answers.
	IncludeReasoning bool

	// now is overridable for tests.
	now func() time.Time
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		IncludeMetadata:   true,
		IncludeTimestamps: true,
		IncludeReasoning:  false,
	}
}

func (o *Options) clock() time.Time {
	if o.now != nil {
		return o.now()
	}
	return time.Now()
}

// New returns the exporter for format.
func New(format Format, opts *Options) (Exporter, error) {
	switch format {
	case FormatMarkdown:
		return NewMarkdownExporter(opts), nil
	case FormatJSON:
		return NewJSONExporter(opts), nil
	case FormatYAML:
		return NewYAMLExporter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// Export writes snap to w in the given format.
func Export(w io.Writer, snap storage.Snapshot, format Format) error {
	exporter, err := New(format, nil)
	if err != nil {
		return err
	}
	content, err := exporter.Export(snap)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	_, err = io.Copy(w, bytes.NewReader(content))
	return err
}

// ExportToFile writes snap to path. An empty format is inferred from the
// extension. Returns the expanded output path.
func ExportToFile(snap storage.Snapshot, path string, format Format) (string, error) {
	path, err := util.ExpandPath(path)
	if err != nil {
		return "", err
	}
	if path == "" {
		return "", fmt.Errorf("export path is empty")
	}
	if format == "" {
		format = FormatFromPath(path)
	}

	var buf bytes.Buffer
	if err := Export(&buf, snap, format); err != nil {
		return "", err
	}
	// RELIABILITY: Atomic write with fsync prevents data loss on crash
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return path, nil
}

// DefaultFileName builds a file name such as "cisco_transcript_20250101_150405.md".
func DefaultFileName(format Format, now time.Time) string {
	ext := ".md"
	switch format {
	case FormatJSON:
		ext = ".json"
	case FormatYAML:
		ext = ".yaml"
	}
	return fmt.Sprintf("cisco_transcript_%s%s", now.Format("20060102_150405"), ext)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// formatShortTimestamp formats a timestamp for inline display.
func formatShortTimestamp(t time.Time) string {
	return t.Format("15:04:05")
}
