// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"time"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/model"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/storage"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports transcripts to JSON.
// NOTE: JSON exports always carry the complete message structure, images
// included, so they can be re-imported. Options only control the header.
type JSONExporter struct {
	options *Options
}

// jsonDocument is the exported layout. Messages use the persisted format.
type jsonDocument struct {
	Generator   string              `json:"generator,omitempty"`
	Exported    *time.Time          `json:"exported,omitempty"`
	Messages    []model.ChatMessage `json:"messages"`
	Suggestions []string            `json:"suggestions,omitempty"`
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

// Export converts a snapshot to indented JSON.
func (e *JSONExporter) Export(snap storage.Snapshot) ([]byte, error) {
	doc := jsonDocument{
		Messages:    snap.Messages,
		Suggestions: snap.Suggestions,
	}
	if doc.Messages == nil {
		doc.Messages = []model.ChatMessage{}
	}
	if e.options.IncludeMetadata {
		now := e.options.clock().UTC()
		doc.Generator = "ciscocli"
		doc.Exported = &now
	}
	return json.MarshalIndent(doc, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
