// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"gopkg.in/yaml.v3"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/model"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/storage"
)

// =============================================================================
// YAML EXPORTER
// =============================================================================

// YAMLExporter exports transcripts to YAML for reading and diffing. Image
// payloads are replaced by a flag.
type YAMLExporter struct {
	options *Options
}

type yamlDocument struct {
	Generator   string        `yaml:"generator,omitempty"`
	Exported    string        `yaml:"exported,omitempty"`
	Messages    []yamlMessage `yaml:"messages"`
	Suggestions []string      `yaml:"suggestions,omitempty"`
}

type yamlMessage struct {
	ID       string        `yaml:"id"`
	Role     model.Role    `yaml:"role"`
	Time     string        `yaml:"time,omitempty"`
	Content  string        `yaml:"content"`
	Image    bool          `yaml:"image,omitempty"`
	File     bool          `yaml:"file,omitempty"`
	Error    bool          `yaml:"error,omitempty"`
	Response *yamlResponse `yaml:"response,omitempty"`
}

type yamlResponse struct {
	DeviceCategory string            `yaml:"device_category,omitempty"`
	CommandMode    string            `yaml:"command_mode,omitempty"`
	Correction     string            `yaml:"correction,omitempty"`
	OutOfScope     bool              `yaml:"out_of_scope,omitempty"`
	Reasoning      string            `yaml:"reasoning,omitempty"`
	GeneralAnswer  string            `yaml:"general_answer,omitempty"`
	Sections       map[string]string `yaml:"sections,omitempty"`
	Sources        []yamlSource      `yaml:"sources,omitempty"`
}

type yamlSource struct {
	Title string `yaml:"title"`
	URI   string `yaml:"uri"`
}

// NewYAMLExporter creates a new YAML exporter.
func NewYAMLExporter(opts *Options) *YAMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &YAMLExporter{options: opts}
}

// Export converts a snapshot to YAML.
func (e *YAMLExporter) Export(snap storage.Snapshot) ([]byte, error) {
	doc := yamlDocument{
		Messages:    make([]yamlMessage, 0, len(snap.Messages)),
		Suggestions: snap.Suggestions,
	}
	if e.options.IncludeMetadata {
		doc.Generator = "ciscocli"
		doc.Exported = e.options.clock().UTC().Format("2006-01-02T15:04:05Z")
	}

	for _, msg := range snap.Messages {
		ym := yamlMessage{
			ID:      msg.ID,
			Role:    msg.Role,
			Content: msg.Content,
			Image:   msg.HasImage(),
			File:    msg.Attachment != "",
			Error:   msg.Error,
		}
		if e.options.IncludeTimestamps && msg.Timestamp > 0 {
			ym.Time = msg.Time().UTC().Format("2006-01-02T15:04:05Z")
		}
		if msg.Metadata != nil {
			ym.Response = e.response(msg.Metadata)
		}
		doc.Messages = append(doc.Messages, ym)
	}

	return yaml.Marshal(doc)
}

func (e *YAMLExporter) response(r *model.CiscoQueryResponse) *yamlResponse {
	out := &yamlResponse{
		DeviceCategory: string(r.DeviceCategory),
		CommandMode:    r.CommandMode,
		Correction:     r.Correction,
		OutOfScope:     r.IsOutOfScope,
		GeneralAnswer:  r.GeneralAnswer,
	}
	if e.options.IncludeReasoning {
		out.Reasoning = r.Reasoning
	}
	if sections := r.Sections(); len(sections) > 0 {
		out.Sections = make(map[string]string, len(sections))
		for _, sec := range sections {
			out.Sections[sec.Key] = sec.Body
		}
	}
	for _, src := range r.Sources {
		out.Sources = append(out.Sources, yamlSource{Title: src.Title, URI: src.URI})
	}
	return out
}

// FileExtension returns the file extension for YAML.
func (e *YAMLExporter) FileExtension() string {
	return ".yaml"
}

// MimeType returns the MIME type for YAML.
func (e *YAMLExporter) MimeType() string {
	return "application/yaml"
}
