// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/model"
)

// =============================================================================
// PROMPTS
// =============================================================================

// SearchPrefix is prepended to the query when research mode forces search.
const SearchPrefix = "STRICT TECHNICAL SEARCH REQUIRED: Deep dive into Cisco documentation for syntax, security hardening, and troubleshooting: "

// ThinkingBudget is the thinking token budget granted to complex queries.
const ThinkingBudget = 12000

// complexQueryLength is the query length above which a query is complex.
const complexQueryLength = 80

// SystemInstruction primes the model as a Cisco CLI reference.
const SystemInstruction = `You are Cisco CLI Expert, a technical documentation assistant for Cisco IOS, IOS XE and IOS XR.

RESEARCH:
- When a command, sub-command or keyword is ambiguous, use Google Search to find the official Cisco configuration guides, command references or white papers.
- Call out differences between IOS XE and IOS XR explicitly.
- Put the titles and URLs of the pages you used into the response sources.

CONFIGURATION CHECKLIST:
- Always fill 'checklist' with a bulleted, step-by-step list: prerequisites (for example ` + "`ip routing`" + `), commands that must be entered first, and post-configuration verification.

SECURITY:
- Always fill 'security'. Flag deprecated or insecure features (Telnet, HTTP, clear-text SNMP), suggest hardening ('secret' instead of 'password', management access-lists) and mention CoPP or CPU impact for debug commands.

TROUBLESHOOTING:
- Always fill 'troubleshooting' with common error messages and a bulleted list of show and debug commands.

CORRECTION:
- Detect typos in CLI commands and put the corrected command in 'correction'.

IMAGES AND FILES:
- If an image or file is attached, analyse it for CLI output, log messages, configuration or topology.

SCOPE:
- Set 'isTechnicalQuestion' to false for conceptual questions and answer them in 'generalAnswer' as markdown.
- Set 'isOutOfScope' to true when the question is unrelated to Cisco networking, explain why in 'reasoning' and use "N/A" for the other fields.

FORMATTING:
- In description, usageContext, checklist, options, notes, troubleshooting and security, wrap every CLI command, keyword and variable in backticks.
- Use **bold** for headings. checklist, options, troubleshooting and security are bulleted lists.
- syntax and examples are plain text using standard CLI prompts such as Router(config)#.
- Use "N/A" for a field that does not apply.
- Always return a JSON object.`

// responseSchema mirrors model.CiscoQueryResponse.
var responseSchema = &schema{
	Type: "OBJECT",
	Properties: map[string]*schema{
		"reasoning":           {Type: "STRING"},
		"isTechnicalQuestion": {Type: "BOOLEAN"},
		"generalAnswer":       {Type: "STRING"},
		"deviceCategory":      {Type: "STRING"},
		"commandMode":         {Type: "STRING"},
		"syntax":              {Type: "STRING"},
		"description":         {Type: "STRING"},
		"usageContext":        {Type: "STRING"},
		"usageGuidelines":     {Type: "STRING"},
		"checklist":           {Type: "STRING"},
		"options":             {Type: "STRING"},
		"troubleshooting":     {Type: "STRING"},
		"security":            {Type: "STRING"},
		"notes":               {Type: "STRING"},
		"examples":            {Type: "STRING"},
		"correction":          {Type: "STRING"},
		"isOutOfScope":        {Type: "BOOLEAN"},
	},
	Required: model.RequiredFields,
}

// =============================================================================
// QUERY
// =============================================================================

// QueryRequest is one question for the model.
type QueryRequest struct {
	Query string

	// ImageBase64 is an attached image, either bare base64 or a data URL.
	ImageBase64 string

	// Attachment is the content of an attached text file.
	Attachment     string
	AttachmentName string

	// Model is a catalogue ID; empty selects model.DefaultModelID.
	Model string

	// ForceSearch enables research mode.
	ForceSearch bool
}

// IsComplex reports whether a query deserves a thinking budget.
func IsComplex(query string, forceSearch bool) bool {
	if forceSearch || len(query) > complexQueryLength {
		return true
	}
	lower := strings.ToLower(query)
	return strings.Contains(lower, "design") || strings.Contains(lower, "troubleshoot")
}

// StripDataURL removes a "data:<mime>;base64," prefix.
func StripDataURL(data string) string {
	if strings.HasPrefix(data, "data:") {
		if i := strings.Index(data, ","); i >= 0 {
			return data[i+1:]
		}
	}
	return data
}

// buildQueryRequest assembles the generateContent body for req.
func buildQueryRequest(req QueryRequest, modelID string) (*generateRequest, error) {
	query := strings.TrimSpace(req.Query)
	hasAttachment := strings.TrimSpace(req.Attachment) != "" || req.ImageBase64 != ""
	if query == "" {
		if !hasAttachment {
			return nil, fmt.Errorf("%w: query is required", ErrInvalidRequest)
		}
		query = model.AttachedFilePlaceholder
	}

	prompt := query
	if req.ForceSearch {
		prompt = SearchPrefix + query
	}
	if att := strings.TrimSpace(req.Attachment); att != "" {
		name := req.AttachmentName
		if name == "" {
			name = "attachment"
		}
		prompt += fmt.Sprintf("\n\nAttached file %s:\n```\n%s\n```", name, att)
	}

	parts := []part{{Text: prompt}}
	if req.ImageBase64 != "" {
		parts = append(parts, part{InlineData: &inlineData{
			MimeType: "image/jpeg",
			Data:     StripDataURL(req.ImageBase64),
		}})
	}

	out := &generateRequest{
		Contents:          []content{{Role: "user", Parts: parts}},
		SystemInstruction: &content{Parts: []part{{Text: SystemInstruction}}},
		GenerationConfig: &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   responseSchema,
		},
	}

	if strings.Contains(modelID, "pro") || req.ForceSearch {
		out.Tools = []tool{{GoogleSearch: &struct{}{}}}
	}
	if (strings.Contains(modelID, "pro") || strings.Contains(modelID, "flash")) && IsComplex(query, req.ForceSearch) {
		out.GenerationConfig.ThinkingConfig = &thinkingConfig{ThinkingBudget: ThinkingBudget}
	}
	return out, nil
}

// Query asks the model about a Cisco command and returns the structured card.
func (c *Client) Query(ctx context.Context, req QueryRequest) (*model.CiscoQueryResponse, error) {
	modelID := req.Model
	if modelID == "" {
		modelID = model.DefaultModelID
	}
	info, ok := model.LookupModel(modelID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, modelID)
	}

	body, err := buildQueryRequest(req, info.ID)
	if err != nil {
		return nil, err
	}

	resp, err := c.generate(ctx, info.ID, body)
	if err != nil {
		return nil, err
	}
	return parseQueryResponse(resp)
}

// parseQueryResponse decodes the JSON answer and attaches grounding sources.
func parseQueryResponse(resp *generateResponse) (*model.CiscoQueryResponse, error) {
	text := stripCodeFence(resp.text())
	if text == "" {
		if reason := resp.blockReason(); reason != "" {
			return nil, fmt.Errorf("%w: %s", ErrEmptyResponse, reason)
		}
		return nil, ErrEmptyResponse
	}

	var out model.CiscoQueryResponse
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("failed to parse query response: %w", err)
	}
	out.Normalize()

	if sources := groundingSources(resp); len(sources) > 0 {
		out.Sources = sources
	}
	return &out, nil
}

// groundingSources collects the web chunks, de-duplicated by URI.
func groundingSources(resp *generateResponse) []model.GroundingSource {
	if len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	var (
		out  []model.GroundingSource
		seen = make(map[string]bool)
	)
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk.Web == nil || chunk.Web.URI == "" || seen[chunk.Web.URI] {
			continue
		}
		seen[chunk.Web.URI] = true
		title := chunk.Web.Title
		if title == "" {
			title = chunk.Web.URI
		}
		out = append(out, model.GroundingSource{Title: title, URI: chunk.Web.URI})
	}
	return out
}

// stripCodeFence removes a ```json fence some models wrap JSON in.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
