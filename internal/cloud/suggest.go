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

// suggestionContext is how many recent prompts seed the suggestion prompt.
const suggestionContext = 5

var suggestionSchema = &schema{Type: "ARRAY", Items: &schema{Type: "STRING"}}

// Suggestions proposes follow-up topics based on recent prompts (oldest
// first). On any failure it returns a copy of model.DefaultSuggestions
// together with the error, so callers can always render something.
func (c *Client) Suggestions(ctx context.Context, history []string) ([]string, error) {
	got, err := c.suggestions(ctx, history)
	if err != nil {
		return DefaultSuggestions(), err
	}
	return got, nil
}

// DefaultSuggestions returns a copy of the starter prompts.
func DefaultSuggestions() []string {
	return append([]string(nil), model.DefaultSuggestions...)
}

func (c *Client) suggestions(ctx context.Context, history []string) ([]string, error) {
	if len(history) > suggestionContext {
		history = history[len(history)-suggestionContext:]
	}

	prompt := "Suggest 4 core Cisco CLI topics (VLANs, OSPF, BGP, SSH)."
	if len(history) > 0 {
		prompt = fmt.Sprintf("Based on these Cisco queries: [%s], suggest 4 relevant commands/topics under 30 chars.", strings.Join(history, ", "))
	}

	body := &generateRequest{
		Contents:          []content{textContent("user", prompt)},
		SystemInstruction: &content{Parts: []part{{Text: "Return a JSON array of 4 strings."}}},
		GenerationConfig: &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   suggestionSchema,
		},
	}

	resp, err := c.generate(ctx, model.SuggestionModelID, body)
	if err != nil {
		return nil, err
	}

	text := stripCodeFence(resp.text())
	if text == "" {
		return nil, ErrEmptyResponse
	}
	var raw []string
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse suggestions: %w", err)
	}

	out := make([]string, 0, model.MaxSuggestions)
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
		if len(out) == model.MaxSuggestions {
			break
		}
	}
	if len(out) == 0 {
		return nil, ErrEmptyResponse
	}
	return out, nil
}
