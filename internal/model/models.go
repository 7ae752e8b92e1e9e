// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "strings"

// =============================================================================
// MODEL INFO TYPE
// =============================================================================

// ModelInfo describes a selectable model.
type ModelInfo struct {
	// ID is the model identifier used in API calls
	ID string `json:"id"`

	// Name is the human-readable display name
	Name string `json:"name"`

	// Description is a brief explanation of the model's strengths
	Description string `json:"desc"`
}

// =============================================================================
// MODEL CATALOGUE
// =============================================================================

// Model identifiers.
const (
	ModelPro       = "gemini-3-pro-preview"
	ModelFlash     = "gemini-3-flash-preview"
	ModelFlashLite = "gemini-flash-lite-latest"

	// DefaultModelID is used when no model is configured.
	DefaultModelID = ModelPro

	// SuggestionModelID generates follow-up suggestions.
	SuggestionModelID = ModelFlashLite

	// SpeechModelID synthesises spoken answers.
	SpeechModelID = "gemini-2.5-flash-preview-tts"
)

// Models is the catalogue of selectable models in display order.
var Models = []ModelInfo{
	{ID: ModelPro, Name: "Gemini 3 Pro", Description: "Complex Reasoning & Search"},
	{ID: ModelFlash, Name: "Gemini 3 Flash", Description: "Speed Synthesis"},
	{ID: ModelFlashLite, Name: "Gemini Flash Lite", Description: "Ultra-Low Latency"},
}

// LookupModel finds a model by ID, then by case-insensitive name, then by
// a short alias ("pro", "flash", "lite").
func LookupModel(nameOrID string) (ModelInfo, bool) {
	key := strings.ToLower(strings.TrimSpace(nameOrID))
	if key == "" {
		return ModelInfo{}, false
	}

	for _, m := range Models {
		if m.ID == key {
			return m, true
		}
	}
	for _, m := range Models {
		if strings.ToLower(m.Name) == key {
			return m, true
		}
	}

	switch key {
	case "pro":
		return Models[0], true
	case "flash":
		return Models[1], true
	case "lite", "flash-lite":
		return Models[2], true
	}
	return ModelInfo{}, false
}

// ModelIDs returns the IDs of the catalogue in display order.
func ModelIDs() []string {
	ids := make([]string, 0, len(Models))
	for _, m := range Models {
		ids = append(ids, m.ID)
	}
	return ids
}

// =============================================================================
// SHARED CONSTANTS
// =============================================================================

// DefaultSuggestions are the starter prompts shown on the welcome screen and
// used whenever suggestion generation fails.
var DefaultSuggestions = []string{
	"BGP neighbor configuration",
	"OSPF areas on IOS XR",
	"VLAN interface setup",
	"Show spanning-tree details",
}

// MaxSuggestions is the number of suggestions shown at once.
const MaxSuggestions = 4

// Storage keys shared by every persistence backend.
const (
	StorageKeyHistory     = "cisco_cli_history"
	StorageKeySuggestions = "cisco_cli_suggestions"
)

// SyncFileName is the document name used for cloud sync.
const SyncFileName = "cisco_expert_sync.json"

// AttachedFilePlaceholder is the prompt sent when only an attachment is
// submitted. It is never recalled as prompt history.
const AttachedFilePlaceholder = "analyze attached file"
