// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// DEVICE CATEGORY
// =============================================================================

// DeviceCategory is the platform class a command applies to.
type DeviceCategory string

const (
	DeviceSwitch    DeviceCategory = "Switch"
	DeviceRouter    DeviceCategory = "Router"
	DeviceUniversal DeviceCategory = "Universal"
)

// Normalize maps unknown or differently cased values onto a known category.
// Anything unrecognised is Universal.
func (d DeviceCategory) Normalize() DeviceCategory {
	switch strings.ToLower(strings.TrimSpace(string(d))) {
	case "switch":
		return DeviceSwitch
	case "router":
		return DeviceRouter
	default:
		return DeviceUniversal
	}
}

// =============================================================================
// QUERY RESPONSE
// =============================================================================

// GroundingSource is a web page the answer was grounded on.
type GroundingSource struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// CiscoQueryResponse is the structured reference card returned by the model.
// Text fields may contain the lightweight markup understood by the format
// package. "N/A" marks a field the model had nothing for.
type CiscoQueryResponse struct {
	Reasoning           string `json:"reasoning"`
	IsTechnicalQuestion *bool  `json:"isTechnicalQuestion,omitempty"`
	GeneralAnswer       string `json:"generalAnswer,omitempty"`

	Syntax          string `json:"syntax"`
	Description     string `json:"description"`
	UsageContext    string `json:"usageContext"`
	UsageGuidelines string `json:"usageGuidelines,omitempty"`
	Checklist       string `json:"checklist"`
	Options         string `json:"options"`
	Troubleshooting string `json:"troubleshooting"`
	Security        string `json:"security"`
	Notes           string `json:"notes"`
	Examples        string `json:"examples"`

	DeviceCategory DeviceCategory `json:"deviceCategory"`
	CommandMode    string         `json:"commandMode"`

	Correction   string            `json:"correction,omitempty"`
	Sources      []GroundingSource `json:"sources,omitempty"`
	IsOutOfScope bool              `json:"isOutOfScope,omitempty"`
}

// Technical reports whether the response is a command reference. A response
// without the flag is treated as technical.
func (r *CiscoQueryResponse) Technical() bool {
	return r.IsTechnicalQuestion == nil || *r.IsTechnicalQuestion
}

// Section keys, in display order.
const (
	SectionSyntax          = "syntax"
	SectionDescription     = "description"
	SectionUsageContext    = "usageContext"
	SectionUsageGuidelines = "usageGuidelines"
	SectionChecklist       = "checklist"
	SectionOptions         = "options"
	SectionTroubleshooting = "troubleshooting"
	SectionSecurity        = "security"
	SectionNotes           = "notes"
	SectionExamples        = "examples"
)

// Section is one renderable field of a response.
type Section struct {
	Key   string
	Title string
	Body  string

	// Code marks fields shown verbatim in a code block instead of being
	// run through the formatter.
	Code bool
}

// Sections returns the renderable fields in display order. Empty fields and
// "N/A" placeholders are skipped.
func (r *CiscoQueryResponse) Sections() []Section {
	if r == nil {
		return nil
	}
	all := []Section{
		{Key: SectionSyntax, Title: "Command Syntax", Body: r.Syntax, Code: true},
		{Key: SectionDescription, Title: "Description", Body: r.Description},
		{Key: SectionUsageContext, Title: "Usage Context", Body: r.UsageContext},
		{Key: SectionUsageGuidelines, Title: "Usage Guidelines", Body: r.UsageGuidelines},
		{Key: SectionChecklist, Title: "Configuration Checklist", Body: r.Checklist},
		{Key: SectionOptions, Title: "Options & Parameters", Body: r.Options},
		{Key: SectionTroubleshooting, Title: "Troubleshooting & Verification", Body: r.Troubleshooting},
		{Key: SectionSecurity, Title: "Security Considerations", Body: r.Security},
		{Key: SectionNotes, Title: "Notes & Caveats", Body: r.Notes},
		{Key: SectionExamples, Title: "Examples", Body: r.Examples, Code: true},
	}

	out := make([]Section, 0, len(all))
	for _, s := range all {
		if isBlank(s.Body) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Section returns the section with the given key, if it is renderable.
func (r *CiscoQueryResponse) Section(key string) (Section, bool) {
	for _, s := range r.Sections() {
		if s.Key == key {
			return s, true
		}
	}
	return Section{}, false
}

// isBlank mirrors format.IsPlaceholder without importing the formatter.
func isBlank(s string) bool {
	t := strings.TrimSpace(s)
	return t == "" || strings.EqualFold(t, "N/A")
}

// =============================================================================
// VALIDATION
// =============================================================================

// ErrInvalidResponse is returned by Validate when required fields are missing.
var ErrInvalidResponse = errors.New("invalid query response")

// RequiredFields lists the fields the response schema marks as required.
var RequiredFields = []string{
	"reasoning", "deviceCategory", "commandMode", "syntax", "description",
	"usageContext", "checklist", "options", "troubleshooting", "security",
	"notes", "examples",
}

// Validate reports the required fields that are missing. Out-of-scope and
// non-technical answers only need reasoning. "N/A" counts as present.
func (r *CiscoQueryResponse) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil response", ErrInvalidResponse)
	}

	values := map[string]string{
		"reasoning":       r.Reasoning,
		"deviceCategory":  string(r.DeviceCategory),
		"commandMode":     r.CommandMode,
		"syntax":          r.Syntax,
		"description":     r.Description,
		"usageContext":    r.UsageContext,
		"checklist":       r.Checklist,
		"options":         r.Options,
		"troubleshooting": r.Troubleshooting,
		"security":        r.Security,
		"notes":           r.Notes,
		"examples":        r.Examples,
	}

	required := RequiredFields
	if r.IsOutOfScope || !r.Technical() {
		required = []string{"reasoning"}
	}

	var missing []string
	for _, field := range required {
		if strings.TrimSpace(values[field]) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidResponse, strings.Join(missing, ", "))
	}
	return nil
}

// Normalize cleans up fields the model is known to return loosely.
func (r *CiscoQueryResponse) Normalize() {
	if r == nil {
		return
	}
	r.DeviceCategory = r.DeviceCategory.Normalize()
	r.CommandMode = strings.TrimSpace(r.CommandMode)
	r.Correction = strings.TrimSpace(r.Correction)
	if isBlank(r.Correction) {
		r.Correction = ""
	}
}
