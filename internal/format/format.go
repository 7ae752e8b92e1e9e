// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package format

import (
	"regexp"
	"strings"
)

// =============================================================================
// SEGMENT TYPES
// =============================================================================

// Kind identifies the style of a Segment.
type Kind string

const (
	KindText      Kind = "text"
	KindBold      Kind = "bold"
	KindItalic    Kind = "italic"
	KindCode      Kind = "code"
	KindLineBreak Kind = "line-break"
)

// Segment is one styled inline unit. Value is empty for KindLineBreak.
type Segment struct {
	Kind  Kind   `json:"kind"`
	Value string `json:"value,omitempty"`
}

// BulletStyle is the kind of list marker that prefixed a line.
type BulletStyle string

const (
	BulletDot     BulletStyle = "dot"
	BulletOrdinal BulletStyle = "ordinal"
)

// BulletMarker describes a list item. OrdinalText holds the original
// prefix ("2. ") for ordinal bullets and is empty for dot bullets.
type BulletMarker struct {
	Style       BulletStyle `json:"style"`
	OrdinalText string      `json:"ordinalText,omitempty"`
}

// Line is one rendered row.
type Line struct {
	Bullet   *BulletMarker `json:"bulletMarker,omitempty"`
	Segments []Segment     `json:"segments"`
}

// IsSpacer reports whether the line is an empty spacer produced by a blank
// input line.
func (l Line) IsSpacer() bool {
	return l.Bullet == nil && len(l.Segments) == 0
}

// Text returns the concatenated segment values without markers.
func (l Line) Text() string {
	var sb strings.Builder
	for _, seg := range l.Segments {
		sb.WriteString(seg.Value)
	}
	return sb.String()
}

// =============================================================================
// FORMATTER
// =============================================================================

// placeholder is the value the model returns for fields it has nothing for.
const placeholder = "N/A"

// ordinalPrefix matches a numbered bullet such as "1. " or "12.\t".
var ordinalPrefix = regexp.MustCompile(`^\d+\.\s`)

// Format splits raw into classified lines and parses inline markup.
// Empty or whitespace-only input and the "N/A" placeholder produce an
// empty result.
func Format(raw string) []Line {
	if IsPlaceholder(raw) {
		return nil
	}

	physical := strings.Split(raw, "\n")
	lines := make([]Line, 0, len(physical))
	for _, p := range physical {
		lines = append(lines, classify(strings.TrimSuffix(p, "\r")))
	}
	return lines
}

// FormatPtr is Format for optional fields; nil yields an empty result.
func FormatPtr(raw *string) []Line {
	if raw == nil {
		return nil
	}
	return Format(*raw)
}

// IsPlaceholder reports whether s carries no renderable content: it is
// empty, whitespace only, or the "N/A" placeholder in any case.
func IsPlaceholder(s string) bool {
	trimmed := strings.TrimSpace(s)
	return trimmed == "" || strings.EqualFold(trimmed, placeholder)
}

// classify determines the bullet style of a physical line and parses the
// remaining content. Trimming is only used for classification; plain lines
// keep their original spacing.
func classify(physical string) Line {
	trimmed := strings.TrimSpace(physical)

	if prefix := ordinalPrefix.FindString(trimmed); prefix != "" {
		return Line{
			Bullet:   &BulletMarker{Style: BulletOrdinal, OrdinalText: prefix},
			Segments: parseInline(trimmed[len(prefix):]),
		}
	}

	if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
		return Line{
			Bullet:   &BulletMarker{Style: BulletDot},
			Segments: parseInline(trimmed[2:]),
		}
	}

	if trimmed == "" {
		return Line{}
	}

	return Line{Segments: parseInline(physical)}
}

// parseInline scans s left to right. At each position it tries a closed
// "**" pair, then a closed "*" pair, then a closed "`" pair. Anything that
// does not close before the end of s is literal text.
func parseInline(s string) []Segment {
	var (
		segs []Segment
		text strings.Builder
	)

	flush := func() {
		if text.Len() > 0 {
			segs = append(segs, Segment{Kind: KindText, Value: text.String()})
			text.Reset()
		}
	}

	i := 0
	for i < len(s) {
		kind, inner, next, ok := matchPair(s, i)
		if !ok {
			text.WriteByte(s[i])
			i++
			continue
		}
		flush()
		segs = append(segs, Segment{Kind: kind, Value: inner})
		i = next
	}
	flush()

	return segs
}

// matchPair tries to match a marker pair starting at s[i]. It returns the
// segment kind, the text between the markers, and the index just past the
// closing marker. Empty pairs do not match.
func matchPair(s string, i int) (Kind, string, int, bool) {
	switch s[i] {
	case '*':
		if strings.HasPrefix(s[i:], "**") {
			if inner, end, ok := closing(s, i+2, "**"); ok {
				return KindBold, inner, end, true
			}
		}
		if inner, end, ok := closing(s, i+1, "*"); ok {
			return KindItalic, inner, end, true
		}
	case '`':
		if inner, end, ok := closing(s, i+1, "`"); ok {
			return KindCode, inner, end, true
		}
	}
	return "", "", i, false
}

// closing finds the first occurrence of marker at or after start.
func closing(s string, start int, marker string) (string, int, bool) {
	if start > len(s) {
		return "", 0, false
	}
	idx := strings.Index(s[start:], marker)
	if idx <= 0 {
		return "", 0, false
	}
	return s[start : start+idx], start + idx + len(marker), true
}

// =============================================================================
// FLATTENING
// =============================================================================

// Flatten joins lines into a single segment stream separated by line-break
// segments. Bullet prefixes are emitted as text.
func Flatten(lines []Line) []Segment {
	var out []Segment
	for i, line := range lines {
		if i > 0 {
			out = append(out, Segment{Kind: KindLineBreak})
		}
		if prefix := BulletPrefix(line.Bullet); prefix != "" {
			out = append(out, Segment{Kind: KindText, Value: prefix})
		}
		out = append(out, line.Segments...)
	}
	return out
}

// BulletPrefix returns the display prefix for a bullet marker.
func BulletPrefix(b *BulletMarker) string {
	if b == nil {
		return ""
	}
	if b.Style == BulletOrdinal {
		return b.OrdinalText
	}
	return "• "
}

// Plain renders lines as unstyled text, one row per line.
func Plain(lines []Line) string {
	var sb strings.Builder
	for i, line := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(BulletPrefix(line.Bullet))
		sb.WriteString(line.Text())
	}
	return sb.String()
}
