// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/model"
)

// BuildPromptHistory extracts the recallable prompts from a transcript.
//
// Only user messages are considered. Contents are trimmed; empty prompts and
// the attachment placeholder are dropped. Duplicates (compared after NFC
// normalisation) keep their most recent position, so a re-asked prompt is
// recalled first. The result is in submission order, oldest first.
func BuildPromptHistory(messages []model.ChatMessage) []string {
	seen := make(map[string]bool)
	reversed := make([]string, 0, len(messages))

	// Walk backwards so the first occurrence seen is the most recent one.
	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		if msg.Role != model.RoleUser {
			continue
		}
		prompt := strings.TrimSpace(msg.Content)
		if prompt == "" || strings.EqualFold(prompt, model.AttachedFilePlaceholder) {
			continue
		}
		key := norm.NFC.String(prompt)
		if seen[key] {
			continue
		}
		seen[key] = true
		reversed = append(reversed, prompt)
	}

	out := make([]string, len(reversed))
	for i, p := range reversed {
		out[len(reversed)-1-i] = p
	}
	return out
}

// Recent returns up to n prompts, most recent first.
func Recent(history []string, n int) []string {
	if n <= 0 || len(history) == 0 {
		return nil
	}
	if n > len(history) {
		n = len(history)
	}
	out := make([]string, 0, n)
	for i := len(history) - 1; i >= len(history)-n; i-- {
		out = append(out, history[i])
	}
	return out
}
