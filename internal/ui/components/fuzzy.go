// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"sort"
	"strings"
)

// =============================================================================
// SLASH COMMAND MATCHING
// =============================================================================

// FuzzyMatch reports whether every rune of query appears in target in
// order, case-insensitively, and scores the match (higher is better).
// Consecutive runes, the first rune and runes after a separator score
// extra; longer targets score slightly less.
func FuzzyMatch(query, target string) (score int, matched bool) {
	if query == "" {
		return 0, true
	}

	q := []rune(strings.ToLower(query))
	t := []rune(strings.ToLower(target))
	if len(q) > len(t) {
		return 0, false
	}

	qi, last := 0, -1
	for ti := 0; ti < len(t) && qi < len(q); ti++ {
		if t[ti] != q[qi] {
			continue
		}
		s := 1
		if last == ti-1 {
			s += 5
		}
		if ti == 0 {
			s += 10
		}
		if ti > 0 && strings.ContainsRune(" /-_", t[ti-1]) {
			s += 7
		}
		score += s
		last = ti
		qi++
	}

	if qi != len(q) {
		return 0, false
	}
	return score - len(t)/4, true
}

// CommandHints returns up to max commands matching the word being typed.
// It only fires while input is a single slash word, e.g. "/sp".
func CommandHints(input string, commands []string, max int) []string {
	if !strings.HasPrefix(input, "/") || strings.ContainsAny(input, " \t") {
		return nil
	}
	query := strings.TrimPrefix(input, "/")

	type scored struct {
		cmd   string
		score int
	}
	var matches []scored
	for _, cmd := range commands {
		if score, ok := FuzzyMatch(query, strings.TrimPrefix(cmd, "/")); ok {
			matches = append(matches, scored{cmd, score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	if max > 0 && len(matches) > max {
		matches = matches[:max]
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.cmd
	}
	return out
}
