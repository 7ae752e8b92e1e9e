// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package format turns the lightweight markup found in query response fields
// into typed lines and segments that a renderer can style.
//
// The markup is deliberately small: **bold**, *italic*, `code`, dot bullets
// ("- " or "* "), numbered bullets ("1. ") and newlines. It is a flat,
// single pass formatter, not a markdown parser: markers do not nest, and an
// unpaired marker is kept as literal text.
//
// # Key Types
//
//   - Line: one rendered row with an optional BulletMarker
//   - Segment: one inline run of text, bold, italic, code or a line break
//   - BulletMarker: dot or ordinal bullet metadata
//
// # Usage
//
//	lines := format.Format(resp.Options)
//	for _, line := range lines {
//		if line.IsSpacer() {
//			// vertical space
//			continue
//		}
//		for _, seg := range line.Segments {
//			switch seg.Kind {
//			case format.KindBold:
//				// ...
//			}
//		}
//	}
//
// Format is pure and total: it never returns an error and never panics.
package format
