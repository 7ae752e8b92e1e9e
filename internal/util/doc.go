// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across packages.
//
// # Key Functions
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//   - ExpandPath, AppDir, AppPath: "~" expansion and the ~/.ciscocli state directory
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe truncation with ellipsis
//   - TruncateWidth, StringWidth, PadRight: terminal column aware helpers
//
// # Usage
//
//	// Write files atomically to prevent data loss
//	err := util.AtomicWriteFile(util.AppPath("history.json"), data, 0600)
//
//	// Fit a prompt into a status bar
//	label := util.TruncateWidth(prompt, 40)
package util
