// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes the chat transcript to Markdown, JSON or YAML.
//
// # Key Types
//
//   - Format: export format (markdown, json, yaml)
//   - Exporter: converts a storage.Snapshot to bytes
//   - Options: header, timestamp and reasoning toggles
//
// # Usage
//
//	path, err := export.ExportToFile(snap, "~/vlan-notes.md", "")
//
//	err := export.Export(os.Stdout, snap, export.FormatYAML)
package export
