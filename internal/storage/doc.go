// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists the chat transcript and suggestion list.
//
// Data is kept in a flat key/value store under two keys,
// cisco_cli_history and cisco_cli_suggestions, each holding a JSON
// document. The backend is chosen by the storage.backend setting.
//
// # Key Types
//
//   - HistoryStore: Load/Save/Close over a Snapshot
//   - Snapshot: messages plus suggestions
//   - CorruptError: a stored value that is not valid JSON
//
// # Backends
//
//   - file: one JSON object written atomically (default)
//   - sqlite: kv table in a modernc.org/sqlite database
//   - buntdb: tidwall/buntdb embedded store
//   - memory: process-local, nothing survives exit
//
// # Usage
//
//	store, err := storage.Open(cfg.Storage)
//	snap, err := store.Load(ctx)
//	snap.Messages = append(snap.Messages, msg)
//	err = store.Save(ctx, snap)
//
// Watch reports changes made to the file backend by another process.
package storage
