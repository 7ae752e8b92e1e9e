// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the ciscocli command tree.
//
// Running ciscocli without arguments starts the full-screen chat UI. The
// sub-commands cover scripted and line-based use:
//
//   - ask: one question, printed as a reference card (or --json)
//   - chat: line-based chat with prompt history recall
//   - history: list, export or clear the saved transcript
//   - suggest: regenerate follow-up suggestions
//   - sync: push or pull history to the Drive app data folder
//   - speak: read text or the last answer aloud
//   - serve: HTTP proxy for browser builds
//   - config, models, version
//
// Configuration is loaded once in the root command's PersistentPreRunE and
// shared through App. Commands annotated "noconfig" skip loading.
package cli
