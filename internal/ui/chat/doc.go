// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat is the interactive chat view.
//
// The Model owns the transcript and the prompt box. Submitting a prompt
// appends it, sends it to the Backend and renders the structured answer as
// a result card. Prompt history is recalled with the arrow keys, slash
// commands are dispatched through the commands package and every change is
// saved to the history store, which is watched so other sessions stay in
// step.
package chat
