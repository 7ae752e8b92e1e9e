// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package setup implements the first-run wizard behind "ciscocli setup".
//
// The wizard checks the environment (config directory, API key, network
// reachability of the model API, free disk space), lets the user pick a
// default model and history backend, asks for the API key, and writes
// ~/.ciscocli/config.toml. A full-screen Bubble Tea flow is used on
// terminals and a line-based flow (--text) everywhere else.
package setup
