// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for ciscocli.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// .env files, environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - APIConfig: Model API key, endpoint, timeouts and rate limit
//   - StorageConfig: Transcript store backend and path
//   - SyncConfig, SpeechConfig, UIConfig, ServerConfig: feature settings
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (CISCOCLI_*, GEMINI_API_KEY, API_KEY)
//   - .env in the working directory, then ~/.ciscocli/.env
//   - ~/.ciscocli/config.toml
//   - ~/.ciscocli/config.json
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
//	}
//
// Read and change settings by key:
//
//	v, _ := cfg.Get("storage.backend")
//	_ = cfg.Set("ui.theme", "dark")
//	_ = config.Save(cfg)
package config
