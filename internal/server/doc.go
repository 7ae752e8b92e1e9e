// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server exposes the model API through a local HTTP proxy so a
// browser front end never sees the API key.
//
// # Endpoints
//
//   - POST /api/gemini - query (default), "suggestions" or "tts" action
//   - GET  /healthz    - liveness and counters
//
// # Security Features
//
//   - CORS headers and 200 preflight answers
//   - Security headers (X-Content-Type-Options, X-Frame-Options, etc.)
//   - Per-client token bucket rate limiting
//   - Request body size limit
//   - Panic recovery with stack trace logging
//
// # Usage
//
//	srv := server.NewServer(cfg.Server, cloud.NewClient(cfg.API.Key))
//	if err := srv.Run(ctx); err != nil {
//		log.Fatal(err)
//	}
package server
