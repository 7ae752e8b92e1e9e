// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud provides the Gemini API client used to answer Cisco CLI
// questions, propose follow-up topics and synthesise speech.
//
// # Key Types
//
//   - Client: HTTP client for the generateContent endpoint with TLS, retry
//     and rate limiting
//   - QueryRequest: one question, optionally with an image or text attachment
//   - Audio: synthesised PCM speech
//
// # Usage
//
//	client := cloud.NewClient(apiKey).WithRateLimit(cloud.PerMinute(30), 1)
//	resp, err := client.Query(ctx, cloud.QueryRequest{
//	    Query: "configure ospf area 0",
//	    Model: model.ModelPro,
//	})
//
// # Security
//
// The API key travels in the x-goog-api-key header and is never logged.
// Requests use TLS 1.2+ and response bodies are capped at MaxResponseSize.
package cloud
