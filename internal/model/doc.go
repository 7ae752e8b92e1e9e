// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for transcripts, messages and
// the structured query response returned by the model.
//
// This package defines the core domain types used throughout the application.
// The JSON layout of ChatMessage and CiscoQueryResponse matches the persisted
// transcript format and the model's response schema, so values round-trip
// through storage, sync and the HTTP proxy unchanged.
//
// # Key Types
//
//   - ChatMessage: Single transcript entry with role, content, timestamp and optional response
//   - CiscoQueryResponse: Structured reference card returned for a query
//   - Transcript: Ordered, capped list of messages
//   - ModelInfo: Entry of the selectable model catalogue
//   - Role: Message role enumeration (user, assistant)
//
// # Usage
//
// Build a transcript:
//
//	t := model.NewTranscript()
//	t.Append(model.NewUserMessage("show ip route"))
//	t.Append(model.NewAssistantMessage("show ip route", resp))
//
// Walk the renderable sections of a response:
//
//	for _, sec := range resp.Sections() {
//	    fmt.Println(sec.Title)
//	}
package model
