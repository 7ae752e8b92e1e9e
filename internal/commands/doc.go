// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the TUI.
//
// Input starting with "/" is parsed into a command and arguments instead of
// being sent to the model. Handlers do not touch application state; they
// return a tea.Cmd whose message the chat view applies.
//
// # Key Types
//
//   - Registry: Command registry with all available commands
//   - Parser / ParseResult: Parsed command with name and arguments
//   - Context: Read-only state handed to handlers
//   - ValidationError: Missing or invalid argument
//
// # Built-in Commands
//
//   - /help, /quit
//   - /clear, /attach, /detach, /suggest
//   - /model, /models, /search
//   - /reasoning, /copy, /export, /speak, /stop, /theme
//   - /sync [push|pull]
//
// # Usage
//
//	reg := commands.NewRegistry()
//	result := commands.NewParser(reg).Parse(input)
//	if result.IsCommand {
//	    return m, commands.Execute(&commands.Context{Registry: reg}, result)
//	}
//
// Tab completion:
//
//	reg.Complete("/mo", model.ModelIDs()) // ["/model", "/models"]
package commands
