// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Command represents a slash command that can be executed.
type Command struct {
	// Name is the primary command name (e.g., "/help")
	Name string

	// Aliases are alternative names (e.g., "/h", "/?")
	Aliases []string

	// Description is shown in help and completion
	Description string

	// Usage shows argument syntax (e.g., "/model <name>")
	Usage string

	// Args defines the expected arguments
	Args []ArgDef

	// Handler is the function that executes the command
	Handler func(ctx *Context, args []string) tea.Cmd

	// Hidden commands don't appear in help
	Hidden bool

	// Category for grouping in help display
	Category string
}

// ArgDef defines an argument for a command.
type ArgDef struct {
	Name        string
	Required    bool
	Type        ArgType
	Description string

	// Values for enum types
	Values []string
}

// ArgType indicates what kind of completion to provide.
type ArgType int

const (
	ArgTypeString ArgType = iota // Free-form string
	ArgTypeModel                 // Model ID or alias from the catalogue
	ArgTypeFile                  // File path
	ArgTypeEnum                  // One of predefined values
)

// Help categories in display order.
const (
	CategoryConversation = "Conversation"
	CategoryModel        = "Model"
	CategoryOutput       = "Output"
	CategorySync         = "Sync"
	CategoryGeneral      = "General"
)

// Categories lists help categories in display order.
var Categories = []string{
	CategoryConversation,
	CategoryModel,
	CategoryOutput,
	CategorySync,
	CategoryGeneral,
}

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds all registered commands.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]*Command
}

// NewRegistry creates a new command registry with all built-in commands.
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]*Command),
	}
	r.registerBuiltins()
	return r
}

// Register adds a command to the registry.
func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd
	}
}

// Get retrieves a command by name or alias. Lookup is case-insensitive.
func (r *Registry) Get(name string) *Command {
	name = strings.ToLower(name)
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	if cmd, ok := r.aliases[name]; ok {
		return cmd
	}
	return nil
}

// All returns all registered commands sorted by name.
func (r *Registry) All() []*Command {
	cmds := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	return cmds
}

// Names returns the visible command names sorted alphabetically.
func (r *Registry) Names() []string {
	var names []string
	for _, cmd := range r.All() {
		if !cmd.Hidden {
			names = append(names, cmd.Name)
		}
	}
	return names
}

// ByCategory returns visible commands grouped by category, each group
// sorted by name.
func (r *Registry) ByCategory() map[string][]*Command {
	result := make(map[string][]*Command)
	for _, cmd := range r.All() {
		if cmd.Hidden {
			continue
		}
		category := cmd.Category
		if category == "" {
			category = CategoryGeneral
		}
		result[category] = append(result[category], cmd)
	}
	return result
}

// =============================================================================
// COMPLETION
// =============================================================================

// Complete returns Tab completions for input. While the command name is
// being typed it offers matching command names; after a known command it
// offers enum and model values for the current argument.
func (r *Registry) Complete(input string, models []string) []string {
	if !IsCommand(input) {
		return nil
	}
	input = strings.TrimLeft(input, " \t")

	name := ExtractCommandName(input)
	if name == input {
		var out []string
		for _, n := range r.Names() {
			if strings.HasPrefix(n, strings.ToLower(name)) {
				out = append(out, n)
			}
		}
		return out
	}

	cmd := r.Get(name)
	if cmd == nil {
		return nil
	}
	rest := input[len(name):]
	args := splitCommandLine(rest)
	argIdx, partial := len(args), ""
	if len(args) > 0 && !strings.HasSuffix(rest, " ") {
		argIdx, partial = len(args)-1, args[len(args)-1]
	}
	if argIdx >= len(cmd.Args) {
		return nil
	}

	var candidates []string
	switch def := cmd.Args[argIdx]; def.Type {
	case ArgTypeEnum:
		candidates = def.Values
	case ArgTypeModel:
		candidates = models
	}

	prefix := strings.TrimSpace(input[:len(input)-len(partial)])
	var out []string
	for _, c := range candidates {
		if strings.HasPrefix(strings.ToLower(c), strings.ToLower(partial)) {
			out = append(out, prefix+" "+c)
		}
	}
	return out
}

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

func (r *Registry) registerBuiltins() {
	r.Register(&Command{
		Name:        "/help",
		Aliases:     []string{"/h", "/?"},
		Description: "Show available commands",
		Usage:       "/help [command]",
		Args: []ArgDef{
			{Name: "command", Type: ArgTypeString, Description: "Command to describe"},
		},
		Category: CategoryGeneral,
		Handler:  HandleHelp,
	})

	r.Register(&Command{
		Name:        "/quit",
		Aliases:     []string{"/q", "/exit"},
		Description: "Exit the application",
		Category:    CategoryGeneral,
		Handler:     HandleQuit,
	})

	r.Register(&Command{
		Name:        "/clear",
		Aliases:     []string{"/c"},
		Description: "Clear the transcript (press twice to confirm)",
		Category:    CategoryConversation,
		Handler:     HandleClear,
	})

	r.Register(&Command{
		Name:        "/attach",
		Aliases:     []string{"/a"},
		Description: "Attach an image or text file to the next query",
		Usage:       "/attach <path>",
		Args: []ArgDef{
			{Name: "path", Required: true, Type: ArgTypeFile, Description: "file to attach"},
		},
		Category: CategoryConversation,
		Handler:  HandleAttach,
	})

	r.Register(&Command{
		Name:        "/detach",
		Description: "Drop the pending attachment",
		Category:    CategoryConversation,
		Handler:     HandleDetach,
	})

	r.Register(&Command{
		Name:        "/history",
		Description: "List recent prompts (recall them with Up/Down)",
		Usage:       "/history [count]",
		Args: []ArgDef{
			{Name: "count", Type: ArgTypeString, Description: "number of prompts (default 10)"},
		},
		Category: CategoryConversation,
		Handler:  HandleHistory,
	})

	r.Register(&Command{
		Name:        "/suggest",
		Description: "Refresh follow-up suggestions",
		Category:    CategoryConversation,
		Handler:     HandleSuggest,
	})

	r.Register(&Command{
		Name:        "/model",
		Aliases:     []string{"/m"},
		Description: "Switch or show the current model",
		Usage:       "/model [id|pro|flash|lite]",
		Args: []ArgDef{
			{Name: "model", Type: ArgTypeModel, Description: "model ID or alias"},
		},
		Category: CategoryModel,
		Handler:  HandleModel,
	})

	r.Register(&Command{
		Name:        "/models",
		Description: "List available models",
		Category:    CategoryModel,
		Handler:     HandleModels,
	})

	r.Register(&Command{
		Name:        "/search",
		Aliases:     []string{"/research"},
		Description: "Toggle research mode (live web search)",
		Usage:       "/search [on|off]",
		Args: []ArgDef{
			{Name: "state", Type: ArgTypeEnum, Values: []string{"on", "off"}, Description: "on or off"},
		},
		Category: CategoryModel,
		Handler:  HandleSearch,
	})

	r.Register(&Command{
		Name:        "/reasoning",
		Description: "Show or hide the analysis block",
		Usage:       "/reasoning [on|off]",
		Args: []ArgDef{
			{Name: "state", Type: ArgTypeEnum, Values: []string{"on", "off"}, Description: "on or off"},
		},
		Category: CategoryOutput,
		Handler:  HandleReasoning,
	})

	r.Register(&Command{
		Name:        "/copy",
		Description: "Copy the last command syntax to the clipboard",
		Category:    CategoryOutput,
		Handler:     HandleCopy,
	})

	r.Register(&Command{
		Name:        "/export",
		Description: "Export the transcript to a file",
		Usage:       "/export [path]",
		Args: []ArgDef{
			{Name: "path", Type: ArgTypeFile, Description: "output file (.md, .json, .yaml)"},
		},
		Category: CategoryOutput,
		Handler:  HandleExport,
	})

	r.Register(&Command{
		Name:        "/speak",
		Description: "Read the last answer aloud",
		Category:    CategoryOutput,
		Handler:     HandleSpeak,
	})

	r.Register(&Command{
		Name:        "/stop",
		Description: "Stop speaking",
		Category:    CategoryOutput,
		Handler:     HandleStop,
	})

	r.Register(&Command{
		Name:        "/theme",
		Description: "Switch the color theme",
		Usage:       "/theme <dark|light|auto>",
		Args: []ArgDef{
			{Name: "theme", Required: true, Type: ArgTypeEnum, Values: []string{"dark", "light", "auto"}, Description: "theme"},
		},
		Category: CategoryOutput,
		Handler:  HandleTheme,
	})

	r.Register(&Command{
		Name:        "/sync",
		Description: "Synchronise the transcript with cloud storage",
		Usage:       "/sync [push|pull]",
		Args: []ArgDef{
			{Name: "direction", Type: ArgTypeEnum, Values: []string{"push", "pull"}, Description: "push or pull"},
		},
		Category: CategorySync,
		Handler:  HandleSync,
	})
}
