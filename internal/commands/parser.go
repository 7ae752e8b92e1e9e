// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/model"
)

// ErrUnknownCommand is returned for a slash word that is not registered.
var ErrUnknownCommand = errors.New("unknown command")

// =============================================================================
// PARSE RESULT
// =============================================================================

// ParseResult contains the result of parsing user input.
type ParseResult struct {
	// IsCommand is true if the input starts with /
	IsCommand bool

	// Command is the matched command (nil if not found)
	Command *Command

	// CommandName is the raw command name (e.g., "/help")
	CommandName string

	Args []string

	// RawArgs is the unparsed arguments portion, used by commands whose
	// argument is a path that may contain spaces.
	RawArgs string

	// Error if command not found or arguments are invalid
	Error error
}

// =============================================================================
// PARSER
// =============================================================================

// Parser handles parsing of slash commands and their arguments.
type Parser struct {
	registry *Registry
}

// NewParser creates a new parser with the given registry.
func NewParser(registry *Registry) *Parser {
	return &Parser{registry: registry}
}

// Parse parses user input. IsCommand is false when input does not start
// with "/"; such input is a query for the model.
func (p *Parser) Parse(input string) ParseResult {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return ParseResult{}
	}

	result := ParseResult{IsCommand: true}
	result.CommandName = ExtractCommandName(input)
	result.RawArgs = strings.TrimSpace(input[len(result.CommandName):])
	result.Args = splitCommandLine(result.RawArgs)

	result.Command = p.registry.Get(result.CommandName)
	if result.Command == nil {
		result.Error = fmt.Errorf("%w: %s (try /help)", ErrUnknownCommand, result.CommandName)
		return result
	}
	result.Error = ValidateArgs(result.Command, result.Args)
	return result
}

// ParseArgs parses a raw argument string into individual arguments.
// Handles quoted strings with spaces.
func ParseArgs(input string) []string {
	return splitCommandLine(input)
}

// splitCommandLine splits a command line into tokens, respecting single and
// double quotes. Backslash escapes a quote or backslash inside quotes.
func splitCommandLine(input string) []string {
	var (
		tokens  []string
		current strings.Builder
		quote   rune
		inToken bool
	)
	runes := []rune(input)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case quote == 0 && (r == '"' || r == '\''):
			quote, inToken = r, true
		case quote != 0 && r == quote:
			quote = 0
		case quote != 0 && r == '\\' && i+1 < len(runes) && strings.ContainsRune(`"'\`, runes[i+1]):
			current.WriteRune(runes[i+1])
			i++
		case quote == 0 && unicode.IsSpace(r):
			if inToken {
				tokens = append(tokens, current.String())
				current.Reset()
				inToken = false
			}
		default:
			current.WriteRune(r)
			inToken = true
		}
	}
	if inToken {
		tokens = append(tokens, current.String())
	}
	return tokens
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// IsCommand returns true if the input appears to be a command.
func IsCommand(input string) bool {
	return strings.HasPrefix(strings.TrimSpace(input), "/")
}

// ExtractCommandName extracts just the command name from input.
// e.g., "/model flash" -> "/model"
func ExtractCommandName(input string) string {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return ""
	}
	if end := strings.IndexFunc(input, unicode.IsSpace); end >= 0 {
		return input[:end]
	}
	return input
}

// ValidateArgs checks args against cmd's argument definitions: required
// arguments, enum values (case-insensitive) and model ids. Extra arguments
// are rejected unless the last definition is a file path, which may
// contain spaces.
func ValidateArgs(cmd *Command, args []string) error {
	if cmd == nil {
		return nil
	}

	for i, def := range cmd.Args {
		if i >= len(args) {
			if def.Required {
				return &ValidationError{Command: cmd.Name, Arg: def.Name, Reason: "missing", Want: def.Description}
			}
			continue
		}
		if err := checkArg(cmd.Name, def, args[i]); err != nil {
			return err
		}
	}

	if n := len(cmd.Args); len(args) > n && (n == 0 || cmd.Args[n-1].Type != ArgTypeFile) {
		return &ValidationError{Command: cmd.Name, Reason: "too many arguments", Got: strings.Join(args[n:], " ")}
	}
	return nil
}

func checkArg(command string, def ArgDef, value string) error {
	switch def.Type {
	case ArgTypeEnum:
		for _, v := range def.Values {
			if strings.EqualFold(value, v) {
				return nil
			}
		}
		return &ValidationError{Command: command, Arg: def.Name, Reason: "invalid value", Got: value, Want: strings.Join(def.Values, ", ")}
	case ArgTypeModel:
		if _, ok := model.LookupModel(value); !ok {
			return &ValidationError{Command: command, Arg: def.Name, Reason: "unknown model", Got: value, Want: "see /models"}
		}
	}
	return nil
}

// =============================================================================
// VALIDATION ERROR
// =============================================================================

// ValidationError describes a rejected command line.
type ValidationError struct {
	Command string
	Arg     string
	Reason  string
	Got     string
	Want    string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Command)
	if e.Arg != "" {
		fmt.Fprintf(&b, " <%s>", e.Arg)
	}
	b.WriteString(": " + e.Reason)
	if e.Got != "" {
		fmt.Fprintf(&b, " %q", e.Got)
	}
	if e.Want != "" {
		b.WriteString(" (want " + e.Want + ")")
	}
	return b.String()
}
