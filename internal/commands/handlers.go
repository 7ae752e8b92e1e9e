// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/model"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Context is the application state a handler may read. The chat view fills
// it before executing a command.
type Context struct {
	// Model is the active model ID.
	Model string

	Research      bool
	ShowReasoning bool

	// Registry is used by /help to list commands.
	Registry *Registry
}

// =============================================================================
// MESSAGE TYPES
// =============================================================================

// These messages are sent by command handlers to update the application state.

// ShowHelpMsg shows the command list, or the usage of Topic.
type ShowHelpMsg struct {
	Text string
}

// QuitMsg exits the application.
type QuitMsg struct{}

// ClearRequestMsg asks to clear the transcript. The view asks for
// confirmation first.
type ClearRequestMsg struct{}

// ModelSwitchMsg selects a model.
type ModelSwitchMsg struct {
	Model model.ModelInfo
}

// ShowModelsMsg lists the catalogue.
type ShowModelsMsg struct {
	Text string
}

// ResearchMsg sets research mode.
type ResearchMsg struct {
	On bool
}

// ReasoningMsg shows or hides the analysis block.
type ReasoningMsg struct {
	On bool
}

// AttachMsg attaches the file at Path to the next query.
type AttachMsg struct {
	Path string
}

// DetachMsg drops the pending attachment.
type DetachMsg struct{}

// SpeakMsg reads the last answer aloud.
type SpeakMsg struct{}

// StopSpeechMsg stops speaking.
type StopSpeechMsg struct{}

// CopyMsg copies the last command syntax.
type CopyMsg struct{}

// ExportMsg writes the transcript to Path ("" picks a default name).
type ExportMsg struct {
	Path string
}

// HistoryMsg lists the Count most recent prompts.
type HistoryMsg struct {
	Count int
}

// SuggestMsg refreshes suggestions.
type SuggestMsg struct{}

// ThemeMsg switches the color theme.
type ThemeMsg struct {
	Mode string
}

// Sync directions.
const (
	SyncBoth = ""
	SyncPush = "push"
	SyncPull = "pull"
)

// SyncMsg synchronises with cloud storage.
type SyncMsg struct {
	Direction string
}

// InfoMsg is a status line produced by a command.
type InfoMsg struct {
	Text string
}

// ErrorMsg reports a command that could not run.
type ErrorMsg struct {
	Err error
}

func msgCmd(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// =============================================================================
// EXECUTION
// =============================================================================

// Execute runs a parsed command. Parse errors become an ErrorMsg.
func Execute(ctx *Context, result ParseResult) tea.Cmd {
	if !result.IsCommand {
		return nil
	}
	if result.Error != nil {
		return msgCmd(ErrorMsg{Err: result.Error})
	}
	if ctx == nil {
		ctx = &Context{}
	}
	return result.Command.Handler(ctx, result.Args)
}

// =============================================================================
// HANDLERS
// =============================================================================

// HandleHelp lists commands by category, or describes one command.
func HandleHelp(ctx *Context, args []string) tea.Cmd {
	reg := ctx.Registry
	if reg == nil {
		reg = NewRegistry()
	}
	if len(args) > 0 {
		name := args[0]
		if !strings.HasPrefix(name, "/") {
			name = "/" + name
		}
		cmd := reg.Get(name)
		if cmd == nil {
			return msgCmd(ErrorMsg{Err: fmt.Errorf("%w: %s", ErrUnknownCommand, name)})
		}
		return msgCmd(ShowHelpMsg{Text: Describe(cmd)})
	}
	return msgCmd(ShowHelpMsg{Text: HelpText(reg)})
}

// HelpText renders the command list grouped by category.
func HelpText(reg *Registry) string {
	groups := reg.ByCategory()
	var sb strings.Builder
	for _, cat := range Categories {
		cmds := groups[cat]
		if len(cmds) == 0 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("**" + cat + "**\n")
		for _, cmd := range cmds {
			usage := cmd.Usage
			if usage == "" {
				usage = cmd.Name
			}
			fmt.Fprintf(&sb, "- `%s` %s\n", usage, cmd.Description)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Describe renders the help for one command.
func Describe(cmd *Command) string {
	usage := cmd.Usage
	if usage == "" {
		usage = cmd.Name
	}
	text := "`" + usage + "` " + cmd.Description
	if len(cmd.Aliases) > 0 {
		text += "\nAliases: " + strings.Join(cmd.Aliases, ", ")
	}
	return text
}

// HandleQuit exits.
func HandleQuit(_ *Context, _ []string) tea.Cmd {
	return msgCmd(QuitMsg{})
}

// HandleClear requests a transcript clear.
func HandleClear(_ *Context, _ []string) tea.Cmd {
	return msgCmd(ClearRequestMsg{})
}

// HandleModel shows the current model, or switches to args[0].
func HandleModel(ctx *Context, args []string) tea.Cmd {
	if len(args) == 0 {
		current, ok := model.LookupModel(ctx.Model)
		name := ctx.Model
		if ok {
			name = current.Name + " (" + current.ID + ")"
		}
		return msgCmd(InfoMsg{Text: "Current model: " + name})
	}
	info, ok := model.LookupModel(args[0])
	if !ok {
		return msgCmd(ErrorMsg{Err: fmt.Errorf("unknown model %q (try /models)", args[0])})
	}
	return msgCmd(ModelSwitchMsg{Model: info})
}

// HandleModels lists the catalogue, marking the active model.
func HandleModels(ctx *Context, _ []string) tea.Cmd {
	return msgCmd(ShowModelsMsg{Text: ModelList(ctx.Model)})
}

// ModelList renders the catalogue as a bullet list.
func ModelList(active string) string {
	var rows []string
	for _, m := range model.Models {
		row := fmt.Sprintf("- **%s** `%s` %s", m.Name, m.ID, m.Description)
		if m.ID == active {
			row += " *(active)*"
		}
		rows = append(rows, row)
	}
	return strings.Join(rows, "\n")
}

// HandleSearch toggles research mode, or sets it from "on"/"off".
func HandleSearch(ctx *Context, args []string) tea.Cmd {
	return msgCmd(ResearchMsg{On: toggle(ctx.Research, args)})
}

// HandleReasoning toggles the analysis block, or sets it from "on"/"off".
func HandleReasoning(ctx *Context, args []string) tea.Cmd {
	return msgCmd(ReasoningMsg{On: toggle(ctx.ShowReasoning, args)})
}

func toggle(current bool, args []string) bool {
	if len(args) == 0 {
		return !current
	}
	return strings.EqualFold(args[0], "on")
}

// HandleAttach attaches a file. Paths with spaces may be quoted or given
// unquoted.
func HandleAttach(_ *Context, args []string) tea.Cmd {
	return msgCmd(AttachMsg{Path: strings.Join(args, " ")})
}

// HandleDetach drops the attachment.
func HandleDetach(_ *Context, _ []string) tea.Cmd {
	return msgCmd(DetachMsg{})
}

// HandleSuggest refreshes suggestions.
func HandleSuggest(_ *Context, _ []string) tea.Cmd {
	return msgCmd(SuggestMsg{})
}

// HandleCopy copies the last syntax.
func HandleCopy(_ *Context, _ []string) tea.Cmd {
	return msgCmd(CopyMsg{})
}

// HandleExport exports the transcript.
func HandleExport(_ *Context, args []string) tea.Cmd {
	return msgCmd(ExportMsg{Path: strings.Join(args, " ")})
}

// HandleSpeak reads the last answer aloud.
func HandleSpeak(_ *Context, _ []string) tea.Cmd {
	return msgCmd(SpeakMsg{})
}

// HandleStop stops speech.
func HandleStop(_ *Context, _ []string) tea.Cmd {
	return msgCmd(StopSpeechMsg{})
}

// DefaultHistoryCount is the /history listing length.
const DefaultHistoryCount = 10

// HandleHistory lists recent prompts.
func HandleHistory(_ *Context, args []string) tea.Cmd {
	n := DefaultHistoryCount
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v <= 0 {
			return msgCmd(ErrorMsg{Err: fmt.Errorf("/history: count must be a positive number, got %q", args[0])})
		}
		n = v
	}
	return msgCmd(HistoryMsg{Count: n})
}

// HistoryText renders prompts (newest first) as a numbered markdown list.
func HistoryText(prompts []string) string {
	if len(prompts) == 0 {
		return "No prompts yet."
	}
	var b strings.Builder
	b.WriteString("## Recent prompts\n\n")
	for i, p := range prompts {
		fmt.Fprintf(&b, "%d. %s\n", i+1, p)
	}
	return b.String()
}

// HandleTheme switches theme.
func HandleTheme(_ *Context, args []string) tea.Cmd {
	return msgCmd(ThemeMsg{Mode: strings.ToLower(args[0])})
}

// HandleSync pushes, pulls or (without argument) pulls then pushes.
func HandleSync(_ *Context, args []string) tea.Cmd {
	dir := SyncBoth
	if len(args) > 0 {
		dir = strings.ToLower(args[0])
	}
	return msgCmd(SyncMsg{Direction: dir})
}
