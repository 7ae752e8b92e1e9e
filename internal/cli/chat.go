// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/cloud"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/commands"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/export"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/format"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/history"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/model"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/speech"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/storage"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/ui/chat"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/ui/components"
)

// errQuit ends the REPL.
var errQuit = errors.New("quit")

func newChatCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Line-based chat with prompt history (no full-screen UI)",
		Long: `Line-based chat for terminals where the full-screen UI is unavailable.
Up/Down recall earlier prompts, Tab completes slash commands, Ctrl+C cancels
a running query and Ctrl+D exits. Type /help for commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := RequiresTTY("chat"); err != nil {
				return err
			}
			s, err := newChatSession(app())
			if err != nil {
				return err
			}
			defer s.close()
			// Ctrl+C cancels one query, not the session.
			return s.run(context.WithoutCancel(cmd.Context()))
		},
	}
}

// =============================================================================
// SESSION STATE
// =============================================================================

// chatSession is one REPL run.
type chatSession struct {
	app    *App
	client *cloud.Client
	store  storage.HistoryStore
	line   *liner.State
	out    io.Writer

	transcript  *model.Transcript
	suggestions []string

	registry *commands.Registry
	parser   *commands.Parser

	modelID    string
	research   bool
	reasoning  bool
	attachment *chat.Attachment

	// copy writes to the clipboard; synth reads answers aloud. Tests
	// replace both.
	copy  func(string) error
	synth speech.SpeechSynth
}

func newChatSession(app *App) (*chatSession, error) {
	client, err := app.configuredClient()
	if err != nil {
		return nil, err
	}
	store, snap, err := app.loadSnapshot(context.Background())
	if err != nil {
		return nil, err
	}
	s := newSession(app, client, store, snap)

	s.line = liner.NewLiner()
	s.line.SetCtrlCAborts(true)
	s.line.SetTabCompletionStyle(liner.TabPrints)
	s.line.SetCompleter(func(line string) []string {
		return s.registry.Complete(line, model.ModelIDs())
	})
	s.loadLineHistory()
	return s, nil
}

// newSession builds the session state without a terminal.
func newSession(app *App, client *cloud.Client, store storage.HistoryStore, snap storage.Snapshot) *chatSession {
	t := model.NewTranscriptFrom(snap.Messages)
	t.SetMax(app.cfg.Storage.MaxMessages)

	modelID := model.DefaultModelID
	if info, ok := model.LookupModel(app.cfg.DefaultModel); ok {
		modelID = info.ID
	}
	reg := commands.NewRegistry()
	return &chatSession{
		app:         app,
		client:      client,
		store:       store,
		out:         app.out,
		transcript:  t,
		suggestions: snap.Suggestions,
		registry:    reg,
		parser:      commands.NewParser(reg),
		modelID:     modelID,
		research:    app.cfg.UI.ResearchMode,
		reasoning:   app.cfg.UI.ShowReasoning,
		copy:        clipboard.WriteAll,
		synth:       app.Speech(client),
	}
}

// loadLineHistory seeds liner with the de-duplicated prompt history,
// oldest first so Up recalls the newest.
func (s *chatSession) loadLineHistory() {
	s.line.ClearHistory()
	for _, p := range history.BuildPromptHistory(s.transcript.Messages()) {
		s.line.AppendHistory(p)
	}
}

func (s *chatSession) close() {
	if s.line != nil {
		s.line.Close()
	}
	if s.store != nil {
		s.store.Close()
	}
}

// =============================================================================
// LOOP
// =============================================================================

func (s *chatSession) prompt() string {
	p := "ciscocli"
	if s.research {
		p += "[research]"
	}
	if s.attachment != nil {
		p += "[+" + s.attachment.Name + "]"
	}
	return p + "> "
}

func (s *chatSession) run(ctx context.Context) error {
	fmt.Fprintln(s.out, RenderConditional(TitleStyle, components.AppTitle)+
		RenderConditional(DimStyle, "  model "+s.modelID+"  /help for commands, Ctrl+D to exit"))

	for {
		input, err := s.line.Prompt(s.prompt())
		switch {
		case errors.Is(err, liner.ErrPromptAborted):
			continue
		case errors.Is(err, io.EOF):
			fmt.Fprintln(s.out)
			return nil
		case err != nil:
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" && s.attachment == nil {
			continue
		}

		if commands.IsCommand(input) {
			if err := s.command(ctx, input); errors.Is(err, errQuit) {
				return nil
			} else if err != nil {
				fmt.Fprintln(s.out, RenderConditional(ErrorStyle, "Error: ")+err.Error())
			}
			continue
		}

		if err := s.ask(ctx, input); err != nil {
			fmt.Fprintln(s.out, RenderConditional(ErrorStyle, "Error: ")+err.Error())
		}
	}
}

// ask sends one query. Ctrl+C while waiting cancels it.
func (s *chatSession) ask(ctx context.Context, query string) error {
	if query == "" {
		query = model.AttachedFilePlaceholder
	}
	req := cloud.QueryRequest{Query: query, Model: s.modelID, ForceSearch: s.research}
	msg := model.NewUserMessage(query)
	if a := s.attachment; a != nil {
		if a.IsImage() {
			req.ImageBase64 = a.Data
			msg.Image = a.Data
		} else {
			req.Attachment = a.Text
			req.AttachmentName = a.Name
		}
		msg.Attachment = a.Name
		s.attachment = nil
	}
	s.transcript.Append(msg)
	if s.line != nil {
		s.loadLineHistory()
	}

	qctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	fmt.Fprintln(s.out, RenderConditional(DimStyle, "Synthesizing CLI output..."))
	resp, err := s.client.Query(qctx, req)
	if err != nil {
		s.transcript.Append(model.NewErrorMessage())
		s.save(ctx)
		if errors.Is(err, context.Canceled) {
			return errors.New("request cancelled")
		}
		return err
	}

	s.transcript.Append(model.NewAssistantMessage(query, resp))
	s.save(ctx)
	fmt.Fprintln(s.out, renderAnswer(resp, s.app.cfg.UI.Theme, s.reasoning, ColorsEnabled()))
	return nil
}

func (s *chatSession) save(ctx context.Context) {
	if s.store == nil {
		return
	}
	snap := storage.Snapshot{Messages: s.transcript.Messages(), Suggestions: s.suggestions}
	if err := s.store.Save(ctx, snap); err != nil {
		fmt.Fprintf(s.app.errOut, "Warning: could not save history: %v\n", err)
	}
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// command runs a slash command through the shared registry.
func (s *chatSession) command(ctx context.Context, input string) error {
	result := s.parser.Parse(input)
	cmd := commands.Execute(&commands.Context{
		Model:         s.modelID,
		Research:      s.research,
		ShowReasoning: s.reasoning,
		Registry:      s.registry,
	}, result)
	if cmd == nil {
		return nil
	}

	switch msg := cmd().(type) {
	case commands.ErrorMsg:
		return msg.Err
	case commands.QuitMsg:
		return errQuit
	case commands.ShowHelpMsg:
		s.printMarkdown(msg.Text)
	case commands.ShowModelsMsg:
		s.printMarkdown(msg.Text)
	case commands.InfoMsg:
		fmt.Fprintln(s.out, msg.Text)
	case commands.HistoryMsg:
		prompts := history.Recent(history.BuildPromptHistory(s.transcript.Messages()), msg.Count)
		s.printMarkdown(commands.HistoryText(prompts))
	case commands.ClearRequestMsg:
		ok, err := RequireConfirmation(false, "clear all history", s.app.in, s.out)
		if err != nil || !ok {
			return err
		}
		s.transcript.Clear()
		s.suggestions = nil
		s.save(ctx)
		if s.line != nil {
			s.loadLineHistory()
		}
		fmt.Fprintln(s.out, RenderConditional(SuccessStyle, "History cleared"))
	case commands.ModelSwitchMsg:
		s.modelID = msg.Model.ID
		fmt.Fprintln(s.out, "Model: "+msg.Model.Name)
	case commands.ResearchMsg:
		s.research = msg.On
		fmt.Fprintln(s.out, "Research mode: "+onOff(msg.On))
	case commands.ReasoningMsg:
		s.reasoning = msg.On
		fmt.Fprintln(s.out, "Show reasoning: "+onOff(msg.On))
	case commands.AttachMsg:
		a, err := chat.LoadAttachment(msg.Path)
		if err != nil {
			return err
		}
		s.attachment = a
		fmt.Fprintln(s.out, "Attached "+a.Name+" (sent with the next question)")
	case commands.DetachMsg:
		s.attachment = nil
	case commands.CopyMsg:
		last, ok := s.transcript.LastResponse()
		if !ok || last.Metadata == nil || format.IsPlaceholder(last.Metadata.Syntax) {
			return errors.New("nothing to copy yet")
		}
		if err := s.copy(last.Metadata.Syntax); err != nil {
			return fmt.Errorf("copy: %w", err)
		}
		fmt.Fprintln(s.out, "Copied command syntax")
	case commands.ExportMsg:
		path := msg.Path
		if path == "" {
			path = export.DefaultFileName(export.FormatMarkdown, time.Now())
		}
		path, err := export.ExportToFile(storage.Snapshot{Messages: s.transcript.Messages()}, path, "")
		if err != nil {
			return err
		}
		fmt.Fprintln(s.out, "Exported to "+path)
	case commands.SpeakMsg:
		last, ok := s.transcript.LastResponse()
		if !ok || last.Metadata == nil {
			return errors.New("nothing to read yet")
		}
		return s.synth.Speak(ctx, speechTextFor(last.Metadata))
	case commands.SuggestMsg:
		// On failure the defaults come back alongside the error.
		got, err := s.client.Suggestions(ctx, history.BuildPromptHistory(s.transcript.Messages()))
		if err != nil {
			fmt.Fprintln(s.out, RenderConditional(WarningStyle, "Using default suggestions: ")+err.Error())
		}
		s.suggestions = got
		s.save(ctx)
		for i, sg := range got {
			fmt.Fprintf(s.out, "  %d. %s\n", i+1, sg)
		}
	case commands.SyncMsg:
		return s.sync(ctx, msg.Direction)
	default:
		return fmt.Errorf("%s is only available in the full-screen UI", commands.ExtractCommandName(input))
	}
	return nil
}

func (s *chatSession) sync(ctx context.Context, direction string) error {
	remote := s.app.Remote()
	if remote == nil {
		return ErrSyncDisabled
	}
	snap := storage.Snapshot{Messages: s.transcript.Messages(), Suggestions: s.suggestions}
	merged, err := syncSnapshot(ctx, remote, direction, snap)
	if err != nil {
		return err
	}
	s.transcript.Replace(merged.Messages)
	s.suggestions = merged.Suggestions
	s.save(ctx)
	if s.line != nil {
		s.loadLineHistory()
	}
	fmt.Fprintln(s.out, RenderConditional(SuccessStyle, "Sync complete"))
	return nil
}

func (s *chatSession) printMarkdown(text string) {
	if !ColorsEnabled() {
		fmt.Fprintln(s.out, text)
		return
	}
	fmt.Fprint(s.out, components.RenderMarkdown(text, cardWidth(), true))
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
