// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/cloud"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/model"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/speech"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/storage"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/ui/chat"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/ui/components"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/ui/styles"
)

// MaxStdinQuery bounds a query read from a pipe.
const MaxStdinQuery = 100000

type askOptions struct {
	model     string
	search    bool
	image     string
	file      string
	json      bool
	speak     bool
	pager     bool
	reasoning bool
	noSave    bool
}

func newAskCmd(app func() *App) *cobra.Command {
	var opts askOptions

	cmd := &cobra.Command{
		Use:   "ask [question...]",
		Short: "Ask a single question and print the reference card",
		Example: `  ciscocli ask "configure BGP neighbor on IOS XR"
  ciscocli ask --search "show platform hardware qfp"
  ciscocli ask --file running-config.txt "find the ACL errors"
  ciscocli ask --json "vlan 10" | jq .data.syntax`,
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := readQuery(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return runAsk(cmd.Context(), app(), query, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.model, "model", "m", "", "model id or alias (pro, flash, lite)")
	flags.BoolVarP(&opts.search, "search", "s", false, "research mode: ground the answer with web search")
	flags.StringVar(&opts.image, "image", "", "attach an image (topology diagram, screenshot)")
	flags.StringVarP(&opts.file, "file", "f", "", "attach a text file (running-config, logs)")
	flags.BoolVar(&opts.json, "json", false, "print the response as JSON")
	flags.BoolVar(&opts.speak, "speak", false, "read the answer aloud")
	flags.BoolVar(&opts.pager, "pager", false, "show the answer in a pager")
	flags.BoolVarP(&opts.reasoning, "reasoning", "r", false, "include the model's analysis")
	flags.BoolVar(&opts.noSave, "no-save", false, "do not record the question in history")
	return cmd
}

// readQuery joins args, or reads stdin when it is piped.
func readQuery(args []string, in io.Reader) (string, error) {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query != "" {
		return query, nil
	}
	if in == nil || isTerminalReader(in) {
		return "", fmt.Errorf("no question given")
	}
	data, err := io.ReadAll(io.LimitReader(in, MaxStdinQuery+1))
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	if len(data) > MaxStdinQuery {
		return "", fmt.Errorf("question too long (max %d bytes)", MaxStdinQuery)
	}
	query = strings.TrimSpace(string(data))
	if query == "" {
		return "", fmt.Errorf("no question given")
	}
	return query, nil
}

// buildRequest resolves the model and loads attachments.
func buildRequest(cfgModel, query string, opts askOptions) (cloud.QueryRequest, model.ChatMessage, error) {
	modelID := cfgModel
	if opts.model != "" {
		modelID = opts.model
	}
	if modelID == "" {
		modelID = model.DefaultModelID
	}
	info, ok := model.LookupModel(modelID)
	if !ok {
		return cloud.QueryRequest{}, model.ChatMessage{}, fmt.Errorf("unknown model %q (see: ciscocli models)", modelID)
	}

	req := cloud.QueryRequest{Query: query, Model: info.ID, ForceSearch: opts.search}
	msg := model.NewUserMessage(query)

	if opts.image != "" {
		a, err := chat.LoadAttachment(opts.image)
		if err != nil {
			return req, msg, err
		}
		if !a.IsImage() {
			return req, msg, fmt.Errorf("%s is not an image", a.Name)
		}
		req.ImageBase64 = a.Data
		msg.Image = a.Data
		msg.Attachment = a.Name
	}
	if opts.file != "" {
		a, err := chat.LoadAttachment(opts.file)
		if err != nil {
			return req, msg, err
		}
		if a.IsImage() {
			req.ImageBase64 = a.Data
			msg.Image = a.Data
		} else {
			req.Attachment = a.Text
			req.AttachmentName = a.Name
		}
		msg.Attachment = a.Name
	}
	return req, msg, nil
}

func runAsk(ctx context.Context, app *App, query string, opts askOptions) error {
	client, err := app.configuredClient()
	if err != nil {
		return err
	}
	req, userMsg, err := buildRequest(app.cfg.DefaultModel, query, opts)
	if err != nil {
		return err
	}

	resp, err := client.Query(ctx, req)
	if !opts.noSave {
		record(ctx, app, userMsg, query, resp, err)
	}
	if err != nil {
		if opts.json {
			_ = NewJSONErrorResponse("ask", err).Write(app.out)
		}
		return err
	}

	if opts.json {
		return NewJSONResponse("ask", resp).Write(app.out)
	}

	out := renderAnswer(resp, app.cfg.UI.Theme, opts.reasoning, ColorsEnabled() && isTerminalWriter(app.out))
	if opts.pager {
		err = page(app.out, out+"\n")
	} else {
		_, err = fmt.Fprintln(app.out, out)
	}
	if err != nil {
		return err
	}

	if opts.speak {
		text := speechTextFor(resp)
		if text == "" {
			return nil
		}
		if err := app.Speech(client).Speak(ctx, text); err != nil {
			return fmt.Errorf("speech: %w", err)
		}
	}
	return nil
}

// renderAnswer renders the card styled for terminals and as plain text
// otherwise.
func renderAnswer(resp *model.CiscoQueryResponse, themeMode string, reasoning, color bool) string {
	if !color {
		return components.PlainCard(resp, reasoning)
	}
	card := components.NewResultCard(resp, styles.NewTheme(themeMode), cardWidth())
	card.ShowReasoning = reasoning
	return card.Render()
}

// speechTextFor picks the part of an answer worth reading aloud.
func speechTextFor(resp *model.CiscoQueryResponse) string {
	if !resp.Technical() {
		return speech.PlainText(resp.GeneralAnswer)
	}
	return speech.PlainText(resp.Description)
}

// record appends the exchange to history. Failures are logged only.
func record(ctx context.Context, app *App, userMsg model.ChatMessage, query string, resp *model.CiscoQueryResponse, queryErr error) {
	store, snap, err := app.loadSnapshot(ctx)
	if err != nil {
		log.Printf("HISTORY_LOAD_FAILED | error=%v", err)
		return
	}
	defer store.Close()

	answer := model.NewErrorMessage()
	if queryErr == nil {
		answer = model.NewAssistantMessage(query, resp)
	}
	t := model.NewTranscriptFrom(snap.Messages)
	t.SetMax(app.cfg.Storage.MaxMessages)
	t.Append(userMsg, answer)

	if err := store.Save(ctx, storage.Snapshot{Messages: t.Messages(), Suggestions: snap.Suggestions}); err != nil {
		log.Printf("HISTORY_SAVE_FAILED | error=%v", err)
	}
}
