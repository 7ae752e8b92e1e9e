// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/commands"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/export"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/history"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/storage"
)

// history - Inspect and manage the persisted transcript.
//
// Subcommands:
//   list (default)     Recent prompts, newest first
//   clear              Delete the transcript and suggestions
//   export             Write the transcript as Markdown, JSON or YAML
//
// Examples:
//   ciscocli history -n 20
//   ciscocli history list --json
//   ciscocli history export --format yaml --out session.yaml
//   ciscocli history clear --yes

func newHistoryCmd(app func() *App) *cobra.Command {
	list := newHistoryListCmd(app)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List, export or clear prompt history",
		Args:  cobra.NoArgs,
		RunE:  list.RunE,
	}
	cmd.Flags().AddFlagSet(list.Flags())
	cmd.AddCommand(list, newHistoryClearCmd(app), newHistoryExportCmd(app))
	return cmd
}

// =============================================================================
// LIST
// =============================================================================

type historyListOptions struct {
	count   int
	json    bool
	pager   bool
	verbose bool
}

func newHistoryListCmd(app func() *App) *cobra.Command {
	var opts historyListOptions
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show recent prompts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistoryList(cmd.Context(), app(), opts)
		},
	}
	flags := cmd.Flags()
	flags.IntVarP(&opts.count, "count", "n", commands.DefaultHistoryCount, "number of prompts (0 for all)")
	flags.BoolVar(&opts.json, "json", false, "print as JSON")
	flags.BoolVar(&opts.pager, "pager", false, "show in a pager")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "print the whole transcript instead of prompts")
	return cmd
}

func runHistoryList(ctx context.Context, a *App, opts historyListOptions) error {
	store, snap, err := a.loadSnapshot(ctx)
	if err != nil {
		return err
	}
	store.Close()

	prompts := history.BuildPromptHistory(snap.Messages)
	if opts.count > 0 {
		prompts = history.Recent(prompts, opts.count)
	} else {
		prompts = history.Recent(prompts, len(prompts))
	}

	if opts.json {
		return NewJSONResponse("history", prompts).Write(a.out)
	}

	var b strings.Builder
	if opts.verbose {
		if err := export.Export(&b, snap, export.FormatMarkdown); err != nil {
			return err
		}
	} else {
		b.WriteString(formatPromptList(prompts))
	}

	if opts.pager {
		return page(a.out, b.String())
	}
	_, err = fmt.Fprint(a.out, b.String())
	return err
}

// formatPromptList numbers prompts, newest first.
func formatPromptList(prompts []string) string {
	if len(prompts) == 0 {
		return "No prompts yet.\n"
	}
	var b strings.Builder
	width := len(fmt.Sprint(len(prompts)))
	for i, p := range prompts {
		fmt.Fprintf(&b, "%*d  %s\n", width, i+1, strings.ReplaceAll(p, "\n", " "))
	}
	return b.String()
}

// =============================================================================
// CLEAR
// =============================================================================

func newHistoryClearCmd(app func() *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the saved transcript and suggestions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			ok, err := RequireConfirmation(yes, "clear all history", a.in, a.out)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(a.out, "Cancelled")
				return nil
			}

			store, err := a.Store()
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Save(cmd.Context(), storage.Snapshot{}); err != nil {
				return err
			}
			// Keep the remote copy consistent so the next pull does not restore it.
			if remote := a.Remote(); remote != nil {
				if err := remote.Push(cmd.Context(), storage.Snapshot{}); err != nil {
					fmt.Fprintln(a.errOut, RenderConditional(WarningStyle, "Warning: ")+"remote not cleared: "+err.Error())
				}
			}
			fmt.Fprintln(a.out, RenderConditional(SuccessStyle, "History cleared"))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// =============================================================================
// EXPORT
// =============================================================================

func newHistoryExportCmd(app func() *App) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the transcript to Markdown, JSON or YAML",
		Long:  "Writes to stdout when --out is \"-\". The format defaults to the output file extension.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			store, snap, err := a.loadSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			store.Close()

			var f export.Format
			if format != "" {
				if f, err = export.ParseFormat(format); err != nil {
					return err
				}
			}

			if out == "-" {
				if f == "" {
					f = export.FormatMarkdown
				}
				return export.Export(a.out, snap, f)
			}
			if out == "" {
				name := f
				if name == "" {
					name = export.FormatMarkdown
				}
				out = export.DefaultFileName(name, time.Now())
			}
			path, err := export.ExportToFile(snap, out, f)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, RenderConditional(SuccessStyle, "Exported to ")+path)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "markdown, json or yaml")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, or - for stdout")
	return cmd
}
