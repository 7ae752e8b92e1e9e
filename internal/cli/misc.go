// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/commands"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/history"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/model"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/storage"
	cloudsync "github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/sync"
)

// =============================================================================
// SUGGEST
// =============================================================================

func newSuggestCmd(app func() *App) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Generate follow-up questions from your prompt history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			return OutputJSON(a.out, jsonOut, "suggest", func() (interface{}, error) {
				got, err := runSuggest(cmd.Context(), a)
				if err != nil {
					return nil, err
				}
				if !jsonOut {
					for i, s := range got {
						fmt.Fprintf(a.out, "  %d. %s\n", i+1, s)
					}
				}
				return got, nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print suggestions as JSON")
	return cmd
}

// runSuggest refreshes and stores the suggestions. Generation failures
// fall back to the defaults with a warning.
func runSuggest(ctx context.Context, a *App) ([]string, error) {
	client, err := a.configuredClient()
	if err != nil {
		return nil, err
	}
	store, snap, err := a.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	got, err := client.Suggestions(ctx, history.BuildPromptHistory(snap.Messages))
	if err != nil {
		fmt.Fprintln(a.errOut, RenderConditional(WarningStyle, "Warning: ")+"using default suggestions: "+err.Error())
	}
	snap.Suggestions = got
	if err := store.Save(ctx, snap); err != nil {
		return nil, fmt.Errorf("save suggestions: %w", err)
	}
	return got, nil
}

// =============================================================================
// SYNC
// =============================================================================

func newSyncCmd(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "sync [push|pull]",
		Short:     "Synchronise history with the Drive app data folder",
		Long:      "Without an argument, pulls and merges the remote history, then pushes the result.",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{commands.SyncPush, commands.SyncPull},
		RunE: func(cmd *cobra.Command, args []string) error {
			direction := commands.SyncBoth
			if len(args) == 1 {
				direction = args[0]
			}
			a := app()
			if err := runSync(cmd.Context(), a, a.Remote(), direction); err != nil {
				return err
			}
			fmt.Fprintln(a.out, RenderConditional(SuccessStyle, "Sync complete"))
			return nil
		},
	}
	return cmd
}

func runSync(ctx context.Context, a *App, remote cloudsync.CloudSync, direction string) error {
	if remote == nil {
		return ErrSyncDisabled
	}
	store, snap, err := a.loadSnapshot(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	merged, err := syncSnapshot(ctx, remote, direction, snap)
	if err != nil {
		return err
	}
	if direction == commands.SyncPush {
		return nil
	}
	return store.Save(ctx, merged)
}

// syncSnapshot pushes local, or pulls and merges, pushing the merge back
// when direction is both. It returns the resulting local state.
func syncSnapshot(ctx context.Context, remote cloudsync.CloudSync, direction string, local storage.Snapshot) (storage.Snapshot, error) {
	if direction == commands.SyncPush {
		return local, remote.Push(ctx, local)
	}

	remoteSnap, found, err := remote.Pull(ctx)
	if err != nil {
		return local, fmt.Errorf("pull: %w", err)
	}
	merged := local
	if found {
		merged = cloudsync.Merge(local, remoteSnap)
	}
	log.Printf("SYNC_PULL | found=%t local=%d merged=%d", found, len(local.Messages), len(merged.Messages))

	if direction == commands.SyncBoth {
		if err := remote.Push(ctx, merged); err != nil {
			return merged, fmt.Errorf("push: %w", err)
		}
	}
	return merged, nil
}

// =============================================================================
// SPEAK
// =============================================================================

func newSpeakCmd(app func() *App) *cobra.Command {
	var last bool
	cmd := &cobra.Command{
		Use:   "speak [text...]",
		Short: "Read text, or the last answer, aloud",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			client, err := a.configuredClient()
			if err != nil {
				return err
			}

			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" || last {
				text, err = lastAnswerText(cmd.Context(), a)
				if err != nil {
					return err
				}
			}
			return a.Speech(client).Speak(cmd.Context(), text)
		},
	}
	cmd.Flags().BoolVar(&last, "last", false, "read the most recent answer")
	return cmd
}

func lastAnswerText(ctx context.Context, a *App) (string, error) {
	store, snap, err := a.loadSnapshot(ctx)
	if err != nil {
		return "", err
	}
	defer store.Close()

	msg, ok := model.NewTranscriptFrom(snap.Messages).LastResponse()
	if !ok || msg.Metadata == nil {
		return "", fmt.Errorf("no answer to read yet")
	}
	text := speechTextFor(msg.Metadata)
	if text == "" {
		return "", fmt.Errorf("the last answer has nothing to read")
	}
	return text, nil
}

// =============================================================================
// MODELS / VERSION
// =============================================================================

func newModelsCmd() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:         "models",
		Short:       "List the available models",
		Args:        cobra.NoArgs,
		Annotations: noConfig,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if jsonOut {
				return NewJSONResponse("models", model.Models).Write(out)
			}
			for _, m := range model.Models {
				marker := "  "
				if m.ID == model.DefaultModelID {
					marker = "* "
				}
				fmt.Fprintf(out, "%s%s %s\n", marker, RenderLabel(m.Name), RenderConditional(DimStyle, m.ID+"  "+m.Description))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the catalogue as JSON")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Args:        cobra.NoArgs,
		Annotations: noConfig,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ciscocli %s\n", Version)
			fmt.Fprintf(out, "  commit:  %s\n", GitCommit)
			fmt.Fprintf(out, "  built:   %s\n", BuildDate)
			fmt.Fprintf(out, "  go:      %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
