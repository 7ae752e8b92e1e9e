// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/storage"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/ui/chat"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/ui/styles"
)

// runTUI starts the full-screen chat.
func runTUI(ctx context.Context, app *App) error {
	if err := RequiresTTY("run the terminal UI"); err != nil {
		return fmt.Errorf("%w (try: ciscocli ask \"<question>\")", err)
	}

	client := app.Client()
	if !client.IsConfigured() {
		fmt.Fprintln(app.errOut, RenderConditional(WarningStyle, "Warning: ")+ErrNoAPIKey.Error())
	}

	store, initial, err := app.loadSnapshot(ctx)
	if errors.Is(err, storage.ErrCorrupt) {
		// The store is rewritten on the next save.
		fmt.Fprintf(app.errOut, "Warning: %v (starting with an empty history)\n", err)
		store, err = app.Store()
		initial = storage.Snapshot{}
	}
	if err != nil {
		return err
	}
	defer store.Close()

	remote := app.Remote()
	auto := app.AutoSync(remote)
	if auto != nil {
		defer func() {
			if err := auto.Close(); err != nil {
				log.Printf("AUTOSYNC_FLUSH_FAILED | error=%v", err)
			}
		}()
	}

	synth := app.Speech(client)
	defer synth.Stop()

	theme := styles.NewTheme(app.cfg.UI.Theme)
	m := chat.New(theme, chat.Options{
		Config:    app.cfg,
		Backend:   client,
		Store:     store,
		Initial:   initial,
		WatchPath: app.watchPath(),
		Speech:    synth,
		Remote:    remote,
		AutoSync:  auto,
	})

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("terminal UI: %w", err)
	}
	return nil
}
