// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/setup"
)

// newSetupCmd runs the first-run wizard. launch starts the chat UI when
// the user asks for it on the last screen.
func newSetupCmd(launch func(cmd *cobra.Command) error) *cobra.Command {
	var text bool
	cmd := &cobra.Command{
		Use:         "setup",
		Short:       "Guided first-run configuration",
		Args:        cobra.NoArgs,
		Annotations: noConfig,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := configFile(cmd)
			if err != nil {
				return err
			}
			checker := setup.NewChecker(filepath.Dir(path))

			if text || !IsTTY() || !IsStdoutTTY() {
				line := liner.NewLiner()
				defer line.Close()
				line.SetCtrlCAborts(true)
				_, err := setup.RunText(line, cmd.OutOrStdout(), path, checker)
				if errors.Is(err, setup.ErrAborted) {
					fmt.Fprintln(cmd.OutOrStdout(), "\nSetup cancelled")
					return nil
				}
				return err
			}

			wizard := setup.NewWizard(path, checker)
			if _, err := tea.NewProgram(wizard, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run(); err != nil {
				if errors.Is(err, tea.ErrProgramKilled) {
					return nil
				}
				return fmt.Errorf("setup: %w", err)
			}
			result := wizard.Result()
			if !result.Written {
				fmt.Fprintln(cmd.OutOrStdout(), "Setup cancelled; nothing was written")
				return nil
			}
			if result.Launch {
				return launch(cmd)
			}
			fmt.Fprintln(cmd.OutOrStdout(), RenderConditional(SuccessStyle, "Wrote ")+result.Path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&text, "text", "t", false, "line-based setup without the full-screen UI")
	return cmd
}
