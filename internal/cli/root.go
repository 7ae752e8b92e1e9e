// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version information (set at build time)
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// =============================================================================
// ROOT COMMAND
// =============================================================================

// NewRootCmd builds the command tree. The returned command runs the TUI
// when invoked without a sub-command.
func NewRootCmd() *cobra.Command {
	var (
		opts Options
		app  *App
	)

	root := &cobra.Command{
		Use:   "ciscocli",
		Short: "Cisco CLI Expert: IOS, IOS XE and IOS XR command reference in your terminal",
		Long: `ciscocli answers Cisco CLI questions with a structured reference card:
syntax, usage context, options, troubleshooting, security notes and
examples. Run without arguments for the interactive terminal UI.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if skipsConfig(cmd) {
				return nil
			}
			var err error
			app, err = newApp(opts, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
			return err
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if app != nil {
				app.Close()
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), app)
		},
	}
	root.SetVersionTemplate(fmt.Sprintf("ciscocli {{.Version}} (commit %s, built %s)\n", GitCommit, BuildDate))

	flags := root.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "config file (default ~/.ciscocli/config.toml)")
	flags.StringVar(&opts.Store, "store", "", "history backend: file, sqlite, buntdb or memory")
	flags.BoolVar(&opts.Ephemeral, "ephemeral", false, "keep history in memory only")
	flags.BoolVar(&opts.Debug, "debug", false, "write a debug log to ~/.ciscocli/debug.log")

	appFn := func() *App { return app }
	root.AddCommand(
		newAskCmd(appFn),
		newChatCmd(appFn),
		newHistoryCmd(appFn),
		newSuggestCmd(appFn),
		newSyncCmd(appFn),
		newSpeakCmd(appFn),
		newServeCmd(appFn),
		newConfigCmd(appFn),
		newModelsCmd(),
		newVersionCmd(),
		newSetupCmd(func(cmd *cobra.Command) error {
			a, err := newApp(opts, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()
			return runTUI(cmd.Context(), a)
		}),
	)
	return root
}

// skipsConfig reports whether cmd runs without loading configuration.
func skipsConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations["noconfig"] == "true" {
			return true
		}
	}
	return false
}

// Execute runs the CLI and returns the process exit code.
func Execute(args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, RenderConditional(ErrorStyle, "Error: ")+err.Error())
		return 1
	}
	return 0
}

// Main is the program entry point.
func Main() {
	os.Exit(Execute(os.Args[1:], os.Stdout, os.Stderr))
}
