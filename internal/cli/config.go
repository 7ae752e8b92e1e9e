// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config - View and modify ~/.ciscocli/config.toml.
//
// Subcommands:
//   show (default)      Effective configuration, secrets redacted
//   get <key>           One value
//   set <key> <value>   Write a value to the config file
//   keys                List settable keys
//   path                Config file location
//   init                Write a default config file
//
// Examples:
//   ciscocli config set api.key AIza...
//   ciscocli config set storage.backend sqlite
//   ciscocli config set ui.theme light
//   ciscocli config get default_model

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/config"
)

func newConfigCmd(app func() *App) *cobra.Command {
	show := newConfigShowCmd(app)
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View and modify configuration",
		Args:  cobra.NoArgs,
		RunE:  show.RunE,
	}
	cmd.Flags().AddFlagSet(show.Flags())
	cmd.AddCommand(
		show,
		newConfigGetCmd(app),
		newConfigSetCmd(),
		newConfigKeysCmd(),
		newConfigPathCmd(),
		newConfigInitCmd(),
	)
	return cmd
}

// noConfig marks commands that must work with a broken config file.
var noConfig = map[string]string{"noconfig": "true"}

// configFile returns the --config path or the default TOML path.
func configFile(cmd *cobra.Command) (string, error) {
	if f := cmd.Flag("config"); f != nil && f.Value.String() != "" {
		return f.Value.String(), nil
	}
	return config.ConfigPathTOML()
}

// =============================================================================
// SHOW / GET
// =============================================================================

func newConfigShowCmd(app func() *App) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration (secrets redacted)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			if jsonOut {
				return NewJSONResponse("config", a.cfg.Redacted()).Write(a.out)
			}
			return printConfig(a.out, a.cfg)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print as JSON")
	return cmd
}

func printConfig(w io.Writer, cfg *config.Config) error {
	safe := cfg.Redacted()
	fmt.Fprintln(w, RenderConditional(TitleStyle, "ciscocli configuration"))
	fmt.Fprintln(w, RenderSeparator(40))
	for _, key := range config.GetAllKeys() {
		v, err := safe.Get(key)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s %v\n", RenderLabel(key), v)
	}
	return nil
}

func newConfigGetCmd(app func() *App) *cobra.Command {
	var reveal bool
	cmd := &cobra.Command{
		Use:       "get <key>",
		Short:     "Print one configuration value",
		Args:      cobra.ExactArgs(1),
		ValidArgs: config.GetAllKeys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			cfg := a.cfg
			if !reveal {
				cfg = cfg.Redacted()
			}
			v, err := cfg.Get(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.out, v)
			return err
		},
	}
	cmd.Flags().BoolVar(&reveal, "reveal", false, "print secrets unredacted")
	return cmd
}

// =============================================================================
// SET
// =============================================================================

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "set <key> <value>",
		Short:       "Write a value to the config file",
		Args:        cobra.ExactArgs(2),
		ValidArgs:   config.GetAllKeys(),
		Annotations: noConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configFile(cmd)
			if err != nil {
				return err
			}
			if err := setConfigValue(path, args[0], args[1]); err != nil {
				return err
			}
			shown := args[1]
			if config.IsSecretKey(args[0]) {
				shown = "[REDACTED]"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s\n", RenderConditional(SuccessStyle, "Set"), args[0], shown)
			return nil
		},
	}
}

// setConfigValue updates key in the file at path. Environment overrides
// are not applied so they never end up on disk.
func setConfigValue(path, key, value string) error {
	cfg := config.Default()
	if _, err := os.Stat(path); err == nil {
		if err := config.LoadTOML(cfg, path); err != nil {
			return err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := cfg.Set(key, value); err != nil {
		return err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	return config.SaveTOML(cfg, path)
}

// =============================================================================
// KEYS / PATH / INIT
// =============================================================================

func newConfigKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "keys",
		Short:       "List configuration keys",
		Args:        cobra.NoArgs,
		Annotations: noConfig,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, k := range config.GetAllKeys() {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "path",
		Short:       "Print the config file location",
		Args:        cobra.NoArgs,
		Annotations: noConfig,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := configFile(cmd)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	}
}

func newConfigInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a default config file",
		Args:        cobra.NoArgs,
		Annotations: noConfig,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := configFile(cmd)
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.SaveTOML(config.Default(), path); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), RenderConditional(SuccessStyle, "Wrote ")+path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}
