// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/server"
)

func newServeCmd(app func() *App) *cobra.Command {
	var (
		addr   string
		origin string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP proxy that keeps the API key server-side",
		Long: `Serves POST /api/gemini (query, "suggestions" and "tts" actions) and
GET /healthz. Browser builds call this proxy instead of the model API.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			cfg := a.cfg.Server
			if addr != "" {
				cfg.Addr = addr
			}
			if origin != "" {
				cfg.AllowedOrigin = origin
			}

			client := a.Client()
			if !client.IsConfigured() {
				fmt.Fprintln(a.errOut, RenderConditional(WarningStyle, "Warning: ")+ErrNoAPIKey.Error())
			}
			fmt.Fprintf(a.out, "Listening on http://%s (Ctrl+C to stop)\n", cfg.Addr)
			return server.NewServer(cfg, client).Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from server.addr)")
	cmd.Flags().StringVar(&origin, "origin", "", "allowed CORS origins, comma separated")
	return cmd
}
