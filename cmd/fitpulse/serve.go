package main

import (
	"fmt"

	"github.com/fitpulse/fitpulse"
	"github.com/fitpulse/fitpulse/internal/cli"
	"github.com/fitpulse/fitpulse/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local session API",
	Long: `Serves the session over HTTP for local tools: GET/POST/DELETE /session,
GET /session/events (SSE), GET /health and GET /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		port := app.Config.Server.Port
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}
		host, _ := cmd.Flags().GetString("host")

		tui.PrintBanner(cmd.ErrOrStderr(), fitpulse.Version)

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		addr := fmt.Sprintf("%s:%d", host, port)
		cli.PrintSystemMessage(cmd.ErrOrStderr(), "Listening on http://%s", addr)
		if err := app.Serve(sigCtx, addr); err != nil {
			return err
		}
		if sig := sigCtx.Signal(); sig != nil {
			cli.PrintSystemMessage(cmd.ErrOrStderr(), "Stopped (%v).", sig)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on (overrides server.port)")
	serveCmd.Flags().String("host", "127.0.0.1", "Interface to bind")
}
