package main

import (
	"encoding/json"
	"fmt"

	httpAdapter "github.com/fitpulse/fitpulse/internal/adapters/http"
	"github.com/fitpulse/fitpulse/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		app, err := loadedApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		if asJSON {
			status := httpAdapter.StatusOf(app.Client.Store().Snapshot())
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(status)
		}

		md := tui.WhoamiMarkdown(app.Client.Session().CurrentUser(), app.Config.API.BaseURL)
		out, err := tui.NewRenderer()(md)
		if err != nil {
			out = md
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
	whoamiCmd.Flags().Bool("json", false, "Print the session status as JSON (never includes the token)")
}
