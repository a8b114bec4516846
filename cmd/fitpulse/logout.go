package main

import (
	"github.com/fitpulse/fitpulse/internal/cli"
	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadedApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Client.SignOut(cmd.Context()); err != nil {
			return err
		}
		cli.PrintSystemMessage(cmd.OutOrStdout(), "Signed out.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
