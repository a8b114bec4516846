package main

import (
	"fmt"
	"os"

	"github.com/fitpulse/fitpulse/internal/cli"
	"github.com/fitpulse/fitpulse/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fitpulse",
	Short: "fitpulse keeps your fitness tracker session signed in",
	Long: `fitpulse signs in to the fitness tracking backend and keeps the session
in durable storage (file, memory or redis) across restarts.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", config.DefaultPath, "Path to the config file")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

// newApp builds the client stack from the persistent flags.
func newApp(cmd *cobra.Command) (*cli.App, error) {
	path, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")

	return cli.NewApp(cli.Options{
		ConfigPath: path,
		Debug:      debug,
		Stdout:     cmd.OutOrStdout(),
		Stderr:     cmd.ErrOrStderr(),
	})
}

// loadedApp is newApp followed by waiting for the persisted session to load.
func loadedApp(cmd *cobra.Command) (*cli.App, error) {
	app, err := newApp(cmd)
	if err != nil {
		return nil, err
	}
	if err := app.Client.Wait(cmd.Context()); err != nil {
		_ = app.Close()
		return nil, err
	}
	if err := app.Client.Store().LoadErr(); err != nil {
		app.Logger.Warn("Stored session could not be read, starting signed out", "err", err)
	}
	return app, nil
}
