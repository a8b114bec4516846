package main

import (
	"fmt"
	"strings"

	"github.com/fitpulse/fitpulse"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of fitpulse",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "fitpulse version %s\n", strings.TrimSpace(fitpulse.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
