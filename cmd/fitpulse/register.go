package main

import (
	"github.com/fitpulse/fitpulse/internal/cli"
	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Long:  `Create an account on the backend. Registering does not sign you in; run login afterwards.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		fromStdin, _ := cmd.Flags().GetBool("password-stdin")

		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		email, password, err := readCredentials(cmd, email, fromStdin)
		if err != nil {
			return cli.HandleExecutionError(err)
		}

		return cli.HandleExecutionError(app.Client.Session().Register(sigCtx, email, password))
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)
	registerCmd.Flags().StringP("email", "e", "", "Account email")
	registerCmd.Flags().Bool("password-stdin", false, "Read the password from stdin")
}
