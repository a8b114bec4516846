package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fitpulse/fitpulse/internal/cli"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session",
	Long: `Sign in with email and password. The password is read without echo, or from
stdin with --password-stdin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		fromStdin, _ := cmd.Flags().GetBool("password-stdin")

		app, err := loadedApp(cmd)
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

		if err := app.Client.SignIn(sigCtx, email, password); err != nil {
			return cli.HandleExecutionError(err)
		}

		user := app.Client.Session().CurrentUser()
		cli.PrintSystemMessage(cmd.OutOrStdout(), "Signed in as user %d.", user.ID)
		return nil
	},
}

func readCredentials(cmd *cobra.Command, email string, fromStdin bool) (string, string, error) {
	if fromStdin {
		if email == "" {
			return "", "", fmt.Errorf("--email is required with --password-stdin")
		}
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", err
		}
		return email, strings.TrimRight(string(data), "\r\n"), nil
	}

	p := cli.NewPrompter(cmd.ErrOrStderr())
	if email == "" {
		var err error
		if email, err = p.Line("Email"); err != nil {
			return "", "", err
		}
	}
	password, err := p.Secret("Password")
	if err != nil {
		return "", "", err
	}
	return email, password, nil
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringP("email", "e", "", "Account email")
	loginCmd.Flags().Bool("password-stdin", false, "Read the password from stdin")
}
