package main

import (
	"errors"
	"fmt"

	"github.com/fitpulse/fitpulse/pkg/domain"
	"github.com/spf13/cobra"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect the durable key-value storage",
	Long:  `List, read and remove raw keys in the configured storage backend.`,
}

var storeLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		keys, err := app.Client.KeyValueStore().Keys(cmd.Context())
		if err != nil {
			return fmt.Errorf("error listing keys: %w", err)
		}
		if len(keys) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No keys stored.")
			return nil
		}
		for _, k := range keys {
			fmt.Fprintln(cmd.OutOrStdout(), "- "+k)
		}
		return nil
	},
}

var storeGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print the value of a key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		val, err := app.Client.KeyValueStore().Get(cmd.Context(), args[0])
		if errors.Is(err, domain.ErrKeyNotFound) {
			return fmt.Errorf("key %q not found", args[0])
		}
		if err != nil {
			return fmt.Errorf("error reading %q: %w", args[0], err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), val)
		return nil
	},
}

var storeRmCmd = &cobra.Command{
	Use:   "rm <key>...",
	Short: "Remove one or more keys",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		var errs []error
		for _, key := range args {
			if err := app.Client.KeyValueStore().Delete(cmd.Context(), key); err != nil {
				errs = append(errs, fmt.Errorf("error removing %q: %w", key, err))
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed '%s'\n", key)
		}
		return errors.Join(errs...)
	},
}

func init() {
	rootCmd.AddCommand(storeCmd)
	storeCmd.AddCommand(storeLsCmd)
	storeCmd.AddCommand(storeGetCmd)
	storeCmd.AddCommand(storeRmCmd)
}
