package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/yungbote/feedback-backend/internal/app"
)

var timeout time.Duration

// rootCmd operates on the storage backend selected by the same
// environment and FEEDBACK_CONFIG file the server reads.
var rootCmd = &cobra.Command{
	Use:   "feedbackctl",
	Short: "Operator tools for the feedback service",
	Long: `feedbackctl works against the configured storage backend
(STORAGE_BACKEND and related variables, or FEEDBACK_CONFIG).

Available subcommands:
  init   - Create the store and its header if missing
  export - Dump every submission as CSV or JSON
  report - Print dashboard statistics and filtered rows
  submit - Run one submission through the pipeline`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Operation timeout")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(submitCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withApp bootstraps storage and services, runs fn, then releases them.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	a, err := app.Bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the configured store if it does not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			// Bootstrap already ran Initialize.
			fmt.Fprintf(cmd.OutOrStdout(), "%s store ready\n", a.Backend.Name())
			return nil
		})
	},
}
