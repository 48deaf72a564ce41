package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/feedback-backend/internal/app"
	"github.com/yungbote/feedback-backend/internal/domain/feedback"
)

var submitRating int

var submitCmd = &cobra.Command{
	Use:   "submit [review]",
	Short: "Submit one review through the full pipeline",
	Long: `Generates the reply, summary and actions for one review and appends
the submission to the configured store, exactly as the web form does.

Example:
  feedbackctl submit --rating 5 "Great service!"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			res, err := a.Services.Submissions.Submit(ctx, feedback.Input{Rating: submitRating, Review: args[0]})
			if err != nil {
				var verr *feedback.ValidationError
				if errors.As(err, &verr) {
					for _, f := range verr.Fields {
						fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", f.Field, f.Msg)
					}
				}
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, res.Reply)
			if !res.Stored {
				return fmt.Errorf("submission was not stored in the %s backend", a.Backend.Name())
			}
			return nil
		})
	},
}

func init() {
	submitCmd.Flags().IntVarP(&submitRating, "rating", "r", 5, "Star rating (1-5)")
}
