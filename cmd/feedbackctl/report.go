package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yungbote/feedback-backend/internal/app"
	"github.com/yungbote/feedback-backend/internal/services"
)

var (
	reportMinRating int
	reportInternal  bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print dashboard statistics and the filtered submissions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			rep := a.Services.Dashboard.Report(ctx, services.ReportQuery{MinRating: reportMinRating, Refresh: true})
			return writeReport(cmd.OutOrStdout(), rep, reportInternal)
		})
	},
}

func init() {
	reportCmd.Flags().IntVar(&reportMinRating, "min-rating", 1, "Only list submissions rated at least this (1-5)")
	reportCmd.Flags().BoolVar(&reportInternal, "internal", false, "List summaries and actions instead of public replies")
}

func writeReport(w io.Writer, rep services.Report, internal bool) error {
	if rep.Notice != "" {
		fmt.Fprintf(w, "NOTICE: %s\n", rep.Notice)
	}
	fmt.Fprintf(w, "Average rating: %s\n", rep.Stats.AverageDisplay())
	fmt.Fprintf(w, "Total submissions: %d\n", rep.Stats.Total)
	fmt.Fprintf(w, "Positive (4+): %d\n", rep.Stats.Positive)
	fmt.Fprintf(w, "Showing %d with rating >= %d\n\n", len(rep.Public), rep.MinRating)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if internal {
		fmt.Fprintln(tw, "DATE\tRATING\tSUMMARY\tACTIONS")
		for _, r := range rep.Internal {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Date, r.Rating, r.Summary, r.Actions)
		}
	} else {
		fmt.Fprintln(tw, "DATE\tRATING\tREVIEW\tREPLY")
		for _, r := range rep.Public {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Date, r.Rating, r.Review, r.Reply)
		}
	}
	return tw.Flush()
}
