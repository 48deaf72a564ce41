package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yungbote/feedback-backend/internal/app"
	"github.com/yungbote/feedback-backend/internal/store"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every stored submission to stdout",
	Long: `Loads all rows from the configured backend in storage order.

Formats:
  csv  - header plus one line per submission (default)
  json - {"columns": [...], "rows": [...]}`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			tbl, err := a.Backend.LoadAll(ctx)
			if err != nil {
				return fmt.Errorf("load submissions: %w", err)
			}
			return writeExport(cmd.OutOrStdout(), tbl, exportFormat)
		})
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "Output format (csv or json)")
}

func writeExport(w io.Writer, tbl store.Table, format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "csv":
		header, err := store.EncodeHeader()
		if err != nil {
			return err
		}
		if _, err := w.Write(header); err != nil {
			return err
		}
		return store.WriteRows(w, tbl.Rows...)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(tbl)
	default:
		return fmt.Errorf("unknown format %q (want csv or json)", format)
	}
}
