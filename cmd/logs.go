package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/greetd/app"
	"github.com/kilianp07/greetd/pkg/export"
)

var (
	logDays   int
	logFormat string
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Print delivery log entries from today and the previous days",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withService(func(ctx context.Context, svc *app.Service) error {
			days := logDays
			if days <= 0 {
				days = svc.Config.Dispatch.RecentDays
			}
			out := cmd.OutOrStdout()
			if logFormat == "text" {
				for line, err := range svc.Log.Recent(ctx, svc.Now(), days) {
					if err != nil {
						return err
					}
					_, _ = fmt.Fprintln(out, line)
				}
				return nil
			}
			entries, err := svc.Log.Entries(ctx, svc.Now(), days)
			if err != nil {
				return err
			}
			return export.Write(out, logFormat, entries)
		})
	},
}

func init() {
	logsCmd.Flags().IntVarP(&logDays, "days", "d", 0, "calendar days to include, today counts as one (default from config)")
	logsCmd.Flags().StringVarP(&logFormat, "format", "o", "text", "output format: text, json or csv")
	rootCmd.AddCommand(logsCmd)
}
