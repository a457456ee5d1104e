package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/greetd/app"
	"github.com/kilianp07/greetd/core/dispatch"
)

var forceSend bool

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Run one dispatch pass and print the report",
	Long: `Run one dispatch pass over all contacts. Without --force only contacts whose
preferred time lies within the dispatch window are greeted. Contacts already
greeted today are always skipped. The command fails when any contact failed.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		mode := dispatch.Windowed
		if forceSend {
			mode = dispatch.Force
		}
		return withService(func(ctx context.Context, svc *app.Service) error {
			rep := svc.Manager.Run(ctx, mode)
			out := cmd.OutOrStdout()
			for _, o := range rep.Outcomes {
				_, _ = fmt.Fprintln(out, o)
			}
			_, _ = fmt.Fprintln(out, rep.Summary())
			return rep.Err()
		})
	},
}

func init() {
	sendCmd.Flags().BoolVarP(&forceSend, "force", "f", false, "ignore preferred times")
	rootCmd.AddCommand(sendCmd)
}
