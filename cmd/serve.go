package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kilianp07/greetd/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve /metrics, /api/deliveries and /api/contacts",
	RunE: func(*cobra.Command, []string) error {
		return withService(func(ctx context.Context, svc *app.Service) error {
			return svc.Serve(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
