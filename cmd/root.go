package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/greetd/app"
	"github.com/kilianp07/greetd/config"
	"github.com/kilianp07/greetd/infra/logger"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "greetd",
	Short:         "Send each contact a time-of-day greeting once per day",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runMenu,
}

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Interactive menu (default)",
	RunE:  runMenu,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "greetd.yaml", "configuration file (YAML or JSON); defaults apply when missing")
	rootCmd.AddCommand(menuCmd)
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// setup loads the configuration and builds the service.
func setup() (*app.Service, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger.Configure(os.Stderr, cfg.LogLevel)
	return app.New(cfg)
}

// withService runs fn with a service that is closed afterwards.
func withService(fn func(ctx context.Context, svc *app.Service) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := setup()
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	return fn(ctx, svc)
}

func runMenu(cmd *cobra.Command, _ []string) error {
	return withService(func(ctx context.Context, svc *app.Service) error {
		svc.StartMetrics(ctx)
		return app.NewMenu(svc, cmd.InOrStdin(), cmd.OutOrStdout()).Run(ctx)
	})
}
