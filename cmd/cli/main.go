package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kirillkom/mail-check/internal/config"
	"github.com/kirillkom/mail-check/internal/infrastructure/backend"
	"github.com/kirillkom/mail-check/internal/infrastructure/gateway"
	"github.com/kirillkom/mail-check/internal/observability/logging"
)

var version = "dev" // Overwritten at build time

type globalOptions struct {
	gatewayURL string
	timeout    time.Duration
	logLevel   string
}

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Load()

	if err := newRootCmd(cfg).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(cfg config.Config) *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "mailcheck",
		Short: "Classify emails as Produtivo or Improdutivo",
		Long: `mailcheck sends an email to a running mail-check gateway, prints the
classification with its suggested reply and lets you correct it.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(logging.NewCLILogger(os.Stderr, opts.logLevel))
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&opts.gatewayURL, "gateway", cfg.GatewayURL, "Gateway base URL")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", cfg.BackendTimeout, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newAnalyzeCmd(opts),
		newFeedbackCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}

func (o *globalOptions) gateway() *gateway.Client {
	return gateway.New(backend.New(o.gatewayURL, backend.Options{Timeout: o.timeout}))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mailcheck version %s\n", version)
		},
	}
}

// failure turns a controller error into the message the form would show.
func failure(err error, message string) error {
	if message == "" {
		return err
	}
	return errors.New(message)
}
