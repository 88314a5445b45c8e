package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/auto-dns/ddns-sync/internal/app"
	"github.com/auto-dns/ddns-sync/internal/config"
	"github.com/auto-dns/ddns-sync/internal/logger"
)

type contextKey string

const configKey = contextKey("config")

var rootCmd = &cobra.Command{
	Use:           "ddns-sync [config-file]",
	Short:         "Keep Cloudflare DNS records in sync with this host's addresses",
	Long:          "Discovers the host's public IPv4 address and IPv6 prefix and updates the configured Cloudflare A and AAAA records when they change.",
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, err := cmd.Flags().GetString("config")
		if err != nil {
			return err
		}
		if len(args) == 1 {
			path = args[0]
		}

		if err := config.InitConfig(path); err != nil {
			return err
		}
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		ctx := context.WithValue(cmd.Context(), configKey, cfg)
		cmd.SetContext(ctx)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Load configuration.
		cfg := cmd.Context().Value(configKey).(*config.Config)

		// Set up logger.
		logInstance := logger.SetupLogger(&cfg.Logging)

		// Create the application.
		application, err := app.New(cfg, logInstance)
		if err != nil {
			return fmt.Errorf("failed to create app: %w", err)
		}

		// Create a context with cancellation for graceful shutdown.
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Listen for OS signals.
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		go func() {
			select {
			case sig := <-sigCh:
				logInstance.Info().Msgf("Received signal: %v", sig)
				cancel()
			case <-ctx.Done():
			}
		}()

		return run(ctx, application)
	},
}

// run drives the application until it finishes or ctx is cancelled.
// Cancellation is a clean shutdown.
func run(ctx context.Context, a application) error {
	defer func() { _ = a.Close() }()

	if err := a.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default is config.yaml in . or /etc/ddns-sync)")
	rootCmd.PersistentFlags().String("log-level", "info", "set log level (trace, debug, info, warn, error, off)")
	rootCmd.PersistentFlags().Int("interval", 0, "seconds between passes, 0 runs a single pass")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("app.interval", rootCmd.PersistentFlags().Lookup("interval"))
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
