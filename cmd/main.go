// @title SaveEat API
// @version 1.0
// @description Pantry tracking, expiry reminders, recipe suggestions and dish sharing.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"saveeat/internal/config"
	"saveeat/internal/jobs/background"
	"saveeat/internal/logging"
	"saveeat/pkg/database"
)

// version is set at build time via -ldflags "-X main.version=x.y.z"
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "saveeat",
		Short:         "SaveEat pantry and food sharing API",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", os.Getenv("SAVEEAT_CONFIG"), "Path to a YAML config file")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API and the expiry reminder scheduler",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runServe(cmd.Context(), configPath)
			},
		},
		newNotifyCmd(&configPath),
		&cobra.Command{
			Use:   "migrate",
			Short: "Create the database schema",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMigrate(cmd.Context(), configPath)
			},
		},
		&cobra.Command{
			Use:   "vapid-keys",
			Short: "Generate a VAPID key pair for Web Push",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return printVAPIDKeys(cmd.OutOrStdout())
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "saveeat %s\n", version)
			},
		},
	)
	return root
}

func newNotifyCmd(configPath *string) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Send expiry digests to every subscribed user once and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runNotify(cmd.Context(), *configPath, days, cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "Expiry window in days (default from config)")
	return cmd
}

// loadConfig reads and validates the configuration and builds the logger
func loadConfig(path string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func runNotify(ctx context.Context, configPath string, days int, out io.Writer) error {
	cfg, logger, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	if days > 0 {
		cfg.Push.DefaultDays = days
	}
	// one-shot run, nothing to schedule
	cfg.Push.DailyAt = ""
	cfg.Push.SweepInterval = 0

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	js, err := background.NewJobScheduler(a.push, a.cache, cfg.Push, logger)
	if err != nil {
		return err
	}
	defer js.Stop() //nolint:errcheck

	res, err := js.Sweep(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "sent=%d removed=%d failed=%d\n", res.Sent, res.Removed, res.Failed)
	return nil
}

func runMigrate(ctx context.Context, configPath string) error {
	cfg, logger, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	pool, err := database.NewPool(ctx, cfg.Database.URL, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		return err
	}
	logger.Info("schema applied")
	return nil
}

func printVAPIDKeys(out io.Writer) error {
	privateKey, publicKey, err := webpush.GenerateVAPIDKeys()
	if err != nil {
		return fmt.Errorf("failed to generate VAPID keys: %w", err)
	}
	fmt.Fprintf(out, "VAPID_PUBLIC_KEY=%s\nVAPID_PRIVATE_KEY=%s\n", publicKey, privateKey)
	return nil
}
