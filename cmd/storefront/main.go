package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var envFile string

var rootCmd = &cobra.Command{
	Use:           "storefront",
	Short:         "Storefront API server and maintenance commands",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(tokensCmd)
}

// boot loads configuration, installs the default logger and returns a
// context carrying it.
func boot(ctx context.Context) (*config.Config, *slog.Logger, context.Context, error) {
	config.LoadDotEnv(envFile)

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, ctx, fmt.Errorf("config: %w", err)
	}

	logger := logging.New(cfg.LogLevel).With("app", "storefront", "env", cfg.AppEnv)
	slog.SetDefault(logger)
	return cfg, logger, logging.IntoContext(ctx, logger), nil
}

// bootDB boots and opens the database.
func bootDB(ctx context.Context) (*config.Config, *gorm.DB, context.Context, error) {
	cfg, logger, ctx, err := boot(ctx)
	if err != nil {
		return nil, nil, ctx, err
	}
	gdb, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Error("db_open_failed", "driver", cfg.DBDriver, "error", err)
		return nil, nil, ctx, err
	}
	return cfg, gdb, ctx, nil
}
