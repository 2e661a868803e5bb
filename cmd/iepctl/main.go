package main

import (
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/iep-hero-api/pkg/config"
	"github.com/noah-isme/iep-hero-api/pkg/database"
	"github.com/noah-isme/iep-hero-api/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:           "iepctl",
	Short:         "Operations tooling for the IEP Hero API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(newMigrateCmd(), newSeedCmd(), newScoreCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// environment loads config and opens the database shared by every subcommand.
func environment() (*config.Config, *zap.Logger, *sqlx.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect database: %w", err)
	}
	return cfg, logr, db, nil
}
