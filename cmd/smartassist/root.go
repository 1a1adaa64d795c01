package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yungbote/smartassist-backend/internal/app"
	"github.com/yungbote/smartassist-backend/internal/platform/logger"
)

var rootCmd = &cobra.Command{
	Use:           "smartassist",
	Short:         "Classroom coding tutorial backend",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("log-mode", "", "Log mode: development, production or test (overrides LOG_MODE)")
	rootCmd.PersistentFlags().String("db-driver", "", "postgres or sqlite (overrides DB_DRIVER)")
	rootCmd.PersistentFlags().String("sqlite-path", "", "SQLite database file (overrides SQLITE_PATH)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

// setup builds the logger and loads configuration, letting flags override
// the environment.
func setup(cmd *cobra.Command) (*logger.Logger, app.Config, error) {
	mode, _ := cmd.Flags().GetString("log-mode")
	if mode == "" {
		mode = os.Getenv("LOG_MODE")
	}
	if mode == "" {
		mode = "development"
	}
	log, err := logger.New(mode)
	if err != nil {
		return nil, app.Config{}, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := app.LoadConfig(log)
	if v, _ := cmd.Flags().GetString("db-driver"); v != "" {
		cfg.DBDriver = v
	}
	if v, _ := cmd.Flags().GetString("sqlite-path"); v != "" {
		cfg.SQLitePath = v
	}
	return log, cfg, nil
}
