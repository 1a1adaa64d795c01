package main

import (
	"github.com/spf13/cobra"

	"github.com/yungbote/smartassist-backend/internal/app"
	"github.com/yungbote/smartassist-backend/internal/data/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, cfg, err := setup(cmd)
		if err != nil {
			return err
		}
		defer log.Sync()

		cfg.AutoMigrate = false
		theDB, err := app.OpenDB(log, cfg)
		if err != nil {
			return err
		}
		if err := db.AutoMigrateAll(theDB); err != nil {
			return err
		}
		log.Info("Schema migrated", "driver", cfg.DBDriver)
		return nil
	},
}
