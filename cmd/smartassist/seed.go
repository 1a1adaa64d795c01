package main

import (
	"github.com/spf13/cobra"

	"github.com/yungbote/smartassist-backend/internal/app"
	"github.com/yungbote/smartassist-backend/internal/data/repos"
	"github.com/yungbote/smartassist-backend/internal/seed"
	"github.com/yungbote/smartassist-backend/internal/services"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Upsert the built-in tutorial catalogue",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, cfg, err := setup(cmd)
		if err != nil {
			return err
		}
		defer log.Sync()

		theDB, err := app.OpenDB(log, cfg)
		if err != nil {
			return err
		}
		rs := repos.NewSet(theDB, log)
		if err := seed.Tutorials(cmd.Context(), services.NewTutorialService(theDB, log, rs.Tutorials)); err != nil {
			return err
		}
		log.Info("Tutorials seeded")
		return nil
	},
}
