package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/smartassist-backend/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, cfg, err := setup(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.HTTPAddr = addr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := app.New(ctx, log, cfg)
		if err != nil {
			log.Sync()
			return err
		}
		defer a.Close()
		if err := a.Start(ctx); err != nil {
			return err
		}

		errCh := make(chan error, 1)
		go func() { errCh <- a.Run() }()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			log.Info("Shutting down")
			return nil
		}
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides HTTP_ADDR)")
}
