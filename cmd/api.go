package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"example.com/shipstores/internal/api"
	"example.com/shipstores/internal/assets"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long:  `Start the HTTP API server for the catalogue and requisition endpoints`,
	RunE:  runAPI,
}

func init() {
	rootCmd.AddCommand(apiCmd)
}

func runAPI(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	assetStore, err := assets.NewStore(a.cfg.Assets.MediaDir)
	if err != nil {
		return err
	}

	server := api.NewServer(a.cfg, api.Services{
		Users:        a.services.users,
		Vessels:      a.services.vessels,
		Items:        a.services.items,
		Requisitions: a.services.requisitions,
		Companies:    a.services.companies,
		Reference:    a.services.reference,
	}, assetStore, a.metrics, a.tracer)

	go func() {
		if err := server.Start(); err != nil {
			log.Error().Err(err).Msg("Server error")
		}
	}()

	<-ctx.Done()

	if err := server.Shutdown(context.Background()); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}

	log.Info().Msg("Shutting down API server")
	return nil
}
