package main

import (
	"github.com/spf13/cobra"

	"github.com/mhsenam/rentmio/internal/app"
	"github.com/mhsenam/rentmio/internal/config"
	"github.com/mhsenam/rentmio/internal/migrations"
	"github.com/mhsenam/rentmio/internal/repositories"
	"github.com/mhsenam/rentmio/internal/services"
	"github.com/mhsenam/rentmio/internal/utils"
)

func SeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the demo host, listings, categories and experiences",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := config.LoadConfig()

			application, err := app.NewApp(cfg)
			if err != nil {
				return err
			}
			defer application.Close()

			if _, err := migrations.Apply(ctx, application.DB); err != nil {
				return err
			}

			catalogRepo := repositories.NewCatalogRepository(application.DB)
			if err := app.SeedAllTestData(ctx,
				repositories.NewIdentityRepository(application.DB),
				repositories.NewPropertyRepository(application.DB),
				catalogRepo,
			); err != nil {
				return err
			}
			services.NewCatalogService(catalogRepo, application.Cache).Invalidate(ctx)
			utils.Logger.Info("Seed data in place")
			return nil
		},
	}
}
