package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/catalog/app/models"
	"github.com/shashiranjanraj/catalog/app/repositories"
	"github.com/shashiranjanraj/catalog/app/services"
	"github.com/shashiranjanraj/catalog/database/seeders"
	"github.com/shashiranjanraj/catalog/pkg/app"
	"github.com/shashiranjanraj/catalog/pkg/cache"
	"github.com/shashiranjanraj/catalog/pkg/database"
)

// catalog seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load sample products into the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.Boot()
		if err != nil {
			return err
		}
		defer a.Close()

		// seeding always needs the tables, whatever DB_AUTO_MIGRATE says
		if err := database.Migrate(a.DB, models.All()...); err != nil {
			return err
		}

		svc := services.NewProductService(repositories.NewStore(a.DB), cache.Nop{}, 0)
		fmt.Fprintln(cmd.OutOrStdout(), "Running seeders...")
		return seeders.RunAll(cmd.Context(), svc, cmd.OutOrStdout())
	},
}
