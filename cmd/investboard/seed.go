package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Aidin1998/investboard/internal/database"
	"github.com/Aidin1998/investboard/pkg/validation"
)

func (a *app) seedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load risk profiles and the product catalog",
		Long:  "Upserts risk profiles, products and yield bands by id. Without --file the built-in catalog is used.",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := loadCatalog(file)
			if err != nil {
				return err
			}

			db, err := database.Open(a.cfg.Database, a.logger)
			if err != nil {
				return err
			}
			defer closeDB(db, a.logger)

			if err := database.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			res, err := database.Seed(cmd.Context(), db, catalog, validation.NewValidator(a.logger), a.logger)
			if err != nil {
				a.logger.Error("Seed failed", zap.Error(err))
				return err
			}
			a.logger.Info("Catalog seeded",
				zap.Int("profiles", res.Profiles),
				zap.Int("products", res.Products),
				zap.Int("yield_bands", res.YieldBands),
				zap.Int("warnings", res.Warnings))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML catalog file")
	return cmd
}

func loadCatalog(file string) (*database.Catalog, error) {
	if file == "" {
		return database.DefaultCatalog()
	}
	return database.LoadCatalogFile(file)
}

func closeDB(db *gorm.DB, logger *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Warn("Failed to close database", zap.Error(err))
	}
}
