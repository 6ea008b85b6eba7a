package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Aidin1998/investboard/internal/database"
)

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.Open(a.cfg.Database, a.logger)
			if err != nil {
				return err
			}
			defer closeDB(db, a.logger)

			if err := database.Migrate(cmd.Context(), db); err != nil {
				a.logger.Error("Migration failed", zap.Error(err))
				return err
			}
			a.logger.Info("Schema migrated")
			return nil
		},
	}
}
