// Package dbtest opens isolated in-memory databases for tests
package dbtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Aidin1998/investboard/internal/database"
	"github.com/Aidin1998/investboard/pkg/validation"
)

// Empty returns a migrated database with no rows
func Empty(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.NewSQLiteDB(dsn, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	require.NoError(t, database.Migrate(context.Background(), db))
	return db
}

// Seeded returns a migrated database holding the built-in catalog
func Seeded(t testing.TB) *gorm.DB {
	t.Helper()

	db := Empty(t)
	catalog, err := database.DefaultCatalog()
	require.NoError(t, err)
	_, err = database.Seed(context.Background(), db, catalog, validation.NewValidator(zap.NewNop()), zap.NewNop())
	require.NoError(t, err)
	return db
}
