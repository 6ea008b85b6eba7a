// Package database opens the relational store, migrates the schema and
// seeds the risk profiles and product catalog.
package database

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Aidin1998/investboard/internal/config"
	"github.com/Aidin1998/investboard/pkg/models"
)

// PoolSettings bounds the sql.DB connection pool
type PoolSettings struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
}

// Open connects with the configured driver
func Open(cfg config.DatabaseConfig, logger *zap.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:      gormlogger.Default.LogMode(gormlogger.Silent),
		PrepareStmt: cfg.Driver == "postgres",
	}
	if cfg.LogQueries {
		gormCfg.Logger = gormlogger.Default.LogMode(gormlogger.Info)
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case "postgres":
		db, err = NewPostgresDB(cfg.DSN, PoolSettings{
			MaxOpen:     cfg.MaxOpenConns,
			MaxIdle:     cfg.MaxIdleConns,
			MaxLifetime: cfg.ConnMaxLifetime,
		}, gormCfg)
	case "sqlite", "":
		db, err = NewSQLiteDB(cfg.DSN, gormCfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("Database connected", zap.String("driver", cfg.Driver))
	return db, nil
}

// Migrate creates or updates every table
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(models.AllModels()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Ping checks the connection is usable
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
