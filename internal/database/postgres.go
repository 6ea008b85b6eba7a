package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewPostgresDB opens a PostgreSQL connection and applies pool settings
func NewPostgresDB(dsn string, pool PoolSettings, gormCfg *gorm.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}

	if pool.MaxOpen == 0 {
		pool.MaxOpen = 25
	}
	if pool.MaxIdle == 0 {
		pool.MaxIdle = 5
	}
	if pool.MaxLifetime == 0 {
		pool.MaxLifetime = time.Hour
	}

	sqlDB.SetMaxIdleConns(pool.MaxIdle)
	sqlDB.SetMaxOpenConns(pool.MaxOpen)
	sqlDB.SetConnMaxLifetime(pool.MaxLifetime)
	sqlDB.SetConnMaxIdleTime(15 * time.Minute)

	return db, nil
}
