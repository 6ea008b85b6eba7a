package database

import (
	"gorm.io/gorm"

	"github.com/Aidin1998/investboard/pkg/metrics"
)

// ReportPoolStats copies the sql.DB pool counters into the gauges
func ReportPoolStats(db *gorm.DB, name string) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	stats := sqlDB.Stats()
	metrics.DBOpenConns.WithLabelValues(name).Set(float64(stats.OpenConnections))
	metrics.DBIdleConns.WithLabelValues(name).Set(float64(stats.Idle))
	metrics.DBInUseConns.WithLabelValues(name).Set(float64(stats.InUse))
	return nil
}
