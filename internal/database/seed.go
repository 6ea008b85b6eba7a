package database

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Aidin1998/investboard/internal/advisory"
	"github.com/Aidin1998/investboard/pkg/validation"
)

// SeedResult counts what a seed run wrote
type SeedResult struct {
	Profiles   int `json:"profiles"`
	Products   int `json:"products"`
	YieldBands int `json:"yield_bands"`
	Warnings   int `json:"warnings"`
}

// Seed upserts the catalog by id in one transaction, so running it twice
// leaves the same rows. Band table findings are logged, never fixed.
func Seed(ctx context.Context, db *gorm.DB, catalog *Catalog, v *validation.Validator, logger *zap.Logger) (SeedResult, error) {
	var res SeedResult

	profiles := catalog.RiskProfiles()
	products := catalog.ProductModels()

	for i := range profiles {
		profiles[i].Name = v.SanitizeText(profiles[i].Name)
		profiles[i].Description = v.SanitizeText(profiles[i].Description)
		if err := v.ValidateStruct(profiles[i]); err != nil {
			return res, fmt.Errorf("invalid profile %d: %w", profiles[i].ID, err)
		}
	}
	for i := range products {
		products[i].Name = v.SanitizeText(products[i].Name)
		if err := v.ValidateStruct(products[i]); err != nil {
			return res, fmt.Errorf("invalid product %d: %w", products[i].ID, err)
		}
		for _, issue := range advisory.CheckBands(products[i].YieldBands) {
			res.Warnings++
			logger.Warn("Yield band data quality issue",
				zap.Uint("product_id", products[i].ID),
				zap.Uint("band_id", issue.BandID),
				zap.String("kind", issue.Kind),
				zap.String("detail", issue.Detail))
		}
	}

	upsert := clause.OnConflict{UpdateAll: true}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range profiles {
			if err := tx.Clauses(upsert).Create(&profiles[i]).Error; err != nil {
				return fmt.Errorf("failed to seed profile %d: %w", profiles[i].ID, err)
			}
			res.Profiles++
		}
		for i := range products {
			bands := products[i].YieldBands
			if err := tx.Clauses(upsert).Omit(clause.Associations).Create(&products[i]).Error; err != nil {
				return fmt.Errorf("failed to seed product %d: %w", products[i].ID, err)
			}
			res.Products++
			for j := range bands {
				if err := tx.Clauses(upsert).Create(&bands[j]).Error; err != nil {
					return fmt.Errorf("failed to seed yield band %d: %w", bands[j].ID, err)
				}
				res.YieldBands++
			}
		}
		return nil
	})
	if err != nil {
		return SeedResult{}, err
	}

	logger.Info("Catalog seeded",
		zap.Int("profiles", res.Profiles),
		zap.Int("products", res.Products),
		zap.Int("yield_bands", res.YieldBands),
		zap.Int("warnings", res.Warnings))
	return res, nil
}
