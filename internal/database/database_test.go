package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Aidin1998/investboard/internal/config"
	"github.com/Aidin1998/investboard/pkg/models"
	"github.com/Aidin1998/investboard/pkg/validation"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := NewSQLiteDB(":memory:", &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	require.NoError(t, Migrate(context.Background(), db))
	return db
}

func TestDefaultCatalog(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)

	assert.Len(t, catalog.Profiles, 3)
	assert.Len(t, catalog.Products, 46)

	profiles := catalog.RiskProfiles()
	assert.Equal(t, "Conservative", profiles[0].Name)
	assert.Equal(t, "1.5", profiles[0].MaxRisk.String())

	products := catalog.ProductModels()
	assert.Equal(t, models.CategoryLCI, products[0].Category)
	require.NotEmpty(t, products[0].YieldBands)
	assert.Equal(t, "12.37445", products[0].YieldBands[0].AnnualRate.String())
	assert.Equal(t, products[0].ID, products[0].YieldBands[0].ProductID)
}

func TestParseCatalogRejects(t *testing.T) {
	_, err := ParseCatalog([]byte(`products: [{id: 1, name: X, category: ETF, risk: "1"}]`))
	assert.Error(t, err)

	_, err = ParseCatalog([]byte(`products: [{name: X, category: CDB, risk: "1"}]`))
	assert.Error(t, err)

	_, err = ParseCatalog([]byte(`
products:
  - {id: 1, name: A, category: CDB, risk: "1", yield_bands: [{id: 1, annual_rate: "1", range_min: "0", range_max: "1"}]}
  - {id: 2, name: B, category: fundo, risk: "1", yield_bands: [{id: 1, annual_rate: "1", range_min: "0", range_max: "1"}]}
`))
	assert.Error(t, err)

	_, err = ParseCatalog([]byte(`{{`))
	assert.Error(t, err)
}

func TestSeedIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	catalog, err := DefaultCatalog()
	require.NoError(t, err)
	v := validation.NewValidator(zap.NewNop())

	first, err := Seed(context.Background(), db, catalog, v, zap.NewNop())
	require.NoError(t, err)
	_, err = Seed(context.Background(), db, catalog, v, zap.NewNop())
	require.NoError(t, err)

	var profiles, products, bands int64
	db.Model(&models.RiskProfile{}).Count(&profiles)
	db.Model(&models.Product{}).Count(&products)
	db.Model(&models.YieldBand{}).Count(&bands)

	assert.Equal(t, int64(first.Profiles), profiles)
	assert.Equal(t, int64(first.Products), products)
	assert.Equal(t, int64(first.YieldBands), bands)
	assert.Equal(t, int64(80), bands)

	var product models.Product
	require.NoError(t, db.Preload("YieldBands").First(&product, 1).Error)
	assert.True(t, product.Risk.Equal(catalog.ProductModels()[0].Risk))
	assert.Len(t, product.YieldBands, 5)
}

func TestSeedSanitizesAndValidates(t *testing.T) {
	db := setupTestDB(t)
	v := validation.NewValidator(zap.NewNop())

	catalog, err := ParseCatalog([]byte(`
profiles:
  - {id: 9, name: "<b>Bold</b>", description: "<i>desc</i>", max_risk: "2"}
`))
	require.NoError(t, err)
	_, err = Seed(context.Background(), db, catalog, v, zap.NewNop())
	require.NoError(t, err)

	var p models.RiskProfile
	require.NoError(t, db.First(&p, 9).Error)
	assert.Equal(t, "Bold", p.Name)
	assert.Equal(t, "desc", p.Description)

	bad, err := ParseCatalog([]byte(`products: [{id: 1, name: X, category: CDB, risk: "9"}]`))
	require.NoError(t, err)
	_, err = Seed(context.Background(), db, bad, v, zap.NewNop())
	assert.Error(t, err)
}

func TestSeedCountsBandWarnings(t *testing.T) {
	db := setupTestDB(t)
	catalog, err := ParseCatalog([]byte(`
products:
  - id: 1
    name: Overlapping
    category: CDB
    risk: "1"
    yield_bands:
      - {id: 1, annual_rate: "10", range_min: "0", range_max: "1000"}
      - {id: 2, annual_rate: "11", range_min: "500", range_max: "2000"}
`))
	require.NoError(t, err)

	res, err := Seed(context.Background(), db, catalog, validation.NewValidator(zap.NewNop()), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Warnings)
	assert.Equal(t, 2, res.YieldBands)
}

func TestLoadCatalogFileMissing(t *testing.T) {
	_, err := LoadCatalogFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "oracle"}, zap.NewNop())
	assert.Error(t, err)
}

func TestOpenSQLiteAndPoolStats(t *testing.T) {
	db, err := Open(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, Ping(context.Background(), db))
	assert.NoError(t, ReportPoolStats(db, "test"))
}
