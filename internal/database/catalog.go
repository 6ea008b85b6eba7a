package database

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/Aidin1998/investboard/pkg/models"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog is the seed file layout
type Catalog struct {
	Profiles []ProfileSeed `yaml:"profiles"`
	Products []ProductSeed `yaml:"products"`
}

type ProfileSeed struct {
	ID          uint            `yaml:"id"`
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	MaxRisk     decimal.Decimal `yaml:"max_risk"`
}

type ProductSeed struct {
	ID         uint            `yaml:"id"`
	Name       string          `yaml:"name"`
	Category   string          `yaml:"category"`
	Risk       decimal.Decimal `yaml:"risk"`
	YieldBands []BandSeed      `yaml:"yield_bands"`
}

type BandSeed struct {
	ID         uint            `yaml:"id"`
	AnnualRate decimal.Decimal `yaml:"annual_rate"`
	RangeMin   decimal.Decimal `yaml:"range_min"`
	RangeMax   decimal.Decimal `yaml:"range_max"`
}

// DefaultCatalog returns the built-in profiles and products
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// LoadCatalogFile reads a catalog from a YAML file
func LoadCatalogFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return ParseCatalog(raw)
}

// ParseCatalog decodes a YAML catalog and checks ids and categories
func ParseCatalog(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	seen := map[uint]bool{}
	for _, p := range c.Profiles {
		if p.ID == 0 {
			return nil, fmt.Errorf("profile %q has no id", p.Name)
		}
	}
	for _, p := range c.Products {
		if p.ID == 0 {
			return nil, fmt.Errorf("product %q has no id", p.Name)
		}
		if _, ok := models.ParseCategory(p.Category); !ok {
			return nil, fmt.Errorf("product %d has unknown category %q", p.ID, p.Category)
		}
		for _, b := range p.YieldBands {
			if b.ID == 0 {
				return nil, fmt.Errorf("product %d has a yield band without id", p.ID)
			}
			if seen[b.ID] {
				return nil, fmt.Errorf("yield band id %d is used twice", b.ID)
			}
			seen[b.ID] = true
		}
	}
	return &c, nil
}

// RiskProfiles converts the profile seeds into models
func (c *Catalog) RiskProfiles() []models.RiskProfile {
	out := make([]models.RiskProfile, 0, len(c.Profiles))
	for _, p := range c.Profiles {
		out = append(out, models.RiskProfile{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			MaxRisk:     p.MaxRisk,
		})
	}
	return out
}

// ProductModels converts the product seeds into models with their bands
func (c *Catalog) ProductModels() []models.Product {
	out := make([]models.Product, 0, len(c.Products))
	for _, p := range c.Products {
		category, _ := models.ParseCategory(p.Category)
		product := models.Product{
			ID:       p.ID,
			Name:     p.Name,
			Category: category,
			Risk:     p.Risk,
		}
		for _, b := range p.YieldBands {
			product.YieldBands = append(product.YieldBands, models.YieldBand{
				ID:         b.ID,
				ProductID:  p.ID,
				AnnualRate: b.AnnualRate,
				RangeMin:   b.RangeMin,
				RangeMax:   b.RangeMax,
			})
		}
		out = append(out, product)
	}
	return out
}
