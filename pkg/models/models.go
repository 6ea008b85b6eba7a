package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ProductCategory is the instrument type of a product
type ProductCategory string

const (
	CategoryCDB  ProductCategory = "CDB"
	CategoryRDB  ProductCategory = "RDB"
	CategoryLCI  ProductCategory = "LCI"
	CategoryLCA  ProductCategory = "LCA"
	CategoryFund ProductCategory = "FUND"
)

// Categories lists every supported category in display order
var Categories = []ProductCategory{CategoryCDB, CategoryRDB, CategoryLCI, CategoryLCA, CategoryFund}

// ParseCategory accepts any case and the local spelling "fundo" for funds.
func ParseCategory(s string) (ProductCategory, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CDB":
		return CategoryCDB, true
	case "RDB":
		return CategoryRDB, true
	case "LCI":
		return CategoryLCI, true
	case "LCA":
		return CategoryLCA, true
	case "FUND", "FUNDO":
		return CategoryFund, true
	}
	return "", false
}

// Product represents an investable product in the catalog
type Product struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	Name       string          `json:"name" gorm:"size:120;not null" validate:"required,max=120"`
	Category   ProductCategory `json:"category" gorm:"size:8;index;not null" validate:"required,oneof=CDB RDB LCI LCA FUND"`
	Risk       decimal.Decimal `json:"risk" gorm:"type:numeric(4,2);not null" validate:"decimal_between=0.5 5"`
	YieldBands []YieldBand     `json:"yield_bands,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// YieldBand maps an inclusive amount range onto an annual rate
type YieldBand struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	ProductID  uint            `json:"product_id" gorm:"index;not null"`
	AnnualRate decimal.Decimal `json:"annual_rate" gorm:"type:numeric(10,5);not null"`
	RangeMin   decimal.Decimal `json:"range_min" gorm:"type:numeric(20,2);not null" validate:"decimal_gte0"`
	RangeMax   decimal.Decimal `json:"range_max" gorm:"type:numeric(20,2);not null"`
}

// RiskProfile is a named ceiling clients are seeded from
type RiskProfile struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Name        string          `json:"name" gorm:"size:60;uniqueIndex;not null" validate:"required,max=60"`
	Description string          `json:"description" gorm:"size:255"`
	MaxRisk     decimal.Decimal `json:"max_risk" gorm:"type:numeric(4,2);not null" validate:"decimal_between=0 5"`
}

// Client carries the effective risk ceiling, which drifts from the profile's
// value as investments are recorded. Version guards concurrent updates.
type Client struct {
	ID            uint            `json:"id" gorm:"primaryKey;autoIncrement:false"`
	RiskProfileID uint            `json:"risk_profile_id" gorm:"index;not null"`
	RiskProfile   *RiskProfile    `json:"risk_profile,omitempty" gorm:"foreignKey:RiskProfileID"`
	MaxRisk       decimal.Decimal `json:"max_risk" gorm:"type:numeric(4,2);not null"`
	Version       int64           `json:"-" gorm:"not null;default:0"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Investment is an immutable record of money placed in a product
type Investment struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	ClientID  uint            `json:"client_id" gorm:"index;not null"`
	ProductID uint            `json:"product_id" gorm:"index;not null"`
	Product   *Product        `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:numeric(20,2);not null"`
	Yield     decimal.Decimal `json:"yield" gorm:"type:numeric(10,5);not null"`
	Date      time.Time       `json:"date" gorm:"index;not null"`
	CreatedAt time.Time       `json:"created_at"`
}

// Simulation is the audit trail of a growth projection
type Simulation struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	ClientID       uint            `json:"client_id" gorm:"index;not null"`
	ProductID      uint            `json:"product_id" gorm:"index;not null"`
	Product        *Product        `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Amount         decimal.Decimal `json:"amount" gorm:"type:numeric(20,2);not null"`
	FinalValue     decimal.Decimal `json:"final_value" gorm:"type:numeric(20,2);not null"`
	EffectiveYield decimal.Decimal `json:"effective_yield" gorm:"type:numeric(10,2);not null"`
	TermMonths     int             `json:"term_months" gorm:"not null"`
	SimulatedAt    time.Time       `json:"simulated_at" gorm:"index;not null"`
}

// TelemetryEvent records one served request
type TelemetryEvent struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Endpoint   string    `json:"endpoint" gorm:"size:200;index;not null"`
	Method     string    `json:"method" gorm:"size:10;not null"`
	Status     int       `json:"status" gorm:"not null"`
	DurationMs int64     `json:"duration_ms" gorm:"not null"`
	RecordedAt time.Time `json:"recorded_at" gorm:"index;not null"`
}

// AllModels returns every persisted model in migration order
func AllModels() []interface{} {
	return []interface{}{
		&RiskProfile{},
		&Product{},
		&YieldBand{},
		&Client{},
		&Investment{},
		&Simulation{},
		&TelemetryEvent{},
	}
}
