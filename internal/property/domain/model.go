package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Property carries the billing defaults every flat under it inherits.
// Rate and fixed-charge edits never recompute past bills.
type Property struct {
	ID               snowflake.ID    `json:"id" gorm:"primaryKey"`
	OwnerID          snowflake.ID    `json:"owner_id" gorm:"not null;uniqueIndex:idx_properties_owner_code"`
	Name             string          `json:"name" gorm:"type:text;not null"`
	Address          string          `json:"address" gorm:"type:text"`
	City             string          `json:"city" gorm:"type:text"`
	PropertyCode     string          `json:"property_code" gorm:"type:text;not null;uniqueIndex:idx_properties_owner_code"`
	WaterRatePerUnit decimal.Decimal `json:"water_rate_per_unit" gorm:"type:numeric(12,2);not null"`
	FixedCharge      decimal.Decimal `json:"fixed_charge" gorm:"type:numeric(12,2);not null"`
	CreatedAt        time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt        time.Time       `json:"updated_at" gorm:"not null"`
}

func (Property) TableName() string { return "properties" }
