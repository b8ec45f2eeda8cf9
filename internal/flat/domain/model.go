package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Flat is the unit of occupancy and billing. FlatCode doubles as the
// one-time invite token: derived from the property code at creation,
// rotated to a random token whenever the tenant is removed so a
// retired code can never bind again.
type Flat struct {
	ID               snowflake.ID  `json:"id" gorm:"primaryKey"`
	PropertyID       snowflake.ID  `json:"property_id" gorm:"not null;index"`
	FlatNumber       string        `json:"flat_number" gorm:"type:text;not null"`
	Floor            string        `json:"floor" gorm:"type:text"`
	FlatCode         string        `json:"flat_code" gorm:"type:text;not null;uniqueIndex"`
	TenantID         *snowflake.ID `json:"tenant_id,omitempty" gorm:"index"`
	PreviousTenantID *snowflake.ID `json:"previous_tenant_id,omitempty"`
	TenantName       string        `json:"tenant_name,omitempty" gorm:"type:text"`
	TenantPhone      string        `json:"tenant_phone,omitempty" gorm:"type:text"`
	FreeWaterUnits   float64       `json:"free_water_units" gorm:"not null;default:0"`
	VacatedAt        *time.Time    `json:"vacated_at,omitempty"`
	FinalReading     *float64      `json:"final_reading,omitempty"`
	CreatedAt        time.Time     `json:"created_at" gorm:"not null"`
}

func (Flat) TableName() string { return "flats" }

func (f *Flat) Occupied() bool { return f.TenantID != nil }
