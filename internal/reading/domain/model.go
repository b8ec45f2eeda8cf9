package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending             Status = "pending"
	StatusPendingVerification Status = "pending_verification"
	StatusPaid                Status = "paid"
)

// Reading is one meter measurement and, in the same row, the bill it
// produced. FreeWaterUnits is snapshotted at creation so later
// allowance edits never change a historical bill. The latest reading
// for a flat is always a derived query over created_at, never a
// cached pointer.
type Reading struct {
	ID                    snowflake.ID    `json:"id" gorm:"primaryKey"`
	FlatID                snowflake.ID    `json:"flat_id" gorm:"not null;index"`
	PropertyID            snowflake.ID    `json:"property_id" gorm:"not null;index"`
	PreviousReading       float64         `json:"previous_reading" gorm:"not null"`
	CurrentReading        float64         `json:"current_reading" gorm:"not null"`
	UnitsConsumed         float64         `json:"units_consumed" gorm:"not null"`
	FreeWaterUnits        float64         `json:"free_water_units" gorm:"not null"`
	BillableUnits         float64         `json:"billable_units" gorm:"not null"`
	BillAmount            decimal.Decimal `json:"bill_amount" gorm:"type:numeric(12,2);not null"`
	BillMonth             string          `json:"bill_month" gorm:"type:text;not null"`
	Status                Status          `json:"status" gorm:"type:varchar(24);not null"`
	DueDate               time.Time       `json:"due_date" gorm:"not null"`
	PaidAt                *time.Time      `json:"paid_at,omitempty"`
	ScreenshotSubmittedAt *time.Time      `json:"screenshot_submitted_at,omitempty"`
	CreatedAt             time.Time       `json:"created_at" gorm:"not null;index"`
	UpdatedAt             *time.Time      `json:"updated_at,omitempty"`
}

func (Reading) TableName() string { return "water_readings" }

const DuePeriodDays = 15
