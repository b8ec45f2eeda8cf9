package domain

import (
	"context"

	"github.com/aquameter/aquameter/pkg/apperror"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type CreateRequest struct {
	Name             string          `json:"name" binding:"required"`
	Address          string          `json:"address"`
	City             string          `json:"city"`
	PropertyCode     string          `json:"property_code" binding:"required"`
	WaterRatePerUnit decimal.Decimal `json:"water_rate_per_unit"`
	FixedCharge      decimal.Decimal `json:"fixed_charge"`
}

type UpdateRatesRequest struct {
	WaterRatePerUnit decimal.Decimal `json:"water_rate_per_unit"`
	FixedCharge      decimal.Decimal `json:"fixed_charge"`
}

type Service interface {
	Create(ctx context.Context, ownerID snowflake.ID, req CreateRequest) (*Property, error)
	// UpdateRates changes the standing rates only; bills already issued
	// keep the amounts they were computed with.
	UpdateRates(ctx context.Context, ownerID, propertyID snowflake.ID, req UpdateRatesRequest) (*Property, error)
	Get(ctx context.Context, ownerID, propertyID snowflake.ID) (*Property, error)
	ListByOwner(ctx context.Context, ownerID snowflake.ID) ([]*Property, error)
}

var (
	ErrPropertyNotFound  = apperror.NotFound("property_not_found", "property not found")
	ErrPropertyCodeTaken = apperror.Conflict("property_code_taken", "property code already in use by this owner")
	ErrInvalidCode       = apperror.Validation("invalid_property_code", "property code is required")
	ErrNegativeRate      = apperror.Validation("negative_rate", "water rate per unit must not be negative")
	ErrNegativeCharge    = apperror.Validation("negative_charge", "fixed charge must not be negative")
	ErrNotPropertyOwner  = apperror.Conflict("not_property_owner", "property belongs to a different owner")
)
