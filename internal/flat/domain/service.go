package domain

import (
	"context"

	"github.com/aquameter/aquameter/pkg/apperror"
	"github.com/bwmarrin/snowflake"
)

type AddFlatRequest struct {
	FlatNumber  string `json:"flat_number" binding:"required"`
	Floor       string `json:"floor"`
	TenantName  string `json:"tenant_name"`
	TenantPhone string `json:"tenant_phone"`
}

type Service interface {
	// AddFlat derives the invite code as {propertyCode}-F{flatNumber}.
	// The tenant name and phone are informational; binding only happens
	// when a tenant signs up with the code.
	AddFlat(ctx context.Context, ownerID, propertyID snowflake.ID, req AddFlatRequest) (*Flat, error)
	DeleteFlat(ctx context.Context, ownerID, flatID snowflake.ID) error
	// SetFreeAllowance is a standing input to future bill computations;
	// past readings keep their snapshotted allowance.
	SetFreeAllowance(ctx context.Context, ownerID, flatID snowflake.ID, units float64) (*Flat, error)
	Get(ctx context.Context, flatID snowflake.ID) (*Flat, error)
	ListByProperty(ctx context.Context, ownerID, propertyID snowflake.ID) ([]*Flat, error)
}

var (
	ErrFlatNotFound      = apperror.NotFound("flat_not_found", "flat not found")
	ErrFlatCodeTaken     = apperror.Conflict("flat_code_taken", "flat code already in use")
	ErrFlatOccupied      = apperror.Conflict("flat_occupied", "flat still has a tenant")
	ErrNegativeAllowance = apperror.Validation("negative_allowance", "free water units must not be negative")
	ErrCodeGenExhausted  = apperror.Consistency("code_generation_exhausted", "could not generate a unique flat code")
)
