package domain

import (
	"context"

	flatdomain "github.com/aquameter/aquameter/internal/flat/domain"
	"github.com/aquameter/aquameter/pkg/apperror"
	"github.com/bwmarrin/snowflake"
)

type UnbindRequest struct {
	// FinalReading is historical only; it is recorded as-is and sits
	// outside the meter monotonicity invariant.
	FinalReading *float64 `json:"final_reading,omitempty"`
}

type Service interface {
	// Bind attaches a tenant account to the flat matching the invite
	// code. Both sides of the relation commit in one transaction:
	// concurrent signups against the same code produce exactly one
	// winner.
	Bind(ctx context.Context, accountID snowflake.ID, flatCode string) (*flatdomain.Flat, error)
	// Unbind vacates the flat, records the transition, and rotates the
	// invite code, all in a single commit.
	Unbind(ctx context.Context, ownerID, flatID snowflake.ID, req UnbindRequest) (*flatdomain.Flat, error)
}

var (
	ErrFlatCodeNotFound = apperror.NotFound("flat_code_not_found", "no flat matches this code")
	ErrFlatOccupied     = apperror.Conflict("flat_occupied", "flat already has a tenant")
	ErrAlreadyBound     = apperror.Conflict("tenant_already_bound", "account is already bound to a flat")
	ErrFlatVacant       = apperror.Conflict("flat_vacant", "flat has no tenant to remove")
)
