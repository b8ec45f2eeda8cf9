package domain

import (
	"context"

	"github.com/aquameter/aquameter/pkg/apperror"
	"github.com/bwmarrin/snowflake"
)

type RegisterRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone"`
	Role  Role   `json:"role" binding:"required"`
}

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*Account, error)
	Get(ctx context.Context, id snowflake.ID) (*Account, error)
	// RequireOwner and RequireTenant load the account and enforce its
	// role; every owner/tenant-scoped operation starts with one of them.
	RequireOwner(ctx context.Context, id snowflake.ID) (*Account, error)
	RequireTenant(ctx context.Context, id snowflake.ID) (*Account, error)
}

var (
	ErrAccountNotFound = apperror.NotFound("account_not_found", "account not found")
	ErrInvalidRole     = apperror.Validation("invalid_role", "role must be owner or tenant")
	ErrEmailTaken      = apperror.Conflict("email_taken", "an account with this email already exists")
	ErrNotOwner        = apperror.Conflict("not_owner", "caller is not an owner account")
	ErrNotTenant       = apperror.Conflict("not_tenant", "caller is not a tenant account")
)
