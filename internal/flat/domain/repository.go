package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, flat *Flat) error
	Update(ctx context.Context, db *gorm.DB, flat *Flat) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Flat, error)
	// FindByIDForUpdate locks the flat row for the rest of the
	// transaction; per-flat meter submissions serialize on it.
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Flat, error)
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Flat, error)
	CodeExists(ctx context.Context, db *gorm.DB, code string) (bool, error)
	ListByProperty(ctx context.Context, db *gorm.DB, propertyID snowflake.ID) ([]*Flat, error)

	// ClaimTenant sets tenant_id only while the flat is still vacant
	// and reports whether the claim won. The conditional update is what
	// serializes concurrent binds against the same code.
	ClaimTenant(ctx context.Context, db *gorm.DB, flatID, tenantID snowflake.ID) (bool, error)
}
