package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, account *Account) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Account, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*Account, error)
	// ClaimFlat sets flat_id only while the account is still unbound
	// and reports whether the claim won. Mirrors the flat-side tenant
	// claim so one account racing two invite codes wins at most once.
	ClaimFlat(ctx context.Context, db *gorm.DB, id snowflake.ID, flatID snowflake.ID) (bool, error)
	ClearFlat(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
