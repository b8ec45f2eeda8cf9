package domain

import (
	"context"

	"github.com/aquameter/aquameter/pkg/db/option"
	"github.com/aquameter/aquameter/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, reading *Reading) error
	Update(ctx context.Context, db *gorm.DB, reading *Reading) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Reading, error)
	// FindLatestByFlat re-derives "latest" as max(created_at) over the
	// remaining rows so deletions stay consistent.
	FindLatestByFlat(ctx context.Context, db *gorm.DB, flatID snowflake.ID) (*Reading, error)
	ListByFlat(ctx context.Context, db *gorm.DB, flatID snowflake.ID, page pagination.Pagination, opts ...option.Option) ([]*Reading, error)
	CountByFlat(ctx context.Context, db *gorm.DB, flatID snowflake.ID) (int64, error)
}
