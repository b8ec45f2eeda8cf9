package repository

import (
	"context"
	"errors"

	readingdomain "github.com/aquameter/aquameter/internal/reading/domain"
	"github.com/aquameter/aquameter/pkg/db/option"
	"github.com/aquameter/aquameter/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() readingdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, reading *readingdomain.Reading) error {
	return db.WithContext(ctx).Create(reading).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, reading *readingdomain.Reading) error {
	return db.WithContext(ctx).
		Model(&readingdomain.Reading{}).
		Where("id = ?", reading.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(reading).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&readingdomain.Reading{}, "id = ?", id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*readingdomain.Reading, error) {
	var reading readingdomain.Reading
	err := db.WithContext(ctx).First(&reading, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reading, nil
}

func (r *repo) FindLatestByFlat(ctx context.Context, db *gorm.DB, flatID snowflake.ID) (*readingdomain.Reading, error) {
	var reading readingdomain.Reading
	err := db.WithContext(ctx).
		Where("flat_id = ?", flatID).
		Order("created_at desc, id desc").
		First(&reading).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reading, nil
}

func (r *repo) ListByFlat(ctx context.Context, db *gorm.DB, flatID snowflake.ID, page pagination.Pagination, opts ...option.Option) ([]*readingdomain.Reading, error) {
	var readings []*readingdomain.Reading
	stmt := db.WithContext(ctx).
		Model(&readingdomain.Reading{}).
		Where("flat_id = ?", flatID)
	for _, opt := range opts {
		stmt = opt.Apply(stmt)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)

	if err := stmt.Find(&readings).Error; err != nil {
		return nil, err
	}
	return readings, nil
}

func (r *repo) CountByFlat(ctx context.Context, db *gorm.DB, flatID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&readingdomain.Reading{}).
		Where("flat_id = ?", flatID).
		Count(&count).Error
	return count, err
}
