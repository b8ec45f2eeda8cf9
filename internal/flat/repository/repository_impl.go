package repository

import (
	"context"
	"errors"

	flatdomain "github.com/aquameter/aquameter/internal/flat/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() flatdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, flat *flatdomain.Flat) error {
	return db.WithContext(ctx).Create(flat).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, flat *flatdomain.Flat) error {
	// Save would skip zero-valued fields through a map; a full-row
	// update keeps nil tenant pointers and rotated codes intact.
	return db.WithContext(ctx).
		Model(&flatdomain.Flat{}).
		Where("id = ?", flat.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(flat).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&flatdomain.Flat{}, "id = ?", id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*flatdomain.Flat, error) {
	var flat flatdomain.Flat
	err := db.WithContext(ctx).First(&flat, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &flat, nil
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*flatdomain.Flat, error) {
	stmt := db.WithContext(ctx)
	// sqlite has no FOR UPDATE in its grammar; its single writer
	// already serializes transactions.
	if db.Dialector.Name() == "postgres" {
		stmt = stmt.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var flat flatdomain.Flat
	err := stmt.First(&flat, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &flat, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*flatdomain.Flat, error) {
	var flat flatdomain.Flat
	err := db.WithContext(ctx).First(&flat, "flat_code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &flat, nil
}

func (r *repo) CodeExists(ctx context.Context, db *gorm.DB, code string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&flatdomain.Flat{}).
		Where("flat_code = ?", code).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) ListByProperty(ctx context.Context, db *gorm.DB, propertyID snowflake.ID) ([]*flatdomain.Flat, error) {
	var flats []*flatdomain.Flat
	err := db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("flat_number asc").
		Find(&flats).Error
	if err != nil {
		return nil, err
	}
	return flats, nil
}

func (r *repo) ClaimTenant(ctx context.Context, db *gorm.DB, flatID, tenantID snowflake.ID) (bool, error) {
	res := db.WithContext(ctx).
		Model(&flatdomain.Flat{}).
		Where("id = ? AND tenant_id IS NULL", flatID).
		Update("tenant_id", tenantID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
