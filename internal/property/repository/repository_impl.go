package repository

import (
	"context"
	"errors"

	propertydomain "github.com/aquameter/aquameter/internal/property/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() propertydomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, property *propertydomain.Property) error {
	return db.WithContext(ctx).Create(property).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, property *propertydomain.Property) error {
	return db.WithContext(ctx).Save(property).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*propertydomain.Property, error) {
	var property propertydomain.Property
	err := db.WithContext(ctx).First(&property, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &property, nil
}

func (r *repo) FindByOwnerAndCode(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, code string) (*propertydomain.Property, error) {
	var property propertydomain.Property
	err := db.WithContext(ctx).First(&property, "owner_id = ? AND property_code = ?", ownerID, code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &property, nil
}

func (r *repo) ListByOwner(ctx context.Context, db *gorm.DB, ownerID snowflake.ID) ([]*propertydomain.Property, error) {
	var properties []*propertydomain.Property
	err := db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at desc").
		Find(&properties).Error
	if err != nil {
		return nil, err
	}
	return properties, nil
}
