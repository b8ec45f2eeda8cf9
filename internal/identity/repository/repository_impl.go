package repository

import (
	"context"
	"errors"

	identitydomain "github.com/aquameter/aquameter/internal/identity/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() identitydomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, account *identitydomain.Account) error {
	return db.WithContext(ctx).Create(account).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*identitydomain.Account, error) {
	var account identitydomain.Account
	err := db.WithContext(ctx).First(&account, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*identitydomain.Account, error) {
	var account identitydomain.Account
	err := db.WithContext(ctx).First(&account, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repo) ClaimFlat(ctx context.Context, db *gorm.DB, id snowflake.ID, flatID snowflake.ID) (bool, error) {
	res := db.WithContext(ctx).
		Model(&identitydomain.Account{}).
		Where("id = ? AND flat_id IS NULL", id).
		Update("flat_id", flatID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) ClearFlat(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).
		Model(&identitydomain.Account{}).
		Where("id = ?", id).
		Update("flat_id", nil).Error
}
