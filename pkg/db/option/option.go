// Package option provides composable query modifiers applied to GORM
// statements by repositories.
package option

import (
	"github.com/aquameter/aquameter/pkg/db/pagination"
	"gorm.io/gorm"
)

type Option interface {
	Apply(*gorm.DB) *gorm.DB
}

type optionFunc func(*gorm.DB) *gorm.DB

func (f optionFunc) Apply(db *gorm.DB) *gorm.DB { return f(db) }

// WithSortBy orders by the requested column when it is in the allowed
// set, falling back to created_at desc.
func WithSortBy(sortBy, orderBy string, allowed map[string]bool) Option {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		if sortBy == "" || !allowed[sortBy] {
			return db.Order("created_at desc")
		}
		dir := "asc"
		if orderBy == "desc" {
			dir = "desc"
		}
		return db.Order(sortBy + " " + dir)
	})
}

func ApplyPagination(page pagination.Pagination) Option {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Offset(page.Offset()).Limit(page.Limit())
	})
}
