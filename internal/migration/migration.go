package migration

import (
	flatdomain "github.com/aquameter/aquameter/internal/flat/domain"
	identitydomain "github.com/aquameter/aquameter/internal/identity/domain"
	paymentdomain "github.com/aquameter/aquameter/internal/payment/domain"
	propertydomain "github.com/aquameter/aquameter/internal/property/domain"
	readingdomain "github.com/aquameter/aquameter/internal/reading/domain"
	"gorm.io/gorm"
)

// Run brings the schema up to date. Ordering follows foreign
// references: accounts and properties before flats, flats before
// readings, readings before payments.
func Run(db *gorm.DB) error {
	return db.AutoMigrate(
		&identitydomain.Account{},
		&propertydomain.Property{},
		&flatdomain.Flat{},
		&readingdomain.Reading{},
		&paymentdomain.Payment{},
	)
}
