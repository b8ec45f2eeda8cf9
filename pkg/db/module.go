// Package db opens the shared GORM connection.
package db

import (
	"time"

	"github.com/aquameter/aquameter/internal/config"
	"github.com/glebarez/sqlite"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var Module = fx.Module("db",
	fx.Provide(New),
)

func New(cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	var dial gorm.Dialector
	switch cfg.Database.Driver {
	case "postgres":
		dial = postgres.Open(cfg.Database.PostgresDSN())
	default:
		dial = sqlite.Open(cfg.Database.Path)
	}

	gdb, err := gorm.Open(dial, &gorm.Config{
		// Duplicate-key violations surface as gorm.ErrDuplicatedKey
		// so services can map them to conflict errors.
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Minute)

	log.Info("database connected", zap.String("driver", cfg.Database.Driver))
	return gdb, nil
}
