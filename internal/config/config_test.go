package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "aquameter", cfg.App.Name)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, "memory", cfg.Event.Driver)
	require.Equal(t, "disk", cfg.Storage.Driver)
	require.Equal(t, "https://api.razorpay.com", cfg.Gateway.BaseURL)
}

func TestRedisEventDriverRequiresAddr(t *testing.T) {
	cfg := Config{
		Database: DatabaseConfig{Driver: "sqlite"},
		Storage:  StorageConfig{Driver: "disk"},
		Event:    EventConfig{Driver: "redis"},
	}
	require.Error(t, cfg.validate())

	cfg.Redis.Addr = "localhost:6379"
	require.NoError(t, cfg.validate())
}

func TestPostgresDSN(t *testing.T) {
	dc := DatabaseConfig{
		Host: "db", Port: 5432, User: "u", Password: "p", DBName: "aquameter", SSLMode: "disable",
	}
	require.Equal(t, "host=db port=5432 user=u password=p dbname=aquameter sslmode=disable", dc.PostgresDSN())
}
