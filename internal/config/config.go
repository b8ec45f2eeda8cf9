package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Log      LogConfig
	Gateway  GatewayConfig
	Storage  StorageConfig
	Event    EventConfig
}

type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig selects the storage backend: "postgres" for
// deployments, "sqlite" for local development.
type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	Path            string // sqlite file path
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // minutes
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
}

// GatewayConfig configures the payment-capture collaborator.
type GatewayConfig struct {
	KeyID     string
	KeySecret string
	BaseURL   string
}

// StorageConfig configures the proof-upload store: "s3" or "disk".
type StorageConfig struct {
	Driver  string
	Bucket  string
	Region  string
	RootDir string
}

// EventConfig selects the notification bus: "memory" or "redis".
type EventConfig struct {
	Driver string
}

func Load() (Config, error) {
	// Best-effort: local dev keeps secrets in .env.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("AQUAMETER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config unmarshal: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "aquameter")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "aquameter")
	v.SetDefault("database.dbname", "aquameter")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "aquameter.db")
	v.SetDefault("database.maxopenconns", 25)
	v.SetDefault("database.maxidleconns", 5)
	v.SetDefault("database.connmaxlifetime", 30)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("gateway.baseurl", "https://api.razorpay.com")

	v.SetDefault("storage.driver", "disk")
	v.SetDefault("storage.rootdir", "uploads")
	v.SetDefault("storage.region", "ap-south-1")

	v.SetDefault("event.driver", "memory")
}

func (c Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	switch c.Storage.Driver {
	case "s3", "disk":
	default:
		return fmt.Errorf("unsupported storage driver %q", c.Storage.Driver)
	}
	switch c.Event.Driver {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported event driver %q", c.Event.Driver)
	}
	if c.Event.Driver == "redis" && c.Redis.Addr == "" {
		return fmt.Errorf("event driver redis requires redis.addr")
	}
	return nil
}

// PostgresDSN builds the connection string for the postgres driver.
func (c DatabaseConfig) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
