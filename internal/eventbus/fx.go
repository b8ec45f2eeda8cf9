package eventbus

import (
	"context"

	"github.com/aquameter/aquameter/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("eventbus",
	fx.Provide(NewBus),
)

func NewBus(cfg config.Config, log *zap.Logger) (Bus, error) {
	if cfg.Event.Driver != "redis" {
		return NewMemoryBus(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return NewRedisBus(client, log), nil
}
