package filestore

import (
	"context"

	"github.com/aquameter/aquameter/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("filestore",
	fx.Provide(NewStore),
)

func NewStore(cfg config.Config) (Store, error) {
	if cfg.Storage.Driver == "s3" {
		return NewS3Store(context.Background(), cfg.Storage.Bucket, cfg.Storage.Region)
	}
	return NewDiskStore(cfg.Storage.RootDir)
}
