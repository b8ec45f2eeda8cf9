package property

import (
	"github.com/aquameter/aquameter/internal/property/repository"
	"github.com/aquameter/aquameter/internal/property/service"
	"go.uber.org/fx"
)

var Module = fx.Module("property.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
