package flat

import (
	"github.com/aquameter/aquameter/internal/flat/repository"
	"github.com/aquameter/aquameter/internal/flat/service"
	"go.uber.org/fx"
)

var Module = fx.Module("flat.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
