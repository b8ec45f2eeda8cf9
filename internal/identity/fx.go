package identity

import (
	"github.com/aquameter/aquameter/internal/identity/repository"
	"github.com/aquameter/aquameter/internal/identity/service"
	"go.uber.org/fx"
)

var Module = fx.Module("identity.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
