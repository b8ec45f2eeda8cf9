package tenancy

import (
	"github.com/aquameter/aquameter/internal/tenancy/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tenancy.service",
	fx.Provide(service.New),
)
