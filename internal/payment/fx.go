package payment

import (
	"github.com/aquameter/aquameter/internal/config"
	"github.com/aquameter/aquameter/internal/payment/domain"
	"github.com/aquameter/aquameter/internal/payment/gateway"
	"github.com/aquameter/aquameter/internal/payment/repository"
	"github.com/aquameter/aquameter/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(NewGateway),
	fx.Provide(service.New),
)

func NewGateway(cfg config.Config) domain.Gateway {
	return gateway.NewRazorpay(cfg.Gateway.KeyID, cfg.Gateway.KeySecret, cfg.Gateway.BaseURL)
}
