package payment

import (
	"github.com/jkestates/estatedesk/internal/payment/repository"
	"github.com/jkestates/estatedesk/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
