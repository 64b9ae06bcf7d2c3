package invoice

import (
	"github.com/jkestates/estatedesk/internal/invoice/repository"
	"github.com/jkestates/estatedesk/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
