package property

import (
	"github.com/jkestates/estatedesk/internal/property/repository"
	"github.com/jkestates/estatedesk/internal/property/service"
	"go.uber.org/fx"
)

var Module = fx.Module("property.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
