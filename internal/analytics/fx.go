package analytics

import (
	"github.com/jkestates/estatedesk/internal/analytics/repository"
	"github.com/jkestates/estatedesk/internal/analytics/service"
	"go.uber.org/fx"
)

var Module = fx.Module("analytics.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
