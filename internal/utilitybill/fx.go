package utilitybill

import (
	"github.com/jkestates/estatedesk/internal/utilitybill/repository"
	"github.com/jkestates/estatedesk/internal/utilitybill/service"
	"github.com/jkestates/estatedesk/internal/utilitybill/session"
	"go.uber.org/fx"
)

var Module = fx.Module("utilitybill.service",
	fx.Provide(repository.Provide),
	fx.Provide(
		service.NewResolver,
		service.NewPeriodStore,
		service.NewSaveLock,
		service.NewPersister,
	),
	session.Module,
)
