package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/jkestates/estatedesk/internal/clock"
	"github.com/jkestates/estatedesk/internal/config"
	"github.com/jkestates/estatedesk/internal/observability"
	propertydomain "github.com/jkestates/estatedesk/internal/property/domain"
	billdomain "github.com/jkestates/estatedesk/internal/utilitybill/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Config     config.Config
	Clock      clock.Clock
	Node       *snowflake.Node
	Bills      billdomain.Repository
	Properties propertydomain.Repository
	Metrics    *observability.Metrics
	Redis      *redis.Client `optional:"true"`
}

// withTimeout bounds a single database round trip.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
