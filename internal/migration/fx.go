package migration

import (
	"context"
	"time"

	"github.com/jkestates/estatedesk/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const runTimeout = 2 * time.Minute

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		log = log.Named("migration")
		if conn.Dialector.Name() != "postgres" {
			log.Info("running gorm automigrate", zap.String("dialect", conn.Dialector.Name()))
			return AutoMigrate(conn)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		return Run(ctx, sqlDB, Options{AppVersion: cfg.Version, Log: log})
	}),
)
