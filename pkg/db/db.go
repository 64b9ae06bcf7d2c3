package db

import (
	"context"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/jkestates/estatedesk/internal/config"
	"github.com/jkestates/estatedesk/internal/observability"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormprom "gorm.io/plugin/prometheus"
)

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.Config
	Log       *zap.Logger
	Tracer    trace.TracerProvider `optional:"true"`
}

// New opens the configured database and attaches tracing and pool metrics.
func New(p Params) (*gorm.DB, error) {
	conn, err := Open(p.Config, p.Log)
	if err != nil {
		return nil, err
	}

	if p.Config.Telemetry.DBTracing {
		opts := []otelgorm.Option{otelgorm.WithDBName(p.Config.AppName)}
		if p.Tracer != nil {
			opts = append(opts, otelgorm.WithTracerProvider(p.Tracer))
		}
		if err := conn.Use(otelgorm.NewPlugin(opts...)); err != nil {
			return nil, fmt.Errorf("enable db tracing: %w", err)
		}
	}

	if p.Config.Telemetry.DBMetrics {
		if err := conn.Use(gormprom.New(gormprom.Config{
			DBName:          p.Config.AppName,
			RefreshInterval: 15,
		})); err != nil {
			return nil, fmt.Errorf("enable db metrics: %w", err)
		}
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})
	return conn, nil
}

// Open connects without any plugins. Used directly by the migrate command and tests.
func Open(cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.Database.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.Database.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:         observability.NewGormLogger(log, cfg.Database.LogLevel, cfg.Database.SlowThreshold),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Database.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	}
	if cfg.Database.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	}
	if cfg.Database.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	}
	return conn, nil
}

var Module = fx.Module("db",
	fx.Provide(New),
)
