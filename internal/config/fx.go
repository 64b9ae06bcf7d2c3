package config

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("config",
	fx.Provide(Load),
	fx.Provide(func(cfg Config) *ProfileStore {
		return NewProfileStore(cfg.Business)
	}),
	fx.Invoke(func(store *ProfileStore, log *zap.Logger) {
		store.Watch(log.Named("config"))
	}),
)
