package bootstrap

import (
	"context"

	"go.uber.org/fx"
)

// EnforceSchemaGate refuses to start the server against a schema that the
// migrate command has not activated.
func EnforceSchemaGate(lc fx.Lifecycle, gate SchemaGate) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return gate.MustBeActive(ctx)
		},
	})
}
