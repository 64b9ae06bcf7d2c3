package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/jkestates/estatedesk/internal/analytics"
	"github.com/jkestates/estatedesk/internal/bootstrap"
	"github.com/jkestates/estatedesk/internal/clock"
	"github.com/jkestates/estatedesk/internal/config"
	"github.com/jkestates/estatedesk/internal/invoice"
	"github.com/jkestates/estatedesk/internal/migration"
	"github.com/jkestates/estatedesk/internal/observability"
	"github.com/jkestates/estatedesk/internal/payment"
	"github.com/jkestates/estatedesk/internal/property"
	"github.com/jkestates/estatedesk/internal/redis"
	"github.com/jkestates/estatedesk/internal/seed"
	"github.com/jkestates/estatedesk/internal/server"
	"github.com/jkestates/estatedesk/internal/statement"
	"github.com/jkestates/estatedesk/internal/utilitybill"
	"github.com/jkestates/estatedesk/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// @title           EstateDesk API
// @version         1.0
// @description     Property management API for utility billing, receipts, invoices and reports.
// @host      localhost:8080
// @BasePath  /api/v1
// @Schemes 	http https
// @securityDefinitions.apikey StaffAuth
// @in header
// @name Authorization
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "estatedesk",
		Short:   "Estate management back office",
		Version: readVersionFromEnv(),
	}
	root.AddCommand(newMigrateCmd(), newServeCmd(), newSeedCmd(), newAllCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations and activate schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate()
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the billing and documents API",
		RunE: func(cmd *cobra.Command, args []string) error {
			runServe()
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	var propertyName string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert a demo property with units, tenants and opening bills",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(propertyName)
		},
	}
	cmd.Flags().StringVar(&propertyName, "property", "", "demo property name")
	return cmd
}

func newAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run migrations, then start the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runMigrate(); err != nil {
				return err
			}
			runServe()
			return nil
		},
	}
}

func runMigrate() error {
	app := fx.New(
		config.Module,
		observability.Module,
		db.Module,
		migration.Module,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("migrate failed: %w", err)
	}
	_ = app.Stop(context.Background())
	return nil
}

func runSeed(propertyName string) error {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		fx.Invoke(func(conn *gorm.DB, node *snowflake.Node, log *zap.Logger) error {
			property, err := seed.EnsureDemoEstate(context.Background(), conn, node, seed.DemoOptions{PropertyName: propertyName})
			if err != nil {
				return err
			}
			log.Info("demo estate ready", zap.String("property_id", property.ID.String()), zap.String("name", property.Name))
			return nil
		}),
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}
	_ = app.Stop(context.Background())
	return nil
}

func runServe() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,
		redis.Module,
		bootstrap.Module,
		statement.Module,
		property.Module,
		payment.Module,
		invoice.Module,
		analytics.Module,
		utilitybill.Module,
		server.Module,
	)
	app.Run()
}

// registerSnowflake reads the node id from ESTATEDESK_NODE_ID so several
// instances can mint bill ids without collisions.
func registerSnowflake() (*snowflake.Node, error) {
	nodeID := int64(1)
	if raw := strings.TrimSpace(os.Getenv("ESTATEDESK_NODE_ID")); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ESTATEDESK_NODE_ID %q: %w", raw, err)
		}
		nodeID = parsed
	}
	return snowflake.NewNode(nodeID)
}

func readVersionFromEnv() string {
	if v := strings.TrimSpace(os.Getenv("APP_VERSION")); v != "" {
		return v
	}
	return "dev"
}
