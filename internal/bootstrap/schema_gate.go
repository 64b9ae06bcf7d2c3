package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/jkestates/estatedesk/internal/migration"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrSchemaInactive         = errors.New("schema is not active")
	ErrSchemaVersionMismatch  = errors.New("schema version mismatch")
	ErrSchemaChecksumMismatch = errors.New("schema checksum mismatch")
)

type SchemaGate interface {
	MustBeActive(ctx context.Context) error
}

type schemaGate struct {
	db       *gorm.DB
	log      *zap.Logger
	manifest migration.Manifest
}

func NewSchemaGate(db *gorm.DB, log *zap.Logger) (SchemaGate, error) {
	manifest, err := migration.LoadManifest()
	if err != nil {
		return nil, err
	}
	return &schemaGate{db: db, log: log.Named("bootstrap"), manifest: manifest}, nil
}

// MustBeActive compares schema_state with the migrations compiled into this
// binary. sqlite databases are built by automigrate and carry no state row.
func (g *schemaGate) MustBeActive(ctx context.Context) error {
	if name := g.db.Dialector.Name(); name != "postgres" {
		g.log.Info("schema gate skipped", zap.String("dialect", name))
		return nil
	}

	state, err := loadSchemaState(ctx, g.db)
	if err != nil {
		return err
	}

	if state.Status != migration.StatusActive {
		return fmt.Errorf("%w: status=%s", ErrSchemaInactive, state.Status)
	}
	if want := g.manifest.VersionString(); state.SchemaVersion != want {
		return fmt.Errorf("%w: database=%s build=%s", ErrSchemaVersionMismatch, state.SchemaVersion, want)
	}
	if state.Checksum != g.manifest.Checksum {
		return fmt.Errorf("%w: database=%s build=%s", ErrSchemaChecksumMismatch, state.Checksum, g.manifest.Checksum)
	}

	g.log.Info("schema active",
		zap.String("version", state.SchemaVersion),
		zap.String("migrated_by", state.AppVersion),
		zap.Time("migrated_at", state.MigratedAt),
	)
	return nil
}
