package bootstrap

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jkestates/estatedesk/internal/migration"
	"gorm.io/gorm"
)

var ErrSchemaStateNotFound = errors.New("schema state not found, run the migrate command")

// SchemaState mirrors the row written by migration.Run.
type SchemaState struct {
	Status        string    `gorm:"column:status"`
	SchemaVersion string    `gorm:"column:schema_version"`
	Checksum      string    `gorm:"column:checksum"`
	AppVersion    string    `gorm:"column:app_version"`
	MigratedAt    time.Time `gorm:"column:migrated_at"`
}

func loadSchemaState(ctx context.Context, db *gorm.DB) (*SchemaState, error) {
	var state SchemaState
	result := db.WithContext(ctx).Table(migration.SchemaStateTable).
		Select("status, schema_version, checksum, app_version, migrated_at").
		Where("id = TRUE").
		Limit(1).
		Scan(&state)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrSchemaStateNotFound
	}

	state.Status = strings.ToLower(strings.TrimSpace(state.Status))
	state.SchemaVersion = strings.TrimSpace(state.SchemaVersion)
	state.Checksum = strings.TrimSpace(state.Checksum)
	return &state, nil
}
