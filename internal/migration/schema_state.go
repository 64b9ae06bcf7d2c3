package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const (
	SchemaStateTable = "schema_state"

	StatusMigrating = "migrating"
	StatusActive    = "active"
)

// markSchema upserts the schema_state row. The migrate command writes
// "migrating" before golang-migrate runs and "active" once the database is at
// the manifest version, so a crash in between leaves the gate closed.
func markSchema(ctx context.Context, db *sql.DB, status string, m Manifest, appVersion string, now time.Time) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO schema_state (id, status, schema_version, checksum, app_version, migrated_at)
		VALUES (TRUE, $1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status,
		    schema_version = EXCLUDED.schema_version,
		    checksum = EXCLUDED.checksum,
		    app_version = EXCLUDED.app_version,
		    migrated_at = EXCLUDED.migrated_at
	`, status, m.VersionString(), m.Checksum, appVersion, now.UTC())
	if err != nil {
		return fmt.Errorf("mark schema %s: %w", status, err)
	}
	return nil
}
