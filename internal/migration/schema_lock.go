package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// schemaLockKey is the postgres advisory lock id held while estatedesk
// migrations run ("estdsk" in ASCII).
const schemaLockKey int64 = 0x65_73_74_64_73_6b

var ErrSchemaLockTimeout = errors.New("schema_lock_timeout")

// lockSchema pins one connection and polls pg_try_advisory_lock on it until
// the lock is granted or ctx is done. Advisory locks belong to the session, so
// the release runs on the same connection.
func lockSchema(ctx context.Context, db *sql.DB, poll time.Duration, log *zap.Logger) (func(), error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("schema lock connection: %w", err)
	}

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		var locked bool
		if err := conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", schemaLockKey).Scan(&locked); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("acquire schema lock: %w", err)
		}
		if locked {
			return func() {
				if _, err := conn.ExecContext(context.Background(), "SELECT pg_advisory_unlock($1)", schemaLockKey); err != nil {
					log.Warn("release schema lock", zap.Error(err))
				}
				_ = conn.Close()
			}, nil
		}
		if attempt == 1 {
			log.Info("schema lock held by another migrator, waiting")
		}

		select {
		case <-ctx.Done():
			_ = conn.Close()
			return nil, fmt.Errorf("%w after %d attempts: %v", ErrSchemaLockTimeout, attempt, ctx.Err())
		case <-ticker.C:
		}
	}
}
