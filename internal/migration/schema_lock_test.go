package migration

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	tryLockQuery = regexp.QuoteMeta("SELECT pg_try_advisory_lock($1)")
	unlockQuery  = regexp.QuoteMeta("SELECT pg_advisory_unlock($1)")
)

func TestLockSchemaWaitsForOtherMigrator(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(tryLockQuery).WithArgs(schemaLockKey).
		WillReturnRows(sqlmock.NewRows([]string{"pg_try_advisory_lock"}).AddRow(false))
	mock.ExpectQuery(tryLockQuery).WithArgs(schemaLockKey).
		WillReturnRows(sqlmock.NewRows([]string{"pg_try_advisory_lock"}).AddRow(true))
	mock.ExpectExec(unlockQuery).WithArgs(schemaLockKey).
		WillReturnResult(sqlmock.NewResult(0, 1))

	release, err := lockSchema(context.Background(), db, time.Millisecond, zap.NewNop())
	require.NoError(t, err)
	release()
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLockSchemaGivesUpWhenContextEnds(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(tryLockQuery).WithArgs(schemaLockKey).
		WillReturnRows(sqlmock.NewRows([]string{"pg_try_advisory_lock"}).AddRow(false))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = lockSchema(ctx, db, time.Hour, zap.NewNop())
	assert.ErrorIs(t, err, ErrSchemaLockTimeout)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSchemaLockKeySpellsProduct(t *testing.T) {
	var b []byte
	for v := schemaLockKey; v > 0; v >>= 8 {
		b = append([]byte{byte(v)}, b...)
	}
	assert.Equal(t, "estdsk", string(b))
}
