package db

import (
	"testing"

	"github.com/jkestates/estatedesk/internal/config"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpenSQLite(t *testing.T) {
	conn, err := Open(config.Config{
		Database: config.DatabaseConfig{
			Driver:       "sqlite",
			DSN:          "file:" + t.Name() + "?mode=memory&cache=shared",
			MaxOpenConns: 1,
			LogLevel:     "silent",
		},
	}, zap.NewNop())
	require.NoError(t, err)

	var one int
	require.NoError(t, conn.Raw("SELECT 1").Scan(&one).Error)
	require.Equal(t, 1, one)
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(config.Config{Database: config.DatabaseConfig{Driver: "mysql"}}, zap.NewNop())
	require.Error(t, err)
}
