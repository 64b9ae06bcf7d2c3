package observability

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jkestates/estatedesk/internal/config"
	obscontext "github.com/jkestates/estatedesk/internal/observability/context"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("nonsense"))
}

func TestNewLoggerWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log, err := NewLogger(config.Config{
		AppName: "estatedesk",
		Log:     config.LogConfig{Level: "info", Format: "json", Output: path},
	})
	require.NoError(t, err)
	log.Info("hello")
	require.NoError(t, log.Sync())
	assert.FileExists(t, path)
}

func TestGormLoggerTrace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), "info", 50*time.Millisecond)
	ctx := obscontext.WithRequestID(context.Background(), "req-1")

	t.Run("error", func(t *testing.T) {
		gl.Trace(ctx, time.Now(), func() (string, int64) { return "SELECT 1", 0 }, errors.New("boom"))
		entries := logs.TakeAll()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
		assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])
	})

	t.Run("record not found is quiet", func(t *testing.T) {
		gl.Trace(ctx, time.Now(), func() (string, int64) { return "SELECT 1", 0 }, gormlogger.ErrRecordNotFound)
		entries := logs.TakeAll()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	})

	t.Run("slow", func(t *testing.T) {
		gl.Trace(ctx, time.Now().Add(-time.Second), func() (string, int64) { return "SELECT 1", 1 }, nil)
		entries := logs.TakeAll()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	})

	t.Run("silent", func(t *testing.T) {
		gl.LogMode(gormlogger.Silent).Trace(ctx, time.Now(), func() (string, int64) { return "SELECT 1", 1 }, nil)
		assert.Empty(t, logs.TakeAll())
	})
}

func TestMetricsRegistered(t *testing.T) {
	m := NopMetrics()
	m.BillWrites.WithLabelValues("create", "ok").Add(2)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.BillWrites.WithLabelValues("create", "ok")))
}
