package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func observedGormLogger(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), logs
}

func traceQuery(sql string) func() (string, int64) {
	return func() (string, int64) { return sql, 1 }
}

func TestGormLogger_TraceQuery(t *testing.T) {
	gl, logs := observedGormLogger(gormlogger.Info)

	ctx, _ := WithRequestID(context.Background(), zap.NewNop(), "req-42")
	gl.Trace(ctx, time.Now(), traceQuery("SELECT 1"), nil)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "sql query", entry.Message)
	assert.Equal(t, zapcore.DebugLevel, entry.Level)

	fields := entry.ContextMap()
	assert.Equal(t, "SELECT 1", fields["sql"])
	assert.Equal(t, "req-42", fields["request_id"])
}

func TestGormLogger_TraceError(t *testing.T) {
	gl, logs := observedGormLogger(gormlogger.Error)

	gl.Trace(context.Background(), time.Now(), traceQuery("UPDATE sync_records"), errors.New("deadlock"))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "sql error", entry.Message)
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	assert.Equal(t, "deadlock", entry.ContextMap()["error"])
}

func TestGormLogger_TraceIgnoresRecordNotFound(t *testing.T) {
	gl, logs := observedGormLogger(gormlogger.Error)

	gl.Trace(context.Background(), time.Now(), traceQuery("SELECT *"), gormlogger.ErrRecordNotFound)
	assert.Equal(t, 0, logs.Len())

	// opt out of the default and the miss surfaces as an error
	gl, logs = observedGormLogger(gormlogger.Error, WithIgnoreRecordNotFoundError(false))
	gl.Trace(context.Background(), time.Now(), traceQuery("SELECT *"), gormlogger.ErrRecordNotFound)
	assert.Equal(t, 1, logs.Len())
}

func TestGormLogger_TraceSlowQuery(t *testing.T) {
	gl, logs := observedGormLogger(gormlogger.Warn, WithSlowThreshold(time.Millisecond))

	gl.Trace(context.Background(), time.Now().Add(-time.Second), traceQuery("SELECT pg_sleep(1)"), nil)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
}

func TestGormLogger_SilentAndLogMode(t *testing.T) {
	gl, logs := observedGormLogger(gormlogger.Silent)

	gl.Trace(context.Background(), time.Now(), traceQuery("SELECT 1"), nil)
	assert.Equal(t, 0, logs.Len())

	raised := gl.LogMode(gormlogger.Info)
	raised.Trace(context.Background(), time.Now(), traceQuery("SELECT 1"), nil)
	assert.Equal(t, 1, logs.Len())
}
