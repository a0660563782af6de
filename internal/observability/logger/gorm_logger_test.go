package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestOperationAndTableFromSQL(t *testing.T) {
	cases := []struct {
		sql       string
		operation string
		table     string
	}{
		{sql: "SELECT * FROM donations WHERE order_id = ?", operation: "SELECT", table: "donations"},
		{sql: "UPDATE campaigns SET collected_amount = collected_amount + ?", operation: "UPDATE", table: "campaigns"},
		{sql: "INSERT INTO payment_notifications (id) VALUES (?)", operation: "INSERT", table: "payment_notifications"},
		{sql: "", operation: "UNKNOWN", table: ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.operation, operationFromSQL(tc.sql), tc.sql)
		assert.Equal(t, tc.table, tableFromSQL(tc.sql), tc.sql)
	}
}

func TestGormLoggerTrace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), DefaultGormLoggerConfig(false))

	query := func() (string, int64) { return "UPDATE donations SET status = ?", 1 }

	l.Trace(context.Background(), time.Now(), query, nil)
	assert.Equal(t, 0, logs.Len(), "fast queries are not logged at warn level")

	l.Trace(context.Background(), time.Now(), query, gormlogger.ErrRecordNotFound)
	assert.Equal(t, 0, logs.Len(), "record not found is not an error")

	l.Trace(context.Background(), time.Now(), query, errors.New("connection reset"))
	if assert.Equal(t, 1, logs.Len()) {
		entry := logs.All()[0]
		assert.Equal(t, zapcore.ErrorLevel, entry.Level)
		assert.Equal(t, "donations", entry.ContextMap()["table"])
	}

	l.Trace(context.Background(), time.Now().Add(-time.Second), query, nil)
	assert.Equal(t, 2, logs.Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[1].Level)
}

func TestGormLoggerParamsFilter(t *testing.T) {
	quiet := NewGormLogger(nil, DefaultGormLoggerConfig(false))
	_, params := quiet.ParamsFilter(context.Background(), "SELECT 1", "donor@example.org")
	assert.Nil(t, params)

	verbose := NewGormLogger(nil, DefaultGormLoggerConfig(true))
	_, params = verbose.ParamsFilter(context.Background(), "SELECT 1", "donor@example.org")
	assert.Equal(t, []interface{}{"donor@example.org"}, params)
}
