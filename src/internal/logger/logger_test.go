package logger_test

import (
	"errors"
	"testing"

	"github.com/api-sage/account-transfer-service/src/internal/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitizePayloadMasksSensitiveKeys(t *testing.T) {
	payload := map[string]any{
		"redisPassword": "secret",
		"nested": map[string]any{
			"password": "hunter2",
			"name":     "ops",
		},
	}

	sanitized, ok := logger.SanitizePayload(payload).(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "******", sanitized["redisPassword"])

	nested, ok := sanitized["nested"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "******", nested["password"])
	assert.Equal(t, "ops", nested["name"])
}

func TestErrorWritesStructuredFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := logger.Replace(zap.New(core))
	defer restore()

	logger.Error("transfer failed", errors.New("boom"), logger.Fields{
		"transferId": "t-1",
		"amount":     decimal.RequireFromString("30.50"),
	})

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "transfer failed", entries[0].Message)

	ctx := entries[0].ContextMap()
	assert.Equal(t, "t-1", ctx["transferId"])
	assert.Equal(t, "30.5", ctx["amount"])
	assert.Equal(t, "boom", ctx["error"])
}

func TestConfigureRejectsUnknownLevel(t *testing.T) {
	err := logger.Configure("production", "loud")
	assert.Error(t, err)
}
