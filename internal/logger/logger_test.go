package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/api-bootstrap/internal/config"
)

// TestNewLoggerService_DisabledWithoutLicense verifies New Relic stays off
// when no license key is configured.
func TestNewLoggerService_DisabledWithoutLicense(t *testing.T) {
	svc := NewLoggerService(config.DefaultObservabilityConfig())

	require.NotNil(t, svc)
	assert.Nil(t, svc.GetApplication())
	assert.NotPanics(t, svc.Shutdown)
}

// TestNewLoggerService_InvalidLicense verifies a rejected New Relic config
// leaves the service disabled instead of failing startup.
func TestNewLoggerService_InvalidLicense(t *testing.T) {
	cfg := config.DefaultObservabilityConfig()
	cfg.NewRelic.LicenseKey = "too-short"

	svc := NewLoggerService(cfg)

	require.NotNil(t, svc)
	assert.Nil(t, svc.GetApplication())
	assert.NotPanics(t, svc.Shutdown)
}

// TestLoggerService_NilReceiver verifies a nil service is safe to use.
func TestLoggerService_NilReceiver(t *testing.T) {
	var svc *LoggerService

	assert.Nil(t, svc.GetApplication())
	assert.NotPanics(t, svc.Shutdown)
}

// TestNewLogger_JSONFields verifies the base fields on every entry.
func TestNewLogger_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.DefaultObservabilityConfig()

	l := newLogger(cfg, nil, &buf)
	l.Info().Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, config.ServiceName, entry["service"])
	assert.Equal(t, "development", entry["environment"])
	assert.Equal(t, "hello", entry["message"])
	assert.Contains(t, entry, "time")
}

// TestNewLogger_Level verifies entries below the configured level are dropped.
func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.DefaultObservabilityConfig()
	cfg.Logging.Level = "warn"

	l := newLogger(cfg, nil, &buf)
	l.Info().Msg("dropped")
	assert.Empty(t, buf.String())

	l.Warn().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
	assert.Equal(t, zerolog.WarnLevel, l.GetLevel())
}

// TestNewLogger_Console verifies the console writer in development.
func TestNewLogger_Console(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.DefaultObservabilityConfig()
	cfg.Logging.Format = "console"

	l := newLogger(cfg, nil, &buf)
	l.Info().Msg("pretty")

	assert.Contains(t, buf.String(), "pretty")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestWithTraceContext_NilTransaction(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	l := WithTraceContext(base, nil)
	l.Info().Msg("x")

	assert.NotContains(t, buf.String(), "trace.id")
}
