package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	otellog "go.opentelemetry.io/otel/log"
)

func newBufferLogger() (*StandardLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	inner := slog.New(slog.NewJSONHandler(buf, nil))
	return &StandardLogger{logger: &fallbackLogger{logger: inner}}, buf
}

func TestNewStandardLogger(t *testing.T) {
	logger := NewStandardLogger("debug", "test")
	require.NotNil(t, logger)
	assert.NotNil(t, logger.Logger())
}

func TestNewStandardOTLPLogger_Disabled(t *testing.T) {
	logger := NewStandardOTLPLogger(OTLPConfig{Enabled: false, LogLevel: "info"})
	require.NotNil(t, logger)
	assert.NotNil(t, logger.Logger())
}

func TestStandardLogger_WithContext(t *testing.T) {
	logger, buf := newBufferLogger()

	logger.WithSeries("widgets").Info("computing")
	assert.Contains(t, buf.String(), `"series":"widgets"`)

	buf.Reset()
	logger.WithComponent("digest").Warn("skip")
	assert.Contains(t, buf.String(), `"component":"digest"`)

	buf.Reset()
	logger.WithError(errors.New("boom")).Error("failed")
	assert.Contains(t, buf.String(), `"error":"boom"`)
}

func TestStandardLogger_LogForecastRequest(t *testing.T) {
	logger, buf := newBufferLogger()

	logger.LogForecastRequest("widgets", 104, 12, true, 7)

	out := buf.String()
	assert.Contains(t, out, `"event":"forecast"`)
	assert.Contains(t, out, `"series":"widgets"`)
	assert.Contains(t, out, `"points":104`)
	assert.Contains(t, out, `"cached":true`)
}

func TestStandardLogger_LogEvaluationRequest(t *testing.T) {
	logger, buf := newBufferLogger()

	logger.LogEvaluationRequest("widgets", "rolling", "mape", 3)

	out := buf.String()
	assert.Contains(t, out, `"event":"evaluation"`)
	assert.Contains(t, out, `"mode":"rolling"`)
	assert.Contains(t, out, `"metric":"mape"`)
}

func TestStandardLogger_LifecycleEvents(t *testing.T) {
	logger, buf := newBufferLogger()

	logger.LogStartup("weekcast", "1.0.0", 8080)
	assert.Contains(t, buf.String(), `"event":"startup"`)

	buf.Reset()
	logger.LogShutdown("weekcast", "signal")
	assert.Contains(t, buf.String(), `"event":"shutdown"`)

	buf.Reset()
	logger.LogDigestSent(-100123, 3)
	assert.Contains(t, buf.String(), `"event":"digest"`)
	assert.Contains(t, buf.String(), `"series_count":3`)
}

func TestGetSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, getSlogLevel("debug"))
	assert.Equal(t, slog.LevelWarn, getSlogLevel("warn"))
	assert.Equal(t, slog.LevelWarn, getSlogLevel("WARNING"))
	assert.Equal(t, slog.LevelError, getSlogLevel("error"))
	assert.Equal(t, slog.LevelInfo, getSlogLevel(""))
	assert.Equal(t, slog.LevelInfo, getSlogLevel("bogus"))
}

func TestParseLogrusLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, ParseLogrusLevel("debug"))
	assert.Equal(t, logrus.WarnLevel, ParseLogrusLevel("warning"))
	assert.Equal(t, logrus.ErrorLevel, ParseLogrusLevel("error"))
	assert.Equal(t, logrus.InfoLevel, ParseLogrusLevel("anything"))
}

func TestConvertSlogLevelToSeverity(t *testing.T) {
	assert.Equal(t, otellog.SeverityDebug, convertSlogLevelToSeverity(slog.LevelDebug))
	assert.Equal(t, otellog.SeverityInfo, convertSlogLevelToSeverity(slog.LevelInfo))
	assert.Equal(t, otellog.SeverityWarn, convertSlogLevelToSeverity(slog.LevelWarn))
	assert.Equal(t, otellog.SeverityError, convertSlogLevelToSeverity(slog.LevelError))
	assert.Equal(t, otellog.SeverityInfo, convertSlogLevelToSeverity(slog.Level(42)))
}
