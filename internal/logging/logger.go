package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger interface defines the common logging methods implemented by both the
// OTLP-backed logger and the stdout fallback.
type Logger interface {
	WithComponent(componentName string) *slog.Logger
	WithOperation(operationName string) *slog.Logger
	WithSeries(slug string) *slog.Logger
	WithRequestID(requestID string) *slog.Logger
	WithError(err error) *slog.Logger
	LogStartup(serviceName string, version string, port int)
	LogShutdown(serviceName string, reason string)
	LogForecastRequest(slug string, points int, horizon int, cached bool, durationMs int64)
	LogEvaluationRequest(slug string, mode string, metric string, durationMs int64)
	LogCacheOperation(operation string, key string, hit bool, durationMs int64)
	LogDatabaseOperation(operation string, table string, durationMs int64, rowsAffected int64)
	LogDigestSent(chatID int64, seriesCount int)
	Logger() *slog.Logger
	Shutdown(ctx context.Context) error
}

// StandardLogger provides a standardized logging interface
type StandardLogger struct {
	logger Logger
}

// NewStandardLogger creates a new standardized logger writing JSON to stdout.
func NewStandardLogger(logLevel string, environment string) *StandardLogger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: getSlogLevel(logLevel),
	}))

	return &StandardLogger{
		logger: &fallbackLogger{logger: logger},
	}
}

// NewStandardOTLPLogger creates a new standardized logger with OTLP support
func NewStandardOTLPLogger(config OTLPConfig) *StandardLogger {
	otlpLogger, err := NewOTLPLogger(config)
	if err != nil {
		// Fallback to basic logger if OTLP setup fails
		basic := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: getSlogLevel(config.LogLevel),
		}))
		return &StandardLogger{logger: &fallbackLogger{logger: basic}}
	}
	return &StandardLogger{logger: &otlpWrapper{logger: otlpLogger}}
}

// WithComponent creates a logger with component context
func (l *StandardLogger) WithComponent(componentName string) *slog.Logger {
	return l.logger.WithComponent(componentName)
}

// WithOperation creates a logger with operation context
func (l *StandardLogger) WithOperation(operationName string) *slog.Logger {
	return l.logger.WithOperation(operationName)
}

// WithSeries creates a logger with series context
func (l *StandardLogger) WithSeries(slug string) *slog.Logger {
	return l.logger.WithSeries(slug)
}

// WithRequestID creates a logger with request ID context
func (l *StandardLogger) WithRequestID(requestID string) *slog.Logger {
	return l.logger.WithRequestID(requestID)
}

// WithError creates a logger with error context
func (l *StandardLogger) WithError(err error) *slog.Logger {
	return l.logger.WithError(err)
}

// LogStartup logs application startup information
func (l *StandardLogger) LogStartup(serviceName string, version string, port int) {
	l.logger.LogStartup(serviceName, version, port)
}

// LogShutdown logs application shutdown information
func (l *StandardLogger) LogShutdown(serviceName string, reason string) {
	l.logger.LogShutdown(serviceName, reason)
}

// LogForecastRequest logs a served forecast in a standardized format
func (l *StandardLogger) LogForecastRequest(slug string, points int, horizon int, cached bool, durationMs int64) {
	l.logger.LogForecastRequest(slug, points, horizon, cached, durationMs)
}

// LogEvaluationRequest logs a served evaluation in a standardized format
func (l *StandardLogger) LogEvaluationRequest(slug string, mode string, metric string, durationMs int64) {
	l.logger.LogEvaluationRequest(slug, mode, metric, durationMs)
}

// LogCacheOperation logs cache operations in a standardized format
func (l *StandardLogger) LogCacheOperation(operation string, key string, hit bool, durationMs int64) {
	l.logger.LogCacheOperation(operation, key, hit, durationMs)
}

// LogDatabaseOperation logs database operations in a standardized format
func (l *StandardLogger) LogDatabaseOperation(operation string, table string, durationMs int64, rowsAffected int64) {
	l.logger.LogDatabaseOperation(operation, table, durationMs, rowsAffected)
}

// LogDigestSent logs a delivered Telegram digest
func (l *StandardLogger) LogDigestSent(chatID int64, seriesCount int) {
	l.logger.LogDigestSent(chatID, seriesCount)
}

// Logger returns the underlying *slog.Logger
func (l *StandardLogger) Logger() *slog.Logger {
	return l.logger.Logger()
}

// Shutdown flushes any buffered log records
func (l *StandardLogger) Shutdown(ctx context.Context) error {
	return l.logger.Shutdown(ctx)
}

// getSlogLevel converts string level to slog.Level
func getSlogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLogrusLevel converts string level to logrus.Level
func ParseLogrusLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// ConfigureLogrus sets the global logrus formatter and level so packages
// logging through logrus agree with the slog output.
func ConfigureLogrus(level string) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(ParseLogrusLevel(level))
}

// otlpWrapper wraps OTLPLogger to implement Logger interface
type otlpWrapper struct {
	logger *OTLPLogger
}

func (o *otlpWrapper) WithComponent(componentName string) *slog.Logger {
	return o.logger.logger.With("component", componentName)
}

func (o *otlpWrapper) WithOperation(operationName string) *slog.Logger {
	return o.logger.logger.With("operation", operationName)
}

func (o *otlpWrapper) WithSeries(slug string) *slog.Logger {
	return o.logger.logger.With("series", slug)
}

func (o *otlpWrapper) WithRequestID(requestID string) *slog.Logger {
	return o.logger.logger.With("request_id", requestID)
}

func (o *otlpWrapper) WithError(err error) *slog.Logger {
	return o.logger.logger.With("error", err.Error())
}

func (o *otlpWrapper) LogStartup(serviceName string, version string, port int) {
	o.logger.logger.Info("Application startup",
		"service", serviceName,
		"version", version,
		"port", port,
		"event", "startup",
	)
}

func (o *otlpWrapper) LogShutdown(serviceName string, reason string) {
	o.logger.logger.Info("Application shutdown",
		"service", serviceName,
		"reason", reason,
		"event", "shutdown",
	)
}

func (o *otlpWrapper) LogForecastRequest(slug string, points int, horizon int, cached bool, durationMs int64) {
	o.logger.logger.Info("Forecast served",
		"series", slug,
		"points", points,
		"horizon", horizon,
		"cached", cached,
		"duration_ms", durationMs,
		"event", "forecast",
	)
}

func (o *otlpWrapper) LogEvaluationRequest(slug string, mode string, metric string, durationMs int64) {
	o.logger.logger.Info("Evaluation served",
		"series", slug,
		"mode", mode,
		"metric", metric,
		"duration_ms", durationMs,
		"event", "evaluation",
	)
}

func (o *otlpWrapper) LogCacheOperation(operation string, key string, hit bool, durationMs int64) {
	o.logger.logger.Info("Cache operation",
		"operation", operation,
		"key", key,
		"hit", hit,
		"duration_ms", durationMs,
		"event", "cache",
	)
}

func (o *otlpWrapper) LogDatabaseOperation(operation string, table string, durationMs int64, rowsAffected int64) {
	o.logger.logger.Info("Database operation",
		"operation", operation,
		"table", table,
		"duration_ms", durationMs,
		"rows_affected", rowsAffected,
		"event", "database",
	)
}

func (o *otlpWrapper) LogDigestSent(chatID int64, seriesCount int) {
	o.logger.logger.Info("Digest sent",
		"chat_id", chatID,
		"series_count", seriesCount,
		"event", "digest",
	)
}

func (o *otlpWrapper) Logger() *slog.Logger {
	return o.logger.logger
}

func (o *otlpWrapper) Shutdown(ctx context.Context) error {
	return o.logger.Shutdown(ctx)
}

// fallbackLogger is a simple implementation that uses slog directly
// This is used when OTLP is not configured
type fallbackLogger struct {
	logger *slog.Logger
}

func (f *fallbackLogger) WithComponent(componentName string) *slog.Logger {
	return f.logger.With("component", componentName)
}

func (f *fallbackLogger) WithOperation(operationName string) *slog.Logger {
	return f.logger.With("operation", operationName)
}

func (f *fallbackLogger) WithSeries(slug string) *slog.Logger {
	return f.logger.With("series", slug)
}

func (f *fallbackLogger) WithRequestID(requestID string) *slog.Logger {
	return f.logger.With("request_id", requestID)
}

func (f *fallbackLogger) WithError(err error) *slog.Logger {
	return f.logger.With("error", err.Error())
}

func (f *fallbackLogger) LogStartup(serviceName string, version string, port int) {
	f.logger.Info("Application startup",
		"service", serviceName,
		"version", version,
		"port", port,
		"event", "startup",
	)
}

func (f *fallbackLogger) LogShutdown(serviceName string, reason string) {
	f.logger.Info("Application shutdown",
		"service", serviceName,
		"reason", reason,
		"event", "shutdown",
	)
}

func (f *fallbackLogger) LogForecastRequest(slug string, points int, horizon int, cached bool, durationMs int64) {
	f.logger.Info("Forecast served",
		"series", slug,
		"points", points,
		"horizon", horizon,
		"cached", cached,
		"duration_ms", durationMs,
		"event", "forecast",
	)
}

func (f *fallbackLogger) LogEvaluationRequest(slug string, mode string, metric string, durationMs int64) {
	f.logger.Info("Evaluation served",
		"series", slug,
		"mode", mode,
		"metric", metric,
		"duration_ms", durationMs,
		"event", "evaluation",
	)
}

func (f *fallbackLogger) LogCacheOperation(operation string, key string, hit bool, durationMs int64) {
	f.logger.Info("Cache operation",
		"operation", operation,
		"key", key,
		"hit", hit,
		"duration_ms", durationMs,
		"event", "cache",
	)
}

func (f *fallbackLogger) LogDatabaseOperation(operation string, table string, durationMs int64, rowsAffected int64) {
	f.logger.Info("Database operation",
		"operation", operation,
		"table", table,
		"duration_ms", durationMs,
		"rows_affected", rowsAffected,
		"event", "database",
	)
}

func (f *fallbackLogger) LogDigestSent(chatID int64, seriesCount int) {
	f.logger.Info("Digest sent",
		"chat_id", chatID,
		"series_count", seriesCount,
		"event", "digest",
	)
}

func (f *fallbackLogger) Logger() *slog.Logger {
	return f.logger
}

func (f *fallbackLogger) Shutdown(ctx context.Context) error {
	return nil
}
