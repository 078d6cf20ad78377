package logger

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	log  *zap.Logger
	once sync.Once

	buildLogger = func(cfg zap.Config) (*zap.Logger, error) {
		return cfg.Build(zap.AddCallerSkip(1))
	}
)

type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
	ServiceName             = "vininfo-backend"
)

// Init builds the process logger. Only the first call has an effect.
func Init(env string) {
	once.Do(func() {
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.InitialFields = map[string]interface{}{"service": ServiceName}

		if env == "development" {
			cfg = zap.NewDevelopmentConfig()
			cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}

		l, err := buildLogger(cfg)
		if err != nil {
			panic(err)
		}
		log = l
	})
}

// GetLogger returns the underlying zap logger, or a no-op logger before Init.
func GetLogger() *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}

// WithContext returns the logger enriched with the request id carried by ctx.
func WithContext(ctx context.Context) *zap.Logger {
	base := GetLogger()
	if ctx == nil {
		return base
	}
	if reqID, ok := ctx.Value(RequestIDKey).(string); ok && reqID != "" {
		return base.With(zap.String("request_id", reqID))
	}
	return base
}

// Info logs a message at InfoLevel
func Info(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Info(msg, fields...)
}

// Error logs a message at ErrorLevel
func Error(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Error(msg, fields...)
}

// Debug logs a message at DebugLevel
func Debug(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Debug(msg, fields...)
}

// Warn logs a message at WarnLevel
func Warn(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Warn(msg, fields...)
}

// Sync flushes buffered entries; errors from stderr/stdout sync are ignored.
func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}

// LogRequest writes one access-log line for an HTTP request.
func LogRequest(ctx context.Context, method, path string, status int, latency time.Duration, clientIP string, extra ...zap.Field) {
	fields := append([]zap.Field{
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.Duration("latency", latency),
		zap.String("client_ip", clientIP),
	}, extra...)
	switch {
	case status >= 500:
		WithContext(ctx).Error("HTTP Request", fields...)
	case status >= 400:
		WithContext(ctx).Warn("HTTP Request", fields...)
	default:
		WithContext(ctx).Info("HTTP Request", fields...)
	}
}
