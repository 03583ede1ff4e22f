// Package logging provides the structured logger used across the service,
// plus trace-ID propagation helpers for HTTP middleware.
package logging

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type contextKey string

const traceIDKey contextKey = "trace_id"

// Config controls log level and output encoding.
type Config struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"` // "json" or "console"
}

// Logger wraps zap with the small surface the service needs.
type Logger struct {
	zl *zap.Logger
}

// New builds a logger from config. Unknown levels fall back to info.
func New(cfg Config) *Logger {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if parsed, err := zapcore.ParseLevel(cfg.Level); err == nil {
			level = parsed
		}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if cfg.Format == "console" {
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.Lock(os.Stdout), level)
	return &Logger{zl: zap.New(core)}
}

// NewNop returns a logger that discards everything. Used in tests.
func NewNop() *Logger {
	return &Logger{zl: zap.NewNop()}
}

// Named returns a logger scoped to a component name.
func (l *Logger) Named(name string) *Logger {
	return &Logger{zl: l.zl.Named(name)}
}

// With returns a logger with extra structured fields attached.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{zl: l.zl.With(fields...)}
}

func (l *Logger) Debugf(format string, args ...any) {
	l.zl.Sugar().Debugf(format, args...)
}

func (l *Logger) Infof(format string, args ...any) {
	l.zl.Sugar().Infof(format, args...)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.zl.Sugar().Warnf(format, args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.zl.Sugar().Errorf(format, args...)
}

// WithError attaches an error field.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{zl: l.zl.With(zap.Error(err))}
}

// LogRequest records one completed HTTP request with its trace ID.
func (l *Logger) LogRequest(ctx context.Context, method, path string, status int, duration time.Duration) {
	l.zl.Info("http request",
		zap.String("trace_id", TraceIDFrom(ctx)),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.Duration("duration", duration),
	)
}

// LogSecurityEvent records a security-relevant event (rate limiting, denied
// gate checks) with its trace ID.
func (l *Logger) LogSecurityEvent(ctx context.Context, event string, details map[string]any) {
	fields := make([]zap.Field, 0, len(details)+2)
	fields = append(fields, zap.String("trace_id", TraceIDFrom(ctx)), zap.String("event", event))
	for k, v := range details {
		fields = append(fields, zap.Any(k, v))
	}
	l.zl.Warn("security event", fields...)
}

// Sync flushes buffered log entries.
func (l *Logger) Sync() {
	_ = l.zl.Sync()
}

// NewTraceID generates a fresh trace identifier.
func NewTraceID() string {
	return uuid.NewString()
}

// WithTraceID stores a trace ID on the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceIDFrom returns the trace ID stored on the context, or "".
func TraceIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(traceIDKey).(string); ok {
		return v
	}
	return ""
}
